package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// #region root

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "deliberate",
	Short: "Deliberate - multi-agent deliberation experiments over distributive justice",
	Long: `Deliberate runs structured group deliberation experiments: a roster of
language-model actors learns four distributive justice principles, earns
payouts under each, debates until the group agrees on one, and lives with
the economic consequences. Every run is recorded for replay and analysis.

Example:
  deliberate run --definition experiment.yaml`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "runtime config file (default is .deliberate.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().String("backend-url", "", "reasoning backend base URL")
	rootCmd.PersistentFlags().String("db-path", "", "sqlite results database path")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("backend_url", rootCmd.PersistentFlags().Lookup("backend-url"))
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db-path"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".deliberate")
	}

	viper.SetEnvPrefix("DELIBERATE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// #endregion
