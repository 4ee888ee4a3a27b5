package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/deliberate/internal/config"
)

// #region init-command

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample experiment definition",
	Long: `Init writes a complete sample definition file to the given path. Edit the
roster, personas, and distribution table, then start a run with it.`,
	RunE: writeSampleDefinition,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("out", "experiment.yaml", "path for the sample definition")
	initCmd.Flags().Bool("force", false, "overwrite an existing file")
}

func writeSampleDefinition(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", out)
		}
	}
	if err := os.WriteFile(out, []byte(config.SampleDefinitionYAML), 0o644); err != nil {
		return fmt.Errorf("write sample definition: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}

// #endregion
