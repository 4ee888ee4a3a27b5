package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/danielpatrickdp/deliberate/internal/config"
	"github.com/danielpatrickdp/deliberate/internal/consensus"
	"github.com/danielpatrickdp/deliberate/internal/economics"
	"github.com/danielpatrickdp/deliberate/internal/export"
	"github.com/danielpatrickdp/deliberate/internal/memory"
	"github.com/danielpatrickdp/deliberate/internal/phase"
	"github.com/danielpatrickdp/deliberate/internal/reasoning"
	"github.com/danielpatrickdp/deliberate/internal/record"
	"github.com/danielpatrickdp/deliberate/internal/scheduler"
)

// #region run-command

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a deliberation experiment",
	Long: `Run a full deliberation experiment from a definition file.

The run walks both phases: principle familiarization with paid individual
choices, then group deliberation until agreement, ballot, or timeout. The
completed record is written to the sqlite database and, optionally, to a
JSON file that doubles as a replay fixture.

Example:
  deliberate run --definition experiment.yaml --record run.json`,
	RunE: runExperiment,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("definition", "experiment.yaml", "experiment definition file")
	runCmd.Flags().String("record", "", "write the completed record to this JSON file")
	runCmd.Flags().Int64("seed", 0, "seed for all randomized strategies (0 = time-based)")

	_ = viper.BindPFlag("record_path", runCmd.Flags().Lookup("record"))
	_ = viper.BindPFlag("seed", runCmd.Flags().Lookup("seed"))
}

func runExperiment(cmd *cobra.Command, args []string) error {
	rt, err := config.LoadRuntime()
	if err != nil {
		return err
	}
	defPath, _ := cmd.Flags().GetString("definition")
	def, err := config.LoadDefinition(defPath)
	if err != nil {
		return err
	}

	logger := newLogger(rt.Verbose)
	logger.WithField("name", def.Name).Info("starting experiment")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("interrupt received, finishing current turn")
		cancel()
	}()

	port := reasoning.NewHTTPClient(rt.BackendURL, rt.APIKey, rt.RequestTimeout)
	caller := reasoning.NewCaller(port, reasoning.DefaultRetryConfig(), logger)

	memStrategy, err := memory.NewStrategy(memory.Kind(def.Strategies.Memory), def.Strategies.MemoryRecentMax, caller)
	if err != nil {
		return err
	}
	mem := memory.NewManager(memStrategy, logger)

	conStrategy, err := consensus.NewStrategy(def.ConsensusKind(), def.DecisionRule.Threshold)
	if err != nil {
		return err
	}
	detector := consensus.NewDetector(conStrategy, logger)

	principles := def.PrincipleMap()
	engine := economics.NewEngine(def.DistributionSet(), def.PayoutRatio, rt.Seed, logger)
	sched := scheduler.New(caller, mem, principles, def.SchedulerConfig(), rt.Seed, logger)

	sqliteExp, err := export.NewSQLiteExporter(rt.DBPath)
	if err != nil {
		return err
	}
	defer sqliteExp.Close()

	exporter := record.Exporter(sqliteExp)
	if rt.RecordPath != "" {
		exporter = export.Multi{sqliteExp, export.JSONFile{Path: rt.RecordPath}}
	}

	ctrl := phase.NewController(def.PhaseConfig(), def.ActorList(), principles, phase.Deps{
		Engine:    engine,
		Scheduler: sched,
		Detector:  detector,
		Memory:    mem,
		Caller:    caller,
		Exporter:  exporter,
		Logger:    logger,
	}, rt.Seed)

	rec, err := ctrl.Run(ctx)
	if err != nil {
		return fmt.Errorf("experiment run: %w", err)
	}

	fields := logrus.Fields{
		"experiment": rec.ID,
		"unanimous":  rec.Consensus.Unanimous,
		"rounds":     rec.Consensus.RoundsToConsensus,
		"timed_out":  rec.TimedOut,
	}
	if rec.Consensus.AgreedChoice != nil {
		fields["principle"] = rec.Consensus.AgreedChoice.PrincipleID
	}
	logger.WithFields(fields).Info("experiment complete")
	return nil
}

// #endregion
