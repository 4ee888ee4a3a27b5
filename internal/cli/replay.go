package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/deliberate/internal/config"
	"github.com/danielpatrickdp/deliberate/internal/consensus"
	"github.com/danielpatrickdp/deliberate/internal/economics"
	"github.com/danielpatrickdp/deliberate/internal/replay"
)

// #region replay-command

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Re-evaluate a recorded experiment without a reasoning backend",
	Long: `Replay walks the recorded turns of a finished experiment through the
consensus strategy and economics engine of a definition file. Useful for
checking how a different decision rule or distribution set would have
scored the same conversation.

Example:
  deliberate replay run.json --definition experiment.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: replayFixture,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().String("definition", "experiment.yaml", "experiment definition file")
	replayCmd.Flags().Bool("check", false, "fail if the outcome differs from the fixture's expected result")
}

func replayFixture(cmd *cobra.Command, args []string) error {
	defPath, _ := cmd.Flags().GetString("definition")
	def, err := config.LoadDefinition(defPath)
	if err != nil {
		return err
	}

	f, err := replay.LoadFixture(args[0])
	if err != nil {
		return err
	}

	strategy, err := consensus.NewStrategy(def.ConsensusKind(), def.DecisionRule.Threshold)
	if err != nil {
		return err
	}

	rt, err := config.LoadRuntime()
	if err != nil {
		return err
	}
	logger := newLogger(rt.Verbose)
	engine := economics.NewEngine(def.DistributionSet(), def.PayoutRatio, rt.Seed, logger)

	h := replay.NewHarness(strategy, engine, logger)
	_, summary, err := h.Replay(f)
	if err != nil {
		return err
	}

	if summary.Unanimous {
		fmt.Printf("agreement after round %d (%d turns): principle %d",
			summary.RoundsToConsensus, summary.TotalTurns, summary.AgreedChoice.PrincipleID)
		if summary.AgreedChoice.Constraint > 0 {
			fmt.Printf(" with constraint %g", summary.AgreedChoice.Constraint)
		}
		fmt.Println()
		if summary.Distribution != nil {
			fmt.Printf("resolved distribution: %d\n", summary.Distribution.ID)
		}
	} else {
		fmt.Printf("no agreement after %d turns\n", summary.TotalTurns)
	}

	if check, _ := cmd.Flags().GetBool("check"); check {
		if err := replay.Check(f, summary); err != nil {
			return fmt.Errorf("replay check: %w", err)
		}
		fmt.Println("replay matches expected result")
	}
	return nil
}

// #endregion
