package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/deliberate/internal/config"
	"github.com/danielpatrickdp/deliberate/internal/export"
)

// #region inspect-command

var inspectCmd = &cobra.Command{
	Use:   "inspect [experiment-id]",
	Short: "List stored experiments or show one experiment's payouts",
	Long: `Without arguments, inspect lists all experiments in the results database.
With an experiment id, it prints each actor's final wealth.`,
	Args: cobra.MaximumNArgs(1),
	RunE: inspectResults,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspectResults(cmd *cobra.Command, args []string) error {
	rt, err := config.LoadRuntime()
	if err != nil {
		return err
	}
	exp, err := export.NewSQLiteExporter(rt.DBPath)
	if err != nil {
		return err
	}
	defer exp.Close()

	ctx := cmd.Context()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	if len(args) == 0 {
		summaries, err := exp.ListExperiments(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tCOMPLETED\tUNANIMOUS\tVALIDATED\tROUNDS\tBALLOT\tFALLBACK")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%d\t%v\t%s\n",
				s.ID, s.CompletedAt, s.Unanimous, s.Validated,
				s.RoundsToConsensus, s.BallotUsed, s.FallbackApplied)
		}
		return w.Flush()
	}

	wealth, err := exp.ActorWealth(ctx, args[0])
	if err != nil {
		return err
	}
	if len(wealth) == 0 {
		return fmt.Errorf("no experiment with id %s", args[0])
	}

	ids := make([]string, 0, len(wealth))
	for id := range wealth {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintln(w, "ACTOR\tFINAL WEALTH")
	for _, id := range ids {
		fmt.Fprintf(w, "%s\t$%.4f\n", id, wealth[id])
	}
	return w.Flush()
}

// #endregion
