package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"PizzaScanner/internal/app"
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Deletes ingredient rows and statistics no stored menu day backs, then exits.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApplication(cmd, func(ctx context.Context, a *app.Application) error {
			report, err := a.Reconcile(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"deleted %d occurrences and %d statistics, refreshed %d statistics\n",
				report.DeletedOccurrences, report.DeletedStatistics, len(report.Refreshed.Written))
			return report.Refreshed.Err()
		})
	},
}
