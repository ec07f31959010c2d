package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"PizzaScanner/internal/app"
	"PizzaScanner/internal/calendar"
)

var (
	fetchStart string
	fetchEnd   string
)

func init() {
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", `label of the day to look up, e.g. "Wednesday January 8, 2020" (default today)`)
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "label of the following day (default tomorrow)")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Looks up one day's menu, extracting and storing the week on a cache miss.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end := fetchStart, fetchEnd
		if start == "" || end == "" {
			loc, err := cfg.Scheduler.Location()
			if err != nil {
				return err
			}
			var ok bool
			start, end, ok = calendar.WeekWindow(time.Now().In(loc))
			if !ok {
				return fmt.Errorf("closed today; pass --start and --end")
			}
		}

		return withApplication(cmd, func(ctx context.Context, a *app.Application) error {
			result, err := a.Fetch(ctx, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (cached: %t)\n%s\n", start, result.Cached, result.Data)
			return nil
		})
	},
}
