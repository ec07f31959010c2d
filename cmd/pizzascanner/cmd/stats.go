package cmd

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"PizzaScanner/internal/app"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [ingredient...]",
	Short: "Prints ingredient statistics, all of them when no ingredient is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApplication(cmd, func(ctx context.Context, a *app.Application) error {
			stats, err := a.Stats(ctx, args)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Ingredient", "Days", "Share"})
			for _, stat := range stats {
				t.AppendRow(table.Row{stat.Ingredient, stat.Count, fmt.Sprintf("%.0f%%", stat.Percentage*100)})
			}
			t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d ingredients", len(stats))})
			t.Render()
			return nil
		})
	},
}
