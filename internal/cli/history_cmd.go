package cli

import (
	"fmt"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/alexanderramin/dagatna/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recent runs, or show one run and its claims",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			maxTier := len(cleanup.DefaultTiers)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				run, err := app.Runs.GetByID(ctx, args[0])
				if err != nil {
					return err
				}
				claims, err := app.Claims.ListByRun(ctx, run.ID)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatRunDetail(run, claims, maxTier))
				return nil
			}

			runs, err := app.Runs.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatHistory(runs, maxTier, app.clock().Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")

	return cmd
}
