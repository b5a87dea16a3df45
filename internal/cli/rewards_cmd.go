package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/alexanderramin/dagatna/internal/cli/formatter"
	"github.com/alexanderramin/dagatna/internal/service"
	"github.com/spf13/cobra"
)

func newClaimCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <run-id>",
		Short: "Claim the fish food earned by a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return claimAndReport(cmd, app, args[0])
		},
	}
}

func claimAndReport(cmd *cobra.Command, app *App, runID string) error {
	claim, err := app.Claims.Claim(cmd.Context(), runID)
	out := cmd.OutOrStdout()
	switch {
	case errors.Is(err, service.ErrNothingToClaim):
		fmt.Fprintln(out, formatter.Dim("This run did not reach a reward tier."))
		return nil
	case errors.Is(err, service.ErrSimulatedRun):
		fmt.Fprintln(out, formatter.Dim("Simulated runs earn no fish food. Play one with `dagatna play`."))
		return nil
	case errors.Is(err, service.ErrAlreadyClaimed):
		fmt.Fprintln(out, formatter.StyleYellow.Render("This run's reward was already claimed."))
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(out, "%s %s %s\n",
		formatter.ClaimStatusPill(claim.Status),
		formatter.Bold(fmt.Sprintf("%d fish food", claim.Amount)),
		formatter.Dim(claim.Reference))
	return nil
}

func newBalanceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the total fish food claimed",
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := app.Claims.Balance(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBalance(total))
			return nil
		},
	}
}

func newTiersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Show the reward table",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTiers(cleanup.DefaultTiers, app.Config.Engine.RewardCap))
			return nil
		},
	}
}
