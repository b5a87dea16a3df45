package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/alexanderramin/dagatna/internal/cli/formatter"
	"github.com/alexanderramin/dagatna/internal/config"
	"github.com/alexanderramin/dagatna/internal/domain"
	"github.com/alexanderramin/dagatna/internal/service"
	"github.com/spf13/cobra"
)

func newSimulateCmd(app *App) *cobra.Command {
	engine := app.Config.Engine
	var seed uint64
	var clears int
	var offset, every time.Duration
	var record bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a session headlessly with scripted clears",
		Long: `Run a full session in virtual time. Clears are spread evenly
through the session, each taking the oldest live item. The same seed and
script always give the same result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := sessionConfig(app, engine)
			if err != nil {
				return err
			}
			if record {
				if err := checkCooldown(ctx, app); err != nil {
					return err
				}
			}
			if seed == 0 {
				if seed, err = sessionSeed(app); err != nil {
					return err
				}
			}

			session, err := cleanup.NewSession(cfg, cleanup.NewRand(seed))
			if err != nil {
				return err
			}
			defer session.Teardown()

			start := app.clock().Now().Add(-cfg.Duration)
			rep, err := cleanup.Simulate(session, start, cleanup.EvenScript(clears, offset, every))
			if err != nil {
				return err
			}
			app.logger().Info("cleanup_simulation_finished",
				"seed", seed,
				"items_cleared", rep.Result.ItemsCleared,
				"misses", rep.Misses)

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatSimReport(rep, seed, cfg.Tiers, cfg.RewardCap))
			if !record {
				return nil
			}
			run, err := app.Runs.RecordRun(ctx, service.RunRecord{
				Seed:      seed,
				Result:    rep.Result,
				RewardCap: cfg.RewardCap,
				Source:    domain.RunSourceSimulate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s %s\n", formatter.Dim("Recorded run"), run.ID, formatter.Dim("(simulated, not claimable)"))
			return nil
		},
	}

	config.BindFlags(cmd.Flags(), &engine)
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Item generator seed (0 picks one)")
	cmd.Flags().IntVar(&clears, "clears", 25, "Number of clear attempts")
	cmd.Flags().DurationVar(&offset, "offset", time.Second, "Time of the first clear")
	cmd.Flags().DurationVar(&every, "every", 2*time.Second, "Time between clears")
	cmd.Flags().BoolVar(&record, "record", false, "Store the result in history; simulated runs earn nothing")

	return cmd
}
