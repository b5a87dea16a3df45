package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/alexanderramin/dagatna/internal/cli/formatter"
	"github.com/alexanderramin/dagatna/internal/config"
	"github.com/alexanderramin/dagatna/internal/domain"
	"github.com/alexanderramin/dagatna/internal/service"
	"github.com/spf13/cobra"
)

// ErrNotInteractive is returned by play when stdin is not a terminal.
var ErrNotInteractive = errors.New("play needs an interactive terminal; try `dagatna simulate`")

// ErrCoolingDown is returned when a session is started inside the cooldown.
var ErrCoolingDown = errors.New("cleanup crew is resting")

const rulesText = `Trash drifts into the bay and sinks after a few seconds.
Press the letter shown next to an item to clear it before it fades.
You have one minute. Clear 10, 20 or 40 items to earn fish food.`

func newPlayCmd(app *App) *cobra.Command {
	engine := app.Config.Engine
	var skipRules, autoClaim bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a one-minute cleanup session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if !app.interactive() {
				return ErrNotInteractive
			}
			if err := checkCooldown(ctx, app); err != nil {
				return err
			}
			cfg, err := sessionConfig(app, engine)
			if err != nil {
				return err
			}
			if pool := max(cfg.SpawnCap, cfg.InitialItems); pool > maxLabels {
				return fmt.Errorf("%w: the play screen labels at most %d items, got %d",
					cleanup.ErrInvalidConfig, maxLabels, pool)
			}

			if !skipRules {
				ok, err := app.confirm("Ready to clean the bay?", rulesText)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, formatter.Dim("Maybe next time."))
					return nil
				}
			}

			seed, err := sessionSeed(app)
			if err != nil {
				return err
			}
			session, err := cleanup.NewSession(cfg, cleanup.NewRand(seed))
			if err != nil {
				return err
			}
			defer session.Teardown()

			for round := 0; ; round++ {
				runSeed := seed
				if round > 0 {
					if err := checkCooldown(ctx, app); err != nil {
						return err
					}
					if err := session.Reset(); err != nil {
						return err
					}
					// Replays continue the generator stream, so the seed alone
					// no longer reproduces them.
					runSeed = 0
				}

				outcome, err := playRound(ctx, app, session, seed)
				if err != nil {
					return err
				}
				if outcome.result == nil {
					fmt.Fprintln(out, formatter.Dim("Session abandoned. Nothing was recorded."))
					return nil
				}

				run, err := app.Runs.RecordRun(ctx, service.RunRecord{
					Seed:      runSeed,
					Result:    *outcome.result,
					RewardCap: cfg.RewardCap,
					Source:    domain.RunSourcePlay,
				})
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatResult(*outcome.result, cfg.Tiers, cfg.RewardCap))
				fmt.Fprintf(out, "%s %s\n", formatter.Dim("Run"), run.ID)
				if err := offerClaim(cmd, app, run, autoClaim); err != nil {
					return err
				}
				if !outcome.again {
					return nil
				}
			}
		},
	}

	config.BindFlags(cmd.Flags(), &engine)
	cmd.Flags().BoolVarP(&skipRules, "yes", "y", false, "Skip the rules confirmation")
	cmd.Flags().BoolVar(&autoClaim, "claim", false, "Claim the reward without asking")

	return cmd
}

// sessionConfig builds the engine config from env values and flags. Flags
// may lower the reward cap but never raise it past the configured one.
func sessionConfig(app *App, engine config.EngineConfig) (cleanup.Config, error) {
	cfg, err := engine.Cleanup()
	if err != nil {
		return cleanup.Config{}, err
	}
	cfg.RewardCap = min(cfg.RewardCap, app.Config.Engine.RewardCap)
	return cfg, nil
}

type playOutcome struct {
	result *cleanup.Result // nil when the player gave up
	again  bool
}

// playRound drives one session from idle to finish behind the play screen.
func playRound(ctx context.Context, app *App, session *cleanup.Session, seed uint64) (playOutcome, error) {
	results := make(chan cleanup.Result, 1)
	runner := cleanup.NewRunner(session,
		cleanup.WithClock(app.clock()),
		cleanup.WithLogger(app.logger().With("seed", seed)),
		cleanup.OnFinish(func(r cleanup.Result) { results <- r }),
	)
	if err := runner.Start(ctx); err != nil {
		return playOutcome{}, err
	}
	defer runner.Stop()

	final, err := app.runProgram(ctx, newPlayModel(runner, results))
	if err != nil {
		return playOutcome{}, fmt.Errorf("running game: %w", err)
	}
	m, ok := final.(*playModel)
	if !ok || m.abandoned || m.result == nil {
		return playOutcome{}, nil
	}
	return playOutcome{result: m.result, again: m.again}, nil
}

func sessionSeed(app *App) (uint64, error) {
	if app.Config.Seed != 0 {
		return app.Config.Seed, nil
	}
	return cleanup.NewSeed()
}

func checkCooldown(ctx context.Context, app *App) error {
	wait, err := app.Runs.CheckCooldown(ctx)
	if err != nil {
		return err
	}
	if wait > 0 {
		return fmt.Errorf("%w: next session in %s", ErrCoolingDown, formatter.FormatWait(wait))
	}
	return nil
}

// offerClaim hands a run's reward to the claim service, asking first unless
// auto is set or the terminal is not interactive.
func offerClaim(cmd *cobra.Command, app *App, run *domain.CleanupRun, auto bool) error {
	if app.Claims == nil {
		return nil
	}
	amount := app.Claims.Claimable(run)
	if amount <= 0 {
		return nil
	}
	if !auto {
		if !app.interactive() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.Dim("Claim later with `dagatna claim "+run.ID+"`."))
			return nil
		}
		ok, err := app.confirm(fmt.Sprintf("Claim %d fish food now?", amount), "")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.Dim("Claim later with `dagatna claim "+run.ID+"`."))
			return nil
		}
	}
	return claimAndReport(cmd, app, run.ID)
}
