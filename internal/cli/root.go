package cli

import (
	"context"
	"log/slog"

	"github.com/alexanderramin/dagatna/internal/config"
	"github.com/alexanderramin/dagatna/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// App holds the services and settings used by CLI commands.
type App struct {
	Runs   service.RunService
	Claims service.ClaimService
	Config config.Config
	Logger *slog.Logger
	Clock  clockwork.Clock

	// IsInteractive reports whether stdin is a terminal. The play command
	// refuses to start without one.
	IsInteractive func() bool

	// RunProgram runs a bubbletea model to completion. Nil uses a real
	// alt-screen tea.Program.
	RunProgram func(ctx context.Context, m tea.Model) (tea.Model, error)

	// Confirm asks a yes/no question. Nil uses a huh confirm form.
	Confirm func(title, description string) (bool, error)
}

// NewRootCmd creates the top-level "dagatna" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:          "dagatna",
		Short:        "Ocean Cleanup: a one-minute trash clearing mini-game",
		SilenceUsage: true,
	}

	root.AddCommand(
		newPlayCmd(app),
		newSimulateCmd(app),
		newHistoryCmd(app),
		newClaimCmd(app),
		newBalanceCmd(app),
		newTiersCmd(app),
	)

	return root
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *App) clock() clockwork.Clock {
	if a.Clock == nil {
		return clockwork.NewRealClock()
	}
	return a.Clock
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) runProgram(ctx context.Context, m tea.Model) (tea.Model, error) {
	if a.RunProgram != nil {
		return a.RunProgram(ctx, m)
	}
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
}

func (a *App) confirm(title, description string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title, description)
	}
	var ok bool
	if err := wizardConfirm(title, description, &ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}
