package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/dagatna/internal/cli"
	"github.com/alexanderramin/dagatna/internal/config"
	"github.com/alexanderramin/dagatna/internal/db"
	"github.com/alexanderramin/dagatna/internal/repository"
	"github.com/alexanderramin/dagatna/internal/service"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logs never go to the terminal; the game owns the screen.
	logOut, err := config.OpenLogOutput(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logOut.Close()
	logger, err := config.NewLogger(logOut, cfg.LogLevel)
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	runRepo := repository.NewSQLiteRunRepo(database)
	claimRepo := repository.NewSQLiteClaimRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	clock := clockwork.NewRealClock()
	observer := service.NewLogUseCaseObserver(logger)

	app := &cli.App{
		Runs: service.NewRunService(runRepo, clock, cfg.Cooldown, observer),
		Claims: service.NewClaimService(runRepo, claimRepo, uow,
			service.NewOfflineClaimer(logger), clock, cfg.Engine.RewardCap, observer),
		Config: cfg,
		Logger: logger,
		Clock:  clock,
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
