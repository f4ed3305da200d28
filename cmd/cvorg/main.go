package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/cvorganizer/internal/cli"
	"github.com/alexanderramin/cvorganizer/internal/config"
	"github.com/alexanderramin/cvorganizer/internal/db"
	"github.com/alexanderramin/cvorganizer/internal/logging"
	"github.com/alexanderramin/cvorganizer/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	app := &cli.App{}

	// Detect interactive terminal for confirmations and the organize view.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	app.Setup = func(cmd *cobra.Command) error {
		cfg, err := config.LoadWithFlags(cmd.Flags())
		if err != nil {
			return err
		}

		log, err := logging.New(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		closers = append(closers, func() { _ = log.Sync() })

		database, err := db.OpenDB(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		closers = append(closers, func() { database.Close() })
		log.Debug("database opened", zap.String("path", cfg.Database.Path))

		// Wire unit of work for transactional operations
		uow := db.NewSQLiteUnitOfWork(database)

		settings := service.Settings{
			IndentWidth:     cfg.Organizer.IndentWidth,
			HiddenGroupName: cfg.Organizer.HiddenGroupName,
		}
		observer := service.NewLogUseCaseObserver(logging.WithModule(log, "service"))
		organizerLog := logging.WithModule(log, "organizer")

		app.Templates = service.NewTemplateService(uow, settings, observer)
		app.Organizer = service.NewOrganizerService(uow, settings, organizerLog, observer)
		app.Import = service.NewImportService(uow, settings, organizerLog, observer)
		app.IndentWidth = settings.IndentWidth
		return nil
	}

	rootCmd := cli.NewRootCmd(app)
	config.RegisterFlags(rootCmd.PersistentFlags())
	return rootCmd.Execute()
}
