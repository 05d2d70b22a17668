package main

import (
	"github.com/inkwell/internal/config"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/logging"
	"github.com/inkwell/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// app carries what every subcommand needs. db stays nil until the first
// command that touches the database runs.
type app struct {
	cfg    config.AppConfig
	db     *gorm.DB
	log    zerolog.Logger
	driver string
	dsn    string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "inkctl",
		Short: "Administration tool for an inkwell blog",
		Long: `inkctl manages the inkwell database directly.

Connection settings default to the same environment variables the server
reads (DATABASE_DRIVER, DATABASE_PATH, DATABASE_DSN) and can be
overridden with --driver and --dsn.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log = logging.NewWithWriter(a.cfg.LogLevel, cmd.ErrOrStderr())
			return a.open()
		},
	}

	root.PersistentFlags().StringVar(&a.driver, "driver", a.cfg.DatabaseDriver, "database driver (sqlite or postgres)")
	root.PersistentFlags().StringVar(&a.dsn, "dsn", a.cfg.DSN(), "sqlite file path or postgres connection string")

	root.AddCommand(newUserCmd(a), newRoleCmd(a), newSeedCmd(a), newBackfillCmd(a))
	return root
}

func (a *app) open() error {
	if a.db != nil {
		return nil
	}
	gdb, err := db.Open(a.driver, a.dsn, logger.Warn)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	a.db = gdb
	return nil
}

func (a *app) users() *service.UserService {
	return service.NewUserService(a.db)
}
