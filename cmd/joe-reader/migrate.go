package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joestump/joe-reader/internal/config"
	"github.com/joestump/joe-reader/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := setupLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			version, err := db.Migrate(database, cfg.DB.Driver)
			if err != nil {
				return err
			}

			logger.Info("migrations complete", slog.String("driver", cfg.DB.Driver), slog.Int64("version", version))
			return nil
		},
	}
}
