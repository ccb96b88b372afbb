package main

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/shared_ledger_app/internal/platform/config"
	"github.com/SscSPs/shared_ledger_app/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(logger *slog.Logger) *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the SQL migrations from MIGRATIONS_PATH to the database at PGSQL_URL.

Example:
  sla_backend migrate
  sla_backend migrate --down`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			direction := database.MigrateUp
			if down {
				direction = database.MigrateDown
			}
			logger.Info("Running database migrations...", slog.String("direction", string(direction)))
			return database.RunMigrations(logger, cfg.DatabaseURL, cfg.MigrationsPath, direction)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	return cmd
}
