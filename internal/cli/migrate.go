package cli

import (
	"context"
	"fmt"

	"dugod-content-service/internal/config"
	"dugod-content-service/internal/infra/postgres"
	"dugod-content-service/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg, log)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration group",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			names, err := postgres.Rollback(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			log.WithField("migrations", names).Info("migrations rolled back")
			return nil
		},
	})
	return cmd
}

func loadConfig(path string) (config.Config, logrus.FieldLogger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(serviceName, cfg.Log.Level, cfg.Log.Format), nil
}

func runMigrations(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	names, err := postgres.Migrate(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	log.WithField("migrations", names).Info("migrations applied")
	return nil
}
