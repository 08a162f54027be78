package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/infra/postgres"
	"quiz-attempt-service/internal/infra/postgres/migrations"
	"quiz-attempt-service/internal/logger"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return runMigrations(cmd.Context(), db)
		},
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	logger.Setup(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		return cfg, err
	}
	return cfg, nil
}

func openDatabase(cfg config.Config) (*bun.DB, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("database url not configured")
	}
	return postgres.Open(cfg.Database.Driver, cfg.Database.URL)
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		slog.Info("no new migrations to apply")
		return nil
	}
	slog.Info("migrations applied", "group", group.String())
	return nil
}
