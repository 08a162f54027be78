package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"quiz-attempt-service/internal/infra/postgres"
)

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return postgres.CreateSchema(ctx, db)
		},
		func(ctx context.Context, db *bun.DB) error {
			return postgres.DropSchema(ctx, db)
		},
	)
}
