package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations. The pgx pool is bridged to
// database/sql because goose expects the standard library interface; the
// bridge shares the pool's connections, so it is not closed here.
func (p *Postgres) Migrate(ctx context.Context, migrationsTable string, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(p.pool)

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	if migrationsTable != "" {
		goose.SetTableName(migrationsTable)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	// Error level only: goose returns the error, which propagates up, and
	// os.Exit here would skip shutdown hooks.
	g.log.Error(fmt.Sprintf(format, args...))
}
