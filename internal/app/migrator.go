package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/Freeeeeet/coach_bot/migrations"
)

// Migrator применяет SQL миграции goose к базе бота
type Migrator struct {
	provider *goose.Provider
	source   string
	logger   *zap.Logger
}

// NewMigrator создаёт мигратор поверх пула. Пустой dir означает миграции, встроенные в бинарник.
func NewMigrator(pool *pgxpool.Pool, dir string, logger *zap.Logger) (*Migrator, error) {
	var fsys fs.FS = migrations.FS
	source := "embedded"
	if dir != "" {
		fsys, source = os.DirFS(dir), dir
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, stdlib.OpenDBFromPool(pool), fsys)
	if err != nil {
		return nil, fmt.Errorf("create goose provider: %w", err)
	}
	return &Migrator{provider: provider, source: source, logger: logger}, nil
}

// Run применяет все ещё не применённые миграции
func (mg *Migrator) Run(ctx context.Context) error {
	results, err := mg.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		mg.logger.Info("Migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration))
	}

	version, err := mg.Version(ctx)
	if err != nil {
		return err
	}
	mg.logger.Info("Database schema is up to date",
		zap.String("source", mg.source),
		zap.Int64("version", version),
		zap.Int("applied", len(results)))
	return nil
}

func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := mg.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return version, nil
}

// Close закрывает *sql.DB мигратора; сам пул остаётся открытым
func (mg *Migrator) Close() error {
	return mg.provider.Close()
}
