package base

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB общий интерфейс пула и транзакции
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository базовый репозиторий с общими методами
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый базовый репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// DB возвращает пул как интерфейс запросов
func (r *Repository) DB() DB {
	return r.pool
}

// ExecAffected выполняет команду и возвращает количество затронутых строк
func (r *Repository) ExecAffected(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IsNotFound проверяет является ли ошибка "строка не найдена"
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
