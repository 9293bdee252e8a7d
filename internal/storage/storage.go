package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound - запись не найдена
var ErrNotFound = errors.New("not found")

// Билдер запросов под плейсхолдеры postgres ($1, $2, ...)
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Connect открывает пул соединений и проверяет, что база отвечает.
// Закрывать пул должен тот, кто его открыл.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.Connect: %w", err)
	}
	return db, nil
}

// Ping проверяет соединение с базой
func Ping(ctx context.Context, db *sqlx.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("storage.Ping: %w", err)
	}
	return nil
}
