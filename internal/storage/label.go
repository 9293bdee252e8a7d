package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/autoblog/internal/model"
)

type LabelPostgresStorage struct {
	db *sqlx.DB
}

func NewLabelStorage(db *sqlx.DB) *LabelPostgresStorage {
	return &LabelPostgresStorage{db: db}
}

// Store сохраняет метки, дубликаты по тексту метки пропускаются
func (s *LabelPostgresStorage) Store(ctx context.Context, labels []string) (int64, error) {
	const op = "storage.LabelPostgresStorage.Store"

	if len(labels) == 0 {
		return 0, nil
	}

	insert := psql.Insert("topic_labels").Columns("label")
	for _, l := range labels {
		insert = insert.Values(l)
	}

	query, args, err := insert.Suffix("ON CONFLICT (label) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: build query: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}

	return inserted, nil
}

// Latest возвращает самую свежую метку или ErrNotFound
func (s *LabelPostgresStorage) Latest(ctx context.Context) (model.TopicLabel, error) {
	const op = "storage.LabelPostgresStorage.Latest"

	var label dbLabel
	if err := s.db.GetContext(
		ctx,
		&label,
		`SELECT id, label, created_at FROM topic_labels ORDER BY created_at DESC, id DESC LIMIT 1`,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TopicLabel{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return model.TopicLabel{}, fmt.Errorf("%s: %w", op, err)
	}

	return model.TopicLabel(label), nil
}

type dbLabel struct {
	ID        int64     `db:"id"`
	Label     string    `db:"label"`
	CreatedAt time.Time `db:"created_at"`
}
