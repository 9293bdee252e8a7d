package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/samber/lo"
)

type TopicPostgresStorage struct {
	db *sqlx.DB
}

func NewTopicStorage(db *sqlx.DB) *TopicPostgresStorage {
	return &TopicPostgresStorage{db: db}
}

// Store вставляет пачку тем одним запросом.
// Темы, которые уже есть (по title+source или url+source), молча пропускаются.
// Возвращает сколько строк реально добавилось.
func (s *TopicPostgresStorage) Store(ctx context.Context, topics []model.Topic) (int64, error) {
	const op = "storage.TopicPostgresStorage.Store"

	if len(topics) == 0 {
		return 0, nil
	}

	insert := psql.Insert("topics").Columns("title", "subreddit", "score", "url", "source")
	for _, t := range topics {
		insert = insert.Values(t.Title, t.Subreddit, t.Score, t.URL, t.Source)
	}

	query, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
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

// Latest возвращает limit самых свежих тем
func (s *TopicPostgresStorage) Latest(ctx context.Context, limit uint64) ([]model.Topic, error) {
	const op = "storage.TopicPostgresStorage.Latest"

	query, args, err := psql.
		Select(topicColumns...).
		From("topics").
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	var topics []dbTopic
	if err := s.db.SelectContext(ctx, &topics, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lo.Map(topics, func(t dbTopic, _ int) model.Topic {
		return model.Topic(t)
	}), nil
}

// Add добавляет одну тему и возвращает ее id
func (s *TopicPostgresStorage) Add(ctx context.Context, topic model.Topic) (int64, error) {
	const op = "storage.TopicPostgresStorage.Add"

	var id int64
	if err := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO topics (title, subreddit, score, url, source) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		topic.Title,
		topic.Subreddit,
		topic.Score,
		topic.URL,
		topic.Source,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// TopicByID возвращает тему по id
func (s *TopicPostgresStorage) TopicByID(ctx context.Context, id int64) (model.Topic, error) {
	const op = "storage.TopicPostgresStorage.TopicByID"

	query, args, err := psql.Select(topicColumns...).From("topics").Where("id = ?", id).ToSql()
	if err != nil {
		return model.Topic{}, fmt.Errorf("%s: build query: %w", op, err)
	}

	var topic dbTopic
	if err := s.db.GetContext(ctx, &topic, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Topic{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return model.Topic{}, fmt.Errorf("%s: %w", op, err)
	}

	return model.Topic(topic), nil
}

var topicColumns = []string{"id", "title", "subreddit", "score", "url", "source", "created_at"}

// Модель строки таблицы topics
type dbTopic struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Subreddit string    `db:"subreddit"`
	Score     int       `db:"score"`
	URL       string    `db:"url"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}
