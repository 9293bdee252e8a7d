package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type DraftPostgresStorage struct {
	db *sqlx.DB
}

func NewDraftStorage(db *sqlx.DB) *DraftPostgresStorage {
	return &DraftPostgresStorage{db: db}
}

const draftReturning = "RETURNING id, title, summary, body, image_prompt, images, status, topic_id, created_at"

var draftColumns = []string{"id", "title", "summary", "body", "image_prompt", "images", "status", "topic_id", "created_at"}

// Add создает новый черновик в статусе pending
func (s *DraftPostgresStorage) Add(ctx context.Context, content model.DraftContent, topicID int64) (model.Draft, error) {
	const op = "storage.DraftPostgresStorage.Add"

	query, args, err := psql.
		Insert("drafts").
		Columns("title", "summary", "body", "image_prompt", "status", "topic_id").
		Values(content.Title, content.Summary, content.Body, nullString(content.ImagePrompt), model.DraftPending, topicID).
		Suffix(draftReturning).
		ToSql()
	if err != nil {
		return model.Draft{}, fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.getOne(ctx, op, query, args...)
}

// Drafts возвращает черновики, новые первыми. limit 0 - без ограничения
func (s *DraftPostgresStorage) Drafts(ctx context.Context, limit uint64) ([]model.Draft, error) {
	const op = "storage.DraftPostgresStorage.Drafts"

	q := psql.Select(draftColumns...).From("drafts").OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	var drafts []dbDraft
	if err := s.db.SelectContext(ctx, &drafts, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return lo.Map(drafts, func(d dbDraft, _ int) model.Draft {
		return d.toModel()
	}), nil
}

// DraftByID возвращает черновик или ErrNotFound
func (s *DraftPostgresStorage) DraftByID(ctx context.Context, id int64) (model.Draft, error) {
	const op = "storage.DraftPostgresStorage.DraftByID"

	query, args, err := psql.Select(draftColumns...).From("drafts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Draft{}, fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.getOne(ctx, op, query, args...)
}

// NextWithoutImage - самый свежий pending черновик без картинок, или ErrNotFound
func (s *DraftPostgresStorage) NextWithoutImage(ctx context.Context) (model.Draft, error) {
	const op = "storage.DraftPostgresStorage.NextWithoutImage"

	query, args, err := psql.
		Select(draftColumns...).
		From("drafts").
		Where(sq.Eq{"status": model.DraftPending}).
		Where("cardinality(images) = 0").
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Draft{}, fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.getOne(ctx, op, query, args...)
}

// Update заменяет редактируемые поля одним запросом.
// Если промпт не передан, колонка image_prompt остается как была.
func (s *DraftPostgresStorage) Update(ctx context.Context, id int64, upd model.DraftUpdate) (model.Draft, error) {
	const op = "storage.DraftPostgresStorage.Update"

	builder := psql.
		Update("drafts").
		Set("title", upd.Title).
		Set("summary", upd.Summary).
		Set("body", upd.Body)
	if upd.ImagePrompt != nil {
		builder = builder.Set("image_prompt", nullString(*upd.ImagePrompt))
	}

	query, args, err := builder.
		Where(sq.Eq{"id": id}).
		Suffix(draftReturning).
		ToSql()
	if err != nil {
		return model.Draft{}, fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.getOne(ctx, op, query, args...)
}

// Approve переводит черновик в approved. Повторный вызов ничего не меняет.
func (s *DraftPostgresStorage) Approve(ctx context.Context, id int64) (model.Draft, error) {
	const op = "storage.DraftPostgresStorage.Approve"

	query, args, err := psql.
		Update("drafts").
		Set("status", model.DraftApproved).
		Where(sq.Eq{"id": id}).
		Suffix(draftReturning).
		ToSql()
	if err != nil {
		return model.Draft{}, fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.getOne(ctx, op, query, args...)
}

// AppendImage дописывает url в конец images
func (s *DraftPostgresStorage) AppendImage(ctx context.Context, id int64, url string) (model.Draft, error) {
	const op = "storage.DraftPostgresStorage.AppendImage"

	query, args, err := psql.
		Update("drafts").
		Set("images", sq.Expr("array_append(images, ?)", url)).
		Where(sq.Eq{"id": id}).
		Suffix(draftReturning).
		ToSql()
	if err != nil {
		return model.Draft{}, fmt.Errorf("%s: build query: %w", op, err)
	}

	return s.getOne(ctx, op, query, args...)
}

func (s *DraftPostgresStorage) getOne(ctx context.Context, op, query string, args ...any) (model.Draft, error) {
	var draft dbDraft
	if err := s.db.GetContext(ctx, &draft, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Draft{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return model.Draft{}, fmt.Errorf("%s: %w", op, err)
	}
	return draft.toModel(), nil
}

type dbDraft struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Summary     string         `db:"summary"`
	Body        string         `db:"body"`
	ImagePrompt sql.NullString `db:"image_prompt"`
	Images      pq.StringArray `db:"images"`
	Status      string         `db:"status"`
	TopicID     sql.NullInt64  `db:"topic_id"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (d dbDraft) toModel() model.Draft {
	draft := model.Draft{
		ID:        d.ID,
		Title:     d.Title,
		Summary:   d.Summary,
		Body:      d.Body,
		Images:    []string(d.Images),
		Status:    model.DraftStatus(d.Status),
		CreatedAt: d.CreatedAt,
	}
	if draft.Images == nil {
		draft.Images = []string{}
	}
	if d.ImagePrompt.Valid {
		draft.ImagePrompt = lo.ToPtr(d.ImagePrompt.String)
	}
	if d.TopicID.Valid {
		draft.TopicID = lo.ToPtr(d.TopicID.Int64)
	}
	return draft
}

// Пустой промпт храним как NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
