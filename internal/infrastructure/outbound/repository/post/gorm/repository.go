package post_repository_gorm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marites-post-service/internal/custom_errors"
	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
)

type PostRepository struct {
	db      *gorm.DB
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewPostRepository(db *gorm.DB, log ports.Logger, metrics ports.MetricsProvider) *PostRepository {
	return &PostRepository{db: db, log: log, metrics: metrics}
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	start := time.Now()
	record := newPostRecord(post)

	err := r.db.WithContext(ctx).Create(record).Error
	r.record("create", start, err)
	if err != nil {
		r.log.Error("Error creating post", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}
	return record.toModel(), nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	start := time.Now()
	var record postRecord

	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.record("get_by_id", start, nil)
		r.log.Debug("Post not found by id", slog.Int64("id", id))
		return nil, custom_errors.ErrPostNotFound
	}
	r.record("get_by_id", start, err)
	if err != nil {
		r.log.Error("Error getting post by id", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}
	return record.toModel(), nil
}

func (r *PostRepository) GetLatest(ctx context.Context) (*model.Post, error) {
	start := time.Now()
	var record postRecord

	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.record("get_latest", start, nil)
		return nil, custom_errors.ErrNoPosts
	}
	r.record("get_latest", start, err)
	if err != nil {
		r.log.Error("Error getting latest post", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}
	return record.toModel(), nil
}

func (r *PostRepository) List(ctx context.Context) ([]*model.Post, error) {
	start := time.Now()
	var records []postRecord

	err := r.db.WithContext(ctx).Order("id").Find(&records).Error
	r.record("list", start, err)
	if err != nil {
		r.log.Error("Error listing posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}

	posts := make([]*model.Post, 0, len(records))
	for i := range records {
		posts = append(posts, records[i].toModel())
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, id int64, update *model.UpdatePostDTO) (*model.Post, error) {
	start := time.Now()
	var record postRecord

	result := r.db.WithContext(ctx).
		Model(&record).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":      update.Title,
			"content":    update.Content,
			"published":  update.Published,
			"updated_at": gorm.Expr("GREATEST(updated_at, ?)", time.Now().UTC()),
		})
	r.record("update", start, result.Error)
	if result.Error != nil {
		r.log.Error("Error updating post", slog.Int64("id", id), slog.String("error", result.Error.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Debug("Post not found by id during Update", slog.Int64("id", id))
		return nil, custom_errors.ErrPostNotFound
	}
	return record.toModel(), nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&postRecord{})
	r.record("delete", start, result.Error)
	if result.Error != nil {
		r.log.Error("Error deleting post", slog.Int64("id", id), slog.String("error", result.Error.Error()))
		return fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, result.Error)
	}
	if result.RowsAffected == 0 {
		return custom_errors.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) record(queryType string, start time.Time, err error) {
	r.metrics.IncrementDatabaseQueries(queryType, err == nil)
	r.metrics.RecordDatabaseQueryDuration(queryType, time.Since(start))
}
