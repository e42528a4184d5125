package post_repository_postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"marites-post-service/internal/custom_errors"
	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/infrastructure/outbound/repository/postgres/db"
)

const postColumns = `id, title, content, published, author, created_at, updated_at, rating, likes, comments`

type PostRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewPostRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *PostRepository {
	return &PostRepository{db: db, log: log, metrics: metrics}
}

func (p *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	start := time.Now()
	now := time.Now().UTC()

	comments, err := encodeComments(post.Comments)
	if err != nil {
		p.log.Error("Error encoding post comments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}

	args := pgx.NamedArgs{
		"title":      post.Title,
		"content":    post.Content,
		"published":  post.Published,
		"author":     post.Author,
		"rating":     post.Rating,
		"likes":      post.Likes,
		"comments":   comments,
		"created_at": now,
		"updated_at": now,
	}

	query := `
		INSERT INTO posts (title, content, published, author, rating, likes, comments, created_at, updated_at)
		VALUES (@title, @content, @published, @author, @rating, @likes, @comments, @created_at, @updated_at)
		RETURNING ` + postColumns

	createdPost, err := scanPost(p.db.QueryRow(ctx, query, args))
	p.record("create", start, err)
	if err != nil {
		p.log.Error("Error creating post", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}

	return createdPost, nil
}

func (p *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	start := time.Now()
	args := pgx.NamedArgs{"id": id}
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = @id`

	post, err := scanPost(p.db.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.record("get_by_id", start, nil)
			p.log.Debug("Post not found by id", slog.Int64("id", id))
			return nil, custom_errors.ErrPostNotFound
		}
		p.record("get_by_id", start, err)
		p.log.Error("Error getting post by id", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}
	p.record("get_by_id", start, nil)
	return post, nil
}

func (p *PostRepository) GetLatest(ctx context.Context) (*model.Post, error) {
	start := time.Now()
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC LIMIT 1`

	post, err := scanPost(p.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.record("get_latest", start, nil)
			p.log.Debug("No posts found for latest")
			return nil, custom_errors.ErrNoPosts
		}
		p.record("get_latest", start, err)
		p.log.Error("Error getting latest post", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}
	p.record("get_latest", start, nil)
	return post, nil
}

func (p *PostRepository) List(ctx context.Context) ([]*model.Post, error) {
	start := time.Now()
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY id`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		p.record("list", start, err)
		p.log.Error("Error listing posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			p.record("list", start, err)
			p.log.Error("Error scanning post during List", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseScan, err)
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		p.record("list", start, err)
		p.log.Error("Error iterating rows during List", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}

	p.record("list", start, nil)
	return posts, nil
}

func (p *PostRepository) Update(ctx context.Context, id int64, update *model.UpdatePostDTO) (*model.Post, error) {
	start := time.Now()
	args := pgx.NamedArgs{
		"id":         id,
		"title":      update.Title,
		"content":    update.Content,
		"published":  update.Published,
		"updated_at": time.Now().UTC(),
	}

	query := `
		UPDATE posts
		SET title = @title,
			content = @content,
			published = @published,
			updated_at = GREATEST(updated_at, @updated_at)
		WHERE id = @id
		RETURNING ` + postColumns

	updatedPost, err := scanPost(p.db.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.record("update", start, nil)
			p.log.Debug("Post not found by id during Update", slog.Int64("id", id))
			return nil, custom_errors.ErrPostNotFound
		}
		p.record("update", start, err)
		p.log.Error("Error updating post", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}

	p.record("update", start, nil)
	return updatedPost, nil
}

func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	args := pgx.NamedArgs{"id": id}
	query := `DELETE FROM posts WHERE id = @id`

	result, err := p.db.Exec(ctx, query, args)
	p.record("delete", start, err)
	if err != nil {
		p.log.Error("Error deleting post", slog.Int64("id", id), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", custom_errors.ErrDatabaseQuery, err)
	}
	if result.RowsAffected() == 0 {
		return custom_errors.ErrPostNotFound
	}
	return nil
}

func (p *PostRepository) record(queryType string, start time.Time, err error) {
	p.metrics.IncrementDatabaseQueries(queryType, err == nil)
	p.metrics.RecordDatabaseQueryDuration(queryType, time.Since(start))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		post     model.Post
		comments *string
	)
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Published,
		&post.Author,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Rating,
		&post.Likes,
		&comments,
	)
	if err != nil {
		return nil, err
	}

	post.Comments, err = decodeComments(comments)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Comments are stored as a JSON array in a TEXT column. NULL means no list.
func encodeComments(comments []string) (*string, error) {
	if comments == nil {
		return nil, nil
	}
	data, err := json.Marshal(comments)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func decodeComments(raw *string) ([]string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var comments []string
	if err := json.Unmarshal([]byte(*raw), &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}
