package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swediversity/swediversity-api/internal/models"
)

const postColumns = `id, title, author_id, kind, subject, category, content, likes, created_at`

// PostRepository provides database access for community posts.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a new instance of PostRepository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// ListByKind returns the listing projection for one post kind, newest first.
func (r *PostRepository) ListByKind(ctx context.Context, kind models.PostKind) ([]models.PostSummary, error) {
	const query = `SELECT id, title FROM posts WHERE kind = $1 ORDER BY created_at DESC`
	var posts []models.PostSummary
	if err := r.db.SelectContext(ctx, &posts, query, kind); err != nil {
		return nil, fmt.Errorf("list posts by kind: %w", err)
	}
	return posts, nil
}

// ListByAuthor returns the listing projection of one author's posts.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.PostSummary, error) {
	const query = `SELECT id, title FROM posts WHERE author_id = $1 ORDER BY created_at DESC`
	var posts []models.PostSummary
	if err := r.db.SelectContext(ctx, &posts, query, authorID); err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return posts, nil
}

// FindByID returns a full post by identifier.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts WHERE id = $1 LIMIT 1`
	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return &post, nil
}

// Create inserts a new post.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO posts (id, title, author_id, kind, subject, category, content, likes, created_at) VALUES (:id, :title, :author_id, :kind, :subject, :category, :content, :likes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Delete removes a post.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM posts WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
