package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/swediversity/swediversity-api/internal/models"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type postRepository interface {
	ListByKind(ctx context.Context, kind models.PostKind) ([]models.PostSummary, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.PostSummary, error)
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

// PostRequest is the payload for creating a post. Subject names the reviewed
// program or university for review kinds and stays empty otherwise.
type PostRequest struct {
	Title    string `json:"title" validate:"required"`
	Subject  string `json:"subject"`
	Category string `json:"category"`
	Content  string `json:"content" validate:"required"`
}

// PostService provides community post queries and mutations.
type PostService struct {
	repo      postRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPostService constructs a PostService instance.
func NewPostService(repo postRepository, validate *validator.Validate, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PostService{repo: repo, validator: validate, logger: logger}
}

// ListByKind returns the listing projection for one post kind.
func (s *PostService) ListByKind(ctx context.Context, kind models.PostKind) ([]models.PostSummary, error) {
	if !models.ValidPostKind(kind) && kind != models.PostAdministration {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown post kind %q", kind))
	}
	posts, err := s.repo.ListByKind(ctx, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list posts")
	}
	return posts, nil
}

// ListByAuthor returns one author's posts.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]models.PostSummary, error) {
	posts, err := s.repo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list posts by author")
	}
	return posts, nil
}

// Get returns one full post.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load post")
	}
	return post, nil
}

// Create stores a user post. Administration posts are rejected here; they go
// through CreateAdmin.
func (s *PostService) Create(ctx context.Context, authorID string, kind models.PostKind, req PostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}
	if !models.ValidPostKind(kind) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown post kind %q", kind))
	}
	if (kind == models.PostProgramReview || kind == models.PostUniversityReview) && req.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "review posts require a subject")
	}

	post := &models.Post{
		Title:    req.Title,
		AuthorID: authorID,
		Kind:     kind,
		Subject:  req.Subject,
		Category: req.Category,
		Content:  req.Content,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create post")
	}
	return post, nil
}

// CreateAdmin stores an administration notice.
func (s *PostService) CreateAdmin(ctx context.Context, authorID string, req PostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}

	post := &models.Post{
		Title:    req.Title,
		AuthorID: authorID,
		Kind:     models.PostAdministration,
		Category: req.Category,
		Content:  req.Content,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create post")
	}
	return post, nil
}

// Delete removes a post. The author or an admin may delete; the handler
// enforces that through the claims, the service enforces ownership.
func (s *PostService) Delete(ctx context.Context, id, requesterID string, requesterAdmin bool) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !requesterAdmin && post.AuthorID != requesterID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author or an admin may delete a post")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete post")
	}
	return nil
}
