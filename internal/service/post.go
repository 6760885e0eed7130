package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/quillpost/quillpost/internal/metrics"
	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/repository"
	"github.com/quillpost/quillpost/internal/validate"
)

// PostStore is the persistence surface PostService depends on.
// *repository.Repository satisfies it.
type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListPostsByOwner(ctx context.Context, ownerID string) ([]*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id string) error
}

// PostService handles post business logic: validation, ownership
// enforcement, and persistence.
type PostService struct {
	store   PostStore
	metrics metrics.Recorder
}

// NewPostService creates a new PostService.
func NewPostService(store PostStore, recorder metrics.Recorder) *PostService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PostService{
		store:   store,
		metrics: recorder,
	}
}

// PostInput defines the user-supplied fields for create and update.
type PostInput struct {
	Title string
	Body  string
}

// ListPosts returns all posts owned by ownerID, oldest first.
// Never returns another user's posts.
func (s *PostService) ListPosts(ctx context.Context, ownerID string) ([]*model.Post, error) {
	posts, err := s.store.ListPostsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPost fetches a post by id for any authenticated user.
// Reads are intentionally not ownership-scoped.
func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// EditPost fetches a post's editable fields on behalf of actorID.
// Returns ErrForbidden when the actor is not the owner.
func (s *PostService) EditPost(ctx context.Context, id, actorID string) (*model.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if !post.IsOwnedBy(actorID) {
		s.metrics.IncOwnershipDenied()
		return nil, ErrForbidden
	}

	return post, nil
}

// CreatePost validates input and persists a new post owned by actorID.
// Timestamps are server-assigned; the client never supplies them.
func (s *PostService) CreatePost(ctx context.Context, actorID string, input PostInput) (*model.Post, error) {
	if errs := validate.StorePost(validate.PostInput(input)); errs.HasErrors() {
		s.metrics.IncValidationFailed()
		return nil, NewValidationError(errs)
	}

	now := time.Now().UTC()
	post := &model.Post{
		ID:        ulid.Make().String(),
		UserID:    actorID,
		Title:     input.Title,
		Body:      input.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.IncPostCreated()
	return post, nil
}

// UpdatePost validates input, enforces ownership, and persists changes.
// The ownership check runs before any write; a non-owner can never
// partially update a post. UserID is immutable and never touched.
func (s *PostService) UpdatePost(ctx context.Context, id, actorID string, input PostInput) (*model.Post, error) {
	if errs := validate.UpdatePost(validate.PostInput(input)); errs.HasErrors() {
		s.metrics.IncValidationFailed()
		return nil, NewValidationError(errs)
	}

	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if !post.IsOwnedBy(actorID) {
		s.metrics.IncOwnershipDenied()
		return nil, ErrForbidden
	}

	post.Title = input.Title
	post.Body = input.Body
	post.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.metrics.IncPostUpdated()
	return post, nil
}

// DeletePost enforces ownership and permanently removes the post.
// A second delete of the same id reports ErrPostNotFound; there is no
// soft delete.
func (s *PostService) DeletePost(ctx context.Context, id, actorID string) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}

	if !post.IsOwnedBy(actorID) {
		s.metrics.IncOwnershipDenied()
		return ErrForbidden
	}

	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.metrics.IncPostDeleted()
	return nil
}
