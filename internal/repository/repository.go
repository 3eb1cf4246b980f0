// Package repository is the document store client: the users, blogs and
// comments collections behind backend-neutral interfaces.
//
// References between collections are weak. A post's like set may name users
// without a profile and its comment set may name comments that were never
// written; readers skip what they cannot resolve.
package repository

import (
	"context"

	"quilog/internal/models"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	// ListByUser runs the userId equality filter in the backend.
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	// Update writes the owner-editable fields only.
	Update(ctx context.Context, post *models.Post) error
	// AddLike is a set-union on the like set; adding twice is a no-op.
	AddLike(ctx context.Context, postID, userID string) error
	// RemoveLike removes every occurrence of userID from the like set.
	RemoveLike(ctx context.Context, postID, userID string) error
	// AppendComment is a set-union on the comment set.
	AppendComment(ctx context.Context, postID, commentID string) error
}

// CommentRepository defines the interface for comment operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	List(ctx context.Context) ([]*models.Comment, error)
}

// CommentLinker is implemented by comment repositories that can write a
// comment and link it to its post atomically.
type CommentLinker interface {
	CreateAndLink(ctx context.Context, postID string, comment *models.Comment) error
}

// UserRepository defines the interface for profile operations.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	// Upsert creates the profile or replaces every field of an existing one.
	Upsert(ctx context.Context, profile *models.Profile) error
	// Update merges the non-empty fields of patch into an existing profile.
	Update(ctx context.Context, id string, patch models.Profile) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
}

// Store bundles the three collections of one backend.
type Store struct {
	Backend  string
	Posts    PostRepository
	Comments CommentRepository
	Users    UserRepository

	PingFunc  func(ctx context.Context) error
	CloseFunc func() error
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.PingFunc == nil {
		return nil
	}
	return s.PingFunc(ctx)
}

// Close releases the backend connection.
func (s *Store) Close() error {
	if s.CloseFunc == nil {
		return nil
	}
	return s.CloseFunc()
}
