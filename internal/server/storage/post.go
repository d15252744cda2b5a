package storage

import (
	"context"

	"github.com/iudanet/feedhub/internal/models"
)

// PostStorage defines interface for post persistence
type PostStorage interface {
	// CreatePost inserts a new post. Creator.Name is resolved by the storage on read.
	CreatePost(ctx context.Context, post *models.Post) error

	// GetPost retrieves a post by ID
	// Returns ErrPostNotFound if post doesn't exist
	GetPost(ctx context.Context, postID string) (*models.Post, error)

	// ListPosts returns up to limit posts starting at offset,
	// newest first; posts created at the same instant keep insertion order reversed.
	ListPosts(ctx context.Context, offset, limit int) ([]*models.Post, error)

	// CountPosts returns the total number of posts
	CountPosts(ctx context.Context) (int, error)

	// CountPostsWithImage returns how many posts reference imageURL
	CountPostsWithImage(ctx context.Context, imageURL string) (int, error)

	// UpdatePost replaces title, content, image and updated_at
	// Returns ErrPostNotFound if post doesn't exist
	UpdatePost(ctx context.Context, post *models.Post) error

	// DeletePost deletes post by ID
	// Returns ErrPostNotFound if post doesn't exist
	DeletePost(ctx context.Context, postID string) error
}
