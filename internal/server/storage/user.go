package storage

import (
	"context"
	"time"

	"github.com/iudanet/feedhub/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if the email is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by normalized email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID together with the ids of the owned posts
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateUserStatus replaces the status text
	// Returns ErrUserNotFound if user doesn't exist
	UpdateUserStatus(ctx context.Context, userID, status string, updatedAt time.Time) error

	// AddUserPost appends postID to the owned posts of the user in one atomic write
	// Returns ErrUserNotFound if user doesn't exist
	AddUserPost(ctx context.Context, userID, postID string) error

	// RemoveUserPost removes postID from the owned posts of the user in one atomic write
	// Removing an id that is not in the list is not an error
	RemoveUserPost(ctx context.Context, userID, postID string) error
}
