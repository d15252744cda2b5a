package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/storage"
)

// userDoc is the BSON shape of a user
type userDoc struct {
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Name         string    `bson:"name"`
	Status       string    `bson:"status"`
	Posts        []string  `bson:"posts"`
}

func (d *userDoc) model() *models.User {
	posts := d.Posts
	if posts == nil {
		posts = []string{}
	}
	return &models.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Status:       d.Status,
		Posts:        posts,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	posts := user.Posts
	if posts == nil {
		posts = []string{}
	}

	_, err := s.users.InsertOne(ctx, userDoc{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		Status:       user.Status,
		Posts:        posts,
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": userID})
}

func (s *Storage) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.model(), nil
}

// UpdateUserStatus replaces the status text of the user
func (s *Storage) UpdateUserStatus(ctx context.Context, userID, status string, updatedAt time.Time) error {
	return s.updateUser(ctx, userID, bson.M{
		"$set": bson.M{"status": status, "updated_at": updatedAt.UTC()},
	})
}

// AddUserPost appends postID to the user's post list with $addToSet
func (s *Storage) AddUserPost(ctx context.Context, userID, postID string) error {
	return s.updateUser(ctx, userID, bson.M{"$addToSet": bson.M{"posts": postID}})
}

// RemoveUserPost removes postID from the user's post list with $pull
func (s *Storage) RemoveUserPost(ctx context.Context, userID, postID string) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$pull": bson.M{"posts": postID}})
	if err != nil {
		return fmt.Errorf("failed to remove user post: %w", err)
	}
	return nil
}

func (s *Storage) updateUser(ctx context.Context, userID string, update bson.M) error {
	result, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}
