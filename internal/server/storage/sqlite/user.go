package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/storage"
)

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Status,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if err != nil {
		// Проверяем на duplicate email
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "id", userID)
}

// getUser загружает пользователя и список его постов.
// column подставляется только из констант выше.
func (s *Storage) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, name, status, created_at, updated_at
		FROM users
		WHERE ` + column + ` = ?
	`

	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	posts, err := s.userPosts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Posts = posts

	return user, nil
}

func (s *Storage) userPosts(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT post_id FROM user_posts WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user posts: %w", err)
	}
	defer rows.Close()

	posts := []string{}
	for rows.Next() {
		var postID string
		if err := rows.Scan(&postID); err != nil {
			return nil, fmt.Errorf("failed to scan user post: %w", err)
		}
		posts = append(posts, postID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user posts: %w", err)
	}

	return posts, nil
}

// UpdateUserStatus replaces the status text of the user
func (s *Storage) UpdateUserStatus(ctx context.Context, userID, status string, updatedAt time.Time) error {
	query := `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, status, updatedAt.UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// AddUserPost appends postID to the user's post list
func (s *Storage) AddUserPost(ctx context.Context, userID, postID string) error {
	query := `INSERT INTO user_posts (user_id, post_id) VALUES (?, ?)`

	if _, err := s.db.ExecContext(ctx, query, userID, postID); err != nil {
		switch {
		case isUniqueViolation(err):
			// уже в списке
			return nil
		case isForeignKeyViolation(err):
			return storage.ErrUserNotFound
		}
		return fmt.Errorf("failed to add user post: %w", err)
	}

	return nil
}

// RemoveUserPost removes postID from the user's post list
func (s *Storage) RemoveUserPost(ctx context.Context, userID, postID string) error {
	query := `DELETE FROM user_posts WHERE user_id = ? AND post_id = ?`

	if _, err := s.db.ExecContext(ctx, query, userID, postID); err != nil {
		return fmt.Errorf("failed to remove user post: %w", err)
	}

	return nil
}
