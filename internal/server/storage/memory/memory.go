// Package memory implements storage.Storage in process memory.
// Data is lost on restart; it backs tests and the "memory" storage driver.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/storage"
)

type postRecord struct {
	post models.Post
	seq  uint64
}

// Storage хранит пользователей и посты в map под одним мьютексом
type Storage struct {
	users   map[string]*models.User // by ID
	emails  map[string]string       // email -> user ID
	posts   map[string]*postRecord  // by ID
	nextSeq uint64
	mu      sync.RWMutex
}

// New creates an empty storage
func New() *Storage {
	return &Storage{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		posts:  make(map[string]*postRecord),
	}
}

// Ping always succeeds
func (s *Storage) Ping(context.Context) error { return nil }

// Close is a no-op
func (s *Storage) Close() error { return nil }

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Posts = slices.Clone(u.Posts)
	if c.Posts == nil {
		c.Posts = []string{}
	}
	return &c
}

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}

	s.users[user.ID] = cloneUser(user)
	s.emails[user.Email] = user.ID
	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return cloneUser(s.users[id]), nil
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return cloneUser(user), nil
}

// UpdateUserStatus replaces the status text of the user
func (s *Storage) UpdateUserStatus(_ context.Context, userID, status string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	user.Status = status
	user.UpdatedAt = updatedAt
	return nil
}

// AddUserPost appends postID to the user's post list
func (s *Storage) AddUserPost(_ context.Context, userID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	if !slices.Contains(user.Posts, postID) {
		user.Posts = append(user.Posts, postID)
	}
	return nil
}

// RemoveUserPost removes postID from the user's post list
func (s *Storage) RemoveUserPost(_ context.Context, userID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil
	}
	user.Posts = slices.DeleteFunc(user.Posts, func(id string) bool { return id == postID })
	return nil
}

// CreatePost inserts a new post
func (s *Storage) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.Creator.ID]; !ok {
		return storage.ErrUserNotFound
	}

	s.nextSeq++
	s.posts[post.ID] = &postRecord{post: *post, seq: s.nextSeq}
	return nil
}

// withCreatorName возвращает копию поста с актуальным именем автора
func (s *Storage) withCreatorName(rec *postRecord) *models.Post {
	post := rec.post
	if user, ok := s.users[post.Creator.ID]; ok {
		post.Creator.Name = user.Name
	}
	return &post
}

// GetPost retrieves a post by ID
func (s *Storage) GetPost(_ context.Context, postID string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.posts[postID]
	if !ok {
		return nil, storage.ErrPostNotFound
	}
	return s.withCreatorName(rec), nil
}

// ListPosts returns one page of posts, newest first
func (s *Storage) ListPosts(_ context.Context, offset, limit int) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*postRecord, 0, len(s.posts))
	for _, rec := range s.posts {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})

	posts := []*models.Post{}
	if offset < 0 || limit <= 0 || offset >= len(records) {
		return posts, nil
	}
	end := offset + min(limit, len(records)-offset)
	for _, rec := range records[offset:end] {
		posts = append(posts, s.withCreatorName(rec))
	}
	return posts, nil
}

// CountPosts returns the total number of posts
func (s *Storage) CountPosts(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts), nil
}

// CountPostsWithImage returns how many posts reference imageURL
func (s *Storage) CountPostsWithImage(_ context.Context, imageURL string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.posts {
		if rec.post.ImageURL == imageURL {
			count++
		}
	}
	return count, nil
}

// UpdatePost replaces the mutable fields of a post
func (s *Storage) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[post.ID]
	if !ok {
		return storage.ErrPostNotFound
	}
	rec.post.Title = post.Title
	rec.post.Content = post.Content
	rec.post.ImageURL = post.ImageURL
	rec.post.UpdatedAt = post.UpdatedAt
	return nil
}

// DeletePost deletes post by ID
func (s *Storage) DeletePost(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return storage.ErrPostNotFound
	}
	delete(s.posts, postID)
	return nil
}

var _ storage.Storage = (*Storage)(nil)
