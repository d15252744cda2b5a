// Package storagetest holds the behaviour every storage.Storage backend must share.
package storagetest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/storage"
)

// Factory returns a fresh, empty backend. Cleanup is registered on t.
type Factory func(t *testing.T) storage.Storage

// Run executes the conformance suite against backends built by newStorage.
func Run(t *testing.T, newStorage Factory) {
	t.Run("CreateUser", func(t *testing.T) { testCreateUser(t, newStorage(t)) })
	t.Run("GetUser", func(t *testing.T) { testGetUser(t, newStorage(t)) })
	t.Run("UpdateUserStatus", func(t *testing.T) { testUpdateUserStatus(t, newStorage(t)) })
	t.Run("UserPosts", func(t *testing.T) { testUserPosts(t, newStorage(t)) })
	t.Run("UserPostsConcurrent", func(t *testing.T) { testUserPostsConcurrent(t, newStorage(t)) })
	t.Run("CreateGetPost", func(t *testing.T) { testCreateGetPost(t, newStorage(t)) })
	t.Run("ListPosts", func(t *testing.T) { testListPosts(t, newStorage(t)) })
	t.Run("UpdatePost", func(t *testing.T) { testUpdatePost(t, newStorage(t)) })
	t.Run("DeletePost", func(t *testing.T) { testDeletePost(t, newStorage(t)) })
	t.Run("CountPostsWithImage", func(t *testing.T) { testCountPostsWithImage(t, newStorage(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newStorage(t).Ping(context.Background())) })
}

// baseTime is truncated to milliseconds, the precision every backend keeps.
var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// NewUser builds a user with a unique id and the given email.
func NewUser(email string) *models.User {
	return &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "$2a$12$hash",
		Name:         "Test User",
		Status:       models.DefaultStatus,
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
}

// NewPost builds a post owned by creator created at baseTime+offset.
func NewPost(creator *models.User, title string, offset time.Duration) *models.Post {
	return &models.Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   "Some content",
		ImageURL:  "images/" + uuid.New().String() + ".png",
		Creator:   models.Creator{ID: creator.ID, Name: creator.Name},
		CreatedAt: baseTime.Add(offset),
		UpdatedAt: baseTime.Add(offset),
	}
}

func mustCreateUser(t *testing.T, s storage.Storage, email string) *models.User {
	t.Helper()
	user := NewUser(email)
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func testCreateUser(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	user := NewUser("a@b.com")
	require.NoError(t, s.CreateUser(ctx, user))

	duplicate := NewUser("a@b.com")
	err := s.CreateUser(ctx, duplicate)
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)

	_, err = s.GetUserByID(ctx, duplicate.ID)
	assert.ErrorIs(t, err, storage.ErrUserNotFound, "duplicate must not be stored")
}

func testGetUser(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "get@b.com")

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byID.ID)
	assert.Equal(t, "get@b.com", byID.Email)
	assert.Equal(t, user.PasswordHash, byID.PasswordHash)
	assert.Equal(t, user.Name, byID.Name)
	assert.Equal(t, models.DefaultStatus, byID.Status)
	assert.True(t, user.CreatedAt.Equal(byID.CreatedAt))
	assert.Empty(t, byID.Posts)

	byEmail, err := s.GetUserByEmail(ctx, "get@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = s.GetUserByEmail(ctx, "missing@b.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func testUpdateUserStatus(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "status@b.com")

	later := baseTime.Add(time.Hour)
	require.NoError(t, s.UpdateUserStatus(ctx, user.ID, "Busy", later))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Busy", got.Status)
	assert.True(t, later.Equal(got.UpdatedAt))

	err = s.UpdateUserStatus(ctx, uuid.New().String(), "Busy", later)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func testUserPosts(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "posts@b.com")

	require.NoError(t, s.AddUserPost(ctx, user.ID, "p1"))
	require.NoError(t, s.AddUserPost(ctx, user.ID, "p2"))
	require.NoError(t, s.AddUserPost(ctx, user.ID, "p3"))
	// повторное добавление не дублирует
	require.NoError(t, s.AddUserPost(ctx, user.ID, "p2"))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, got.Posts)

	require.NoError(t, s.RemoveUserPost(ctx, user.ID, "p2"))
	require.NoError(t, s.RemoveUserPost(ctx, user.ID, "unknown"))

	got, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, got.Posts)

	err = s.AddUserPost(ctx, uuid.New().String(), "p4")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

// Concurrent appends to the same owner list must not lose updates.
func testUserPostsConcurrent(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "race@b.com")

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.AddUserPost(ctx, user.ID, fmt.Sprintf("post-%d", i))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, got.Posts, n)
}

func testCreateGetPost(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "creator@b.com")

	post := NewPost(user, "First post", 0)
	require.NoError(t, s.CreatePost(ctx, post))

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, post.Title, got.Title)
	assert.Equal(t, post.Content, got.Content)
	assert.Equal(t, post.ImageURL, got.ImageURL)
	assert.Equal(t, models.Creator{ID: user.ID, Name: user.Name}, got.Creator)
	assert.True(t, post.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, post.UpdatedAt.Equal(got.UpdatedAt))

	_, err = s.GetPost(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrPostNotFound)
}

func testListPosts(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "list@b.com")

	count, err := s.CountPosts(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	empty, err := s.ListPosts(ctx, 0, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	// p3 и p4 созданы в один момент: p4 вставлен позже и идет первым
	p1 := NewPost(user, "Post one", 1*time.Second)
	p2 := NewPost(user, "Post two", 2*time.Second)
	p3 := NewPost(user, "Post three", 3*time.Second)
	p4 := NewPost(user, "Post four", 3*time.Second)
	p5 := NewPost(user, "Post five", 500*time.Millisecond)
	for _, p := range []*models.Post{p1, p2, p3, p4, p5} {
		require.NoError(t, s.CreatePost(ctx, p))
	}

	count, err = s.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	ids := func(posts []*models.Post) []string {
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	page1, err := s.ListPosts(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{p4.ID, p3.ID}, ids(page1))

	page2, err := s.ListPosts(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{p2.ID, p1.ID}, ids(page2))

	page3, err := s.ListPosts(ctx, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{p5.ID}, ids(page3))

	beyond, err := s.ListPosts(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	// отрицательное смещение (переполнение у вызывающего) и нулевой лимит дают пустую страницу
	for _, tc := range []struct{ offset, limit int }{{-4, 2}, {math.MinInt, 2}, {0, 0}, {0, -1}} {
		got, err := s.ListPosts(ctx, tc.offset, tc.limit)
		require.NoError(t, err, "offset %d limit %d", tc.offset, tc.limit)
		assert.Empty(t, got, "offset %d limit %d", tc.offset, tc.limit)
	}

	again, err := s.ListPosts(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, ids(page1), ids(again), "reads without writes are stable")
	assert.Equal(t, user.Name, again[0].Creator.Name)
}

func testUpdatePost(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "update@b.com")

	post := NewPost(user, "Original", 0)
	require.NoError(t, s.CreatePost(ctx, post))

	post.Title = "Updated title"
	post.Content = "Updated content"
	post.ImageURL = "images/new.png"
	post.UpdatedAt = baseTime.Add(time.Hour)
	require.NoError(t, s.UpdatePost(ctx, post))

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", got.Title)
	assert.Equal(t, "Updated content", got.Content)
	assert.Equal(t, "images/new.png", got.ImageURL)
	assert.Equal(t, user.ID, got.Creator.ID)
	assert.True(t, baseTime.Equal(got.CreatedAt), "created_at is immutable")
	assert.True(t, post.UpdatedAt.Equal(got.UpdatedAt))

	missing := NewPost(user, "Missing", 0)
	assert.ErrorIs(t, s.UpdatePost(ctx, missing), storage.ErrPostNotFound)
}

func testCountPostsWithImage(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "images@b.com")

	shared := NewPost(user, "Shared one", 0)
	borrowed := NewPost(user, "Shared two", time.Second)
	borrowed.ImageURL = shared.ImageURL
	single := NewPost(user, "Single", 2*time.Second)
	for _, p := range []*models.Post{shared, borrowed, single} {
		require.NoError(t, s.CreatePost(ctx, p))
	}

	count := func(imageURL string) int {
		t.Helper()
		n, err := s.CountPostsWithImage(ctx, imageURL)
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, 2, count(shared.ImageURL))
	assert.Equal(t, 1, count(single.ImageURL))
	assert.Zero(t, count("images/unknown.png"))

	require.NoError(t, s.DeletePost(ctx, borrowed.ID))
	assert.Equal(t, 1, count(shared.ImageURL))
}

func testDeletePost(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustCreateUser(t, s, "delete@b.com")

	post := NewPost(user, "To delete", 0)
	require.NoError(t, s.CreatePost(ctx, post))

	require.NoError(t, s.DeletePost(ctx, post.ID))

	_, err := s.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, storage.ErrPostNotFound)

	assert.ErrorIs(t, s.DeletePost(ctx, post.ID), storage.ErrPostNotFound)
}
