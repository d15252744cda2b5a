package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/feedhub/internal/server/storage"
	"github.com/iudanet/feedhub/internal/server/storage/storagetest"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	// Используем in-memory database для тестов
	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStorage_Conformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return setupTestStorage(t)
	})
}

func TestNew_FileDatabaseReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "feed.db")

	s, err := New(ctx, path)
	require.NoError(t, err)

	user := storagetest.NewUser("reopen@b.com")
	require.NoError(t, s.CreateUser(ctx, user))
	require.NoError(t, s.Close())

	// миграции применяются повторно без ошибок
	s, err = New(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetUserByEmail(ctx, "reopen@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestCreatePost_UnknownCreator(t *testing.T) {
	s := setupTestStorage(t)
	ghost := storagetest.NewUser("ghost@b.com")

	err := s.CreatePost(context.Background(), storagetest.NewPost(ghost, "Orphan post", 0))
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
