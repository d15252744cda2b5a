package images

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)), filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)
	return s
}

func TestStore_Save(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantExt     string
		wantErr     error
	}{
		{name: "png", contentType: "image/png", wantExt: ".png"},
		{name: "jpg", contentType: "image/jpg", wantExt: ".jpg"},
		{name: "jpeg upper case", contentType: "IMAGE/JPEG", wantExt: ".jpeg"},
		{name: "gif rejected", contentType: "image/gif", wantErr: ErrUnsupportedType},
		{name: "empty rejected", contentType: "", wantErr: ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestStore(t)

			url, err := s.Save(tt.contentType, strings.NewReader("fake image bytes"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				entries, readErr := os.ReadDir(s.Dir())
				require.NoError(t, readErr)
				assert.Empty(t, entries)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(url, URLPrefix))
			assert.Equal(t, tt.wantExt, filepath.Ext(url))

			data, err := os.ReadFile(filepath.Join(s.Dir(), strings.TrimPrefix(url, URLPrefix)))
			require.NoError(t, err)
			assert.Equal(t, "fake image bytes", string(data))
		})
	}
}

func TestStore_SaveUniqueNames(t *testing.T) {
	s := setupTestStore(t)

	a, err := s.Save("image/png", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save("image/png", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestStore_SaveTooLarge(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Save("image/png", bytes.NewReader(make([]byte, MaxImageSize+1)))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "partial file removed")
}

func TestStore_Remove(t *testing.T) {
	s := setupTestStore(t)

	url, err := s.Save("image/png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(url))
	_, err = os.Stat(filepath.Join(s.Dir(), strings.TrimPrefix(url, URLPrefix)))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление не ошибка
	assert.NoError(t, s.Remove(url))
}

func TestStore_RemoveRejectsTraversal(t *testing.T) {
	s := setupTestStore(t)

	outside := filepath.Join(filepath.Dir(s.Dir()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o600))

	for _, p := range []string{
		"images/../secret.txt",
		"../secret.txt",
		"secret.txt",
		"images/",
		"images/sub/file.png",
		"",
	} {
		assert.ErrorIs(t, s.Remove(p), ErrInvalidPath, p)
	}

	_, err := os.Stat(outside)
	assert.NoError(t, err, "file outside the store survives")
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/images/a.png", want: "images/a.png"},
		{in: "images/a.png", want: "images/a.png"},
		{in: "  /images/a.png \n", want: "images/a.png"},
		{in: "", want: ""},
		{in: "   ", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in), "input %q", tt.in)
	}

	s := setupTestStore(t)
	stored, err := s.Save("image/png", strings.NewReader("data"))
	require.NoError(t, err)
	target, err := s.resolve(NormalizePath("/" + stored))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), strings.TrimPrefix(stored, URLPrefix)), target)
}
