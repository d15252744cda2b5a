package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/feedhub/internal/crypto"
	"github.com/iudanet/feedhub/internal/server/auth"
	"github.com/iudanet/feedhub/internal/server/feed"
	"github.com/iudanet/feedhub/internal/server/images"
	"github.com/iudanet/feedhub/internal/server/jwt"
	"github.com/iudanet/feedhub/internal/server/storage/memory"
	"github.com/iudanet/feedhub/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	svc      *feed.Service
	images   *images.Store
	accounts *AuthHandler
	posts    *FeedHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := setupTestLogger()
	tokens, err := jwt.NewService("test-secret-key", time.Hour)
	require.NoError(t, err)

	store, err := images.NewStore(logger, t.TempDir())
	require.NoError(t, err)

	svc := feed.NewService(logger, memory.New(), tokens, crypto.NewHasher(bcrypt.MinCost), nil, store)

	return &testEnv{
		svc:      svc,
		images:   store,
		accounts: NewAuthHandler(logger, svc),
		posts:    NewFeedHandler(logger, svc, store),
	}
}

// signup creates an account through the service and returns its id
func (e *testEnv) signup(t *testing.T, email string) string {
	t.Helper()
	user, err := e.svc.Signup(context.Background(), feed.SignupInput{Email: email, Password: "abcde", Name: "Tester"})
	require.NoError(t, err)
	return user.ID
}

// imageExists reports whether the stored image behind imageURL is on disk
func (e *testEnv) imageExists(imageURL string) bool {
	_, err := os.Stat(filepath.Join(e.images.Dir(), strings.TrimPrefix(imageURL, images.URLPrefix)))
	return err == nil
}

// asUser attaches an authenticated identity, as StrictAuth does
func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{Authenticated: true, UserID: userID}))
}

func withPostID(r *http.Request, postID string) *http.Request {
	return mux.SetURLVars(r, map[string]string{"postId": postID})
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form with the given fields and an optional image part
func multipartRequest(t *testing.T, method, target string, fields map[string]string, contentType string, image []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="photo.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// filepathGlob lists the files stored in dir
func filepathGlob(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*"))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}
