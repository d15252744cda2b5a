package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/feedhub/internal/crypto"
	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/auth"
	"github.com/iudanet/feedhub/internal/server/feed"
	"github.com/iudanet/feedhub/internal/server/jwt"
	"github.com/iudanet/feedhub/internal/server/middleware"
	"github.com/iudanet/feedhub/internal/server/storage/memory"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer wires the handler behind the permissive gate, as the router does
func newTestServer(t *testing.T, svc Service) http.Handler {
	t.Helper()

	logger := setupTestLogger()
	tokens, err := jwt.NewService("test-secret-key", time.Hour)
	require.NoError(t, err)

	if svc == nil {
		svc = feed.NewService(logger, memory.New(), tokens, crypto.NewHasher(bcrypt.MinCost), nil, nil)
	}

	h, err := NewHandler(logger, svc)
	require.NoError(t, err)

	return middleware.PermissiveAuth(logger, auth.NewAuthenticator(tokens))(h)
}

type gqlResult struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []Error                    `json:"errors"`
}

func exec(t *testing.T, srv http.Handler, token, query string, vars map[string]any) gqlResult {
	t.Helper()

	body, err := json.Marshal(Request{Query: query, Variables: vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res gqlResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return res
}

func field(t *testing.T, res gqlResult, name string, dst any) {
	t.Helper()
	require.Empty(t, res.Errors)
	require.NoError(t, json.Unmarshal(res.Data[name], dst))
}

const (
	createUserMutation = `mutation($email: String!, $name: String!) {
		createUser(userInput: {email: $email, name: $name, password: "abcde"}) { _id email name status posts }
	}`
	loginQuery = `query($email: String!) {
		login(email: $email, password: "abcde") { token userId }
	}`
	createPostMutation = `mutation($title: String!) {
		createPost(postInput: {title: $title, content: "Some content", imageUrl: "/images/a.png"}) {
			_id title content imageUrl creator { _id name } createdAt updatedAt
		}
	}`
)

type userData struct {
	ID     string   `json:"_id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Posts  []string `json:"posts"`
}

type postData struct {
	Creator struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"creator"`
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// signupAndLogin creates an account and returns its id and token
func signupAndLogin(t *testing.T, srv http.Handler, email string) (string, string) {
	t.Helper()

	var user userData
	field(t, exec(t, srv, "", createUserMutation, map[string]any{"email": email, "name": "Max"}), "createUser", &user)

	var login struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	field(t, exec(t, srv, "", loginQuery, map[string]any{"email": email}), "login", &login)
	require.Equal(t, user.ID, login.UserID)

	return user.ID, login.Token
}

func TestCreateUser(t *testing.T) {
	srv := newTestServer(t, nil)

	var user userData
	field(t, exec(t, srv, "", createUserMutation, map[string]any{"email": "Test@Test.com", "name": "Max"}), "createUser", &user)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "test@test.com", user.Email)
	assert.Equal(t, models.DefaultStatus, user.Status)
	assert.Empty(t, user.Posts)

	t.Run("duplicate", func(t *testing.T) {
		res := exec(t, srv, "", createUserMutation, map[string]any{"email": "test@test.com", "name": "Max"})
		require.Len(t, res.Errors, 1)
		assert.Equal(t, feed.MsgEmailTaken, res.Errors[0].Message)
		assert.Equal(t, http.StatusConflict, res.Errors[0].Status)
		assert.Equal(t, []any{"createUser"}, res.Errors[0].Path)
	})

	t.Run("invalid input accumulates", func(t *testing.T) {
		res := exec(t, srv, "", `mutation {
			createUser(userInput: {email: "nope", name: "", password: "1"}) { _id }
		}`, nil)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, feed.MsgValidationFailed, res.Errors[0].Message)
		assert.Equal(t, http.StatusUnprocessableEntity, res.Errors[0].Status)
		assert.Len(t, res.Errors[0].Data, 3)
	})
}

func TestLogin_Errors(t *testing.T) {
	srv := newTestServer(t, nil)
	signupAndLogin(t, srv, "test@test.com")

	res := exec(t, srv, "", `{ login(email: "test@test.com", password: "wrong") { token } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, feed.MsgWrongPassword, res.Errors[0].Message)
	assert.Equal(t, http.StatusUnauthorized, res.Errors[0].Status)
}

func TestProtectedOperations_RequireAuth(t *testing.T) {
	srv := newTestServer(t, nil)

	queries := map[string]string{
		"loadPosts":    `{ loadPosts { totalItems } }`,
		"loadPost":     `{ loadPost(id: "1") { _id } }`,
		"getStatus":    `{ getStatus { status } }`,
		"createPost":   `mutation { createPost(postInput: {title: "Valid title", content: "Valid content", imageUrl: "images/a.png"}) { _id } }`,
		"updatePost":   `mutation { updatePost(id: "1", postInput: {title: "x", content: "y"}) { _id } }`,
		"deletePost":   `mutation { deletePost(id: "1") }`,
		"updateStatus": `mutation { updateStatus(status: "Busy") { status } }`,
	}

	for name, query := range queries {
		for _, token := range []string{"", "garbage"} {
			t.Run(name+"/"+token, func(t *testing.T) {
				res := exec(t, srv, token, query, nil)
				require.Len(t, res.Errors, 1)
				assert.Equal(t, auth.MsgNotAuthenticated, res.Errors[0].Message)
				assert.Equal(t, http.StatusUnauthorized, res.Errors[0].Status)
			})
		}
	}
}

func TestPostLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	ownerID, ownerToken := signupAndLogin(t, srv, "owner@test.com")
	_, otherToken := signupAndLogin(t, srv, "other@test.com")

	var created postData
	field(t, exec(t, srv, ownerToken, createPostMutation, map[string]any{"title": "First post"}), "createPost", &created)
	assert.Equal(t, "images/a.png", created.ImageURL)
	assert.Equal(t, ownerID, created.Creator.ID)
	assert.Equal(t, "Max", created.Creator.Name)
	_, err := time.Parse("2006-01-02T15:04:05.000Z", created.CreatedAt)
	assert.NoError(t, err)

	field(t, exec(t, srv, ownerToken, createPostMutation, map[string]any{"title": "Second post"}), "createPost", &postData{})
	field(t, exec(t, srv, ownerToken, createPostMutation, map[string]any{"title": "Third post"}), "createPost", &postData{})

	t.Run("load posts pages", func(t *testing.T) {
		var page struct {
			Posts      []postData `json:"posts"`
			TotalItems int        `json:"totalItems"`
		}
		field(t, exec(t, srv, otherToken, `{ loadPosts { posts { title } totalItems } }`, nil), "loadPosts", &page)
		assert.Equal(t, 3, page.TotalItems)
		require.Len(t, page.Posts, 2)
		assert.Equal(t, "Third post", page.Posts[0].Title)

		field(t, exec(t, srv, otherToken, `{ loadPosts(page: 2) { posts { title } totalItems } }`, nil), "loadPosts", &page)
		require.Len(t, page.Posts, 1)
		assert.Equal(t, "First post", page.Posts[0].Title)
	})

	t.Run("load post", func(t *testing.T) {
		var got postData
		field(t, exec(t, srv, otherToken, `query($id: ID!) { loadPost(id: $id) { _id title creator { name } } }`,
			map[string]any{"id": created.ID}), "loadPost", &got)
		assert.Equal(t, created.ID, got.ID)

		res := exec(t, srv, otherToken, `{ loadPost(id: "missing") { _id } }`, nil)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, http.StatusNotFound, res.Errors[0].Status)
	})

	t.Run("non owner is forbidden regardless of payload", func(t *testing.T) {
		res := exec(t, srv, otherToken, `mutation($id: ID!) {
			updatePost(id: $id, postInput: {title: "x", content: "y"}) { _id }
		}`, map[string]any{"id": created.ID})
		require.Len(t, res.Errors, 1)
		assert.Equal(t, auth.MsgNotAuthorized, res.Errors[0].Message)
		assert.Equal(t, http.StatusForbidden, res.Errors[0].Status)

		res = exec(t, srv, otherToken, `mutation($id: ID!) { deletePost(id: $id) }`, map[string]any{"id": created.ID})
		require.Len(t, res.Errors, 1)
		assert.Equal(t, http.StatusForbidden, res.Errors[0].Status)
	})

	t.Run("owner updates", func(t *testing.T) {
		var updated postData
		field(t, exec(t, srv, ownerToken, `mutation($id: ID!) {
			updatePost(id: $id, postInput: {title: "Edited title", content: "Edited content"}) { title content imageUrl }
		}`, map[string]any{"id": created.ID}), "updatePost", &updated)
		assert.Equal(t, "Edited title", updated.Title)
		assert.Equal(t, "images/a.png", updated.ImageURL)

		res := exec(t, srv, ownerToken, `mutation($id: ID!) {
			updatePost(id: $id, postInput: {title: "x", content: "y"}) { _id }
		}`, map[string]any{"id": created.ID})
		require.Len(t, res.Errors, 1)
		assert.Equal(t, feed.MsgInvalidPost, res.Errors[0].Message)
		assert.Len(t, res.Errors[0].Data, 2)
	})

	t.Run("owner deletes", func(t *testing.T) {
		var deleted bool
		field(t, exec(t, srv, ownerToken, `mutation($id: ID!) { deletePost(id: $id) }`,
			map[string]any{"id": created.ID}), "deletePost", &deleted)
		assert.True(t, deleted)

		var user userData
		field(t, exec(t, srv, ownerToken, `{ getStatus { posts } }`, nil), "getStatus", &user)
		assert.Len(t, user.Posts, 2)
		assert.NotContains(t, user.Posts, created.ID)
	})
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t, nil)
	_, token := signupAndLogin(t, srv, "test@test.com")

	var user userData
	field(t, exec(t, srv, token, `mutation { updateStatus(status: "Busy") { status } }`, nil), "updateStatus", &user)
	assert.Equal(t, "Busy", user.Status)

	field(t, exec(t, srv, token, `{ getStatus { status } }`, nil), "getStatus", &user)
	assert.Equal(t, "Busy", user.Status)
}

// brokenService fails every post read with an untagged error
type brokenService struct {
	Service
}

func (brokenService) GetPost(context.Context, string) (*models.Post, error) {
	return nil, errors.New("connection reset by peer")
}

func (brokenService) ListPosts(context.Context, int) (*feed.PostPage, error) {
	panic("boom")
}

func TestInternalErrorsAreMasked(t *testing.T) {
	srv := newTestServer(t, brokenService{})

	res := exec(t, srv, "", `{ loadPost(id: "1") { _id } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "internal server error", res.Errors[0].Message)
	assert.Equal(t, http.StatusInternalServerError, res.Errors[0].Status)

	res = exec(t, srv, "", `{ loadPosts { totalItems } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "internal server error", res.Errors[0].Message)
	assert.NotContains(t, res.Errors[0].Message, "boom")
}

func TestRequestErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("syntax error keeps library message", func(t *testing.T) {
		res := exec(t, srv, "", `{ loadPosts {`, nil)
		require.NotEmpty(t, res.Errors)
		assert.Zero(t, res.Errors[0].Status)
		assert.NotEmpty(t, res.Errors[0].Locations)
	})

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "empty query", method: http.MethodPost, target: "/graphql", body: `{"query":"  "}`, wantStatus: http.StatusBadRequest},
		{name: "invalid json", method: http.MethodPost, target: "/graphql", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "invalid variables", method: http.MethodGet, target: "/graphql?query=" + url.QueryEscape("{ getStatus { status } }") + "&variables=%7B", wantStatus: http.StatusBadRequest},
		{name: "unsupported method", method: http.MethodDelete, target: "/graphql", wantStatus: http.StatusMethodNotAllowed},
		{name: "get query", method: http.MethodGet, target: "/graphql?query=" + url.QueryEscape("{ getStatus { status } }"), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var res gqlResult
			require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
			assert.NotEmpty(t, res.Errors)
		})
	}
}
