package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/iudanet/feedhub/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

// TestClient_Signup проверяет успешную регистрацию
func TestClient_Signup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/signup", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.SignupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ann@example.com", req.Email)
		assert.Equal(t, "Ann", req.Name)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.SignupResponse{Message: "User created!", UserID: "user-123"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Signup(context.Background(), api.SignupRequest{
		Email:    "ann@example.com",
		Password: "secret",
		Name:     "Ann",
	})

	require.NoError(t, err)
	assert.Equal(t, "user-123", resp.UserID)
	assert.Equal(t, "User created!", resp.Message)
}

// TestClient_Errors проверяет разбор ответов с ошибкой
func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantMessage  string
		wantData     []string
		statusCode   int
		unauthorized bool
	}{
		{
			name:        "validation",
			statusCode:  http.StatusUnprocessableEntity,
			body:        `{"message":"Validation failed.","data":["Please enter a valid email."]}`,
			wantMessage: "Validation failed.",
			wantData:    []string{"Please enter a valid email."},
		},
		{
			name:         "unauthorized",
			statusCode:   http.StatusUnauthorized,
			body:         `{"message":"Not authenticated."}`,
			wantMessage:  "Not authenticated.",
			unauthorized: true,
		},
		{
			name:        "plain text body",
			statusCode:  http.StatusBadGateway,
			body:        "bad gateway\n",
			wantMessage: "bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.Login(context.Background(), api.LoginRequest{Email: "a@b.c", Password: "x"})
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantData, apiErr.Data)
			assert.Equal(t, tt.unauthorized, IsUnauthorized(err))
		})
	}
}

// TestClient_Login проверяет получение токена
func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.LoginResponse{Token: "tok", UserID: "user-1"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Login(context.Background(), api.LoginRequest{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "user-1", resp.UserID)
}

// TestClient_Status проверяет чтение и смену статуса с bearer токеном
func TestClient_Status(t *testing.T) {
	status := "I am new!"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(api.StatusResponse{Status: status})
		case http.MethodPatch:
			var req api.UpdateStatusRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			status = req.Status
			_ = json.NewEncoder(w).Encode(api.MessageResponse{Message: "User updated."})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	got, err := client.Status(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "I am new!", got)

	require.NoError(t, client.UpdateStatus(ctx, "tok", "busy"))

	got, err = client.Status(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "busy", got)
}

// TestClient_ListPosts проверяет передачу номера страницы
func TestClient_ListPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		_ = json.NewEncoder(w).Encode(api.PostsResponse{
			Message:    "Posts fetched successfully",
			Posts:      []api.Post{{ID: "p3", Title: "Third"}},
			TotalItems: 3,
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).ListPosts(context.Background(), "tok", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalItems)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "p3", resp.Posts[0].ID)
}

// TestClient_GetDeletePost проверяет запросы к /post/{id}
func TestClient_GetDeletePost(t *testing.T) {
	deleted := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/post/p1", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(api.PostResponse{Post: api.Post{ID: "p1", Title: "Hello"}})
		case http.MethodDelete:
			deleted = true
			_ = json.NewEncoder(w).Encode(api.MessageResponse{Message: "Post deleted successfully"})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	post, err := client.GetPost(context.Background(), "tok", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)

	require.NoError(t, client.DeletePost(context.Background(), "tok", "p1"))
	assert.True(t, deleted)
}

// TestClient_CreatePost проверяет multipart запрос с изображением
func TestClient_CreatePost(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "cat.PNG")
	require.NoError(t, os.WriteFile(imagePath, []byte("png-bytes"), 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/post", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "A title", r.FormValue("title"))
		assert.Equal(t, "Some content", r.FormValue("content"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cat.PNG", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.CreatePostResponse{
			Message: "Post created successfully",
			Post:    api.Post{ID: "p1", Title: "A title", ImageURL: "images/cat.png"},
		})
	}))
	defer server.Close()

	post, err := NewClient(server.URL).CreatePost(context.Background(), "tok", PostDraft{
		Title:     "A title",
		Content:   "Some content",
		ImagePath: imagePath,
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "images/cat.png", post.ImageURL)
}

// TestClient_UpdatePost_NoImage проверяет, что без файла поле image не отправляется
func TestClient_UpdatePost_NoImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/post/p1", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("image")
		assert.ErrorIs(t, err, http.ErrMissingFile)

		_ = json.NewEncoder(w).Encode(api.PostResponse{Post: api.Post{ID: "p1", Title: r.FormValue("title")}})
	}))
	defer server.Close()

	post, err := NewClient(server.URL).UpdatePost(context.Background(), "tok", "p1", PostDraft{
		Title:   "Edited",
		Content: "Edited content",
	})
	require.NoError(t, err)
	assert.Equal(t, "Edited", post.Title)
}

// TestClient_CreatePost_UnsupportedImage проверяет отказ до отправки запроса
func TestClient_CreatePost_UnsupportedImage(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	imagePath := filepath.Join(t.TempDir(), "doc.gif")
	require.NoError(t, os.WriteFile(imagePath, []byte("gif"), 0o600))

	_, err := NewClient(server.URL).CreatePost(context.Background(), "tok", PostDraft{
		Title:     "A title",
		Content:   "Some content",
		ImagePath: imagePath,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image")
	assert.False(t, called)
}

// TestClient_Watch проверяет получение событий через websocket
func TestClient_Watch(t *testing.T) {
	frames := []string{
		`{"event":"other","data":{}}`,
		`{"event":"posts","data":{"action":"create","post":{"_id":"p1","title":"Hello","creator":{"_id":"u1","name":"Ann"}}}}`,
		`{"event":"posts","data":{"action":"delete","post":"p1"}}`,
	}

	server := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		for _, frame := range frames {
			if err := websocket.Message.Send(ws, frame); err != nil {
				return
			}
		}
		// держим соединение открытым до отмены контекста клиентом
		var discard string
		_ = websocket.Message.Receive(ws, &discard)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var events []PostEvent
	err := NewClient(server.URL).Watch(ctx, func(e PostEvent) {
		events = append(events, e)
		if len(events) == 2 {
			cancel()
		}
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, api.ActionCreate, events[0].Action)
	require.NotNil(t, events[0].Post)
	assert.Equal(t, "Hello", events[0].Post.Title)
	assert.Equal(t, "Ann", events[0].Post.Creator.Name)
	assert.Equal(t, "p1", events[0].PostID)

	assert.Equal(t, api.ActionDelete, events[1].Action)
	assert.Nil(t, events[1].Post)
	assert.Equal(t, "p1", events[1].PostID)
}

func TestDecodeEvent_Malformed(t *testing.T) {
	_, _, err := decodeEvent([]byte("not json"))
	require.Error(t, err)

	_, _, err = decodeEvent([]byte(`{"event":"posts","data":{"action":"delete","post":{}}}`))
	require.Error(t, err)
}

func TestClient_SocketURL(t *testing.T) {
	u, err := NewClient("https://feed.example.com").socketURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://feed.example.com/socket", u)

	_, err = NewClient("feed.example.com").socketURL()
	require.Error(t, err)
}
