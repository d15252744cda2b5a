// Package api is the HTTP and websocket client of the feed server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/feedhub/pkg/api"
)

// Error is a non-2xx response of the server
type Error struct {
	Message    string
	Data       []string
	StatusCode int
}

func (e *Error) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("server error (%d): %s %s", e.StatusCode, e.Message, strings.Join(e.Data, "; "))
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// PostDraft is the content of a new or edited post.
// ImagePath is a local file uploaded with the post; empty keeps the current image on edit.
type PostDraft struct {
	Title     string
	Content   string
	ImagePath string
}

// Signup регистрирует нового пользователя
func (c *Client) Signup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error) {
	var resp api.SignupResponse
	if err := c.doJSON(ctx, http.MethodPut, "/signup", "", req, &resp); err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Status возвращает статус текущего пользователя
func (c *Client) Status(ctx context.Context, token string) (string, error) {
	var resp api.StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/status", token, nil, &resp); err != nil {
		return "", fmt.Errorf("status request failed: %w", err)
	}
	return resp.Status, nil
}

// UpdateStatus меняет статус текущего пользователя
func (c *Client) UpdateStatus(ctx context.Context, token, status string) error {
	if err := c.doJSON(ctx, http.MethodPatch, "/status", token, api.UpdateStatusRequest{Status: status}, nil); err != nil {
		return fmt.Errorf("update status request failed: %w", err)
	}
	return nil
}

// ListPosts возвращает страницу ленты
func (c *Client) ListPosts(ctx context.Context, token string, page int) (*api.PostsResponse, error) {
	var resp api.PostsResponse
	path := "/posts?page=" + strconv.Itoa(page)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list posts request failed: %w", err)
	}
	return &resp, nil
}

// GetPost возвращает пост по ID
func (c *Client) GetPost(ctx context.Context, token, postID string) (*api.Post, error) {
	var resp api.PostResponse
	if err := c.doJSON(ctx, http.MethodGet, "/post/"+url.PathEscape(postID), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get post request failed: %w", err)
	}
	return &resp.Post, nil
}

// CreatePost создает пост, загружая изображение из draft.ImagePath
func (c *Client) CreatePost(ctx context.Context, token string, draft PostDraft) (*api.Post, error) {
	var resp api.CreatePostResponse
	if err := c.doMultipart(ctx, http.MethodPost, "/post", token, draft, &resp); err != nil {
		return nil, fmt.Errorf("create post request failed: %w", err)
	}
	return &resp.Post, nil
}

// UpdatePost изменяет пост; без ImagePath изображение остается прежним
func (c *Client) UpdatePost(ctx context.Context, token, postID string, draft PostDraft) (*api.Post, error) {
	var resp api.PostResponse
	if err := c.doMultipart(ctx, http.MethodPut, "/post/"+url.PathEscape(postID), token, draft, &resp); err != nil {
		return nil, fmt.Errorf("update post request failed: %w", err)
	}
	return &resp.Post, nil
}

// DeletePost удаляет пост
func (c *Client) DeletePost(ctx context.Context, token, postID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/post/"+url.PathEscape(postID), token, nil, nil); err != nil {
		return fmt.Errorf("delete post request failed: %w", err)
	}
	return nil
}

// doJSON выполняет запрос с JSON телом
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, token, result)
}

// doMultipart отправляет draft как multipart/form-data с полями title, content и image
func (c *Client) doMultipart(ctx context.Context, method, path, token string, draft PostDraft, result any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("title", draft.Title); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if err := mw.WriteField("content", draft.Content); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	if draft.ImagePath != "" {
		if err := writeImage(mw, draft.ImagePath); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req, token, result)
}

// imageTypes maps accepted file extensions to the content type sent to the server
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

func writeImage(mw *multipart.Writer, path string) error {
	contentType, ok := imageTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("unsupported image %q: only png, jpg and jpeg are accepted", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(path)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	return nil
}

// do выполняет HTTP запрос и декодирует ответ
func (c *Client) do(req *http.Request, token string, result any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return &Error{StatusCode: resp.StatusCode, Message: errResp.Message, Data: errResp.Data}
		}
		return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
