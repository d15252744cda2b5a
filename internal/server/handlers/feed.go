package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/feed"
	"github.com/iudanet/feedhub/internal/server/images"
	"github.com/iudanet/feedhub/pkg/api"
)

// PostService defines the post operations used by FeedHandler
type PostService interface {
	ListPosts(ctx context.Context, page int) (*feed.PostPage, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	CreatePost(ctx context.Context, in feed.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, postID string, in feed.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, postID string) error
	DiscardImage(ctx context.Context, imageURL string) error
}

// FeedHandler обрабатывает REST запросы к постам
type FeedHandler struct {
	logger *slog.Logger
	posts  PostService
	images ImageStore
}

// NewFeedHandler создает новый handler ленты
func NewFeedHandler(logger *slog.Logger, posts PostService, images ImageStore) *FeedHandler {
	return &FeedHandler{
		logger: logger,
		posts:  posts,
		images: images,
	}
}

// GetPosts обрабатывает GET /posts?page=N
// Нечисловой или отсутствующий page означает первую страницу
func (h *FeedHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	result, err := h.posts.ListPosts(r.Context(), page)
	if err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	SendJSON(w, h.logger, api.PostsResponse{
		Message:    "Posts fetched successfully",
		Posts:      feed.ToAPIPosts(result.Posts),
		TotalItems: result.TotalItems,
	}, http.StatusOK)
}

// CreatePost обрабатывает POST /post (multipart с полем image или JSON)
func (h *FeedHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	in, uploaded, err := readPostInput(w, r, h.images)
	if err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	post, err := h.posts.CreatePost(r.Context(), in)
	if err != nil {
		discardUpload(h.logger, h.images, uploaded)
		SendError(w, r, h.logger, err)
		return
	}

	shaped := feed.ToAPIPost(post)
	SendJSON(w, h.logger, api.CreatePostResponse{
		Message: "Post created successfully",
		Post:    shaped,
		Creator: shaped.Creator,
	}, http.StatusCreated)
}

// GetPost обрабатывает GET /post/{postId}
func (h *FeedHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPost(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	SendJSON(w, h.logger, api.PostResponse{
		Message: "Post fetched successfully.",
		Post:    feed.ToAPIPost(post),
	}, http.StatusOK)
}

// UpdatePost обрабатывает PUT /post/{postId}
func (h *FeedHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	in, uploaded, err := readPostInput(w, r, h.images)
	if err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), mux.Vars(r)["postId"], in)
	if err != nil {
		discardUpload(h.logger, h.images, uploaded)
		SendError(w, r, h.logger, err)
		return
	}

	SendJSON(w, h.logger, api.PostResponse{
		Message: "Post updated successfully",
		Post:    feed.ToAPIPost(post),
	}, http.StatusOK)
}

// DeletePost обрабатывает DELETE /post/{postId}
func (h *FeedHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.DeletePost(r.Context(), mux.Vars(r)["postId"]); err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	SendJSON(w, h.logger, api.MessageResponse{Message: "Post deleted successfully"}, http.StatusOK)
}

// PostImage обрабатывает PUT /post-image: сохраняет файл из поля image и
// удаляет oldPath, если он передан и не используется постами.
// Используется GraphQL клиентами.
func (h *FeedHandler) PostImage(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		SendJSON(w, h.logger, api.ImageUploadResponse{Message: "No image file provided."}, http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		SendError(w, r, h.logger, errInvalidBody)
		return
	}

	stored, err := saveUpload(r, h.images, "image")
	if err != nil {
		SendError(w, r, h.logger, err)
		return
	}
	if stored == "" {
		SendJSON(w, h.logger, api.ImageUploadResponse{Message: "No image file provided."}, http.StatusOK)
		return
	}

	// oldPath освобождается только если ни один пост на него не ссылается
	if oldPath := images.NormalizePath(r.FormValue("oldPath")); oldPath != "" {
		if err := h.posts.DiscardImage(r.Context(), oldPath); err != nil {
			h.logger.WarnContext(r.Context(), "failed to discard old image",
				slog.String("path", oldPath), slog.Any("error", err))
		}
	}

	SendJSON(w, h.logger, api.ImageUploadResponse{
		Message:  "Image file stored successfully.",
		FilePath: stored,
	}, http.StatusCreated)
}
