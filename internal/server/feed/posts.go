package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/apperr"
	"github.com/iudanet/feedhub/internal/server/auth"
	"github.com/iudanet/feedhub/internal/server/storage"
	"github.com/iudanet/feedhub/internal/validation"
	"github.com/iudanet/feedhub/pkg/api"
)

// Client-facing messages of the post operations.
const (
	MsgInvalidPost   = "Validation failed, entered data is incorrect."
	MsgNoImage       = "No image provided."
	MsgPostNotFound  = "Could not find post."
	MsgInvalidAuthor = "Invalid user."
)

// PostInput is the payload of post creation and update.
// On update an empty ImageURL keeps the current image.
type PostInput struct {
	Title    string
	Content  string
	ImageURL string
}

// PostPage is one page of the feed.
type PostPage struct {
	Posts      []*models.Post
	TotalItems int
}

func validatePost(in PostInput, requireImage bool) error {
	checks := []error{
		validation.ValidateTitle(in.Title),
		validation.ValidateContent(in.Content),
	}
	if requireImage && strings.TrimSpace(in.ImageURL) == "" {
		checks = append(checks, errors.New(MsgNoImage))
	}
	if msgs := validation.Collect(checks...); msgs != nil {
		return apperr.Validation(MsgInvalidPost, msgs)
	}
	return nil
}

func postNotFound(err error) error {
	if errors.Is(err, storage.ErrPostNotFound) {
		return apperr.New(apperr.CodeNotFound, MsgPostNotFound)
	}
	return apperr.Internal(fmt.Errorf("failed to get post: %w", err))
}

// ListPosts returns page (1-based, values below 1 mean 1) of the feed,
// newest first, with the total number of posts.
func (s *Service) ListPosts(ctx context.Context, page int) (_ *PostPage, err error) {
	ctx, end := s.startSpan(ctx, "ListPosts")
	defer end(&err)

	if _, err := auth.RequireUser(ctx); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}

	total, err := s.store.CountPosts(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to count posts: %w", err))
	}

	// страница за концом ленты: пустой список без запроса к хранилищу
	if page > math.MaxInt/PageSize || (page-1)*PageSize >= total {
		return &PostPage{Posts: []*models.Post{}, TotalItems: total}, nil
	}

	posts, err := s.store.ListPosts(ctx, (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list posts: %w", err))
	}

	return &PostPage{Posts: posts, TotalItems: total}, nil
}

// GetPost returns one post.
func (s *Service) GetPost(ctx context.Context, postID string) (_ *models.Post, err error) {
	ctx, end := s.startSpan(ctx, "GetPost")
	defer end(&err)

	if _, err := auth.RequireUser(ctx); err != nil {
		return nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(postAttr(postID))

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, postNotFound(err)
	}
	return post, nil
}

// CreatePost stores a post owned by the authenticated user, appends it to
// the owner's post list and publishes a create event.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (_ *models.Post, err error) {
	ctx, end := s.startSpan(ctx, "CreatePost")
	defer end(&err)

	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := validatePost(in, true); err != nil {
		return nil, err
	}

	creator, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.New(apperr.CodeUnauthenticated, MsgInvalidAuthor)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to get creator: %w", err))
	}

	now := s.timestamp()
	post := &models.Post{
		ID:        s.newID(),
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		ImageURL:  strings.TrimSpace(in.ImageURL),
		Creator:   models.Creator{ID: creator.ID, Name: creator.Name},
		CreatedAt: now,
		UpdatedAt: now,
	}
	trace.SpanFromContext(ctx).SetAttributes(postAttr(post.ID))

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to create post: %w", err))
	}

	// Пост уже сохранен; сбой здесь не компенсируется
	if err := s.store.AddUserPost(ctx, creator.ID, post.ID); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to link post to user: %w", err))
	}

	s.logger.InfoContext(ctx, "post created",
		slog.String("post_id", post.ID),
		slog.String("user_id", creator.ID))

	s.publish(api.TopicPosts, api.PostEvent{Action: api.ActionCreate, Post: ToAPIPost(post)})

	return post, nil
}

// loadOwnedPost loads postID and checks that userID owns it
func (s *Service) loadOwnedPost(ctx context.Context, userID, postID string) (*models.Post, error) {
	trace.SpanFromContext(ctx).SetAttributes(postAttr(postID))

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, postNotFound(err)
	}

	if err := auth.AuthorizeOwner(userID, post.Creator.ID); err != nil {
		s.logger.WarnContext(ctx, "post access denied",
			slog.String("post_id", postID),
			slog.String("user_id", userID))
		return nil, err
	}

	return post, nil
}

// UpdatePost replaces title, content and optionally the image of a post.
// Ownership is checked before the payload, so a non-owner always gets Forbidden.
func (s *Service) UpdatePost(ctx context.Context, postID string, in PostInput) (_ *models.Post, err error) {
	ctx, end := s.startSpan(ctx, "UpdatePost")
	defer end(&err)

	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.loadOwnedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if err := validatePost(in, false); err != nil {
		return nil, err
	}

	oldImage := post.ImageURL
	post.Title = strings.TrimSpace(in.Title)
	post.Content = strings.TrimSpace(in.Content)
	if image := strings.TrimSpace(in.ImageURL); image != "" {
		post.ImageURL = image
	}
	post.UpdatedAt = s.timestamp()

	if err := s.store.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, MsgPostNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to update post: %w", err))
	}

	if post.ImageURL != oldImage {
		s.removeImage(ctx, oldImage)
	}

	s.logger.InfoContext(ctx, "post updated", slog.String("post_id", post.ID))
	s.publish(api.TopicPosts, api.PostEvent{Action: api.ActionUpdate, Post: ToAPIPost(post)})

	return post, nil
}

// DeletePost removes a post, its image and its entry in the owner's list.
func (s *Service) DeletePost(ctx context.Context, postID string) (err error) {
	ctx, end := s.startSpan(ctx, "DeletePost")
	defer end(&err)

	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}

	post, err := s.loadOwnedPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return apperr.New(apperr.CodeNotFound, MsgPostNotFound)
		}
		return apperr.Internal(fmt.Errorf("failed to delete post: %w", err))
	}

	s.removeImage(ctx, post.ImageURL)

	if err := s.store.RemoveUserPost(ctx, userID, post.ID); err != nil {
		return apperr.Internal(fmt.Errorf("failed to unlink post from user: %w", err))
	}

	s.logger.InfoContext(ctx, "post deleted", slog.String("post_id", post.ID))
	s.publish(api.TopicPosts, api.PostEvent{Action: api.ActionDelete, Post: post.ID})

	return nil
}

// DiscardImage removes an uploaded image the caller no longer needs.
// Images referenced by any post are kept: only the post owner can release
// them, through UpdatePost or DeletePost.
func (s *Service) DiscardImage(ctx context.Context, imageURL string) (err error) {
	ctx, end := s.startSpan(ctx, "DiscardImage")
	defer end(&err)

	if _, err := auth.RequireUser(ctx); err != nil {
		return err
	}

	s.removeImage(ctx, imageURL)
	return nil
}
