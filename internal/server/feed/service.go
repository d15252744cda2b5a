// Package feed implements the account and post operations shared by the
// REST handlers and the GraphQL resolvers. Every operation follows the same
// order: authenticate, validate, load and authorize, apply and notify.
package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iudanet/feedhub/internal/server/apperr"
	"github.com/iudanet/feedhub/internal/server/storage"
)

// PageSize is the number of posts per feed page.
const PageSize = 2

const tracerName = "github.com/iudanet/feedhub/internal/server/feed"

// Store is the persistence the service needs.
type Store interface {
	storage.UserStorage
	storage.PostStorage
}

// TokenMinter issues bearer tokens at login.
type TokenMinter interface {
	Mint(userID, email string) (string, error)
}

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// Notifier broadcasts change events to connected listeners.
type Notifier interface {
	Publish(topic string, payload any)
}

// ImageRemover deletes stored images that are no longer referenced.
type ImageRemover interface {
	Remove(imageURL string) error
}

// Service реализует операции ленты
type Service struct {
	store    Store
	tokens   TokenMinter
	hasher   PasswordHasher
	notifier Notifier
	images   ImageRemover
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

// NewService creates a new feed service
func NewService(
	logger *slog.Logger,
	store Store,
	tokens TokenMinter,
	hasher PasswordHasher,
	notifier Notifier,
	images ImageRemover,
) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		images:   images,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// timestamp returns the current time in UTC at millisecond precision,
// the precision every storage backend keeps.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// startSpan opens a span for op. The returned func records err and ends the span.
func (s *Service) startSpan(ctx context.Context, op string) (context.Context, func(*error)) {
	ctx, span := s.tracer.Start(ctx, "feed."+op)
	return ctx, func(errp *error) {
		if err := *errp; err != nil {
			code := apperr.CodeOf(err)
			span.SetAttributes(errorCodeAttr(code))
			if code == apperr.CodeInternal {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
		}
		span.End()
	}
}

// removeImage удаляет файл изображения, если на него больше не ссылается
// ни один пост. Путь приходит от клиента и может указывать на чужой файл.
// Ошибки только логируются.
func (s *Service) removeImage(ctx context.Context, imageURL string) {
	if imageURL == "" || s.images == nil {
		return
	}
	refs, err := s.store.CountPostsWithImage(ctx, imageURL)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to check image references",
			slog.String("image_url", imageURL),
			slog.Any("error", err))
		return
	}
	if refs > 0 {
		s.logger.DebugContext(ctx, "image still referenced, keeping it",
			slog.String("image_url", imageURL),
			slog.Int("posts", refs))
		return
	}
	if err := s.images.Remove(imageURL); err != nil {
		s.logger.WarnContext(ctx, "failed to remove image",
			slog.String("image_url", imageURL),
			slog.Any("error", err))
	}
}

// publish sends a change event if a notifier is configured
func (s *Service) publish(topic string, payload any) {
	if s.notifier != nil {
		s.notifier.Publish(topic, payload)
	}
}
