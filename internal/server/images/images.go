// Package images stores uploaded post images on local disk.
package images

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the path prefix of stored images, as kept in Post.ImageURL
// and served under /images/.
const URLPrefix = "images/"

// NormalizePath turns a client supplied image path into the stored form
// ("/images/x.png" -> "images/x.png").
func NormalizePath(p string) string {
	return strings.TrimPrefix(strings.TrimSpace(p), "/")
}

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 10 << 20

var (
	// ErrUnsupportedType indicates a file that is not png, jpg or jpeg
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrTooLarge indicates a file larger than MaxImageSize
	ErrTooLarge = errors.New("image too large")
	// ErrInvalidPath indicates a path outside of the image directory
	ErrInvalidPath = errors.New("invalid image path")
)

// allowed content types and the extension stored for each
var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpg":  ".jpg",
	"image/jpeg": ".jpeg",
}

// Store keeps images in one directory.
type Store struct {
	logger *slog.Logger
	dir    string
}

// NewStore creates dir if needed
func NewStore(logger *slog.Logger, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{logger: logger, dir: dir}, nil
}

// Dir returns the directory served as /images/
func (s *Store) Dir() string {
	return s.dir
}

// Save writes r under a fresh name and returns its URL path ("images/<name>").
// contentType must be image/png, image/jpg or image/jpeg.
func (s *Store) Save(contentType string, r io.Reader) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.New().String() + ext
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))
	closeErr := f.Close()
	if err == nil && n > MaxImageSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	s.logger.Debug("image stored", slog.String("path", URLPrefix+name), slog.Int64("bytes", n))

	return URLPrefix + name, nil
}

// resolve maps an image URL path to a file inside the store directory
func (s *Store) resolve(imageURL string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(imageURL))
	name, ok := strings.CutPrefix(clean, "/"+URLPrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.dir, name), nil
}

// Remove deletes the image at imageURL. A missing file is not an error.
func (s *Store) Remove(imageURL string) error {
	target, err := s.resolve(imageURL)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}

	return nil
}
