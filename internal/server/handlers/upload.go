package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/iudanet/feedhub/internal/server/apperr"
	"github.com/iudanet/feedhub/internal/server/feed"
	"github.com/iudanet/feedhub/internal/server/images"
	"github.com/iudanet/feedhub/pkg/api"
)

// ImageStore saves and removes uploaded images
type ImageStore interface {
	Save(contentType string, r io.Reader) (string, error)
	Remove(imageURL string) error
}

const (
	// maxMultipartMemory is the part of a multipart body kept in memory
	maxMultipartMemory = 1 << 20
	// maxUploadBody bounds a whole multipart request
	maxUploadBody = images.MaxImageSize + maxMultipartMemory
)

// isMultipart reports whether the request carries multipart/form-data
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// saveUpload сохраняет файл из поля field.
// Пустая строка без ошибки означает, что файла нет или его тип не поддерживается.
func saveUpload(r *http.Request, store ImageStore, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", errInvalidBody
	}
	defer file.Close()

	return saveFile(store, header, file)
}

func saveFile(store ImageStore, header *multipart.FileHeader, file io.Reader) (string, error) {
	path, err := store.Save(header.Header.Get("Content-Type"), file)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, images.ErrUnsupportedType):
		return "", nil
	case errors.Is(err, images.ErrTooLarge):
		return "", apperr.Validation("Validation failed.", []string{"Image is too large."})
	default:
		return "", apperr.Internal(fmt.Errorf("failed to save image: %w", err))
	}
}

// readPostInput reads a post payload from a multipart form or a JSON body.
// uploaded is the path of a file stored while reading, to be removed if the
// operation fails.
func readPostInput(w http.ResponseWriter, r *http.Request, store ImageStore) (in feed.PostInput, uploaded string, err error) {
	if !isMultipart(r) {
		var req api.PostRequest
		if err := decodeJSON(r, &req); err != nil {
			return feed.PostInput{}, "", err
		}
		return feed.PostInput{Title: req.Title, Content: req.Content, ImageURL: images.NormalizePath(req.ImageURL)}, "", nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return feed.PostInput{}, "", errInvalidBody
	}

	in = feed.PostInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}

	uploaded, err = saveUpload(r, store, "image")
	if err != nil {
		return feed.PostInput{}, "", err
	}

	switch {
	case uploaded != "":
		in.ImageURL = uploaded
	case r.FormValue("image") != "":
		// клиент передал путь уже загруженного изображения
		in.ImageURL = images.NormalizePath(r.FormValue("image"))
	default:
		in.ImageURL = images.NormalizePath(r.FormValue("imageUrl"))
	}

	return in, uploaded, nil
}

// discardUpload removes a file stored for a request that failed
func discardUpload(logger *slog.Logger, store ImageStore, uploaded string) {
	if uploaded == "" {
		return
	}
	if err := store.Remove(uploaded); err != nil {
		logger.Warn("failed to discard upload", slog.String("path", uploaded), slog.Any("error", err))
	}
}

