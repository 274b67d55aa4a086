package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/eduviz/eduviz-chat-api/api"
	"github.com/eduviz/eduviz-chat-api/config"
	"github.com/eduviz/eduviz-chat-api/databases"
	"github.com/eduviz/eduviz-chat-api/models"
)

// maxImageSize is the largest accepted upload
const maxImageSize = 5 << 20

// ImageStore keeps an uploaded image and returns the URL clients should reference
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// ImageReader serves images kept in GridFS
type ImageReader interface {
	Open(ctx context.Context, id string) (*databases.StoredImage, error)
}

// Image exported for testing purposes
type Image struct {
	Store  ImageStore
	Reader ImageReader
}

// UploadHandler accepts one multipart "image" file and returns its URL
func (i Image) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if i.Store == nil {
		config.ErrorStatus("image storage unavailable", http.StatusServiceUnavailable, w, errors.New("no image store configured"))
		return
	}
	// headroom for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+64<<10)

	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			config.ErrorStatus("image too large", http.StatusRequestEntityTooLarge, w, err)
			return
		}
		config.ErrorStatus("no image provided", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		config.ErrorStatus("image too large", http.StatusRequestEntityTooLarge, w,
			fmt.Errorf("%d bytes exceeds %d", header.Size, maxImageSize))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		config.ErrorStatus("only images are allowed", http.StatusBadRequest, w,
			models.NewValidationError("image", "must have an image content type"))
		return
	}

	url, err := i.Store.Save(r.Context(), header.Filename, contentType, file)
	if err != nil {
		config.ErrorStatus("failed to store image", http.StatusInternalServerError, w, err)
		return
	}
	zap.S().Infow("image uploaded",
		"filename", header.Filename,
		"size", header.Size,
		"url", url)

	writeJSON(w, models.UploadResponse{URL: url})
}

// DownloadHandler streams an image stored in GridFS
func (i Image) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	imageID := mux.Vars(r)["image_id"]
	if i.Reader == nil {
		config.ErrorStatus("failed to get image", http.StatusNotFound, w, databases.ErrImageNotFound)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	img, err := i.Reader.Open(ctx, imageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, databases.ErrImageNotFound) {
			status = http.StatusNotFound
		}
		config.ErrorStatus("failed to get image", status, w, err)
		return
	}
	defer img.Close()

	w.Header().Set("Content-Type", img.ContentType)
	if img.Length > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(img.Length, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, img); err != nil {
		zap.S().Warnw("failed to stream image", "imageId", imageID, "error", err)
	}
}
