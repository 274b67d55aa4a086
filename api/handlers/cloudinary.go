package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const cloudinaryFolder = "messages"

// CloudinaryImageStore uploads message images to Cloudinary
type CloudinaryImageStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryImageStore configures the store from a cloudinary:// URL
func NewCloudinaryImageStore(cloudinaryURL string) (*CloudinaryImageStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryImageStore{cld: cld, folder: cloudinaryFolder}, nil
}

// Save uploads r and returns the secure delivery URL
func (c *CloudinaryImageStore) Save(ctx context.Context, _, _ string, r io.Reader) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: c.folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %w", errors.New(res.Error.Message))
	}
	return res.SecureURL, nil
}
