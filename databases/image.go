package databases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const imageBucketName = "messageImages"

// ErrImageNotFound is returned when no stored image matches an id
var ErrImageNotFound = errors.New("image not found")

// StoredImage is an image read back from GridFS. Callers must Close it.
type StoredImage struct {
	io.ReadCloser
	Name        string
	ContentType string
	Length      int64
	UploadDate  time.Time
}

// ImageBucket keeps message images in a GridFS bucket next to the messages.
// Each call opens its own bucket handle because GridFS deadlines are set per handle.
type ImageBucket struct {
	db        DatabaseHelper
	urlPrefix string
}

// NewImageBucket checks the image bucket can be opened. Saved images are addressed as
// urlPrefix + hex id.
func NewImageBucket(db DatabaseHelper, urlPrefix string) (*ImageBucket, error) {
	ib := &ImageBucket{db: db, urlPrefix: urlPrefix}
	if _, err := ib.open(); err != nil {
		return nil, err
	}
	return ib, nil
}

func (ib *ImageBucket) open() (BucketHelper, error) {
	b, err := ib.db.Bucket(imageBucketName)
	if err != nil {
		return nil, fmt.Errorf("%w: open image bucket: %w", ErrPersistence, err)
	}
	return b, nil
}

// Save streams r into the bucket and returns the URL the image is served from.
// The ctx deadline, if any, bounds the upload.
func (ib *ImageBucket) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	bucket, err := ib.open()
	if err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetWriteDeadline(deadline); err != nil {
			return "", fmt.Errorf("%w: set upload deadline: %w", ErrPersistence, err)
		}
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{
		"contentType":  contentType,
		"originalName": filename,
	})
	id, err := bucket.UploadFromStream(filename, r, opts)
	if err != nil {
		return "", fmt.Errorf("%w: upload image: %w", ErrPersistence, err)
	}
	return ib.urlPrefix + id.Hex(), nil
}

// Open returns the image stored under the hex id. The ctx deadline, if any, bounds
// reading the image.
func (ib *ImageBucket) Open(ctx context.Context, id string) (*StoredImage, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrImageNotFound
	}
	bucket, err := ib.open()
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("%w: set read deadline: %w", ErrPersistence, err)
		}
	}
	ds, err := bucket.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open image %s: %w", ErrPersistence, id, err)
	}

	file := ds.GetFile()
	img := &StoredImage{
		ReadCloser:  ds,
		ContentType: "application/octet-stream",
	}
	if file != nil {
		img.Name = file.Name
		img.Length = file.Length
		img.UploadDate = file.UploadDate
		var meta struct {
			ContentType string `bson:"contentType"`
		}
		if len(file.Metadata) > 0 && bson.Unmarshal(file.Metadata, &meta) == nil && meta.ContentType != "" {
			img.ContentType = meta.ContentType
		}
	}
	return img, nil
}
