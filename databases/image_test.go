package databases_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"github.com/eduviz/eduviz-chat-api/databases"
	"github.com/eduviz/eduviz-chat-api/databases/mocks"
)

func newImageBucket(t *testing.T) (*databases.ImageBucket, *mocks.BucketHelper) {
	t.Helper()
	bucket := &mocks.BucketHelper{}
	dbHelper := &mocks.DatabaseHelper{}
	dbHelper.On("Bucket", "messageImages").Return(bucket, nil)

	ib, err := databases.NewImageBucket(dbHelper, "/api/v1/messages/images/")
	require.NoError(t, err)
	return ib, bucket
}

func TestNewImageBucketError(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	dbHelper.On("Bucket", "messageImages").Return(nil, errors.New("mocked-error"))

	ib, err := databases.NewImageBucket(dbHelper, "/x/")

	assert.Nil(t, ib)
	assert.ErrorIs(t, err, databases.ErrPersistence)
}

func TestImageBucket_Save(t *testing.T) {
	ib, bucket := newImageBucket(t)
	id := primitive.NewObjectID()
	bucket.On("UploadFromStream", "cat.png", mock.Anything, mock.Anything).Return(id, nil)

	url, err := ib.Save(context.Background(), "cat.png", "image/png", strings.NewReader("png"))

	require.NoError(t, err)
	assert.Equal(t, "/api/v1/messages/images/"+id.Hex(), url)
}

func TestImageBucket_SaveAppliesContextDeadline(t *testing.T) {
	ib, bucket := newImageBucket(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	deadline, _ := ctx.Deadline()

	id := primitive.NewObjectID()
	bucket.On("SetWriteDeadline", deadline).Return(nil).Once()
	bucket.On("UploadFromStream", "cat.png", mock.Anything, mock.Anything).Return(id, nil)

	_, err := ib.Save(ctx, "cat.png", "image/png", strings.NewReader("png"))

	require.NoError(t, err)
	bucket.AssertCalled(t, "SetWriteDeadline", deadline)
}

func TestImageBucket_SaveDeadlineError(t *testing.T) {
	ib, bucket := newImageBucket(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	bucket.On("SetWriteDeadline", mock.Anything).Return(errors.New("mocked-error"))

	_, err := ib.Save(ctx, "cat.png", "image/png", strings.NewReader("png"))

	assert.ErrorIs(t, err, databases.ErrPersistence)
	bucket.AssertNotCalled(t, "UploadFromStream", mock.Anything, mock.Anything, mock.Anything)
}

func TestImageBucket_OpenAppliesContextDeadline(t *testing.T) {
	ib, bucket := newImageBucket(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	deadline, _ := ctx.Deadline()

	id := primitive.NewObjectID()
	bucket.On("SetReadDeadline", deadline).Return(nil)
	bucket.On("OpenDownloadStream", id).Return(nil, gridfs.ErrFileNotFound)

	_, err := ib.Open(ctx, id.Hex())

	assert.ErrorIs(t, err, databases.ErrImageNotFound)
	bucket.AssertCalled(t, "SetReadDeadline", deadline)
}

func TestImageBucket_SaveError(t *testing.T) {
	ib, bucket := newImageBucket(t)
	bucket.On("UploadFromStream", mock.Anything, mock.Anything, mock.Anything).Return(primitive.NilObjectID, errors.New("mocked-error"))

	url, err := ib.Save(context.Background(), "cat.png", "image/png", strings.NewReader("png"))

	assert.Empty(t, url)
	assert.ErrorIs(t, err, databases.ErrPersistence)
}

func TestImageBucket_Open(t *testing.T) {
	ib, bucket := newImageBucket(t)
	id := primitive.NewObjectID()

	meta, err := bson.Marshal(bson.M{"contentType": "image/png"})
	require.NoError(t, err)

	stream := &mocks.DownloadStreamHelper{}
	stream.On("GetFile").Return(&gridfs.File{Name: "cat.png", Length: 3, UploadDate: time.Now(), Metadata: meta})
	stream.On("Read", mock.Anything).Return(0, io.EOF)
	stream.On("Close").Return(nil)
	bucket.On("OpenDownloadStream", id).Return(stream, nil)

	img, err := ib.Open(context.Background(), id.Hex())
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "cat.png", img.Name)
	assert.Equal(t, int64(3), img.Length)
}

func TestImageBucket_OpenNotFound(t *testing.T) {
	ib, bucket := newImageBucket(t)
	id := primitive.NewObjectID()
	bucket.On("OpenDownloadStream", id).Return(nil, gridfs.ErrFileNotFound)

	img, err := ib.Open(context.Background(), id.Hex())

	assert.Nil(t, img)
	assert.ErrorIs(t, err, databases.ErrImageNotFound)
}
