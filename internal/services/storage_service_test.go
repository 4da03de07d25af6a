package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskfollowup/internal/config"
)

type fakeS3Uploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3Uploader) Upload(_ context.Context, params *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.ToString(params.Key)}, nil
}

func TestS3StoreUploadUsesPrefixedKey(t *testing.T) {
	up := &fakeS3Uploader{}
	store := NewS3StoreWithUploader(up, "exports", "/fileuploads/")

	res, err := store.Upload(context.Background(), "history-1.csv", []byte("a,b\n"))
	require.NoError(t, err)

	assert.Equal(t, "history-1.csv", res.Name)
	assert.Equal(t, "exports", aws.ToString(up.input.Bucket))
	assert.Equal(t, "fileuploads/history-1.csv", aws.ToString(up.input.Key))
	assert.Equal(t, "text/csv", aws.ToString(up.input.ContentType))
	assert.Equal(t, []byte("a,b\n"), up.body)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/fileuploads/history-1.csv", res.Location)
}

func TestS3StoreUploadErrors(t *testing.T) {
	store := NewS3StoreWithUploader(&fakeS3Uploader{err: errors.New("access denied")}, "exports", "")

	_, err := store.Upload(context.Background(), "x.csv", []byte("x"))
	assert.ErrorContains(t, err, "access denied")

	_, err = store.Upload(context.Background(), "", []byte("x"))
	assert.Error(t, err)
}

type fakeCloudinaryUploader struct {
	params uploader.UploadParams
	result *uploader.UploadResult
}

func (f *fakeCloudinaryUploader) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	return f.result, nil
}

func TestCloudinaryStoreUploadsRawResource(t *testing.T) {
	up := &fakeCloudinaryUploader{result: &uploader.UploadResult{PublicID: "fileuploads/history-1.csv", SecureURL: "https://res.cloudinary.com/x"}}
	store := &CloudinaryStore{upload: up, folder: "fileuploads"}

	res, err := store.Upload(context.Background(), "history-1.csv", []byte("a"))
	require.NoError(t, err)

	assert.Equal(t, "raw", up.params.ResourceType)
	assert.Equal(t, "fileuploads", up.params.Folder)
	assert.Equal(t, "history-1.csv", res.Name)
	assert.Equal(t, "https://res.cloudinary.com/x", res.Location)
}

func TestCloudinaryStoreReportsAPIError(t *testing.T) {
	up := &fakeCloudinaryUploader{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid signature"}}}
	store := &CloudinaryStore{upload: up}

	_, err := store.Upload(context.Background(), "history-1.csv", []byte("a"))
	assert.ErrorContains(t, err, "Invalid signature")
}

func TestNewObjectStoreRejectsUnknownDriver(t *testing.T) {
	_, err := NewObjectStore(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)

	_, err = NewObjectStore(context.Background(), config.StorageConfig{Driver: "cloudinary"})
	assert.ErrorContains(t, err, "missing Cloudinary configuration")
}
