package s3

import (
	"context"
	"ecourse-admin/internal/repo"
	"ecourse-admin/pkg/retry"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectClient struct {
	mu         sync.Mutex
	buckets    map[string]bool
	objects    map[string][]byte
	policy     string
	putErrs    []error
	removeErr  error
	putCalls   int
	modifiedAt time.Time
}

func newFakeObjectClient() *fakeObjectClient {
	return &fakeObjectClient{
		buckets:    map[string]bool{},
		objects:    map[string][]byte{},
		modifiedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeObjectClient) BucketExists(_ context.Context, bucketName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[bucketName], nil
}

func (f *fakeObjectClient) MakeBucket(_ context.Context, bucketName string, _ minio.MakeBucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucketName] = true
	return nil
}

func (f *fakeObjectClient) SetBucketPolicy(_ context.Context, _, policy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policy = policy
	return nil
}

func (f *fakeObjectClient) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		return minio.UploadInfo{}, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = data
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeObjectClient) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, objectName)
	return nil
}

func (f *fakeObjectClient) StatObject(_ context.Context, _, objectName string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectName]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	}
	return minio.ObjectInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeObjectClient) ListObjects(_ context.Context, _ string, _ minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan minio.ObjectInfo, len(f.objects))
	for key, data := range f.objects {
		ch <- minio.ObjectInfo{Key: key, Size: int64(len(data)), LastModified: f.modifiedAt}
	}
	close(ch)
	return ch
}

func newTestBlob(t *testing.T, client *fakeObjectClient) *Blob {
	t.Helper()
	blob, err := newBlob(context.Background(), client, BlobParams{
		Bucket:        "pictures",
		PublicBaseURL: "http://localhost:9000/pictures/",
		Policy:        retry.Policy{Timeout: time.Second, MaxRetries: 2, InitialDelay: time.Millisecond},
	})
	require.NoError(t, err)
	return blob
}

func TestNewBlobCreatesPublicBucket(t *testing.T) {
	client := newFakeObjectClient()
	newTestBlob(t, client)

	assert.True(t, client.buckets["pictures"])
	assert.Contains(t, client.policy, "arn:aws:s3:::pictures/*")
}

func TestPutBlobReturnsPublicURL(t *testing.T) {
	client := newFakeObjectClient()
	blob := newTestBlob(t, client)

	link, err := blob.PutBlob(context.Background(), "abc.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/pictures/abc.png", link)
	assert.Equal(t, []byte("png"), client.objects["abc.png"])
}

func TestPutBlobRetriesServerErrors(t *testing.T) {
	client := newFakeObjectClient()
	client.putErrs = []error{minio.ErrorResponse{Code: "InternalError", StatusCode: http.StatusInternalServerError}}
	blob := newTestBlob(t, client)

	_, err := blob.PutBlob(context.Background(), "abc.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, 2, client.putCalls)
}

func TestPutBlobDoesNotRetryClientErrors(t *testing.T) {
	client := newFakeObjectClient()
	client.putErrs = []error{minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}}
	blob := newTestBlob(t, client)

	_, err := blob.PutBlob(context.Background(), "abc.png", []byte("png"), "image/png")
	assert.ErrorIs(t, err, repo.ErrUpstream)
	assert.Equal(t, 1, client.putCalls)
}

func TestDeleteBlobByURL(t *testing.T) {
	client := newFakeObjectClient()
	blob := newTestBlob(t, client)
	link, err := blob.PutBlob(context.Background(), "abc.png", []byte("png"), "image/png")
	require.NoError(t, err)

	require.NoError(t, blob.DeleteBlob(context.Background(), link))
	assert.NotContains(t, client.objects, "abc.png")

	exists, err := blob.BlobExists(context.Background(), link)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteBlobRejectsForeignURL(t *testing.T) {
	blob := newTestBlob(t, newFakeObjectClient())

	err := blob.DeleteBlob(context.Background(), "https://public.blob.vercel-storage.com/abc.png")
	assert.ErrorIs(t, err, repo.ErrForeignBlob)
}

func TestDeleteBlobPropagatesStoreError(t *testing.T) {
	client := newFakeObjectClient()
	client.removeErr = minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}
	blob := newTestBlob(t, client)

	err := blob.DeleteBlob(context.Background(), "abc.png")
	assert.ErrorIs(t, err, repo.ErrUpstream)
}

func TestListBlobs(t *testing.T) {
	client := newFakeObjectClient()
	blob := newTestBlob(t, client)
	_, err := blob.PutBlob(context.Background(), "abc.png", []byte("png"), "image/png")
	require.NoError(t, err)

	blobs, err := blob.ListBlobs(context.Background())
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, "abc.png", blobs[0].Key)
	assert.Equal(t, "http://localhost:9000/pictures/abc.png", blobs[0].URL)
	assert.Equal(t, client.modifiedAt, blobs[0].LastModified)
}

func TestKeyOf(t *testing.T) {
	blob := newTestBlob(t, newFakeObjectClient())

	key, err := blob.KeyOf("http://localhost:9000/pictures/a%20b.png")
	require.NoError(t, err)
	assert.Equal(t, "a b.png", key)

	key, err = blob.KeyOf("abc.png")
	require.NoError(t, err)
	assert.Equal(t, "abc.png", key)

	_, err = blob.KeyOf("http://minio:9000/pictures/abc.png")
	assert.ErrorIs(t, err, repo.ErrForeignBlob)
	_, err = blob.KeyOf("")
	assert.ErrorIs(t, err, repo.ErrForeignBlob)
}
