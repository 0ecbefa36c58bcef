package s3

import (
	"bytes"
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"ecourse-admin/pkg/retry"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

// objectClient - подмножество *minio.Client, которым пользуется хранилище
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketPolicy(ctx context.Context, bucketName, policy string) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

const publicReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/*"]
	}]
}`

type BlobParams struct {
	Bucket string
	// PublicBaseURL - префикс публичных ссылок, к нему дописывается ключ объекта
	PublicBaseURL string
	Region        string
	Policy        retry.Policy
}

type Blob struct {
	client  objectClient
	bucket  string
	baseURL string
	policy  retry.Policy
}

func NewBlob(ctx context.Context, client *minio.Client, params BlobParams) (repo.Blob, error) {
	return newBlob(ctx, client, params)
}

func newBlob(ctx context.Context, client objectClient, params BlobParams) (*Blob, error) {
	// Создаем бакет для картинок курсов, предварительно проверив, что его нет
	exists, err := client.BucketExists(ctx, params.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", params.Bucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, params.Bucket, minio.MakeBucketOptions{Region: params.Region})
		if err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", params.Bucket, err)
		}
	}
	// ссылки на картинки открываются браузером напрямую, поэтому объекты должны читаться анонимно
	if err := client.SetBucketPolicy(ctx, params.Bucket, fmt.Sprintf(publicReadPolicy, params.Bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy %s: %w", params.Bucket, err)
	}
	return &Blob{
		client:  client,
		bucket:  params.Bucket,
		baseURL: strings.TrimRight(params.PublicBaseURL, "/"),
		policy:  params.Policy,
	}, nil
}

func (b *Blob) PutBlob(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	err := retry.Do(ctx, b.policy, func(ctx context.Context) error {
		_, err := b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		return classify(err)
	})
	if err != nil {
		return "", upstreamError("put object "+key, err)
	}
	return b.publicURL(key), nil
}

func (b *Blob) DeleteBlob(ctx context.Context, keyOrURL string) error {
	key, err := b.KeyOf(keyOrURL)
	if err != nil {
		return err
	}
	err = retry.Do(ctx, b.policy, func(ctx context.Context) error {
		return classify(b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}))
	})
	if err != nil {
		return upstreamError("remove object "+key, err)
	}
	return nil
}

func (b *Blob) BlobExists(ctx context.Context, keyOrURL string) (bool, error) {
	key, err := b.KeyOf(keyOrURL)
	if err != nil {
		return false, err
	}
	exists := false
	err = retry.Do(ctx, b.policy, func(ctx context.Context) error {
		_, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			exists = true
			return nil
		}
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			exists = false
			return nil
		}
		return classify(err)
	})
	if err != nil {
		return false, upstreamError("stat object "+key, err)
	}
	return exists, nil
}

func (b *Blob) ListBlobs(ctx context.Context) ([]*entity.BlobInfo, error) {
	var blobs []*entity.BlobInfo
	err := retry.Do(ctx, b.policy, func(ctx context.Context) error {
		blobs = blobs[:0]
		for object := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Recursive: true}) {
			if object.Err != nil {
				return classify(object.Err)
			}
			blobs = append(blobs, &entity.BlobInfo{
				Key:          object.Key,
				URL:          b.publicURL(object.Key),
				Size:         object.Size,
				LastModified: object.LastModified,
			})
		}
		return nil
	})
	if err != nil {
		return nil, upstreamError("list objects", err)
	}
	return blobs, nil
}

func (b *Blob) publicURL(key string) string {
	return b.baseURL + "/" + url.PathEscape(key)
}

// KeyOf принимает либо ключ, либо публичную ссылку этого хранилища
func (b *Blob) KeyOf(keyOrURL string) (string, error) {
	if !strings.Contains(keyOrURL, "://") {
		if keyOrURL == "" {
			return "", repo.ErrForeignBlob
		}
		return keyOrURL, nil
	}
	prefix := b.baseURL + "/"
	if !strings.HasPrefix(keyOrURL, prefix) {
		return "", fmt.Errorf("%w: %s", repo.ErrForeignBlob, keyOrURL)
	}
	key, err := url.PathUnescape(strings.TrimPrefix(keyOrURL, prefix))
	if err != nil || key == "" {
		return "", fmt.Errorf("%w: %s", repo.ErrForeignBlob, keyOrURL)
	}
	return key, nil
}

// classify помечает сетевые ошибки, троттлинг и 5xx как временные
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.Retryable(err)
	}
	status := minio.ToErrorResponse(err).StatusCode
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return retry.Retryable(err)
	}
	return err
}

func upstreamError(operation string, err error) error {
	if errors.Is(err, retry.ErrTimeout) {
		return fmt.Errorf("%w: %s: %w", repo.ErrUpstreamTimeout, operation, err)
	}
	return fmt.Errorf("%w: %s: %w", repo.ErrUpstream, operation, err)
}
