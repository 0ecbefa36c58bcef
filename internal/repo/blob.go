package repo

import (
	"context"
	"ecourse-admin/internal/entity"
	"errors"
)

type Blob interface {
	// PutBlob сохраняет байты под ключом key и возвращает публичную ссылку
	PutBlob(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// DeleteBlob удаляет объект по ключу или по публичной ссылке
	DeleteBlob(ctx context.Context, keyOrURL string) error
	// BlobExists проверяет наличие объекта по ключу или по публичной ссылке
	BlobExists(ctx context.Context, keyOrURL string) (bool, error)
	// ListBlobs возвращает все объекты бакета
	ListBlobs(ctx context.Context) ([]*entity.BlobInfo, error)
	// KeyOf переводит ключ или публичную ссылку в ключ объекта; чужие ссылки дают ErrForeignBlob
	KeyOf(keyOrURL string) (string, error)
}

type Compressor interface {
	// Compress отправляет картинку в сервис сжатия и скачивает результат
	Compress(ctx context.Context, data []byte) (*entity.CompressedPicture, error)
}

var (
	ErrForeignBlob       = errors.New("link does not belong to this blob store")
	ErrCompressionFailed = errors.New("compression failed")
	ErrUpstream          = errors.New("upstream service failed")
	ErrUpstreamTimeout   = errors.New("upstream service timed out")
)
