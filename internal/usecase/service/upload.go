package service

import (
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"ecourse-admin/internal/usecase"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const fallbackExtension = "bin"

var allowedPictureTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/webp": {},
	"image/png":  {},
}

type Upload struct {
	compressor     repo.Compressor
	blobRepo       repo.Blob
	maxPictureSize int64
}

func NewUpload(compressor repo.Compressor, blobRepo repo.Blob, maxPictureSize int64) usecase.Upload {
	return &Upload{
		compressor:     compressor,
		blobRepo:       blobRepo,
		maxPictureSize: maxPictureSize,
	}
}

// UploadPicture: проверка -> сжатие -> сохранение в хранилище. Повторов на этом уровне нет,
// любая ошибка прерывает загрузку, и в хранилище ничего не остается.
func (u *Upload) UploadPicture(ctx context.Context, picture *entity.Picture) (string, error) {
	raw, err := u.readPicture(picture)
	if err != nil {
		return "", err
	}

	compressed, err := u.compressor.Compress(ctx, raw)
	if err != nil {
		return "", upstreamError(err)
	}
	if len(compressed.Data) == 0 {
		return "", errors.Join(usecase.ErrUpstream, repo.ErrCompressionFailed, errors.New("empty compressed output"))
	}

	contentType := compressed.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(compressed.Data).String()
	}
	key := fmt.Sprintf("%s.%s", uuid.New().String(), extensionOf(contentType))

	photoLink, err := u.blobRepo.PutBlob(ctx, key, compressed.Data, contentType)
	if err != nil {
		return "", upstreamError(err)
	}
	return photoLink, nil
}

func (u *Upload) DeletePicture(ctx context.Context, photoLink string) error {
	if err := u.blobRepo.DeleteBlob(ctx, photoLink); err != nil {
		return upstreamError(err)
	}
	return nil
}

// readPicture целиком читает картинку в память и проверяет ее до любых обращений к внешним сервисам
func (u *Upload) readPicture(picture *entity.Picture) ([]byte, error) {
	if picture == nil || picture.RawBytes == nil {
		return nil, usecase.ErrPictureMissing
	}
	if picture.Size > u.maxPictureSize {
		return nil, usecase.ErrPictureTooLarge
	}
	if !isAllowedPictureType(picture.ContentType) {
		return nil, usecase.ErrPictureType
	}

	// читаем на байт больше лимита, чтобы отличить "ровно лимит" от "больше лимита"
	raw, err := io.ReadAll(io.LimitReader(picture.RawBytes, u.maxPictureSize+1))
	if err != nil {
		return nil, fmt.Errorf("read picture: %w", err)
	}
	if len(raw) == 0 {
		return nil, usecase.ErrPictureMissing
	}
	if int64(len(raw)) > u.maxPictureSize {
		return nil, usecase.ErrPictureTooLarge
	}
	// заявленный клиентом тип перепроверяем по содержимому
	if !isAllowedPictureType(mimetype.Detect(raw).String()) {
		return nil, usecase.ErrPictureType
	}
	return raw, nil
}

func isAllowedPictureType(contentType string) bool {
	mediaType, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	_, ok := allowedPictureTypes[strings.TrimSpace(mediaType)]
	return ok
}

// extensionOf берет подтип медиатипа ("image/png" -> "png")
func extensionOf(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	_, subtype, found := strings.Cut(strings.TrimSpace(mediaType), "/")
	if !found || subtype == "" || subtype == "octet-stream" {
		return fallbackExtension
	}
	return strings.ToLower(subtype)
}

// upstreamError сохраняет исходную ошибку для логов и добавляет класс ошибки usecase
func upstreamError(err error) error {
	if errors.Is(err, repo.ErrUpstreamTimeout) {
		return errors.Join(usecase.ErrUpstreamTimeout, err)
	}
	return errors.Join(usecase.ErrUpstream, err)
}
