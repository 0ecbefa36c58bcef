package usecase

import (
	"context"
	"ecourse-admin/internal/entity"
)

type Upload interface {
	// UploadPicture проверяет картинку, сжимает ее и сохраняет в хранилище, возвращает публичную ссылку
	UploadPicture(ctx context.Context, picture *entity.Picture) (string, error)
	// DeletePicture удаляет ранее сохраненную картинку по ее ссылке
	DeletePicture(ctx context.Context, photoLink string) error
}
