package usecase

import (
	"context"
	"ecourse-admin/internal/entity"
)

type Reconciler interface {
	// Sweep сверяет картинки в хранилище со ссылками в курсах
	Sweep(ctx context.Context) (*entity.SweepReport, error)
	// RemoveOrphan удаляет картинку, на которую не ссылается ни один курс
	RemoveOrphan(ctx context.Context, photoLink string) error
}
