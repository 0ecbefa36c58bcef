package repo

import (
	"context"
	"ecourse-admin/internal/entity"
	"errors"
)

type Course interface {
	// ListCourses возвращает курсы с учетом сортировки, фильтра и пагинации
	ListCourses(ctx context.Context, query *entity.ListQuery) ([]*entity.Course, error)
	// GetCourse возвращает курс по ID
	GetCourse(ctx context.Context, id string) (*entity.Course, error)
	// AddCourse создает курс и возвращает его ID
	AddCourse(ctx context.Context, course *entity.Course) (string, error)
	// EditCourse перезаписывает текстовые поля курса. photo_link меняется, только если
	// передан previousPhotoLink и в строке все еще лежит именно он, иначе ErrCourseConflict
	EditCourse(ctx context.Context, course *entity.Course, previousPhotoLink *string) error
	// DeleteCourse удаляет курс по ID
	DeleteCourse(ctx context.Context, id string) error
	// ListPhotoLinks возвращает photo_link всех курсов
	ListPhotoLinks(ctx context.Context) ([]string, error)
}

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrCourseConflict = errors.New("course photo changed concurrently")
	ErrUnknownColumn  = errors.New("unknown sort column")
)
