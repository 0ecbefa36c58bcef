package usecase

import (
	"context"
	"ecourse-admin/internal/entity"
	"errors"
)

type Course interface {
	// GetCourses возвращает курсы; пустой query означает все курсы
	GetCourses(ctx context.Context, query *entity.ListQuery) ([]*entity.Course, error)
	// GetCourse возвращает курс по ID
	GetCourse(ctx context.Context, id string) (*entity.Course, error)
	// CreateCourse загружает картинку и создает курс, возвращает ID курса
	CreateCourse(ctx context.Context, request *entity.AddCourseRequest) (string, error)
	// EditCourse меняет переданные поля курса и, если передана, картинку
	EditCourse(ctx context.Context, request *entity.EditCourseRequest) error
	// DeleteCourse удаляет картинку курса, затем сам курс
	DeleteCourse(ctx context.Context, id string) error
}

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrCourseConflict  = errors.New("course was modified concurrently")
	ErrPictureMissing  = errors.New("no valid file provided")
	ErrPictureType     = errors.New("please upload a valid image (JPG, JPEG, WEBP, or PNG)")
	ErrPictureTooLarge = errors.New("file size exceeds the allowed limit")
	ErrFieldRequired   = errors.New("is required")
	ErrLinkInvalid     = errors.New("link_course must be an absolute http(s) URL")
	ErrInvalidQuery    = errors.New("invalid list query")
	ErrUpstream        = errors.New("upstream service failed")
	ErrUpstreamTimeout = errors.New("upstream service timed out")
)
