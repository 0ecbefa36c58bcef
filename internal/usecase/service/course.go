package service

import (
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"ecourse-admin/internal/usecase"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type Course struct {
	courseRepo    repo.Course
	uploadUseCase usecase.Upload
	events        repo.CourseEvent
}

func NewCourse(courseRepo repo.Course, uploadUseCase usecase.Upload, events repo.CourseEvent) usecase.Course {
	return &Course{
		courseRepo:    courseRepo,
		uploadUseCase: uploadUseCase,
		events:        events,
	}
}

func (c *Course) GetCourses(ctx context.Context, query *entity.ListQuery) ([]*entity.Course, error) {
	courses, err := c.courseRepo.ListCourses(ctx, query)
	if errors.Is(err, repo.ErrUnknownColumn) {
		return nil, errors.Join(usecase.ErrInvalidQuery, err)
	}
	return courses, err
}

func (c *Course) GetCourse(ctx context.Context, id string) (*entity.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usecase.ErrCourseNotFound
	}
	course, err := c.courseRepo.GetCourse(ctx, id)
	if errors.Is(err, repo.ErrCourseNotFound) {
		return nil, usecase.ErrCourseNotFound
	}
	return course, err
}

func (c *Course) CreateCourse(ctx context.Context, request *entity.AddCourseRequest) (string, error) {
	if request.Picture == nil {
		return "", usecase.ErrPictureMissing
	}
	course := &entity.Course{
		Name:        strings.TrimSpace(request.Name),
		Author:      strings.TrimSpace(request.Author),
		LinkCourse:  strings.TrimSpace(request.LinkCourse),
		Description: strings.TrimSpace(request.Description),
	}
	if err := validateCourse(course); err != nil {
		return "", err
	}

	photoLink, err := c.uploadUseCase.UploadPicture(ctx, request.Picture)
	if err != nil {
		return "", err
	}
	course.PhotoLink = photoLink

	id, err := c.courseRepo.AddCourse(ctx, course)
	if err != nil {
		// курс не создан, значит картинка никому не нужна
		c.discardPicture(ctx, "", photoLink)
		return "", err
	}
	c.publish(ctx, entity.CourseCreated, id, photoLink)
	return id, nil
}

func (c *Course) EditCourse(ctx context.Context, request *entity.EditCourseRequest) error {
	course, err := c.GetCourse(ctx, request.ID)
	if err != nil {
		return err
	}

	for _, field := range []struct {
		value  *string
		target *string
	}{
		{request.Name, &course.Name},
		{request.Author, &course.Author},
		{request.LinkCourse, &course.LinkCourse},
		{request.Description, &course.Description},
	} {
		if field.value != nil {
			*field.target = strings.TrimSpace(*field.value)
		}
	}
	if err := validateCourse(course); err != nil {
		return err
	}

	// nil - картинка не менялась, и photo_link в строке не трогаем
	var oldPhotoLink *string
	if request.Picture != nil {
		photoLink, err := c.uploadUseCase.UploadPicture(ctx, request.Picture)
		if err != nil {
			return err
		}
		previous := course.PhotoLink
		oldPhotoLink, course.PhotoLink = &previous, photoLink
	}

	if err := c.courseRepo.EditCourse(ctx, course, oldPhotoLink); err != nil {
		if oldPhotoLink != nil {
			c.discardPicture(ctx, course.ID, course.PhotoLink)
		}
		switch {
		case errors.Is(err, repo.ErrCourseNotFound):
			return usecase.ErrCourseNotFound
		case errors.Is(err, repo.ErrCourseConflict):
			return usecase.ErrCourseConflict
		}
		return err
	}
	if oldPhotoLink != nil && *oldPhotoLink != "" {
		c.discardPicture(ctx, course.ID, *oldPhotoLink)
	}
	c.publish(ctx, entity.CourseUpdated, course.ID, course.PhotoLink)
	return nil
}

// DeleteCourse удаляет сначала картинку, потом строку. Если картинку удалить не удалось,
// строка остается, и повторное удаление - штатный способ восстановления.
func (c *Course) DeleteCourse(ctx context.Context, id string) error {
	course, err := c.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if course.PhotoLink != "" {
		if err := c.uploadUseCase.DeletePicture(ctx, course.PhotoLink); err != nil {
			return err
		}
	}
	if err := c.courseRepo.DeleteCourse(ctx, course.ID); err != nil {
		if errors.Is(err, repo.ErrCourseNotFound) {
			return usecase.ErrCourseNotFound
		}
		return err
	}
	c.publish(ctx, entity.CourseDeleted, course.ID, course.PhotoLink)
	return nil
}

// discardPicture - компенсирующее удаление картинки. Выполняется даже если запрос уже отменен;
// при неудаче картинку подберет сверка по событию blob_orphaned или по расписанию.
func (c *Course) discardPicture(ctx context.Context, courseID, photoLink string) {
	ctx = context.WithoutCancel(ctx)
	if err := c.uploadUseCase.DeletePicture(ctx, photoLink); err != nil {
		log.Errorf("Не удалось удалить картинку %s: %v", photoLink, err)
		c.publish(ctx, entity.BlobOrphaned, courseID, photoLink)
	}
}

func (c *Course) publish(ctx context.Context, eventType entity.CourseEventType, courseID, photoLink string) {
	err := c.events.PublishCourseEvent(context.WithoutCancel(ctx), &entity.CourseEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		CourseID:   courseID,
		PhotoLink:  photoLink,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Errorf("Ошибка при публикации события %s курса %s: %v", eventType, courseID, err)
	}
}

func validateCourse(course *entity.Course) error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", course.Name},
		{"author", course.Author},
		{"link_course", course.LinkCourse},
		{"description", course.Description},
	} {
		if field.value == "" {
			return fmt.Errorf("%s %w", field.name, usecase.ErrFieldRequired)
		}
	}
	link, err := url.Parse(course.LinkCourse)
	if err != nil || (link.Scheme != "http" && link.Scheme != "https") || link.Host == "" {
		return usecase.ErrLinkInvalid
	}
	return nil
}
