package repo

import (
	"context"
	"ecourse-admin/internal/entity"
)

type CourseEvent interface {
	PublishCourseEvent(ctx context.Context, event *entity.CourseEvent) error
	SubscribeCourseEvents(ctx context.Context) (<-chan *entity.CourseEvent, error)
}
