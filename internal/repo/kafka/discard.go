package kafka

import (
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"

	"github.com/labstack/gommon/log"
)

// Discard используется, когда брокеры Kafka не настроены: события только пишутся в лог
type Discard struct{}

func NewDiscard() repo.CourseEvent {
	return Discard{}
}

func (Discard) PublishCourseEvent(_ context.Context, event *entity.CourseEvent) error {
	log.Debugf("Событие курса не отправлено (Kafka отключена): %s %s %s", event.Type, event.CourseID, event.PhotoLink)
	return nil
}

// SubscribeCourseEvents возвращает канал, который закрывается вместе с ctx
func (Discard) SubscribeCourseEvents(ctx context.Context) (<-chan *entity.CourseEvent, error) {
	ch := make(chan *entity.CourseEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
