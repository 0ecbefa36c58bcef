package entity

import "time"

type CourseEventType string

const (
	CourseCreated CourseEventType = "created"
	CourseUpdated CourseEventType = "updated"
	CourseDeleted CourseEventType = "deleted"
	// BlobOrphaned публикуется, когда картинку не удалось удалить после отката или замены
	BlobOrphaned CourseEventType = "blob_orphaned"
)

type CourseEvent struct {
	EventID    string          `json:"event_id" msgpack:"event_id"`
	Type       CourseEventType `json:"type" msgpack:"type"`
	CourseID   string          `json:"course_id" msgpack:"course_id"`
	PhotoLink  string          `json:"photo_link" msgpack:"photo_link"`
	OccurredAt time.Time       `json:"occurred_at" msgpack:"occurred_at"`
}
