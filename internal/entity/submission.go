package entity

import "time"

type SubmissionStatus string

const (
	SubmissionLate   SubmissionStatus = "Late Status"
	SubmissionTimely SubmissionStatus = "Timely Status"
)

type Submission struct {
	ID          string           `json:"id" db:"id"`
	FirstName   string           `json:"first_name" db:"first_name"`
	LastName    string           `json:"last_name" db:"last_name"`
	Email       string           `json:"email" db:"email"`
	Telephone   string           `json:"telephone" db:"telephone"`
	ClassEnum   string           `json:"class_enum" db:"class_enum"`
	Subjects    string           `json:"subjects" db:"subjects"`
	Link        string           `json:"link" db:"link"`
	Description string           `json:"description" db:"description"`
	Status      SubmissionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}
