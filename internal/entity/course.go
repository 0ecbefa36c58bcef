package entity

import "time"

type Course struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Author      string    `json:"author" db:"author"`
	LinkCourse  string    `json:"link_course" db:"link_course"`
	Description string    `json:"description" db:"description"`
	PhotoLink   string    `json:"photo_link" db:"photo_link"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type AddCourseRequest struct {
	Name        string
	Author      string
	LinkCourse  string
	Description string
	Picture     *Picture
}

// EditCourseRequest перезаписывает только те поля, которые были переданы (не nil).
// Picture == nil означает, что картинка курса не меняется
type EditCourseRequest struct {
	ID          string
	Name        *string
	Author      *string
	LinkCourse  *string
	Description *string
	Picture     *Picture
}
