package model

import (
	"time"

	"github.com/google/uuid"
)

type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
)

type Course struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	Title        string       `json:"title" db:"title"`
	InstructorID uuid.UUID    `json:"instructor_id" db:"instructor_id"`
	Status       CourseStatus `json:"status" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

type Section struct {
	ID       uuid.UUID `json:"id" db:"id"`
	CourseID uuid.UUID `json:"course_id" db:"course_id"`
	Title    string    `json:"title" db:"title"`
}

type SubSection struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SectionID uuid.UUID `json:"section_id" db:"section_id"`
	Title     string    `json:"title" db:"title"`
}
