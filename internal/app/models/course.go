package models

import (
	"time"
)

// CourseStatus is the publication status of a course
type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
)

// Course defines the course model based on the 'courses' table.
// Only published courses are visible to learners for enrollment.
type Course struct {
	ID          int64        `json:"id" db:"id"`
	OwnerID     int64        `json:"ownerId" db:"owner_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Status      CourseStatus `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
	Owner       *User        `json:"owner,omitempty"` // Relation, no db tag
}

// LessonType is the content type of a lesson
type LessonType string

const (
	LessonVideo LessonType = "VIDEO"
	LessonPDF   LessonType = "PDF"
	LessonAudio LessonType = "AUDIO"
	LessonText  LessonType = "TEXT"
)

// IsValid reports whether the lesson type is one of the known types
func (t LessonType) IsValid() bool {
	switch t {
	case LessonVideo, LessonPDF, LessonAudio, LessonText:
		return true
	}
	return false
}

// Lesson defines the lesson model based on the 'lessons' table.
// Order is a dense course-scoped sequence starting at 1; deletions recompact
// the following orders so the sequence never has gaps.
type Lesson struct {
	ID         int64      `json:"id" db:"id"`
	CourseID   int64      `json:"courseId" db:"course_id"`
	Title      string     `json:"title" db:"title"`
	Type       LessonType `json:"type" db:"lesson_type"`
	Order      int        `json:"order" db:"ord"`
	ContentURL string     `json:"contentUrl" db:"content_url"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}
