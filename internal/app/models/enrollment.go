package models

import (
	"time"
)

// EnrollmentStatus is the lifecycle status of a course enrollment
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentApproved EnrollmentStatus = "approved"
	EnrollmentRejected EnrollmentStatus = "rejected"
	EnrollmentRevoked  EnrollmentStatus = "revoked"
)

// IsValid reports whether the status is one of the known statuses
func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case EnrollmentPending, EnrollmentApproved, EnrollmentRejected, EnrollmentRevoked:
		return true
	}
	return false
}

// Enrollment defines the enrollment model based on the 'enrollments' table.
// At most one non-terminal record may exist per (user, course) pair; a rejected
// or revoked enrollment stays in place and re-application creates a new record.
type Enrollment struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"userId" db:"user_id"`
	CourseID  int64            `json:"courseId" db:"course_id"`
	Status    EnrollmentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	DecidedAt *time.Time       `json:"decidedAt,omitempty" db:"decided_at"`
	DecidedBy *int64           `json:"decidedBy,omitempty" db:"decided_by"`
	User      *User            `json:"user,omitempty"`   // Relation, no db tag
	Course    *Course          `json:"course,omitempty"` // Relation, no db tag
}
