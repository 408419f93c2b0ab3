package models

import (
	"time"
)

// ApplicationStatus is the lifecycle status of an instructor application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// IsValid reports whether the status is one of the known statuses
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// InstructorApplication defines the instructor application model based on the
// 'instructor_applications' table. Both decisions are terminal; a rejected
// applicant must submit a new application.
type InstructorApplication struct {
	ID        int64             `json:"id" db:"id"`
	UserID    int64             `json:"userId" db:"user_id"`
	Bio       string            `json:"bio,omitempty" db:"bio"`
	Expertise []string          `json:"expertise,omitempty" db:"expertise"`
	Status    ApplicationStatus `json:"status" db:"status"`
	AppliedAt time.Time         `json:"appliedAt" db:"applied_at"`
	DecidedAt *time.Time        `json:"decidedAt,omitempty" db:"decided_at"`
	DecidedBy *int64            `json:"decidedBy,omitempty" db:"decided_by"`
	User      *User             `json:"user,omitempty"` // Relation, no db tag
}
