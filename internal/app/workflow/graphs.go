package workflow

import (
	"github.com/selimk/learnhub/internal/app/models"
)

// Workflow actions
const (
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionRevoke    Action = "revoke"
	ActionPublish   Action = "publish"
	ActionUnpublish Action = "unpublish"
)

// Statuses shared by the approval workflows
const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusRevoked   Status = "revoked"
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// InstructorApplications is the admin-decided application workflow.
// Both outcomes are terminal; re-application creates a new record.
func InstructorApplications() *Graph {
	return NewGraph("instructor application").
		Allow(ActionApprove, StatusPending, StatusApproved, models.RoleAdmin).
		Allow(ActionReject, StatusPending, StatusRejected, models.RoleAdmin)
}

// Enrollments is the instructor-decided enrollment workflow. An approved
// enrollment can still be revoked; a rejected one is terminal.
func Enrollments() *Graph {
	return NewGraph("enrollment").
		Allow(ActionApprove, StatusPending, StatusApproved, models.RoleInstructor).
		Allow(ActionReject, StatusPending, StatusRejected, models.RoleInstructor).
		Allow(ActionRevoke, StatusApproved, StatusRevoked, models.RoleInstructor)
}

// CoursePublication is the freely reversible draft/published workflow,
// available to the owning instructor and to admins.
func CoursePublication() *Graph {
	return NewGraph("course publication").
		Allow(ActionPublish, StatusDraft, StatusPublished, models.RoleInstructor, models.RoleAdmin).
		Allow(ActionUnpublish, StatusPublished, StatusDraft, models.RoleInstructor, models.RoleAdmin)
}
