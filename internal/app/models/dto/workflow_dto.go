package dto

// BulkTransitionResponse reports the outcome of a bulk workflow transition.
// Bulk operations are best-effort per record, not transactional across the
// set: partial failure is reported as such and the list endpoints remain the
// authoritative view afterwards.
type BulkTransitionResponse struct {
	Requested int     `json:"requested"`
	Processed int     `json:"processed"`
	Failed    int     `json:"failed"`
	FailedIDs []int64 `json:"failedIds,omitempty"`
}

// ApplyInstructorRequest is the payload for submitting an instructor application
type ApplyInstructorRequest struct {
	Bio       string   `json:"bio" binding:"required,max=2000"`
	Expertise []string `json:"expertise" binding:"omitempty,max=20,dive,max=100"`
}
