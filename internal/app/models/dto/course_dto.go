package dto

// CreateCourseRequest is the payload for course creation
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// UpdateCourseRequest is the payload for course updates
type UpdateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// CreateLessonRequest is the payload for lesson creation
type CreateLessonRequest struct {
	Title      string `json:"title" binding:"required,min=1,max=200"`
	Type       string `json:"type" binding:"required,oneof=VIDEO PDF AUDIO TEXT"`
	ContentURL string `json:"contentUrl"`
}

// SignUploadRequest asks for a signed upload URL for lesson content
type SignUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// SignUploadResponse carries the signed URL handoff: PUT the file bytes to
// UploadURL, then persist FilePath via POST /instructor/lessons/update-url.
type SignUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	FilePath  string `json:"filePath"`
}

// UpdateLessonURLRequest persists an uploaded file path as a lesson's content URL
type UpdateLessonURLRequest struct {
	LessonID int64  `json:"lessonId" binding:"required"`
	FilePath string `json:"filePath" binding:"required"`
}
