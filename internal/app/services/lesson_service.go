package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/app/models/dto"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
	"github.com/selimk/learnhub/internal/pkg/auth"
	"github.com/selimk/learnhub/internal/pkg/filestorage"
)

// LessonStore is the lesson persistence the service depends on
type LessonStore interface {
	GetByID(ctx context.Context, id int64) (*models.Lesson, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) (int64, int, error)
	UpdateContentURL(ctx context.Context, lessonID int64, contentURL string) error
	DeleteAndResequence(ctx context.Context, lessonID int64) error
}

// LessonEnrollmentStore is the slice of enrollment persistence the
// service needs for read access checks
type LessonEnrollmentStore interface {
	HasApproved(ctx context.Context, userID, courseID int64) (bool, error)
}

// LessonService handles course content and the signed upload handshake
type LessonService interface {
	List(ctx context.Context, courseID int64, actor *models.User) ([]*models.Lesson, error)
	Create(ctx context.Context, courseID int64, actor *models.User, title string, lessonType models.LessonType, contentURL string) (*models.Lesson, error)
	Delete(ctx context.Context, lessonID int64, actor *models.User) error
	SignUpload(ctx context.Context, actor *models.User, fileName, contentType string) (*dto.SignUploadResponse, error)
	UpdateContentURL(ctx context.Context, lessonID int64, actor *models.User, filePath string) (*models.Lesson, error)
}

type lessonServiceImpl struct {
	lessonStore     LessonStore
	courseStore     CourseStore
	enrollmentStore LessonEnrollmentStore
	signer          *auth.UploadSigner
	storage         filestorage.Storage
	baseURL         string
	logger          zerolog.Logger
}

// NewLessonService creates a new lesson service instance
func NewLessonService(
	lessonStore LessonStore,
	courseStore CourseStore,
	enrollmentStore LessonEnrollmentStore,
	signer *auth.UploadSigner,
	storage filestorage.Storage,
	baseURL string,
	logger zerolog.Logger,
) LessonService {
	return &lessonServiceImpl{
		lessonStore:     lessonStore,
		courseStore:     courseStore,
		enrollmentStore: enrollmentStore,
		signer:          signer,
		storage:         storage,
		baseURL:         strings.TrimRight(baseURL, "/"),
		logger:          logger,
	}
}

// List returns the lessons of a course in order. The course owner and
// admins always see the list; everyone else needs an approved enrollment.
func (s *lessonServiceImpl) List(ctx context.Context, courseID int64, actor *models.User) ([]*models.Lesson, error) {
	course, err := s.courseStore.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error looking up course: %w", err)
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}

	if course.OwnerID != actor.ID && actor.Role != models.RoleAdmin {
		approved, err := s.enrollmentStore.HasApproved(ctx, actor.ID, courseID)
		if err != nil {
			return nil, fmt.Errorf("error checking enrollment: %w", err)
		}
		if !approved {
			return nil, apperrors.ErrEnrollmentRequired
		}
	}

	return s.lessonStore.ListByCourse(ctx, courseID)
}

// Create appends a lesson at the end of the course's ordering
func (s *lessonServiceImpl) Create(ctx context.Context, courseID int64, actor *models.User, title string, lessonType models.LessonType, contentURL string) (*models.Lesson, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title cannot be empty")
	}
	if !lessonType.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown lesson type %q", lessonType))
	}

	course, err := s.courseStore.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error looking up course: %w", err)
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}
	if course.OwnerID != actor.ID {
		return nil, apperrors.ErrNotOwner
	}

	lesson := &models.Lesson{
		CourseID:   courseID,
		Title:      title,
		Type:       lessonType,
		ContentURL: contentURL,
	}
	id, order, err := s.lessonStore.Create(ctx, lesson)
	if err != nil {
		return nil, fmt.Errorf("error creating lesson: %w", err)
	}
	lesson.ID = id
	lesson.Order = order

	s.logger.Info().Int64("lessonID", id).Int64("courseID", courseID).Int("order", order).Msg("Lesson created")
	return lesson, nil
}

// ownedLesson loads a lesson and enforces ownership of its course
func (s *lessonServiceImpl) ownedLesson(ctx context.Context, lessonID int64, actor *models.User) (*models.Lesson, error) {
	lesson, err := s.lessonStore.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("error looking up lesson: %w", err)
	}
	if lesson == nil {
		return nil, apperrors.ErrLessonNotFound
	}

	course, err := s.courseStore.GetByID(ctx, lesson.CourseID)
	if err != nil {
		return nil, fmt.Errorf("error looking up course: %w", err)
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}
	if course.OwnerID != actor.ID {
		return nil, apperrors.ErrNotOwner
	}
	return lesson, nil
}

// Delete removes a lesson and closes the gap in its course's ordering.
// The file backing the lesson's content is removed best-effort; a
// failure there never undoes the database delete.
func (s *lessonServiceImpl) Delete(ctx context.Context, lessonID int64, actor *models.User) error {
	lesson, err := s.ownedLesson(ctx, lessonID, actor)
	if err != nil {
		return err
	}
	if err := s.lessonStore.DeleteAndResequence(ctx, lessonID); err != nil {
		return fmt.Errorf("error deleting lesson: %w", err)
	}
	s.removeContentFile(lesson)
	s.logger.Info().Int64("lessonID", lessonID).Msg("Lesson deleted")
	return nil
}

// removeContentFile deletes the stored file behind a lesson's content
// URL. Lessons pointing at external URLs are left alone.
func (s *lessonServiceImpl) removeContentFile(lesson *models.Lesson) {
	prefix := s.baseURL + "/files/"
	if !strings.HasPrefix(lesson.ContentURL, prefix) {
		return
	}
	relPath := strings.TrimPrefix(lesson.ContentURL, prefix)
	if err := s.storage.Delete(relPath); err != nil {
		s.logger.Warn().Err(err).Int64("lessonID", lesson.ID).Str("path", relPath).Msg("Failed to remove lesson content file")
	}
}

// SignUpload issues a short-lived URL authorizing a direct PUT of file
// bytes. The returned file path is what the client later binds to a
// lesson via UpdateContentURL.
func (s *lessonServiceImpl) SignUpload(ctx context.Context, actor *models.User, fileName, contentType string) (*dto.SignUploadResponse, error) {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" || contentType == "" {
		return nil, apperrors.NewValidationError("file name and content type are required")
	}

	filePath := fmt.Sprintf("lessons/%s%s", uuid.New().String(), ext)
	token, err := s.signer.Sign(actor.ID, filePath, contentType)
	if err != nil {
		return nil, err
	}

	uploadURL := fmt.Sprintf("%s/api/v1/uploads?token=%s", s.baseURL, url.QueryEscape(token))
	return &dto.SignUploadResponse{
		UploadURL: uploadURL,
		FilePath:  filePath,
	}, nil
}

// UpdateContentURL points a lesson at an uploaded file
func (s *lessonServiceImpl) UpdateContentURL(ctx context.Context, lessonID int64, actor *models.User, filePath string) (*models.Lesson, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, apperrors.NewValidationError("file path cannot be empty")
	}

	lesson, err := s.ownedLesson(ctx, lessonID, actor)
	if err != nil {
		return nil, err
	}

	contentURL := fmt.Sprintf("%s/files/%s", s.baseURL, strings.TrimLeft(filePath, "/"))
	if err := s.lessonStore.UpdateContentURL(ctx, lessonID, contentURL); err != nil {
		return nil, fmt.Errorf("error updating lesson content: %w", err)
	}
	lesson.ContentURL = contentURL
	return lesson, nil
}
