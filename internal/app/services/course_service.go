package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/app/workflow"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
)

// CourseStore is the course persistence the service depends on
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Course, error)
	ListPublished(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	UpdateStatus(ctx context.Context, courseID int64, status models.CourseStatus) error
	Delete(ctx context.Context, courseID int64) error
}

// CourseService handles course management and publication
type CourseService interface {
	Create(ctx context.Context, ownerID int64, title, description string) (*models.Course, error)
	GetOwned(ctx context.Context, courseID, ownerID int64) (*models.Course, error)
	ListOwned(ctx context.Context, ownerID int64) ([]*models.Course, error)
	ListPublished(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, courseID int64, actor *models.User, title, description string) (*models.Course, error)
	Delete(ctx context.Context, courseID int64, actor *models.User) error
	SetPublication(ctx context.Context, courseID int64, action workflow.Action, actor *models.User) (*models.Course, error)
}

type courseServiceImpl struct {
	courseStore CourseStore
	graph       *workflow.Graph
	locker      *workflow.RecordLocker
	logger      zerolog.Logger
}

// NewCourseService creates a new course service instance
func NewCourseService(courseStore CourseStore, locker *workflow.RecordLocker, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		courseStore: courseStore,
		graph:       workflow.CoursePublication(),
		locker:      locker,
		logger:      logger,
	}
}

// Create makes a new draft course owned by the instructor
func (s *courseServiceImpl) Create(ctx context.Context, ownerID int64, title, description string) (*models.Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title cannot be empty")
	}

	course := &models.Course{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      models.CourseDraft,
	}
	id, err := s.courseStore.Create(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("error creating course: %w", err)
	}
	course.ID = id

	s.logger.Info().Int64("courseID", id).Int64("ownerID", ownerID).Msg("Course created")
	return course, nil
}

// ownedCourse loads a course and enforces ownership. Admins bypass the
// ownership check.
func (s *courseServiceImpl) ownedCourse(ctx context.Context, courseID int64, actor *models.User) (*models.Course, error) {
	course, err := s.courseStore.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error looking up course: %w", err)
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}
	if course.OwnerID != actor.ID && actor.Role != models.RoleAdmin {
		return nil, apperrors.ErrNotOwner
	}
	return course, nil
}

// GetOwned returns a course the instructor owns
func (s *courseServiceImpl) GetOwned(ctx context.Context, courseID, ownerID int64) (*models.Course, error) {
	course, err := s.courseStore.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error looking up course: %w", err)
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}
	if course.OwnerID != ownerID {
		return nil, apperrors.ErrNotOwner
	}
	return course, nil
}

// ListOwned returns all courses owned by the instructor
func (s *courseServiceImpl) ListOwned(ctx context.Context, ownerID int64) ([]*models.Course, error) {
	return s.courseStore.ListByOwner(ctx, ownerID)
}

// ListPublished returns the public course catalog
func (s *courseServiceImpl) ListPublished(ctx context.Context) ([]*models.Course, error) {
	return s.courseStore.ListPublished(ctx)
}

// Update edits the title and description of an owned course
func (s *courseServiceImpl) Update(ctx context.Context, courseID int64, actor *models.User, title, description string) (*models.Course, error) {
	course, err := s.ownedCourse(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title != "" {
		course.Title = title
	}
	if description != "" {
		course.Description = description
	}
	if err := s.courseStore.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("error updating course: %w", err)
	}
	return course, nil
}

// Delete removes an owned course along with its lessons and enrollments
func (s *courseServiceImpl) Delete(ctx context.Context, courseID int64, actor *models.User) error {
	if _, err := s.ownedCourse(ctx, courseID, actor); err != nil {
		return err
	}
	if err := s.courseStore.Delete(ctx, courseID); err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	s.logger.Info().Int64("courseID", courseID).Int64("actorID", actor.ID).Msg("Course deleted")
	return nil
}

// SetPublication publishes or unpublishes a course through the
// publication workflow
func (s *courseServiceImpl) SetPublication(ctx context.Context, courseID int64, action workflow.Action, actor *models.User) (*models.Course, error) {
	unlock := s.locker.Lock(workflow.Key("course", courseID))
	defer unlock()

	course, err := s.ownedCourse(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}

	result, err := s.graph.Apply(workflow.Status(course.Status), action, actor.Role)
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		return course, nil
	}

	newStatus := models.CourseStatus(result.Status)
	if err := s.courseStore.UpdateStatus(ctx, courseID, newStatus); err != nil {
		return nil, fmt.Errorf("error updating course status: %w", err)
	}
	course.Status = newStatus

	s.logger.Info().
		Int64("courseID", courseID).
		Str("action", string(action)).
		Int64("actorID", actor.ID).
		Msg("Course publication changed")
	return course, nil
}
