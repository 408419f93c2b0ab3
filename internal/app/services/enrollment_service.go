package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/app/models/dto"
	"github.com/selimk/learnhub/internal/app/workflow"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
)

// bulkWorkers bounds concurrent status updates in accept-all / reject-all
const bulkWorkers = 8

// EnrollmentStore is the enrollment persistence the service depends on
type EnrollmentStore interface {
	Create(ctx context.Context, enrollment *models.Enrollment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	ListByInstructor(ctx context.Context, instructorID int64, courseID *int64) ([]*models.Enrollment, error)
	ListPendingIDsByInstructor(ctx context.Context, instructorID int64) ([]int64, error)
	ListByUser(ctx context.Context, userID int64, status *models.EnrollmentStatus) ([]*models.Enrollment, error)
	UpdateStatus(ctx context.Context, enrollmentID int64, status models.EnrollmentStatus, decidedBy int64) error
}

// EnrollmentCourseStore is the slice of course persistence the service needs
type EnrollmentCourseStore interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

// EnrollmentService handles enrollment requests and their review
type EnrollmentService interface {
	Enroll(ctx context.Context, userID, courseID int64) (*models.Enrollment, error)
	ListForInstructor(ctx context.Context, instructorID int64, courseID *int64) ([]*models.Enrollment, error)
	ListForUser(ctx context.Context, userID int64, status *models.EnrollmentStatus) ([]*models.Enrollment, error)
	Decide(ctx context.Context, enrollmentID int64, action workflow.Action, actor *models.User) (*models.Enrollment, error)
	DecideAll(ctx context.Context, action workflow.Action, actor *models.User) (*dto.BulkTransitionResponse, error)
}

type enrollmentServiceImpl struct {
	enrollmentStore EnrollmentStore
	courseStore     EnrollmentCourseStore
	graph           *workflow.Graph
	locker          *workflow.RecordLocker
	logger          zerolog.Logger
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(
	enrollmentStore EnrollmentStore,
	courseStore EnrollmentCourseStore,
	locker *workflow.RecordLocker,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		enrollmentStore: enrollmentStore,
		courseStore:     courseStore,
		graph:           workflow.Enrollments(),
		locker:          locker,
		logger:          logger,
	}
}

// Enroll files a pending enrollment request for a published course
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, userID, courseID int64) (*models.Enrollment, error) {
	course, err := s.courseStore.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error looking up course: %w", err)
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}
	if course.Status != models.CoursePublished {
		return nil, apperrors.ErrCourseNotPublished
	}
	if course.OwnerID == userID {
		return nil, apperrors.NewConflictError("cannot enroll in own course")
	}

	enrollment := &models.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   models.EnrollmentPending,
	}
	id, err := s.enrollmentStore.Create(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	enrollment.ID = id

	s.logger.Info().Int64("enrollmentID", id).Int64("userID", userID).Int64("courseID", courseID).Msg("Enrollment requested")
	return enrollment, nil
}

// ListForInstructor returns enrollments across the instructor's courses,
// optionally narrowed to one course
func (s *enrollmentServiceImpl) ListForInstructor(ctx context.Context, instructorID int64, courseID *int64) ([]*models.Enrollment, error) {
	return s.enrollmentStore.ListByInstructor(ctx, instructorID, courseID)
}

// ListForUser returns a learner's own enrollments
func (s *enrollmentServiceImpl) ListForUser(ctx context.Context, userID int64, status *models.EnrollmentStatus) ([]*models.Enrollment, error) {
	return s.enrollmentStore.ListByUser(ctx, userID, status)
}

// Decide applies an approve, reject or revoke action to one enrollment.
// The actor must own the enrollment's course.
func (s *enrollmentServiceImpl) Decide(ctx context.Context, enrollmentID int64, action workflow.Action, actor *models.User) (*models.Enrollment, error) {
	unlock := s.locker.Lock(workflow.Key("enrollment", enrollmentID))
	defer unlock()

	return s.decideLocked(ctx, enrollmentID, action, actor)
}

func (s *enrollmentServiceImpl) decideLocked(ctx context.Context, enrollmentID int64, action workflow.Action, actor *models.User) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentStore.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("error looking up enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	if enrollment.Course == nil || enrollment.Course.OwnerID != actor.ID {
		return nil, apperrors.ErrNotOwner
	}

	result, err := s.graph.Apply(workflow.Status(enrollment.Status), action, actor.Role)
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		return enrollment, nil
	}

	newStatus := models.EnrollmentStatus(result.Status)
	if err := s.enrollmentStore.UpdateStatus(ctx, enrollmentID, newStatus, actor.ID); err != nil {
		return nil, fmt.Errorf("error updating enrollment status: %w", err)
	}
	enrollment.Status = newStatus

	s.logger.Info().
		Int64("enrollmentID", enrollmentID).
		Str("action", string(action)).
		Int64("decidedBy", actor.ID).
		Msg("Enrollment decided")
	return enrollment, nil
}

// DecideAll applies one action to every pending enrollment across the
// instructor's courses. Records that fail are reported, not retried, and
// do not stop the rest of the batch.
func (s *enrollmentServiceImpl) DecideAll(ctx context.Context, action workflow.Action, actor *models.User) (*dto.BulkTransitionResponse, error) {
	ids, err := s.enrollmentStore.ListPendingIDsByInstructor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing pending enrollments: %w", err)
	}

	var (
		mu        sync.Mutex
		processed int
		failedIDs []int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkWorkers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			unlock := s.locker.Lock(workflow.Key("enrollment", id))
			defer unlock()

			_, err := s.decideLocked(gctx, id, action, actor)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failedIDs = append(failedIDs, id)
				s.logger.Warn().Err(err).Int64("enrollmentID", id).Str("action", string(action)).Msg("Bulk enrollment decision failed")
				return nil
			}
			processed++
			return nil
		})
	}
	// Per-record failures never abort the group
	_ = g.Wait()

	sort.Slice(failedIDs, func(i, j int) bool { return failedIDs[i] < failedIDs[j] })

	return &dto.BulkTransitionResponse{
		Requested: len(ids),
		Processed: processed,
		Failed:    len(failedIDs),
		FailedIDs: failedIDs,
	}, nil
}
