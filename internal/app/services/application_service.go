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

// ApplicationStore is the instructor application persistence the service depends on
type ApplicationStore interface {
	Create(ctx context.Context, app *models.InstructorApplication) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.InstructorApplication, error)
	List(ctx context.Context, status *models.ApplicationStatus) ([]*models.InstructorApplication, error)
	HasPending(ctx context.Context, userID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus, decidedBy int64) error
}

// ApplicationUserStore is the slice of user persistence the service needs
type ApplicationUserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateRole(ctx context.Context, userID int64, role models.Role) error
}

// ApplicationService handles instructor applications and their review
type ApplicationService interface {
	Apply(ctx context.Context, userID int64, bio string, expertise []string) (*models.InstructorApplication, error)
	List(ctx context.Context, status *models.ApplicationStatus) ([]*models.InstructorApplication, error)
	Decide(ctx context.Context, applicationID int64, action workflow.Action, actor *models.User) (*models.InstructorApplication, error)
}

type applicationServiceImpl struct {
	appStore  ApplicationStore
	userStore ApplicationUserStore
	graph     *workflow.Graph
	locker    *workflow.RecordLocker
	logger    zerolog.Logger
}

// NewApplicationService creates a new application service instance
func NewApplicationService(
	appStore ApplicationStore,
	userStore ApplicationUserStore,
	locker *workflow.RecordLocker,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		appStore:  appStore,
		userStore: userStore,
		graph:     workflow.InstructorApplications(),
		locker:    locker,
		logger:    logger,
	}
}

// Apply files a new instructor application for a learner account
func (s *applicationServiceImpl) Apply(ctx context.Context, userID int64, bio string, expertise []string) (*models.InstructorApplication, error) {
	bio = strings.TrimSpace(bio)
	if bio == "" {
		return nil, apperrors.NewValidationError("bio cannot be empty")
	}

	user, err := s.userStore.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if user.Role != models.RoleUser {
		return nil, apperrors.NewConflictError("account is already an instructor")
	}

	pending, err := s.appStore.HasPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error checking existing applications: %w", err)
	}
	if pending {
		return nil, apperrors.ErrApplicationPending
	}

	app := &models.InstructorApplication{
		UserID:    userID,
		Bio:       bio,
		Expertise: expertise,
		Status:    models.ApplicationPending,
	}
	id, err := s.appStore.Create(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("error creating application: %w", err)
	}
	app.ID = id

	s.logger.Info().Int64("userID", userID).Int64("applicationID", id).Msg("Instructor application filed")
	return app, nil
}

// List returns applications, optionally filtered by status
func (s *applicationServiceImpl) List(ctx context.Context, status *models.ApplicationStatus) ([]*models.InstructorApplication, error) {
	return s.appStore.List(ctx, status)
}

// Decide applies an approve or reject action to an application. Approval
// promotes the applicant to the instructor role.
func (s *applicationServiceImpl) Decide(ctx context.Context, applicationID int64, action workflow.Action, actor *models.User) (*models.InstructorApplication, error) {
	unlock := s.locker.Lock(workflow.Key("application", applicationID))
	defer unlock()

	app, err := s.appStore.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error looking up application: %w", err)
	}
	if app == nil {
		return nil, apperrors.ErrApplicationNotFound
	}

	result, err := s.graph.Apply(workflow.Status(app.Status), action, actor.Role)
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		// Repeated decision with the same outcome, nothing to do
		return app, nil
	}

	newStatus := models.ApplicationStatus(result.Status)
	if err := s.appStore.UpdateStatus(ctx, applicationID, newStatus, actor.ID); err != nil {
		return nil, fmt.Errorf("error updating application status: %w", err)
	}
	app.Status = newStatus

	if newStatus == models.ApplicationApproved {
		if err := s.userStore.UpdateRole(ctx, app.UserID, models.RoleInstructor); err != nil {
			return nil, fmt.Errorf("error promoting applicant: %w", err)
		}
	}

	s.logger.Info().
		Int64("applicationID", applicationID).
		Str("action", string(action)).
		Int64("decidedBy", actor.ID).
		Msg("Instructor application decided")
	return app, nil
}
