package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
)

// UserStore is the user persistence the admin service depends on
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, role *models.Role, offset uint64, limit int) ([]*models.User, error)
	CountUsers(ctx context.Context, role *models.Role) (int64, error)
	UpdateActive(ctx context.Context, userID int64, active bool) error
	DeleteUser(ctx context.Context, userID int64) error
}

// UserSessionStore revokes sessions when accounts are disabled or removed
type UserSessionStore interface {
	DeleteByUserID(ctx context.Context, userID int64) error
}

// UserService handles admin account management
type UserService interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
	List(ctx context.Context, role *models.Role, offset uint64, limit int) ([]*models.User, int64, error)
	SetActive(ctx context.Context, userID int64, active bool, actor *models.User) error
	Delete(ctx context.Context, userID int64, actor *models.User) error
}

type userServiceImpl struct {
	userStore    UserStore
	sessionStore UserSessionStore
	logger       zerolog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(userStore UserStore, sessionStore UserSessionStore, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userStore:    userStore,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

// Get returns one user by id
func (s *userServiceImpl) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userStore.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// List returns a page of users with the total count, optionally filtered
// by role
func (s *userServiceImpl) List(ctx context.Context, role *models.Role, offset uint64, limit int) ([]*models.User, int64, error) {
	users, err := s.userStore.ListUsers(ctx, role, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	total, err := s.userStore.CountUsers(ctx, role)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}
	return users, total, nil
}

// SetActive blocks or unblocks an account. Blocking also revokes the
// account's sessions so the change takes effect on the next request.
func (s *userServiceImpl) SetActive(ctx context.Context, userID int64, active bool, actor *models.User) error {
	if userID == actor.ID {
		return apperrors.NewConflictError("cannot change own account state")
	}

	user, err := s.userStore.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}
	if user.Role == models.RoleAdmin {
		return apperrors.NewForbiddenError("cannot block an admin account")
	}

	if err := s.userStore.UpdateActive(ctx, userID, active); err != nil {
		return fmt.Errorf("error updating account state: %w", err)
	}
	if !active {
		if err := s.sessionStore.DeleteByUserID(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke sessions of blocked account")
		}
	}

	s.logger.Info().Int64("userID", userID).Bool("active", active).Int64("actorID", actor.ID).Msg("Account state changed")
	return nil
}

// Delete removes an account entirely
func (s *userServiceImpl) Delete(ctx context.Context, userID int64, actor *models.User) error {
	if userID == actor.ID {
		return apperrors.NewConflictError("cannot delete own account")
	}

	user, err := s.userStore.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}
	if user.Role == models.RoleAdmin {
		return apperrors.NewForbiddenError("cannot delete an admin account")
	}

	if err := s.sessionStore.DeleteByUserID(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke sessions of deleted account")
	}
	if err := s.userStore.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	s.logger.Info().Int64("userID", userID).Int64("actorID", actor.ID).Msg("Account deleted")
	return nil
}
