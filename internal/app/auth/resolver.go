package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
)

// ErrAbsent is returned for every resolution failure: missing credential,
// unknown or expired session, lookup error, or a disabled account. Callers
// never learn which; a failed check is always "no access now".
var ErrAbsent = errors.New("session absent or unresolvable")

// Principal is the resolved identity and role of the current session
type Principal struct {
	ID    int64
	Name  string
	Email string
	Role  models.Role
}

// Resolver resolves an opaque session credential to a Principal
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*Principal, error)
}

// SessionStore is the session lookup the resolver depends on
type SessionStore interface {
	GetByID(ctx context.Context, id string) (*models.Session, error)
}

// UserStore is the user lookup the resolver depends on
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionResolver resolves credentials against the session and user tables.
// The user row is re-read on every resolution so role changes and account
// blocks take effect on the next request, not after a logout.
type SessionResolver struct {
	sessions SessionStore
	users    UserStore
	logger   zerolog.Logger
}

// NewSessionResolver creates a new SessionResolver
func NewSessionResolver(sessions SessionStore, users UserStore, logger zerolog.Logger) *SessionResolver {
	return &SessionResolver{
		sessions: sessions,
		users:    users,
		logger:   logger,
	}
}

// Resolve looks the credential up and returns the Principal it belongs to.
// Nothing is cached between calls.
func (r *SessionResolver) Resolve(ctx context.Context, credential string) (*Principal, error) {
	if credential == "" {
		return nil, ErrAbsent
	}

	session, err := r.sessions.GetByID(ctx, credential)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Session lookup failed")
		return nil, ErrAbsent
	}
	if session == nil {
		// The reason is logged for operators; callers only ever see ErrAbsent
		r.logger.Debug().Err(apperrors.ErrSessionNotFound).Msg("Session resolution failed")
		return nil, ErrAbsent
	}

	if session.Expired(time.Now()) {
		r.logger.Debug().Err(apperrors.ErrSessionExpired).Str("sessionID", session.ID).Msg("Session resolution failed")
		return nil, ErrAbsent
	}

	user, err := r.users.GetUserByID(ctx, session.UserID)
	if err != nil || user == nil {
		if err != nil {
			r.logger.Error().Err(err).Int64("userID", session.UserID).Msg("User lookup failed during session resolution")
		}
		return nil, ErrAbsent
	}

	if !user.IsActive {
		return nil, ErrAbsent
	}

	return &Principal{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}
