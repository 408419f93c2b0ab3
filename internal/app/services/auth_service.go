package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
	"github.com/selimk/learnhub/internal/pkg/auth"
	"github.com/selimk/learnhub/internal/pkg/email"
)

const (
	otpLength   = 6
	otpLifetime = 10 * time.Minute
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// AuthUserStore is the user persistence the auth service depends on
type AuthUserStore interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateEmailVerified(ctx context.Context, userID int64, verified bool) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
}

// AuthSessionStore is the session persistence the auth service depends on
type AuthSessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

// OTPStore is the one-time-code persistence the auth service depends on
type OTPStore interface {
	Create(ctx context.Context, token *models.OTPToken) (int64, error)
	GetActive(ctx context.Context, userID int64, purpose models.OTPPurpose, code string) (*models.OTPToken, error)
	MarkUsed(ctx context.Context, tokenID int64) error
}

// AuthService handles registration, login and the OTP flows
type AuthService interface {
	Register(ctx context.Context, name, emailAddr, password, confirmPassword string) (*models.User, error)
	VerifyOTP(ctx context.Context, emailAddr, code string) error
	ResendOTP(ctx context.Context, emailAddr string) error
	Login(ctx context.Context, emailAddr, password string) (*models.User, *models.Session, error)
	Logout(ctx context.Context, sessionID string) error
	ForgotPassword(ctx context.Context, emailAddr string) error
	VerifyForgotPassword(ctx context.Context, emailAddr, code string) error
	ChangeForgotPassword(ctx context.Context, emailAddr, code, password, confirmPassword string) error
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword, confirmPassword string) error
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	userStore    AuthUserStore
	sessionStore AuthSessionStore
	otpStore     OTPStore
	emailService email.Service
	sessionTTL   time.Duration
	logger       zerolog.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(
	userStore AuthUserStore,
	sessionStore AuthSessionStore,
	otpStore OTPStore,
	emailService email.Service,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userStore:    userStore,
		sessionStore: sessionStore,
		otpStore:     otpStore,
		emailService: emailService,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

func (s *authServiceImpl) validateEmail(emailAddr string) error {
	if !emailRegex.MatchString(strings.TrimSpace(emailAddr)) {
		return fmt.Errorf("%w: email format is invalid", apperrors.ErrInvalidEmail)
	}
	return nil
}

func (s *authServiceImpl) validatePassword(password, confirmPassword string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", apperrors.ErrInvalidPassword)
	}
	if password != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", apperrors.ErrInvalidPassword)
	}
	return nil
}

// generateOTP returns a random numeric code of otpLength digits
func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", otpLength, n), nil
}

// Register creates an unverified account and emails a verification code
func (s *authServiceImpl) Register(ctx context.Context, name, emailAddr, password, confirmPassword string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("username cannot be empty")
	}
	if err := s.validateEmail(emailAddr); err != nil {
		return nil, err
	}
	if err := s.validatePassword(password, confirmPassword); err != nil {
		return nil, err
	}

	existing, err := s.userStore.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking existing email: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:          name,
		Email:         emailAddr,
		Password:      hash,
		Role:          models.RoleUser,
		IsActive:      true,
		EmailVerified: false,
	}
	id, err := s.userStore.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	user.ID = id

	if err := s.issueOTP(ctx, user, models.OTPPurposeRegister); err != nil {
		// The account exists; the code can be re-requested via resend
		s.logger.Error().Err(err).Int64("userID", id).Msg("Failed to issue registration code")
	}

	return user, nil
}

func (s *authServiceImpl) issueOTP(ctx context.Context, user *models.User, purpose models.OTPPurpose) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}

	token := &models.OTPToken{
		UserID:    user.ID,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: time.Now().Add(otpLifetime),
	}
	if _, err := s.otpStore.Create(ctx, token); err != nil {
		return err
	}

	if purpose == models.OTPPurposePasswordReset {
		return s.emailService.SendPasswordResetCode(user.Email, user.Name, code)
	}
	return s.emailService.SendVerificationCode(user.Email, user.Name, code)
}

// VerifyOTP consumes a registration code and marks the email verified
func (s *authServiceImpl) VerifyOTP(ctx context.Context, emailAddr, code string) error {
	user, err := s.userStore.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		return apperrors.ErrInvalidOTP
	}

	token, err := s.otpStore.GetActive(ctx, user.ID, models.OTPPurposeRegister, code)
	if err != nil {
		return fmt.Errorf("error looking up code: %w", err)
	}
	if token == nil {
		return apperrors.ErrInvalidOTP
	}

	if err := s.otpStore.MarkUsed(ctx, token.ID); err != nil {
		return fmt.Errorf("error consuming code: %w", err)
	}
	if err := s.userStore.UpdateEmailVerified(ctx, user.ID, true); err != nil {
		return fmt.Errorf("error marking email verified: %w", err)
	}
	return nil
}

// ResendOTP issues a fresh registration code for an unverified account
func (s *authServiceImpl) ResendOTP(ctx context.Context, emailAddr string) error {
	user, err := s.userStore.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		// Do not reveal whether the address exists
		return nil
	}
	if user.EmailVerified {
		return nil
	}
	return s.issueOTP(ctx, user, models.OTPPurposeRegister)
}

// Login verifies credentials and opens a new session
func (s *authServiceImpl) Login(ctx context.Context, emailAddr, password string) (*models.User, *models.Session, error) {
	user, err := s.userStore.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.Password, password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}
	if !user.EmailVerified {
		return nil, nil, apperrors.ErrEmailNotVerified
	}

	now := time.Now()
	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessionStore.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("error creating session: %w", err)
	}

	if err := s.userStore.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}

	return user, session, nil
}

// Logout destroys the session; an unknown session id is not an error
func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessionStore.Delete(ctx, sessionID)
}

// ForgotPassword emails a password reset code when the address exists
func (s *authServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userStore.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		// Same response whether or not the address exists
		return nil
	}
	return s.issueOTP(ctx, user, models.OTPPurposePasswordReset)
}

// VerifyForgotPassword checks a reset code without consuming it, so the
// client can show the new-password form only after a valid code
func (s *authServiceImpl) VerifyForgotPassword(ctx context.Context, emailAddr, code string) error {
	user, err := s.userStore.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		return apperrors.ErrInvalidOTP
	}

	token, err := s.otpStore.GetActive(ctx, user.ID, models.OTPPurposePasswordReset, code)
	if err != nil {
		return fmt.Errorf("error looking up code: %w", err)
	}
	if token == nil {
		return apperrors.ErrInvalidOTP
	}
	return nil
}

// ChangeForgotPassword consumes a reset code and replaces the password
func (s *authServiceImpl) ChangeForgotPassword(ctx context.Context, emailAddr, code, password, confirmPassword string) error {
	if err := s.validatePassword(password, confirmPassword); err != nil {
		return err
	}

	user, err := s.userStore.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		return apperrors.ErrInvalidOTP
	}

	token, err := s.otpStore.GetActive(ctx, user.ID, models.OTPPurposePasswordReset, code)
	if err != nil {
		return fmt.Errorf("error looking up code: %w", err)
	}
	if token == nil {
		return apperrors.ErrInvalidOTP
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.otpStore.MarkUsed(ctx, token.ID); err != nil {
		return fmt.Errorf("error consuming code: %w", err)
	}
	if err := s.userStore.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// ChangePassword replaces the password of a logged-in user
func (s *authServiceImpl) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword, confirmPassword string) error {
	if err := s.validatePassword(newPassword, confirmPassword); err != nil {
		return err
	}

	user, err := s.userStore.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}
	if !auth.CheckPassword(user.Password, oldPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.userStore.UpdatePassword(ctx, userID, hash)
}
