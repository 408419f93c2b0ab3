package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
	"github.com/selimk/learnhub/internal/pkg/auth"
)

type authFixture struct {
	users    *fakeUserStore
	sessions *fakeSessionStore
	otps     *fakeOTPStore
	emails   *fakeEmailSender
	service  AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    newFakeUserStore(),
		sessions: newFakeSessionStore(),
		otps:     newFakeOTPStore(),
		emails:   &fakeEmailSender{},
	}
	f.service = NewAuthService(f.users, f.sessions, f.otps, f.emails, time.Hour, zerolog.Nop())
	return f
}

func TestRegisterVerifyLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user, err := f.service.Register(ctx, "Ada", "ada@example.com", "password123", "password123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, 1, f.emails.sent)

	// Login before verification is refused
	_, _, err = f.service.Login(ctx, "ada@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)

	code := f.otps.lastCode(user.ID, models.OTPPurposeRegister)
	require.NotEmpty(t, code)
	require.NoError(t, f.service.VerifyOTP(ctx, "ada@example.com", code))

	loggedIn, session, err := f.service.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.ID)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.service.Register(ctx, "Ada", "not-an-email", "password123", "password123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmail)

	_, err = f.service.Register(ctx, "Ada", "ada@example.com", "short", "short")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = f.service.Register(ctx, "Ada", "ada@example.com", "password123", "different123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = f.service.Register(ctx, "", "ada@example.com", "password123", "password123")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.service.Register(ctx, "Ada", "ada@example.com", "password123", "password123")
	require.NoError(t, err)

	_, err = f.service.Register(ctx, "Other", "ada@example.com", "password456", "password456")
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLoginFailures(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := f.users.addUser("Ada", "ada@example.com", models.RoleUser)
	require.NoError(t, f.users.UpdatePassword(ctx, user.ID, hash))

	_, _, err = f.service.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = f.service.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, f.users.UpdateActive(ctx, user.ID, false))
	_, _, err = f.service.Login(ctx, "ada@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user, err := f.service.Register(ctx, "Ada", "ada@example.com", "password123", "password123")
	require.NoError(t, err)

	err = f.service.VerifyOTP(ctx, "ada@example.com", "000000")
	if code := f.otps.lastCode(user.ID, models.OTPPurposeRegister); code == "000000" {
		t.Skip("randomly generated the guessed code")
	}
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestVerifyOTPIsSingleUse(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user, err := f.service.Register(ctx, "Ada", "ada@example.com", "password123", "password123")
	require.NoError(t, err)

	code := f.otps.lastCode(user.ID, models.OTPPurposeRegister)
	require.NoError(t, f.service.VerifyOTP(ctx, "ada@example.com", code))

	err = f.service.VerifyOTP(ctx, "ada@example.com", code)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestResendOTPInvalidatesPreviousCode(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user, err := f.service.Register(ctx, "Ada", "ada@example.com", "password123", "password123")
	require.NoError(t, err)
	first := f.otps.lastCode(user.ID, models.OTPPurposeRegister)

	require.NoError(t, f.service.ResendOTP(ctx, "ada@example.com"))
	second := f.otps.lastCode(user.ID, models.OTPPurposeRegister)
	require.NotEmpty(t, second)

	if first != second {
		err = f.service.VerifyOTP(ctx, "ada@example.com", first)
		assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
	}
	require.NoError(t, f.service.VerifyOTP(ctx, "ada@example.com", second))
}

func TestForgotPasswordFlow(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	hash, err := auth.HashPassword("oldpassword1")
	require.NoError(t, err)
	user := f.users.addUser("Ada", "ada@example.com", models.RoleUser)
	require.NoError(t, f.users.UpdatePassword(ctx, user.ID, hash))

	require.NoError(t, f.service.ForgotPassword(ctx, "ada@example.com"))
	code := f.otps.lastCode(user.ID, models.OTPPurposePasswordReset)
	require.NotEmpty(t, code)

	// Verification does not consume the code
	require.NoError(t, f.service.VerifyForgotPassword(ctx, "ada@example.com", code))
	require.NoError(t, f.service.ChangeForgotPassword(ctx, "ada@example.com", code, "newpassword1", "newpassword1"))

	_, _, err = f.service.Login(ctx, "ada@example.com", "oldpassword1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, _, err = f.service.Login(ctx, "ada@example.com", "newpassword1")
	assert.NoError(t, err)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture()

	// Same outcome whether or not the address exists
	require.NoError(t, f.service.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Equal(t, 0, f.emails.sent)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	hash, err := auth.HashPassword("oldpassword1")
	require.NoError(t, err)
	user := f.users.addUser("Ada", "ada@example.com", models.RoleUser)
	require.NoError(t, f.users.UpdatePassword(ctx, user.ID, hash))

	err = f.service.ChangePassword(ctx, user.ID, "wrong", "newpassword1", "newpassword1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, f.service.ChangePassword(ctx, user.ID, "oldpassword1", "newpassword1", "newpassword1"))
	_, _, err = f.service.Login(ctx, "ada@example.com", "newpassword1")
	assert.NoError(t, err)
}

func TestLogoutRemovesSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := f.users.addUser("Ada", "ada@example.com", models.RoleUser)
	require.NoError(t, f.users.UpdatePassword(ctx, user.ID, hash))

	_, session, err := f.service.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, session.ID))
	assert.Empty(t, f.sessions.sessions)

	// Logging out twice is not an error
	assert.NoError(t, f.service.Logout(ctx, session.ID))
	assert.NoError(t, f.service.Logout(ctx, ""))
}
