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
)

type userFixture struct {
	users    *fakeUserStore
	sessions *fakeSessionStore
	service  UserService

	admin *models.User
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    newFakeUserStore(),
		sessions: newFakeSessionStore(),
	}
	f.service = NewUserService(f.users, f.sessions, zerolog.Nop())
	f.admin = f.users.addUser("Root", "admin@example.com", models.RoleAdmin)
	return f
}

func TestBlockRevokesSessions(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	instructor := f.users.addUser("Grace", "grace@example.com", models.RoleInstructor)
	require.NoError(t, f.sessions.Create(ctx, &models.Session{ID: "s1", UserID: instructor.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, f.service.SetActive(ctx, instructor.ID, false, f.admin))

	got, err := f.users.GetUserByID(ctx, instructor.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Empty(t, f.sessions.sessions)
}

func TestUnblockRestoresAccount(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	instructor := f.users.addUser("Grace", "grace@example.com", models.RoleInstructor)
	require.NoError(t, f.service.SetActive(ctx, instructor.ID, false, f.admin))
	require.NoError(t, f.service.SetActive(ctx, instructor.ID, true, f.admin))

	got, err := f.users.GetUserByID(ctx, instructor.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestSetActiveGuards(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	err := f.service.SetActive(ctx, f.admin.ID, false, f.admin)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	otherAdmin := f.users.addUser("Root2", "admin2@example.com", models.RoleAdmin)
	err = f.service.SetActive(ctx, otherAdmin.ID, false, f.admin)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = f.service.SetActive(ctx, 9999, false, f.admin)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestDeleteRemovesAccountAndSessions(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	learner := f.users.addUser("Ada", "ada@example.com", models.RoleUser)
	require.NoError(t, f.sessions.Create(ctx, &models.Session{ID: "s1", UserID: learner.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, f.service.Delete(ctx, learner.ID, f.admin))

	got, err := f.users.GetUserByID(ctx, learner.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, f.sessions.sessions)

	err = f.service.Delete(ctx, f.admin.ID, f.admin)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestListFiltersByRole(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.users.addUser("Grace", "grace@example.com", models.RoleInstructor)
	f.users.addUser("Ada", "ada@example.com", models.RoleUser)

	role := models.RoleInstructor
	users, total, err := f.service.List(ctx, &role, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "Grace", users[0].Name)

	users, total, err = f.service.List(ctx, nil, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 3)
}
