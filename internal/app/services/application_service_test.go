package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/app/workflow"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
)

type applicationFixture struct {
	users   *fakeUserStore
	apps    *fakeApplicationStore
	service ApplicationService

	admin   *models.User
	learner *models.User
}

func newApplicationFixture() *applicationFixture {
	f := &applicationFixture{
		users: newFakeUserStore(),
		apps:  newFakeApplicationStore(),
	}
	f.service = NewApplicationService(f.apps, f.users, workflow.NewRecordLocker(), zerolog.Nop())
	f.admin = f.users.addUser("Root", "admin@example.com", models.RoleAdmin)
	f.learner = f.users.addUser("Ada", "ada@example.com", models.RoleUser)
	return f
}

func TestApplyCreatesPendingApplication(t *testing.T) {
	f := newApplicationFixture()

	app, err := f.service.Apply(context.Background(), f.learner.ID, "10 years teaching math", []string{"math"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, f.learner.ID, app.UserID)
}

func TestApplyRejectsSecondPendingApplication(t *testing.T) {
	f := newApplicationFixture()
	ctx := context.Background()

	_, err := f.service.Apply(ctx, f.learner.ID, "first", []string{"math"})
	require.NoError(t, err)

	_, err = f.service.Apply(ctx, f.learner.ID, "second", []string{"physics"})
	assert.ErrorIs(t, err, apperrors.ErrApplicationPending)
}

func TestApplyRejectsExistingInstructor(t *testing.T) {
	f := newApplicationFixture()

	instructor := f.users.addUser("Grace", "grace@example.com", models.RoleInstructor)
	_, err := f.service.Apply(context.Background(), instructor.ID, "already teaching", nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestApprovePromotesApplicant(t *testing.T) {
	f := newApplicationFixture()
	ctx := context.Background()

	app, err := f.service.Apply(ctx, f.learner.ID, "10 years teaching math", []string{"math"})
	require.NoError(t, err)

	decided, err := f.service.Decide(ctx, app.ID, workflow.ActionApprove, f.admin)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, decided.Status)

	user, err := f.users.GetUserByID(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, user.Role)
}

func TestRejectLeavesRoleUnchanged(t *testing.T) {
	f := newApplicationFixture()
	ctx := context.Background()

	app, err := f.service.Apply(ctx, f.learner.ID, "bio", nil)
	require.NoError(t, err)

	decided, err := f.service.Decide(ctx, app.ID, workflow.ActionReject, f.admin)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, decided.Status)

	user, err := f.users.GetUserByID(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestRejectedApplicantCanReapply(t *testing.T) {
	f := newApplicationFixture()
	ctx := context.Background()

	app, err := f.service.Apply(ctx, f.learner.ID, "bio", nil)
	require.NoError(t, err)
	_, err = f.service.Decide(ctx, app.ID, workflow.ActionReject, f.admin)
	require.NoError(t, err)

	second, err := f.service.Apply(ctx, f.learner.ID, "improved bio", nil)
	require.NoError(t, err)
	assert.NotEqual(t, app.ID, second.ID)
}

func TestDecideRequiresAdmin(t *testing.T) {
	f := newApplicationFixture()
	ctx := context.Background()

	app, err := f.service.Apply(ctx, f.learner.ID, "bio", nil)
	require.NoError(t, err)

	instructor := f.users.addUser("Grace", "grace@example.com", models.RoleInstructor)
	_, err = f.service.Decide(ctx, app.ID, workflow.ActionApprove, instructor)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestDecideRepeatedApprovalIsNoOp(t *testing.T) {
	f := newApplicationFixture()
	ctx := context.Background()

	app, err := f.service.Apply(ctx, f.learner.ID, "bio", nil)
	require.NoError(t, err)

	_, err = f.service.Decide(ctx, app.ID, workflow.ActionApprove, f.admin)
	require.NoError(t, err)
	decided, err := f.service.Decide(ctx, app.ID, workflow.ActionApprove, f.admin)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, decided.Status)

	// Flipping a settled decision is refused
	_, err = f.service.Decide(ctx, app.ID, workflow.ActionReject, f.admin)
	assert.ErrorIs(t, err, apperrors.ErrTerminalStatus)
}

func TestListFiltersByStatus(t *testing.T) {
	f := newApplicationFixture()
	ctx := context.Background()

	first, err := f.service.Apply(ctx, f.learner.ID, "bio", nil)
	require.NoError(t, err)
	_, err = f.service.Decide(ctx, first.ID, workflow.ActionReject, f.admin)
	require.NoError(t, err)

	other := f.users.addUser("Lin", "lin@example.com", models.RoleUser)
	_, err = f.service.Apply(ctx, other.ID, "bio", nil)
	require.NoError(t, err)

	pending := models.ApplicationPending
	got, err := f.service.List(ctx, &pending)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, other.ID, got[0].UserID)

	all, err := f.service.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
