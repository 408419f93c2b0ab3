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

type courseFixture struct {
	users   *fakeUserStore
	courses *fakeCourseStore
	service CourseService

	instructor *models.User
}

func newCourseFixture() *courseFixture {
	f := &courseFixture{
		users:   newFakeUserStore(),
		courses: newFakeCourseStore(),
	}
	f.service = NewCourseService(f.courses, workflow.NewRecordLocker(), zerolog.Nop())
	f.instructor = f.users.addUser("Grace", "grace@example.com", models.RoleInstructor)
	return f
}

func TestCreateCourseStartsAsDraft(t *testing.T) {
	f := newCourseFixture()

	course, err := f.service.Create(context.Background(), f.instructor.ID, "Queueing Theory", "waiting in line, formally")
	require.NoError(t, err)
	assert.Equal(t, models.CourseDraft, course.Status)
	assert.Equal(t, f.instructor.ID, course.OwnerID)

	_, err = f.service.Create(context.Background(), f.instructor.ID, "  ", "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestPublishAndUnpublish(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()

	course, err := f.service.Create(ctx, f.instructor.ID, "Queueing Theory", "")
	require.NoError(t, err)

	published, err := f.service.SetPublication(ctx, course.ID, workflow.ActionPublish, f.instructor)
	require.NoError(t, err)
	assert.Equal(t, models.CoursePublished, published.Status)

	catalog, err := f.service.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 1)

	unpublished, err := f.service.SetPublication(ctx, course.ID, workflow.ActionUnpublish, f.instructor)
	require.NoError(t, err)
	assert.Equal(t, models.CourseDraft, unpublished.Status)

	catalog, err = f.service.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, catalog)
}

func TestPublishIsIdempotent(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()

	course, err := f.service.Create(ctx, f.instructor.ID, "Queueing Theory", "")
	require.NoError(t, err)

	_, err = f.service.SetPublication(ctx, course.ID, workflow.ActionPublish, f.instructor)
	require.NoError(t, err)
	again, err := f.service.SetPublication(ctx, course.ID, workflow.ActionPublish, f.instructor)
	require.NoError(t, err)
	assert.Equal(t, models.CoursePublished, again.Status)
}

func TestPublicationRejectsNonOwner(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()

	course, err := f.service.Create(ctx, f.instructor.ID, "Queueing Theory", "")
	require.NoError(t, err)

	other := f.users.addUser("Mallory", "mallory@example.com", models.RoleInstructor)
	_, err = f.service.SetPublication(ctx, course.ID, workflow.ActionPublish, other)
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	// Admins may act on any course
	admin := f.users.addUser("Root", "admin@example.com", models.RoleAdmin)
	published, err := f.service.SetPublication(ctx, course.ID, workflow.ActionPublish, admin)
	require.NoError(t, err)
	assert.Equal(t, models.CoursePublished, published.Status)
}

func TestUpdateAndDeleteEnforceOwnership(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()

	course, err := f.service.Create(ctx, f.instructor.ID, "Queueing Theory", "")
	require.NoError(t, err)

	other := f.users.addUser("Mallory", "mallory@example.com", models.RoleInstructor)
	_, err = f.service.Update(ctx, course.ID, other, "Hijacked", "")
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
	err = f.service.Delete(ctx, course.ID, other)
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	updated, err := f.service.Update(ctx, course.ID, f.instructor, "Queueing Theory II", "now with priorities")
	require.NoError(t, err)
	assert.Equal(t, "Queueing Theory II", updated.Title)

	require.NoError(t, f.service.Delete(ctx, course.ID, f.instructor))
	_, err = f.service.GetOwned(ctx, course.ID, f.instructor.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestListOwnedReturnsOnlyOwnCourses(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.instructor.ID, "Mine", "")
	require.NoError(t, err)
	other := f.users.addUser("Mallory", "mallory@example.com", models.RoleInstructor)
	_, err = f.service.Create(ctx, other.ID, "Theirs", "")
	require.NoError(t, err)

	owned, err := f.service.ListOwned(ctx, f.instructor.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Mine", owned[0].Title)
}
