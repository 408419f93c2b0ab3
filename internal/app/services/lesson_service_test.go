package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
	"github.com/selimk/learnhub/internal/pkg/auth"
)

type lessonFixture struct {
	users       *fakeUserStore
	courses     *fakeCourseStore
	lessons     *fakeLessonStore
	enrollments *fakeEnrollmentStore
	signer      *auth.UploadSigner
	storage     *fakeStorage
	service     LessonService

	instructor *models.User
	learner    *models.User
	course     *models.Course
}

func newLessonFixture() *lessonFixture {
	f := &lessonFixture{
		users:   newFakeUserStore(),
		courses: newFakeCourseStore(),
		lessons: newFakeLessonStore(),
		storage: newFakeStorage(),
	}
	f.enrollments = newFakeEnrollmentStore(f.courses)
	f.signer = auth.NewUploadSigner(auth.UploadSignerConfig{
		SecretKey: "test-secret",
		TokenTTL:  15 * time.Minute,
		Issuer:    "learnhub",
	})
	f.service = NewLessonService(f.lessons, f.courses, f.enrollments, f.signer, f.storage, "http://localhost:8080", zerolog.Nop())

	f.instructor = f.users.addUser("Grace", "grace@example.com", models.RoleInstructor)
	f.learner = f.users.addUser("Ada", "ada@example.com", models.RoleUser)
	f.course = f.courses.addCourse(f.instructor.ID, "Queueing Theory", models.CoursePublished)
	return f
}

func (f *lessonFixture) createLesson(t *testing.T, title string) *models.Lesson {
	t.Helper()
	lesson, err := f.service.Create(context.Background(), f.course.ID, f.instructor, title, models.LessonVideo, "")
	require.NoError(t, err)
	return lesson
}

func orders(t *testing.T, f *lessonFixture) map[string]int {
	t.Helper()
	lessons, err := f.service.List(context.Background(), f.course.ID, f.instructor)
	require.NoError(t, err)
	got := make(map[string]int, len(lessons))
	for _, l := range lessons {
		got[l.Title] = l.Order
	}
	return got
}

func TestCreateAppendsAtEnd(t *testing.T) {
	f := newLessonFixture()

	a := f.createLesson(t, "A")
	b := f.createLesson(t, "B")
	c := f.createLesson(t, "C")

	assert.Equal(t, 1, a.Order)
	assert.Equal(t, 2, b.Order)
	assert.Equal(t, 3, c.Order)
}

func TestDeleteClosesOrderingGap(t *testing.T) {
	f := newLessonFixture()
	ctx := context.Background()

	f.createLesson(t, "A")
	b := f.createLesson(t, "B")
	f.createLesson(t, "C")

	require.NoError(t, f.service.Delete(ctx, b.ID, f.instructor))
	assert.Equal(t, map[string]int{"A": 1, "C": 2}, orders(t, f))

	// A new lesson lands right after the survivors
	d := f.createLesson(t, "D")
	assert.Equal(t, 3, d.Order)
}

func TestDeleteRemovesContentFile(t *testing.T) {
	f := newLessonFixture()
	ctx := context.Background()

	lesson := f.createLesson(t, "A")
	_, err := f.storage.Save("lessons/abc123.mp4", strings.NewReader("bytes"))
	require.NoError(t, err)
	_, err = f.service.UpdateContentURL(ctx, lesson.ID, f.instructor, "lessons/abc123.mp4")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, lesson.ID, f.instructor))
	assert.Equal(t, []string{"lessons/abc123.mp4"}, f.storage.deleted)
	assert.NotContains(t, f.storage.files, "lessons/abc123.mp4")
}

func TestDeleteLeavesExternalContentAlone(t *testing.T) {
	f := newLessonFixture()
	ctx := context.Background()

	lesson, err := f.service.Create(ctx, f.course.ID, f.instructor, "A", models.LessonVideo, "https://cdn.example.com/lesson.mp4")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, lesson.ID, f.instructor))
	assert.Empty(t, f.storage.deleted)
}

func TestOrderingStaysDenseAcrossManyOperations(t *testing.T) {
	f := newLessonFixture()
	ctx := context.Background()

	var ids []int64
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		ids = append(ids, f.createLesson(t, title).ID)
	}
	require.NoError(t, f.service.Delete(ctx, ids[0], f.instructor))
	require.NoError(t, f.service.Delete(ctx, ids[3], f.instructor))
	f.createLesson(t, "F")

	lessons, err := f.service.List(ctx, f.course.ID, f.instructor)
	require.NoError(t, err)
	require.Len(t, lessons, 4)
	for i, l := range lessons {
		assert.Equal(t, i+1, l.Order)
	}
}

func TestOrderingIsPerCourse(t *testing.T) {
	f := newLessonFixture()
	ctx := context.Background()

	other := f.courses.addCourse(f.instructor.ID, "Second Course", models.CoursePublished)
	f.createLesson(t, "A")
	lesson, err := f.service.Create(ctx, other.ID, f.instructor, "X", models.LessonText, "")
	require.NoError(t, err)
	assert.Equal(t, 1, lesson.Order)
}

func TestCreateValidation(t *testing.T) {
	f := newLessonFixture()
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.course.ID, f.instructor, "", models.LessonVideo, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.service.Create(ctx, f.course.ID, f.instructor, "A", models.LessonType("HOLOGRAM"), "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	other := f.users.addUser("Mallory", "mallory@example.com", models.RoleInstructor)
	_, err = f.service.Create(ctx, f.course.ID, other, "A", models.LessonVideo, "")
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
}

func TestListRequiresApprovedEnrollment(t *testing.T) {
	f := newLessonFixture()
	ctx := context.Background()

	f.createLesson(t, "A")

	_, err := f.service.List(ctx, f.course.ID, f.learner)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentRequired)

	f.enrollments.addEnrollment(f.learner.ID, f.course.ID, models.EnrollmentPending)
	_, err = f.service.List(ctx, f.course.ID, f.learner)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentRequired)

	f.enrollments.addEnrollment(f.learner.ID, f.course.ID, models.EnrollmentApproved)
	lessons, err := f.service.List(ctx, f.course.ID, f.learner)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}

func TestSignUploadRoundTrip(t *testing.T) {
	f := newLessonFixture()

	resp, err := f.service.SignUpload(context.Background(), f.instructor, "lecture.mp4", "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.FilePath, ".mp4"))
	assert.Contains(t, resp.UploadURL, "token=")

	// The embedded token authorizes exactly the returned path
	token := resp.UploadURL[strings.Index(resp.UploadURL, "token=")+len("token="):]
	claims, err := f.signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, resp.FilePath, claims.FilePath)
	assert.Equal(t, "video/mp4", claims.ContentType)
	assert.Equal(t, f.instructor.ID, claims.UserID)
}

func TestSignUploadValidation(t *testing.T) {
	f := newLessonFixture()
	ctx := context.Background()

	_, err := f.service.SignUpload(ctx, f.instructor, "noextension", "video/mp4")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.service.SignUpload(ctx, f.instructor, "lecture.mp4", "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateContentURL(t *testing.T) {
	f := newLessonFixture()
	ctx := context.Background()

	lesson := f.createLesson(t, "A")

	updated, err := f.service.UpdateContentURL(ctx, lesson.ID, f.instructor, "lessons/abc123.mp4")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/lessons/abc123.mp4", updated.ContentURL)

	other := f.users.addUser("Mallory", "mallory@example.com", models.RoleInstructor)
	_, err = f.service.UpdateContentURL(ctx, lesson.ID, other, "lessons/abc123.mp4")
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	_, err = f.service.UpdateContentURL(ctx, 9999, f.instructor, "lessons/abc123.mp4")
	assert.ErrorIs(t, err, apperrors.ErrLessonNotFound)
}
