package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
)

// In-memory stores backing the service tests.

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (f *fakeUserStore) addUser(name, email string, role models.Role) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := &models.User{
		ID:            f.nextID,
		Name:          name,
		Email:         email,
		Role:          role,
		IsActive:      true,
		EmailVerified: true,
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	clone := *user
	clone.ID = f.nextID
	f.users[clone.ID] = &clone
	return clone.ID, nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) ListUsers(ctx context.Context, role *models.Role, offset uint64, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.users {
		if role == nil || u.Role == *role {
			clone := *u
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserStore) CountUsers(ctx context.Context, role *models.Role) (int64, error) {
	users, _ := f.ListUsers(ctx, role, 0, 0)
	return int64(len(users)), nil
}

func (f *fakeUserStore) mutate(id int64, fn func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("user %d not found", id)
	}
	fn(u)
	return nil
}

func (f *fakeUserStore) UpdateRole(ctx context.Context, userID int64, role models.Role) error {
	return f.mutate(userID, func(u *models.User) { u.Role = role })
}

func (f *fakeUserStore) UpdateActive(ctx context.Context, userID int64, active bool) error {
	return f.mutate(userID, func(u *models.User) { u.IsActive = active })
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return f.mutate(userID, func(u *models.User) { u.Password = passwordHash })
}

func (f *fakeUserStore) UpdateEmailVerified(ctx context.Context, userID int64, verified bool) error {
	return f.mutate(userID, func(u *models.User) { u.EmailVerified = verified })
}

func (f *fakeUserStore) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return f.mutate(userID, func(u *models.User) { u.LastLoginAt = &at })
}

func (f *fakeUserStore) DeleteUser(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
	return nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionStore) Create(ctx context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *session
	f.sessions[session.ID] = &clone
	return nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) DeleteByUserID(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

type fakeOTPStore struct {
	mu     sync.Mutex
	nextID int64
	tokens []*models.OTPToken
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{}
}

func (f *fakeOTPStore) Create(ctx context.Context, token *models.OTPToken) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, t := range f.tokens {
		if t.UserID == token.UserID && t.Purpose == token.Purpose && t.UsedAt == nil {
			used := now
			t.UsedAt = &used
		}
	}
	f.nextID++
	clone := *token
	clone.ID = f.nextID
	f.tokens = append(f.tokens, &clone)
	return clone.ID, nil
}

func (f *fakeOTPStore) GetActive(ctx context.Context, userID int64, purpose models.OTPPurpose, code string) (*models.OTPToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, t := range f.tokens {
		if t.UserID == userID && t.Purpose == purpose && t.Code == code && t.UsedAt == nil && t.ExpiresAt.After(now) {
			clone := *t
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeOTPStore) MarkUsed(ctx context.Context, tokenID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.UsedAt = &now
			return nil
		}
	}
	return fmt.Errorf("token %d not found", tokenID)
}

// lastCode returns the newest unused code for a user and purpose
func (f *fakeOTPStore) lastCode(userID int64, purpose models.OTPPurpose) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.tokens) - 1; i >= 0; i-- {
		t := f.tokens[i]
		if t.UserID == userID && t.Purpose == purpose && t.UsedAt == nil {
			return t.Code
		}
	}
	return ""
}

type fakeEmailSender struct {
	mu    sync.Mutex
	sent  int
	codes []string
}

func (f *fakeEmailSender) SendVerificationCode(toEmail, toName, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeEmailSender) SendPasswordResetCode(toEmail, toName, code string) error {
	return f.SendVerificationCode(toEmail, toName, code)
}

type fakeCourseStore struct {
	mu      sync.Mutex
	nextID  int64
	courses map[int64]*models.Course
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: make(map[int64]*models.Course)}
}

func (f *fakeCourseStore) addCourse(ownerID int64, title string, status models.CourseStatus) *models.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := &models.Course{ID: f.nextID, OwnerID: ownerID, Title: title, Status: status}
	f.courses[c.ID] = c
	return c
}

func (f *fakeCourseStore) Create(ctx context.Context, course *models.Course) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	clone := *course
	clone.ID = f.nextID
	f.courses[clone.ID] = &clone
	return clone.ID, nil
}

func (f *fakeCourseStore) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.courses[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeCourseStore) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Course
	for _, c := range f.courses {
		if c.OwnerID == ownerID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCourseStore) ListPublished(ctx context.Context) ([]*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Course
	for _, c := range f.courses {
		if c.Status == models.CoursePublished {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCourseStore) Update(ctx context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[course.ID]
	if !ok {
		return fmt.Errorf("course %d not found", course.ID)
	}
	c.Title = course.Title
	c.Description = course.Description
	return nil
}

func (f *fakeCourseStore) UpdateStatus(ctx context.Context, courseID int64, status models.CourseStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[courseID]
	if !ok {
		return fmt.Errorf("course %d not found", courseID)
	}
	c.Status = status
	return nil
}

func (f *fakeCourseStore) Delete(ctx context.Context, courseID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.courses, courseID)
	return nil
}

type fakeLessonStore struct {
	mu      sync.Mutex
	nextID  int64
	lessons map[int64]*models.Lesson
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{lessons: make(map[int64]*models.Lesson)}
}

func (f *fakeLessonStore) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.lessons[id]; ok {
		clone := *l
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeLessonStore) ListByCourse(ctx context.Context, courseID int64) ([]*models.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Lesson
	for _, l := range f.lessons {
		if l.CourseID == courseID {
			clone := *l
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeLessonStore) Create(ctx context.Context, lesson *models.Lesson) (int64, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	maxOrder := 0
	for _, l := range f.lessons {
		if l.CourseID == lesson.CourseID && l.Order > maxOrder {
			maxOrder = l.Order
		}
	}
	f.nextID++
	clone := *lesson
	clone.ID = f.nextID
	clone.Order = maxOrder + 1
	f.lessons[clone.ID] = &clone
	return clone.ID, clone.Order, nil
}

func (f *fakeLessonStore) UpdateContentURL(ctx context.Context, lessonID int64, contentURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lessons[lessonID]
	if !ok {
		return fmt.Errorf("lesson %d not found", lessonID)
	}
	l.ContentURL = contentURL
	return nil
}

func (f *fakeLessonStore) DeleteAndResequence(ctx context.Context, lessonID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	removed, ok := f.lessons[lessonID]
	if !ok {
		return fmt.Errorf("lesson %d not found", lessonID)
	}
	delete(f.lessons, lessonID)
	for _, l := range f.lessons {
		if l.CourseID == removed.CourseID && l.Order > removed.Order {
			l.Order--
		}
	}
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) Save(relPath string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[relPath] = data
	return int64(len(data)), nil
}

func (f *fakeStorage) Delete(relPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, relPath)
	f.deleted = append(f.deleted, relPath)
	return nil
}

type fakeEnrollmentStore struct {
	mu          sync.Mutex
	nextID      int64
	enrollments map[int64]*models.Enrollment
	courses     *fakeCourseStore
	failOn      map[int64]bool // enrollment ids whose UpdateStatus fails
}

func newFakeEnrollmentStore(courses *fakeCourseStore) *fakeEnrollmentStore {
	return &fakeEnrollmentStore{
		enrollments: make(map[int64]*models.Enrollment),
		courses:     courses,
		failOn:      make(map[int64]bool),
	}
}

func (f *fakeEnrollmentStore) addEnrollment(userID, courseID int64, status models.EnrollmentStatus) *models.Enrollment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e := &models.Enrollment{ID: f.nextID, UserID: userID, CourseID: courseID, Status: status, CreatedAt: time.Now()}
	f.enrollments[e.ID] = e
	return e
}

func (f *fakeEnrollmentStore) Create(ctx context.Context, enrollment *models.Enrollment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.enrollments {
		if e.UserID == enrollment.UserID && e.CourseID == enrollment.CourseID &&
			(e.Status == models.EnrollmentPending || e.Status == models.EnrollmentApproved) {
			return 0, apperrors.ErrDuplicateEnrollment
		}
	}
	f.nextID++
	clone := *enrollment
	clone.ID = f.nextID
	clone.CreatedAt = time.Now()
	f.enrollments[clone.ID] = &clone
	return clone.ID, nil
}

func (f *fakeEnrollmentStore) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	f.mu.Lock()
	e, ok := f.enrollments[id]
	if !ok {
		f.mu.Unlock()
		return nil, nil
	}
	clone := *e
	f.mu.Unlock()
	course, _ := f.courses.GetByID(ctx, clone.CourseID)
	clone.Course = course
	return &clone, nil
}

func (f *fakeEnrollmentStore) ListByInstructor(ctx context.Context, instructorID int64, courseID *int64) ([]*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range f.enrollments {
		course, _ := f.courses.GetByID(ctx, e.CourseID)
		if course == nil || course.OwnerID != instructorID {
			continue
		}
		if courseID != nil && e.CourseID != *courseID {
			continue
		}
		clone := *e
		clone.Course = course
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEnrollmentStore) ListPendingIDsByInstructor(ctx context.Context, instructorID int64) ([]int64, error) {
	all, err := f.ListByInstructor(ctx, instructorID, nil)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, e := range all {
		if e.Status == models.EnrollmentPending {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

func (f *fakeEnrollmentStore) ListByUser(ctx context.Context, userID int64, status *models.EnrollmentStatus) ([]*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range f.enrollments {
		if e.UserID != userID {
			continue
		}
		if status != nil && e.Status != *status {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEnrollmentStore) UpdateStatus(ctx context.Context, enrollmentID int64, status models.EnrollmentStatus, decidedBy int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[enrollmentID] {
		return fmt.Errorf("simulated storage failure for enrollment %d", enrollmentID)
	}
	e, ok := f.enrollments[enrollmentID]
	if !ok {
		return fmt.Errorf("enrollment %d not found", enrollmentID)
	}
	now := time.Now()
	e.Status = status
	e.DecidedAt = &now
	e.DecidedBy = &decidedBy
	return nil
}

func (f *fakeEnrollmentStore) HasApproved(ctx context.Context, userID, courseID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID && e.Status == models.EnrollmentApproved {
			return true, nil
		}
	}
	return false, nil
}

type fakeApplicationStore struct {
	mu     sync.Mutex
	nextID int64
	apps   map[int64]*models.InstructorApplication
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{apps: make(map[int64]*models.InstructorApplication)}
}

func (f *fakeApplicationStore) Create(ctx context.Context, app *models.InstructorApplication) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	clone := *app
	clone.ID = f.nextID
	clone.AppliedAt = time.Now()
	f.apps[clone.ID] = &clone
	return clone.ID, nil
}

func (f *fakeApplicationStore) GetByID(ctx context.Context, id int64) (*models.InstructorApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.apps[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeApplicationStore) List(ctx context.Context, status *models.ApplicationStatus) ([]*models.InstructorApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.InstructorApplication
	for _, a := range f.apps {
		if status != nil && a.Status != *status {
			continue
		}
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeApplicationStore) HasPending(ctx context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.apps {
		if a.UserID == userID && a.Status == models.ApplicationPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationStore) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus, decidedBy int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return fmt.Errorf("application %d not found", id)
	}
	now := time.Now()
	a.Status = status
	a.DecidedAt = &now
	a.DecidedBy = &decidedBy
	return nil
}
