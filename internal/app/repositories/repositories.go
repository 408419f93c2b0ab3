package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles all repository instances for dependency injection
type Repositories struct {
	UserRepository        *UserRepository
	SessionRepository     *SessionRepository
	CourseRepository      *CourseRepository
	LessonRepository      *LessonRepository
	EnrollmentRepository  *EnrollmentRepository
	ApplicationRepository *ApplicationRepository
	OTPRepository         *OTPRepository
}

// NewRepositories creates all repositories over one connection pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		SessionRepository:     NewSessionRepository(db),
		CourseRepository:      NewCourseRepository(db),
		LessonRepository:      NewLessonRepository(db),
		EnrollmentRepository:  NewEnrollmentRepository(db),
		ApplicationRepository: NewApplicationRepository(db),
		OTPRepository:         NewOTPRepository(db),
	}
}
