package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/pkg/apperrors"
	"github.com/selimk/learnhub/internal/pkg/dberrors"
)

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts a pending enrollment. The schema's partial unique index
// enforces at most one non-terminal record per (user, course); a violation
// surfaces as ErrDuplicateEnrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (int64, error) {
	query := squirrel.Insert("enrollments").
		Columns("user_id", "course_id", "status").
		Values(enrollment.UserID, enrollment.CourseID, enrollment.Status).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "idx_enrollments_active") {
			return 0, apperrors.ErrDuplicateEnrollment
		}
		return 0, fmt.Errorf("error inserting enrollment: %w", err)
	}
	return id, nil
}

// GetByID retrieves an enrollment joined with its course, nil when not found.
// The course is needed by every decision path for the ownership check.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := squirrel.Select(
		"e.id", "e.user_id", "e.course_id", "e.status", "e.created_at", "e.decided_at", "e.decided_by",
		"c.id", "c.owner_id", "c.title", "c.description", "c.status", "c.created_at", "c.updated_at",
	).
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Where("e.id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var enrollment models.Enrollment
	var course models.Course
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
		&enrollment.Status, &enrollment.CreatedAt, &enrollment.DecidedAt, &enrollment.DecidedBy,
		&course.ID, &course.OwnerID, &course.Title, &course.Description,
		&course.Status, &course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning enrollment row: %w", err)
	}

	enrollment.Course = &course
	return &enrollment, nil
}

// ListByInstructor retrieves enrollments for the courses an instructor owns,
// optionally narrowed to one course, newest first, with enrollee details
func (r *EnrollmentRepository) ListByInstructor(ctx context.Context, instructorID int64, courseID *int64) ([]*models.Enrollment, error) {
	query := squirrel.Select(
		"e.id", "e.user_id", "e.course_id", "e.status", "e.created_at", "e.decided_at", "e.decided_by",
		"u.name", "u.email",
		"c.title",
	).
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Join("users u ON u.id = e.user_id").
		Where("c.owner_id = ?", instructorID).
		OrderBy("e.created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if courseID != nil {
		query = query.Where("e.course_id = ?", *courseID)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var enrollment models.Enrollment
		var user models.User
		var course models.Course
		err := rows.Scan(
			&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
			&enrollment.Status, &enrollment.CreatedAt, &enrollment.DecidedAt, &enrollment.DecidedBy,
			&user.Name, &user.Email,
			&course.Title,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		user.ID = enrollment.UserID
		course.ID = enrollment.CourseID
		enrollment.User = &user
		enrollment.Course = &course
		enrollments = append(enrollments, &enrollment)
	}
	return enrollments, nil
}

// ListPendingIDsByInstructor retrieves the ids of all pending enrollments
// across an instructor's courses, the working set of the bulk transitions
func (r *EnrollmentRepository) ListPendingIDsByInstructor(ctx context.Context, instructorID int64) ([]int64, error) {
	query := squirrel.Select("e.id").
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Where("c.owner_id = ?", instructorID).
		Where("e.status = ?", models.EnrollmentPending).
		OrderBy("e.created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListByUser retrieves a learner's enrollments with course details,
// optionally filtered by status
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID int64, status *models.EnrollmentStatus) ([]*models.Enrollment, error) {
	query := squirrel.Select(
		"e.id", "e.user_id", "e.course_id", "e.status", "e.created_at", "e.decided_at", "e.decided_by",
		"c.title", "c.description", "c.status",
	).
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Where("e.user_id = ?", userID).
		OrderBy("e.created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if status != nil {
		query = query.Where("e.status = ?", *status)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var enrollment models.Enrollment
		var course models.Course
		err := rows.Scan(
			&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
			&enrollment.Status, &enrollment.CreatedAt, &enrollment.DecidedAt, &enrollment.DecidedBy,
			&course.Title, &course.Description, &course.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		course.ID = enrollment.CourseID
		enrollment.Course = &course
		enrollments = append(enrollments, &enrollment)
	}
	return enrollments, nil
}

// UpdateStatus records a decision on an enrollment
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, enrollmentID int64, status models.EnrollmentStatus, decidedBy int64) error {
	query := squirrel.Update("enrollments").
		Set("status", status).
		Set("decided_at", time.Now()).
		Set("decided_by", decidedBy).
		Where("id = ?", enrollmentID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating enrollment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// HasApproved reports whether the user holds an approved enrollment in
// the course
func (r *EnrollmentRepository) HasApproved(ctx context.Context, userID, courseID int64) (bool, error) {
	query := squirrel.Select("COUNT(*)").
		From("enrollments").
		Where(squirrel.Eq{"user_id": userID, "course_id": courseID, "status": models.EnrollmentApproved}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return count > 0, nil
}
