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
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

var courseColumns = []string{
	"id", "owner_id", "title", "description", "status", "created_at", "updated_at",
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	err := row.Scan(
		&course.ID,
		&course.OwnerID,
		&course.Title,
		&course.Description,
		&course.Status,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning course row: %w", err)
	}
	return &course, nil
}

// Create inserts a new draft course and returns its id
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (int64, error) {
	query := squirrel.Insert("courses").
		Columns("owner_id", "title", "description", "status").
		Values(course.OwnerID, course.Title, course.Description, course.Status).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting course: %w", err)
	}
	return id, nil
}

// GetByID retrieves a course by id, nil when not found
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query := squirrel.Select(courseColumns...).
		From("courses").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return scanCourse(r.db.QueryRow(ctx, sql, args...))
}

// ListByOwner retrieves all courses owned by an instructor, newest first
func (r *CourseRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Course, error) {
	query := squirrel.Select(courseColumns...).
		From("courses").
		Where("owner_id = ?", ownerID).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryCourses(ctx, query)
}

// ListPublished retrieves all published courses, newest first
func (r *CourseRepository) ListPublished(ctx context.Context) ([]*models.Course, error) {
	query := squirrel.Select(courseColumns...).
		From("courses").
		Where("status = ?", models.CoursePublished).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	return r.queryCourses(ctx, query)
}

func (r *CourseRepository) queryCourses(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Course, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// Update changes a course's title and description
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	query := squirrel.Update("courses").
		Set("title", course.Title).
		Set("description", course.Description).
		Set("updated_at", time.Now()).
		Where("id = ?", course.ID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateStatus moves a course between draft and published
func (r *CourseRepository) UpdateStatus(ctx context.Context, courseID int64, status models.CourseStatus) error {
	query := squirrel.Update("courses").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where("id = ?", courseID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating course status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a course; lessons and enrollments cascade by schema
func (r *CourseRepository) Delete(ctx context.Context, courseID int64) error {
	query := squirrel.Delete("courses").
		Where("id = ?", courseID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
