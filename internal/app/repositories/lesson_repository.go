package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/selimk/learnhub/internal/app/models"
)

// LessonRepository handles database operations for lessons
type LessonRepository struct {
	db *pgxpool.Pool
}

// NewLessonRepository creates a new LessonRepository
func NewLessonRepository(db *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{db: db}
}

var lessonColumns = []string{
	"id", "course_id", "title", "lesson_type", "ord", "content_url", "created_at",
}

func scanLesson(row pgx.Row) (*models.Lesson, error) {
	var lesson models.Lesson
	err := row.Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Type,
		&lesson.Order,
		&lesson.ContentURL,
		&lesson.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning lesson row: %w", err)
	}
	return &lesson, nil
}

// GetByID retrieves a lesson by id, nil when not found
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	query := squirrel.Select(lessonColumns...).
		From("lessons").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return scanLesson(r.db.QueryRow(ctx, sql, args...))
}

// ListByCourse retrieves a course's lessons in order
func (r *LessonRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Lesson, error) {
	query := squirrel.Select(lessonColumns...).
		From("lessons").
		Where("course_id = ?", courseID).
		OrderBy("ord ASC").
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

	var lessons []*models.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

// Create appends a lesson at the end of its course's sequence. The order is
// computed inside the insert so two concurrent creations cannot pick the
// same slot.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) (int64, int, error) {
	sql := `
		INSERT INTO lessons (course_id, title, lesson_type, ord, content_url)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(ord), 0) + 1 FROM lessons WHERE course_id = $1),
			$4)
		RETURNING id, ord`

	var id int64
	var order int
	err := r.db.QueryRow(ctx, sql, lesson.CourseID, lesson.Title, lesson.Type, lesson.ContentURL).
		Scan(&id, &order)
	if err != nil {
		return 0, 0, fmt.Errorf("error inserting lesson: %w", err)
	}
	return id, order, nil
}

// UpdateContentURL persists an uploaded file path as the lesson's content URL
func (r *LessonRepository) UpdateContentURL(ctx context.Context, lessonID int64, contentURL string) error {
	query := squirrel.Update("lessons").
		Set("content_url", contentURL).
		Where("id = ?", lessonID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating lesson content URL: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteAndResequence removes a lesson and closes the gap it leaves, inside
// one transaction: after the delete, every following lesson in the course
// shifts down by one so the persisted orders are exactly 1..N again.
func (r *LessonRepository) DeleteAndResequence(ctx context.Context, lessonID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var courseID int64
	var order int
	err = tx.QueryRow(ctx,
		`DELETE FROM lessons WHERE id = $1 RETURNING course_id, ord`, lessonID).
		Scan(&courseID, &order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("error deleting lesson: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE lessons SET ord = ord - 1 WHERE course_id = $1 AND ord > $2`,
		courseID, order)
	if err != nil {
		return fmt.Errorf("error resequencing lessons: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
