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

// ApplicationRepository handles database operations for instructor applications
type ApplicationRepository struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a pending application and returns its id
func (r *ApplicationRepository) Create(ctx context.Context, application *models.InstructorApplication) (int64, error) {
	query := squirrel.Insert("instructor_applications").
		Columns("user_id", "bio", "expertise", "status").
		Values(application.UserID, application.Bio, application.Expertise, application.Status).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting application: %w", err)
	}
	return id, nil
}

// GetByID retrieves an application by id, nil when not found
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.InstructorApplication, error) {
	query := squirrel.Select(
		"a.id", "a.user_id", "a.bio", "a.expertise", "a.status", "a.applied_at", "a.decided_at", "a.decided_by",
		"u.name", "u.email",
	).
		From("instructor_applications a").
		Join("users u ON u.id = a.user_id").
		Where("a.id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	application, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}
	return application, nil
}

func scanApplication(row pgx.Row) (*models.InstructorApplication, error) {
	var application models.InstructorApplication
	var user models.User
	err := row.Scan(
		&application.ID, &application.UserID, &application.Bio, &application.Expertise,
		&application.Status, &application.AppliedAt, &application.DecidedAt, &application.DecidedBy,
		&user.Name, &user.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning application row: %w", err)
	}
	user.ID = application.UserID
	application.User = &user
	return &application, nil
}

// List retrieves applications with applicant details, newest first,
// optionally filtered by status
func (r *ApplicationRepository) List(ctx context.Context, status *models.ApplicationStatus) ([]*models.InstructorApplication, error) {
	query := squirrel.Select(
		"a.id", "a.user_id", "a.bio", "a.expertise", "a.status", "a.applied_at", "a.decided_at", "a.decided_by",
		"u.name", "u.email",
	).
		From("instructor_applications a").
		Join("users u ON u.id = a.user_id").
		OrderBy("a.applied_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if status != nil {
		query = query.Where("a.status = ?", *status)
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

	var applications []*models.InstructorApplication
	for rows.Next() {
		application, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, application)
	}
	return applications, nil
}

// HasPending reports whether a user already has a pending application
func (r *ApplicationRepository) HasPending(ctx context.Context, userID int64) (bool, error) {
	query := squirrel.Select("1").
		From("instructor_applications").
		Where("user_id = ?", userID).
		Where("status = ?", models.ApplicationPending).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return true, nil
}

// UpdateStatus records an admin decision on an application
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, applicationID int64, status models.ApplicationStatus, decidedBy int64) error {
	query := squirrel.Update("instructor_applications").
		Set("status", status).
		Set("decided_at", time.Now()).
		Set("decided_by", decidedBy).
		Where("id = ?", applicationID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
