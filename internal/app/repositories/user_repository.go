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

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

var userColumns = []string{
	"id", "name", "email", "password", "role", "is_active",
	"email_verified", "created_at", "updated_at", "last_login_at",
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.IsActive,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning user row: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new user and returns its id
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	query := squirrel.Insert("users").
		Columns("name", "email", "password", "role", "is_active", "email_verified").
		Values(user.Name, user.Email, user.Password, user.Role, user.IsActive, user.EmailVerified).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		return 0, fmt.Errorf("error inserting user: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by id, nil when not found
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := squirrel.Select(userColumns...).
		From("users").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return scanUser(r.db.QueryRow(ctx, sql, args...))
}

// GetUserByEmail retrieves a user by email, nil when not found
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := squirrel.Select(userColumns...).
		From("users").
		Where("email = ?", email).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return scanUser(r.db.QueryRow(ctx, sql, args...))
}

// ListUsers retrieves users with an optional role filter, newest first
func (r *UserRepository) ListUsers(ctx context.Context, role *models.Role, offset uint64, limit int) ([]*models.User, error) {
	query := squirrel.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if role != nil {
		query = query.Where("role = ?", *role)
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

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// CountUsers counts users matching an optional role filter
func (r *UserRepository) CountUsers(ctx context.Context, role *models.Role) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("users").
		PlaceholderFormat(squirrel.Dollar)

	if role != nil {
		query = query.Where("role = ?", *role)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, userID int64, role models.Role) error {
	return r.updateUserFields(ctx, userID, squirrel.Eq{"role": role})
}

// UpdateActive flips the account-enabled flag; sessions stay in place but
// resolution fails for inactive users on the next request
func (r *UserRepository) UpdateActive(ctx context.Context, userID int64, active bool) error {
	return r.updateUserFields(ctx, userID, squirrel.Eq{"is_active": active})
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.updateUserFields(ctx, userID, squirrel.Eq{"password": passwordHash})
}

// UpdateEmailVerified marks the user's email as verified
func (r *UserRepository) UpdateEmailVerified(ctx context.Context, userID int64, verified bool) error {
	return r.updateUserFields(ctx, userID, squirrel.Eq{"email_verified": verified})
}

// UpdateLastLogin records a successful login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.updateUserFields(ctx, userID, squirrel.Eq{"last_login_at": at})
}

func (r *UserRepository) updateUserFields(ctx context.Context, userID int64, fields squirrel.Eq) error {
	setMap := map[string]interface{}(fields)
	setMap["updated_at"] = time.Now()

	query := squirrel.Update("users").
		SetMap(setMap).
		Where("id = ?", userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteUser removes a user and its dependent rows (cascaded by schema)
func (r *UserRepository) DeleteUser(ctx context.Context, userID int64) error {
	query := squirrel.Delete("users").
		Where("id = ?", userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
