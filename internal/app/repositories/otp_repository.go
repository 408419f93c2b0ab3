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

// OTPRepository handles database operations for one-time verification codes
type OTPRepository struct {
	db *pgxpool.Pool
}

// NewOTPRepository creates a new OTPRepository
func NewOTPRepository(db *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{db: db}
}

// Create inserts a new code after invalidating earlier unused codes for the
// same user and purpose, so only the most recent code is redeemable
func (r *OTPRepository) Create(ctx context.Context, token *models.OTPToken) (int64, error) {
	invalidate := squirrel.Update("otp_tokens").
		Set("used_at", time.Now()).
		Where("user_id = ?", token.UserID).
		Where("purpose = ?", token.Purpose).
		Where("used_at IS NULL").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := invalidate.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return 0, fmt.Errorf("error invalidating previous codes: %w", err)
	}

	insert := squirrel.Insert("otp_tokens").
		Columns("user_id", "purpose", "code", "expires_at").
		Values(token.UserID, token.Purpose, token.Code, token.ExpiresAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting code: %w", err)
	}
	return id, nil
}

// GetActive retrieves the unused, unexpired code matching user, purpose and
// value, nil when there is none
func (r *OTPRepository) GetActive(ctx context.Context, userID int64, purpose models.OTPPurpose, code string) (*models.OTPToken, error) {
	query := squirrel.Select("id", "user_id", "purpose", "code", "expires_at", "used_at", "created_at").
		From("otp_tokens").
		Where("user_id = ?", userID).
		Where("purpose = ?", purpose).
		Where("code = ?", code).
		Where("used_at IS NULL").
		Where("expires_at > ?", time.Now()).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var token models.OTPToken
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&token.ID, &token.UserID, &token.Purpose, &token.Code,
		&token.ExpiresAt, &token.UsedAt, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning code row: %w", err)
	}
	return &token, nil
}

// MarkUsed consumes a code so it cannot be redeemed twice
func (r *OTPRepository) MarkUsed(ctx context.Context, tokenID int64) error {
	query := squirrel.Update("otp_tokens").
		Set("used_at", time.Now()).
		Where("id = ?", tokenID).
		Where("used_at IS NULL").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking code used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
