package seed

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/app/repositories"
)

const (
	defaultAdminEmail    = "admin@learnhub.local"
	defaultAdminPassword = "Admin123!"
)

// CreateDefaultData creates the default admin account if it does not exist.
// The platform has no registration path for admins, so the first one has to
// come from here.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(dbPool)

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = defaultAdminEmail
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
	}

	existing, err := userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking for existing admin user")
		return err
	}
	if existing != nil {
		lgr.Info().Str("email", email).Msg("Admin user already exists, skipping creation")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	now := time.Now()
	admin := &models.User{
		Name:          "Administrator",
		Email:         email,
		Password:      string(hashedPassword),
		Role:          models.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	adminID, err := userRepo.CreateUser(ctx, admin)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default admin user")
		return err
	}

	lgr.Info().Int64("adminID", adminID).Str("email", email).Msg("Default admin user created")
	return nil
}
