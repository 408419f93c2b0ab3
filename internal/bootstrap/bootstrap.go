package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/selimk/learnhub/internal/app/auth"
	appControllers "github.com/selimk/learnhub/internal/app/controllers"
	appMigrations "github.com/selimk/learnhub/internal/app/migrations"
	appRepos "github.com/selimk/learnhub/internal/app/repositories"
	appRoutes "github.com/selimk/learnhub/internal/app/routes"
	appServices "github.com/selimk/learnhub/internal/app/services"
	"github.com/selimk/learnhub/internal/app/workflow"
	"github.com/selimk/learnhub/internal/config"
	"github.com/selimk/learnhub/internal/db"
	appMiddleware "github.com/selimk/learnhub/internal/middleware"
	pkgAuth "github.com/selimk/learnhub/internal/pkg/auth"
	"github.com/selimk/learnhub/internal/pkg/email"
	"github.com/selimk/learnhub/internal/pkg/filestorage"
	"github.com/selimk/learnhub/internal/pkg/helpers"
	"github.com/selimk/learnhub/internal/pkg/logger"
	"github.com/selimk/learnhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          appServices.AuthService
	ApplicationService   appServices.ApplicationService
	CourseService        appServices.CourseService
	EnrollmentService    appServices.EnrollmentService
	LessonService        appServices.LessonService
	UserService          appServices.UserService
	AuthController       *appControllers.AuthController
	AdminController      *appControllers.AdminController
	CourseController     *appControllers.CourseController
	EnrollmentController *appControllers.EnrollmentController
	UserController       *appControllers.UserController
	UploadController     *appControllers.UploadController
	AccessGate           *appMiddleware.AccessGate
	Repos                *appRepos.Repositories
	UploadSigner         *pkgAuth.UploadSigner
	Logger               zerolog.Logger
	FileStorage          *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.UploadSigner = pkgAuth.NewUploadSigner(pkgAuth.UploadSignerConfig{
		SecretKey: cfg.Upload.SignSecret,
		TokenTTL:  helpers.ParseDuration(cfg.Upload.TokenTTL, 15*time.Minute),
		Issuer:    "learnhub",
	})

	emailService := email.NewService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)

	// One locker shared by every workflow service so a record is never
	// transitioned concurrently, whichever endpoint drives the change.
	locker := workflow.NewRecordLocker()

	sessionTTL := helpers.ParseDuration(cfg.Session.TTL, 720*time.Hour)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.SessionRepository,
		deps.Repos.OTPRepository,
		emailService,
		sessionTTL,
		lgr,
	)
	deps.ApplicationService = appServices.NewApplicationService(
		deps.Repos.ApplicationRepository,
		deps.Repos.UserRepository,
		locker,
		lgr,
	)
	deps.CourseService = appServices.NewCourseService(deps.Repos.CourseRepository, locker, lgr)
	deps.EnrollmentService = appServices.NewEnrollmentService(
		deps.Repos.EnrollmentRepository,
		deps.Repos.CourseRepository,
		locker,
		lgr,
	)
	deps.LessonService = appServices.NewLessonService(
		deps.Repos.LessonRepository,
		deps.Repos.CourseRepository,
		deps.Repos.EnrollmentRepository,
		deps.UploadSigner,
		deps.FileStorage,
		cfg.Server.BaseURL,
		lgr,
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.Repos.SessionRepository, lgr)

	resolver := appAuth.NewSessionResolver(deps.Repos.SessionRepository, deps.Repos.UserRepository, lgr)
	deps.AccessGate = appMiddleware.NewAccessGate(resolver, cfg.Session.CookieName)

	cookie := appControllers.CookieConfig{
		Name:   cfg.Session.CookieName,
		MaxAge: int(sessionTTL / time.Second),
		Secure: cfg.Session.Secure,
	}

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, cookie, lgr)
	deps.AdminController = appControllers.NewAdminController(deps.ApplicationService, deps.UserService, lgr)
	deps.CourseController = appControllers.NewCourseController(deps.CourseService, deps.LessonService, lgr)
	deps.EnrollmentController = appControllers.NewEnrollmentController(deps.EnrollmentService, lgr)
	deps.UserController = appControllers.NewUserController(
		deps.CourseService,
		deps.EnrollmentService,
		deps.LessonService,
		deps.ApplicationService,
		deps.UserService,
		lgr,
	)
	deps.UploadController = appControllers.NewUploadController(deps.UploadSigner, deps.FileStorage, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AdminController,
		deps.CourseController,
		deps.EnrollmentController,
		deps.UserController,
		deps.UploadController,
		deps.AccessGate,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
