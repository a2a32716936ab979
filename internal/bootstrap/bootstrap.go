package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/jmwangi/bursaryhub/internal/app/controllers"
	appMigrations "github.com/jmwangi/bursaryhub/internal/app/migrations"
	appRepos "github.com/jmwangi/bursaryhub/internal/app/repositories"
	appRoutes "github.com/jmwangi/bursaryhub/internal/app/routes"
	appServices "github.com/jmwangi/bursaryhub/internal/app/services"
	"github.com/jmwangi/bursaryhub/internal/config"
	"github.com/jmwangi/bursaryhub/internal/db"
	appMiddleware "github.com/jmwangi/bursaryhub/internal/middleware"
	pkgAuth "github.com/jmwangi/bursaryhub/internal/pkg/auth"
	"github.com/jmwangi/bursaryhub/internal/pkg/logger"
	"github.com/jmwangi/bursaryhub/internal/pkg/notify"
	"github.com/jmwangi/bursaryhub/internal/pkg/verification"
	"github.com/jmwangi/bursaryhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	IdentityService       *appServices.IdentityService
	ApplicationService    *appServices.ApplicationService
	OfficerService        *appServices.OfficerService
	GeographyService      *appServices.GeographyService
	SiteService           *appServices.SiteService
	AuthController        *appControllers.AuthController
	ApplicationController *appControllers.ApplicationController
	OfficerController     *appControllers.OfficerController
	GeographyController   *appControllers.GeographyController
	SiteController        *appControllers.SiteController
	AuthMiddleware        *appMiddleware.AuthMiddleware
	Repos                 *appRepos.Repositories
	JWTService            *pkgAuth.JWTService
	Verifier              verification.Verifier
	Notifier              notify.Notifier
	Logger                zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  strings.ToLower(cfg.Logging.Level),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the reference data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		// Seeding failures are logged but do not stop the server.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// buildVerifier selects the identity verifier implementation from config.
func buildVerifier(cfg *config.Config, lgr zerolog.Logger) verification.Verifier {
	switch cfg.Verification.Mode {
	case "format":
		lgr.Info().Msg("Using format-only identity verification")
		return verification.NewFormatVerifier()
	default:
		lgr.Info().Str("county", cfg.Verification.County).Msg("Using mock county registry verification")
		return verification.NewMockVerifier(cfg.Verification.County, lgr)
	}
}

// buildNotifier assembles the notification fan-out from the configured
// channels. With no channel enabled, SMS messages go to the log so local
// development still shows the traffic.
func buildNotifier(cfg *config.Config, lgr zerolog.Logger) notify.Notifier {
	var channels []notify.Notifier

	if cfg.SMS.Enabled {
		channels = append(channels, notify.NewSMSNotifier(notify.SMSConfig{
			Endpoint: cfg.SMS.Endpoint,
			APIKey:   cfg.SMS.APIKey,
			Username: cfg.SMS.Username,
			SenderID: cfg.SMS.SenderID,
		}, lgr))
	}

	if cfg.SMTP.Enabled {
		channels = append(channels, notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, lgr))
	}

	if len(channels) == 0 {
		channels = append(channels, notify.NewLogSMSNotifier(lgr))
	}

	return notify.NewMultiNotifier(lgr, channels...)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  parseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: parseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Verifier = buildVerifier(cfg, lgr)
	deps.Notifier = buildNotifier(cfg, lgr)

	deps.IdentityService = appServices.NewIdentityService(
		deps.Repos.StudentRepository,
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		deps.Verifier,
		deps.Notifier,
		cfg.Verification.RequireVerifiedLogin,
		lgr,
	)
	deps.ApplicationService = appServices.NewApplicationService(
		deps.Repos.ApplicationRepository,
		deps.Repos.StudentRepository,
		deps.Repos.SiteProfileRepository,
		deps.Notifier,
		lgr,
	)
	deps.OfficerService = appServices.NewOfficerService(
		deps.Repos.OfficerRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.StudentRepository,
		deps.Notifier,
		lgr,
	)
	deps.GeographyService = appServices.NewGeographyService(deps.Repos.GeographyRepository, lgr)
	deps.SiteService = appServices.NewSiteService(deps.Repos.SiteProfileRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.StudentRepository)

	deps.AuthController = appControllers.NewAuthController(deps.IdentityService, lgr)
	deps.ApplicationController = appControllers.NewApplicationController(deps.ApplicationService, lgr)
	deps.OfficerController = appControllers.NewOfficerController(deps.OfficerService, lgr)
	deps.GeographyController = appControllers.NewGeographyController(deps.GeographyService, lgr)
	deps.SiteController = appControllers.NewSiteController(deps.SiteService, lgr)

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
	router.Use(appMiddleware.RequestLogger(), gin.Recovery())

	appRoutes.SetupRouter(router,
		cfg,
		deps.AuthController,
		deps.ApplicationController,
		deps.OfficerController,
		deps.GeographyController,
		deps.SiteController,
		deps.AuthMiddleware,
	)

	return router
}

// parseDuration parses a duration string, falling back when invalid.
// Config validation rejects invalid values before this point, the fallback
// only guards direct callers.
func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
