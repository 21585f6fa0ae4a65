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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/photoalbum/internal/app/controllers"
	"github.com/yigit/photoalbum/internal/app/jobs"
	appMigrations "github.com/yigit/photoalbum/internal/app/migrations"
	appRepos "github.com/yigit/photoalbum/internal/app/repositories"
	appRoutes "github.com/yigit/photoalbum/internal/app/routes"
	appServices "github.com/yigit/photoalbum/internal/app/services"
	"github.com/yigit/photoalbum/internal/config"
	"github.com/yigit/photoalbum/internal/db"
	"github.com/yigit/photoalbum/internal/metrics"
	appMiddleware "github.com/yigit/photoalbum/internal/middleware"
	"github.com/yigit/photoalbum/internal/pkg/filestorage"
	"github.com/yigit/photoalbum/internal/pkg/logger"
	"github.com/yigit/photoalbum/internal/pkg/websocket"
)

// DefaultConfigPath is read when no other path is given
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Services    *appServices.Services
	Storage     *filestorage.LocalStorage
	Jobs        *jobs.Registry
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Controllers appRoutes.Controllers
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
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
	lgr.Info().Msg("Database connection successfully established.")

	if err := RunMigrations(cfg, dbPool, lgr); err != nil {
		dbPool.Close()
		return nil, err
	}
	return dbPool, nil
}

// RunMigrations applies the SQL files in the configured migrations directory.
func RunMigrations(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	migrator := appMigrations.NewMigrator(dbPool)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// BuildDependencies initializes repositories, services and controllers.
// reg receives the pipeline metrics; a nil reg creates a private registry.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, reg *prometheus.Registry, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	deps.Gatherer = reg
	deps.Metrics = metrics.New(reg)

	deps.Repos = appRepos.NewRepositories(dbPool, appRepos.Options{
		StateBatchSize:   cfg.Import.StateBatchSize,
		SchoolBatchSize:  cfg.Import.SchoolBatchSize,
		StudentBatchSize: cfg.Import.StudentBatchSize,
		MaxParams:        cfg.Import.MaxBindParams,
	})

	var err error
	deps.Storage, err = filestorage.NewLocalStorage(cfg.PhotosPath(), cfg.Media.MaxPhotoBytes)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize photo storage")
		return nil, fmt.Errorf("failed to initialize photo storage: %w", err)
	}

	deps.Jobs = jobs.NewRegistry(cfg.ScanJobTTL())

	deps.Services = appServices.NewServices(deps.Repos, deps.Storage, deps.Jobs, appServices.Options{
		Import: appServices.ImportOptions{
			Encoding:     cfg.Import.Encoding,
			DefaultBatch: cfg.Import.DefaultBatch,
			ReportLimit:  cfg.Import.ReportLimit,
		},
		Scan: appServices.ScanOptions{
			BatchSize:          cfg.Scan.BatchSize,
			MaxReportedMissing: cfg.Scan.MaxReportedMissing,
		},
	}, deps.Metrics)

	deps.Controllers = appRoutes.Controllers{
		Import:     appControllers.NewImportController(deps.Services.Import, cfg.Server.UploadDir),
		Photo:      appControllers.NewPhotoController(deps.Services.Photos, cfg.Server.UploadDir),
		Scan:       appControllers.NewScanController(deps.Services.Scans),
		Reference:  appControllers.NewReferenceController(deps.Services.Reference),
		ScanStream: websocket.NewHandler(deps.Services.Scans, websocket.DefaultPollInterval, logger.Component("scan_stream")),
	}

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
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())

	var metricsHandler http.Handler
	if deps.Gatherer != nil {
		metricsHandler = promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})
	}
	appRoutes.SetupRouter(router, deps.Controllers, metricsHandler)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
