package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dcu-portal-api/internal/handler"
	"github.com/noah-isme/dcu-portal-api/internal/models"
	"github.com/noah-isme/dcu-portal-api/internal/repository"
	"github.com/noah-isme/dcu-portal-api/internal/service"
	"github.com/noah-isme/dcu-portal-api/pkg/cache"
	"github.com/noah-isme/dcu-portal-api/pkg/config"
	"github.com/noah-isme/dcu-portal-api/pkg/database"
	"github.com/noah-isme/dcu-portal-api/pkg/eventbus"
	"github.com/noah-isme/dcu-portal-api/pkg/export"
	"github.com/noah-isme/dcu-portal-api/pkg/jobs"
	"github.com/noah-isme/dcu-portal-api/pkg/logger"
)

// @title DCU Student Portal API
// @version 1.0.0
// @description Club directory, interactive directory sessions and theme preferences for the student portal.
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 10 * time.Second

type clubLoader interface {
	LoadClubs(ctx context.Context) ([]models.Club, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}
	validate := validator.New()
	checks := map[string]handler.ReadinessCheck{}

	source, closeSource, err := newClubSource(ctx, cfg, logr, checks)
	if err != nil {
		logr.Fatal("club source unavailable", zap.Error(err))
	}
	defer closeSource()

	var clubSvc *service.ClubService
	joinQueue := jobs.NewQueue("club-join", func(ctx context.Context, job jobs.Job) error {
		return clubSvc.NotifyJoin(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.Retries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	clubSvc = service.NewClubService(source, joinQueue, metricsSvc, validate, logr, service.ClubServiceConfig{
		PageSize:     cfg.Directory.PageSize,
		PopularLimit: cfg.Directory.PopularLimit,
	})
	clubSvc.RegisterExporter(export.NewCSVExporter(true))
	clubSvc.RegisterExporter(export.NewPDFExporter(cfg.Export.PDFFontPath))
	checks["directory"] = clubSvc.Ready

	// The server still starts on a failed load; directory routes answer 503 until a restart.
	_ = clubSvc.Load(ctx)

	joinQueue.Start(ctx)
	defer joinQueue.Stop()

	sessionSvc := service.NewSessionService(clubSvc, metricsSvc, logr, service.SessionServiceConfig{
		PageSize:       cfg.Directory.PageSize,
		SearchDebounce: cfg.Directory.SearchDebounce,
		IdleTTL:        cfg.Directory.SessionIdleTTL,
		SweepPeriod:    cfg.Directory.SessionSweepPeriod,
	})
	sessionSvc.Start(ctx)
	defer sessionSvc.Stop()

	prefRepo, closePrefs := newPreferenceRepository(ctx, cfg, logr, checks)
	defer closePrefs()

	themeSvc := service.NewThemeService(prefRepo, eventbus.New[models.ThemeChange](64), metricsSvc, logr, models.Theme(cfg.Preferences.DefaultTheme))
	defer themeSvc.Close()
	go logThemeChanges(themeSvc, logr)

	router := newRouter(cfg, logr, routes{
		clubs:    handler.NewClubHandler(clubSvc),
		sessions: handler.NewSessionHandler(sessionSvc, validate),
		theme:    handler.NewThemeHandler(themeSvc, validate),
		metrics:  handler.NewMetricsHandler(metricsSvc, checks),
	}, metricsSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Event streams only end once their sessions are closed.
	sessionSvc.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}

func newClubSource(ctx context.Context, cfg *config.Config, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (clubLoader, func(), error) {
	switch cfg.Directory.Source {
	case config.SourcePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewClubRepository(db)
		checks["postgres"] = repo.Ping
		logr.Info("club source selected", zap.String("source", config.SourcePostgres), zap.String("database", cfg.Database.Name))
		return repo, func() { _ = db.Close() }, nil
	case config.SourceSeed, "":
		logr.Info("club source selected", zap.String("source", config.SourceSeed), zap.String("file", cfg.Directory.SeedFile))
		return repository.NewSeedRepository(cfg.Directory.SeedFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown directory source %q", cfg.Directory.Source)
	}
}

type preferenceStore interface {
	GetTheme(ctx context.Context, clientID string) (models.Theme, error)
	SaveTheme(ctx context.Context, clientID string, theme models.Theme) error
	DeleteTheme(ctx context.Context, clientID string) error
}

func newPreferenceRepository(ctx context.Context, cfg *config.Config, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (preferenceStore, func()) {
	if cfg.Preferences.Backend == config.BackendRedis {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err == nil {
			repo := repository.NewRedisPreferenceRepository(client, cfg.Preferences.KeyPrefix, logr)
			checks["redis"] = repo.Ping
			return repo, func() { _ = repo.Close() }
		}
		logr.Warn("redis unavailable, keeping theme preferences in memory", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
	}
	return repository.NewMemoryPreferenceRepository(cfg.Preferences.KeyPrefix), func() {}
}

func logThemeChanges(themeSvc *service.ThemeService, logr *zap.Logger) {
	changes, cancel := themeSvc.Subscribe()
	defer cancel()
	for change := range changes {
		logr.Debug("theme changed",
			zap.String("client_id", change.ClientID),
			zap.String("from", string(change.OldTheme)),
			zap.String("to", string(change.NewTheme)),
			zap.Bool("saved", change.Saved),
		)
	}
}
