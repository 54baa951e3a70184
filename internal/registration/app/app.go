package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/blob"
	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	httpapi "github.com/aussiebroadwan/hackreg/internal/registration/http"
	"github.com/aussiebroadwan/hackreg/internal/registration/metrics"
	"github.com/aussiebroadwan/hackreg/internal/registration/notify"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/internal/registration/store/drivers/sqlite"
	"github.com/aussiebroadwan/hackreg/pkg/cryptox"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"

	secretBytes = 32
)

// Application holds the registration service and its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	guard   *service.Guard
	tokens  *service.Tokens
	blobs   service.BlobStore
	metrics *metrics.Metrics

	admissionService    *service.AdmissionService
	accountService      *service.AccountService
	teamService         *service.TeamService
	sponsorService      *service.SponsorService
	queryService        *service.QueryService
	settingsService     *service.SettingsService
	statsService        *service.StatsService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New builds every dependency. Nothing listens until Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "registration-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}
	ctx := slogx.WithContext(context.Background(), app.logger)

	cryptox.SetPepperPath(cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.guard = service.NewGuard(domain.Settings{}, nil)
	if err := app.guard.Reload(ctx, app.db.Settings()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initTokens(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initBlobs(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.metrics = metrics.New()
	app.initServices()

	if _, err := app.accountService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}

	app.initHTTP()
	return app, nil
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("registration service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down registration service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("registration service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initTokens() error {
	secret := func(name, configured string) []byte {
		if configured != "" {
			return []byte(configured)
		}
		app.logger.Warn("token secret not configured, using a random one; tokens will not survive a restart",
			"secret", name)
		return []byte(cryptox.MustGenerateToken(secretBytes))
	}

	tokens, err := service.NewTokens(service.TokenConfig{
		AuthSecret:    secret("REG_AUTH_SECRET", app.cfg.AuthSecret),
		EmailSecret:   secret("REG_EMAIL_SECRET", app.cfg.EmailSecret),
		ResetSecret:   secret("REG_RESET_SECRET", app.cfg.ResetSecret),
		DiscordSecret: secret("REG_DISCORD_SECRET", app.cfg.DiscordSecret),
		AuthTTL:       app.cfg.AuthTokenTTL,
		EmailTTL:      app.cfg.EmailTokenTTL,
		ResetTTL:      app.cfg.ResetTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tokens: %w", err)
	}
	app.tokens = tokens
	return nil
}

func (app *Application) initBlobs(ctx context.Context) error {
	if app.cfg.S3Bucket == "" {
		app.logger.Warn("no resume bucket configured, resumes are kept in memory")
		app.blobs = blob.NewMemory()
		return nil
	}

	s3, err := blob.NewS3(ctx, blob.S3Config{
		Bucket:    app.cfg.S3Bucket,
		Region:    app.cfg.S3Region,
		Endpoint:  app.cfg.S3Endpoint,
		AccessKey: app.cfg.S3AccessKey,
		SecretKey: app.cfg.S3SecretKey,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(ctx); err != nil {
		return err
	}

	app.logger.Info("resume storage ready", "bucket", app.cfg.S3Bucket)
	app.blobs = s3
	return nil
}

func (app *Application) initServices() {
	notifier := notify.NewLog(app.cfg.PublicURL)

	app.admissionService = &service.AdmissionService{
		Store:    app.db,
		Tokens:   app.tokens,
		Guard:    app.guard,
		Notifier: notifier,
		Blobs:    app.blobs,
		Metrics:  app.metrics,
	}
	app.accountService = &service.AccountService{
		Store:          app.db,
		Tokens:         app.tokens,
		Guard:          app.guard,
		Notifier:       notifier,
		Metrics:        app.metrics,
		WalkInPassword: app.cfg.WalkInPassword,
	}
	app.teamService = &service.TeamService{
		Store:   app.db,
		MaxSize: app.cfg.TeamMaxSize,
		Metrics: app.metrics,
	}
	app.sponsorService = &service.SponsorService{Store: app.db, Guard: app.guard, Notifier: notifier}
	app.queryService = &service.QueryService{Store: app.db}
	app.settingsService = &service.SettingsService{Store: app.db, Guard: app.guard}
	app.statsService = &service.StatsService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.guard,
		app.metrics,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.cfg.RateLimits, app.logger)

	router.AdmissionService = app.admissionService
	router.AccountService = app.accountService
	router.TeamService = app.teamService
	router.SponsorService = app.sponsorService
	router.QueryService = app.queryService
	router.SettingsService = app.settingsService
	router.StatsService = app.statsService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
