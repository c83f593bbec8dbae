// Package main is the entry point for the AssetTrack API server.
//
// It loads configuration, connects the Postgres pool, wires the repositories
// and services into the HTTP chassis, and runs the warranty check loop
// alongside the server. Graceful shutdown is handled via OS signal
// interception (SIGINT, SIGTERM).
package main

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

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"assettrack/internal/api/handlers"
	"assettrack/internal/auth"
	"assettrack/internal/config"
	"assettrack/internal/core"
	"assettrack/internal/csvio"
	"assettrack/internal/db"
	"assettrack/internal/external"
	"assettrack/internal/lifecycle"
	"assettrack/internal/notifications/email"
	"assettrack/internal/types"
	"assettrack/internal/warranty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on
// error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("assettrack API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newDBPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	// Repositories over the shared pool.
	assetRepo := db.NewAssetRepository(pool)
	employeeRepo := db.NewEmployeeRepository(pool)
	userRepo := db.NewUserRepository(pool)
	repairRepo := db.NewRepairRepository(pool)
	auditRepo := db.NewAuditRepository(pool)
	sessionRepo := db.NewSessionRepository(pool)
	notificationRepo := db.NewWarrantyNotificationRepository(pool)
	statsRepo := db.NewStatsRepository(pool)
	txManager := db.NewTxManager(pool)

	notifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("wiring email delivery: %w", err)
	}

	lifecycleSvc := lifecycle.NewService(txManager, employeeRepo, notifier, nil, logger)
	checker := warranty.NewChecker(assetRepo, notificationRepo, userRepo, notifier, nil, logger)

	authSvc := auth.NewService(auth.ServiceConfig{
		Users:      userRepo,
		Sessions:   sessionRepo,
		Logger:     logger,
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Authenticator = authSvc

	// Wire the handlers.
	authHandler := handlers.NewAuthHandler(authSvc, srv.Validator, logger)
	assetHandler := handlers.NewAssetHandler(lifecycleSvc, assetRepo, repairRepo, auditRepo, srv.Validator, logger)
	employeeHandler := handlers.NewEmployeeHandler(employeeRepo, srv.Validator, logger)
	dashboardHandler := handlers.NewDashboardHandler(statsRepo, assetRepo, auditRepo, nil, logger)
	warrantyHandler := handlers.NewWarrantyHandler(checker, logger)
	csvHandler := handlers.NewCSVHandler(
		csvio.NewExporter(assetRepo),
		csvio.NewImporter(lifecycleSvc, assetRepo),
		logger,
	)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		authHandler.RegisterRoutes,
		assetHandler.RegisterRoutes,
		employeeHandler.RegisterRoutes,
		dashboardHandler.RegisterRoutes,
		warrantyHandler.RegisterRoutes,
		csvHandler.RegisterRoutes,
	)

	srv.MountRoutes()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runHTTPServer(gctx, srv, cfg, logger)
	})
	g.Go(func() error {
		runWarrantyLoop(gctx, cfg, checker, authSvc, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped cleanly")
	return nil
}

// newDBPool builds the pgx pool with the configured tuning and verifies
// connectivity before the server starts taking traffic.
func newDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.Database.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	pc.MaxConns = int32(cfg.Database.MaxConns)
	pc.MinConns = int32(cfg.Database.MinConns)
	pc.MaxConnLifetime = cfg.Database.MaxConnLifetime
	pc.HealthCheckPeriod = cfg.Database.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// newNotifier builds the email delivery path: SES behind a circuit breaker,
// rendered with the embedded templates. With EMAIL_ENABLED=false deliveries
// are logged and reported as sent, which is what local development wants.
func newNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*email.Notifier, error) {
	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, err
	}

	var provider external.EmailProvider
	if cfg.Email.Enabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		if cfg.AWS.EndpointURL != "" {
			awsCfg.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
		sesClient := external.NewSESClient(awsCfg, external.SESClientConfig{
			ConfigSetName: cfg.Email.ConfigSetName,
			Logger:        logger,
		})
		provider = external.NewBreakerEmailProvider(sesClient, logger)
	} else {
		provider = &logEmailProvider{logger: logger}
	}

	return email.NewNotifier(provider, renderer, email.NotifierConfig{
		FromName:    cfg.Email.FromName,
		FromAddress: cfg.Email.FromAddress,
		Logger:      logger,
	}), nil
}

// logEmailProvider stands in for SES when email delivery is disabled.
type logEmailProvider struct {
	logger *slog.Logger
}

func (p *logEmailProvider) Send(_ context.Context, input types.SendInput) (string, error) {
	p.logger.Info("email delivery disabled; dropping message",
		"subject", input.Subject,
		"recipients", len(input.To),
		"reference_id", input.ReferenceID,
	)
	return "disabled", nil
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully
// within the configured deadline.
func runHTTPServer(ctx context.Context, srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("initiating graceful shutdown")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	return nil
}

// runWarrantyLoop runs the periodic warranty check until ctx is cancelled.
// Expired sessions are purged on the same cadence; both are cheap enough
// that a shared ticker is fine.
func runWarrantyLoop(ctx context.Context, cfg *config.Config, checker *warranty.Checker, authSvc *auth.Service, logger *slog.Logger) {
	runOnce := func() {
		report, err := checker.Run(ctx)
		if err != nil {
			logger.Error("warranty check failed", "error", err)
		} else {
			logger.Info("warranty check completed",
				"scanned", report.Scanned,
				"suppressed", report.Suppressed,
				"recorded", report.Recorded,
			)
		}
		if _, err := authSvc.PurgeExpired(ctx); err != nil {
			logger.Error("session purge failed", "error", err)
		}
	}

	if cfg.Warranty.CheckOnStartup {
		runOnce()
	}

	ticker := time.NewTicker(cfg.Warranty.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// newLogger creates a structured JSON logger for the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
