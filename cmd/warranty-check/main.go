// Package main is a one-shot runner for the warranty expiration check.
//
// It performs a single pass over the inventory and exits, which makes it
// suitable for cron or an ECS scheduled task when the in-process loop of the
// API server is not wanted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/jackc/pgx/v5/pgxpool"

	"assettrack/internal/config"
	"assettrack/internal/db"
	"assettrack/internal/external"
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

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("warranty check starting", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pc, err := pgxpool.ParseConfig(cfg.Database.URL.Unmask())
	if err != nil {
		return fmt.Errorf("parsing database URL: %w", err)
	}
	pc.MaxConns = int32(cfg.Database.MaxConns)
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		return fmt.Errorf("loading email templates: %w", err)
	}

	var provider external.EmailProvider
	if cfg.Email.Enabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return fmt.Errorf("loading AWS config: %w", err)
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
		provider = dropProvider{logger: logger}
	}

	notifier := email.NewNotifier(provider, renderer, email.NotifierConfig{
		FromName:    cfg.Email.FromName,
		FromAddress: cfg.Email.FromAddress,
		Logger:      logger,
	})

	checker := warranty.NewChecker(
		db.NewAssetRepository(pool),
		db.NewWarrantyNotificationRepository(pool),
		db.NewUserRepository(pool),
		notifier,
		nil,
		logger,
	)

	start := time.Now()
	report, err := checker.Run(ctx)
	if err != nil {
		return fmt.Errorf("warranty check: %w", err)
	}

	logger.Info("warranty check finished",
		"duration", time.Since(start).String(),
		"scanned", report.Scanned,
		"suppressed", report.Suppressed,
		"recorded", report.Recorded,
	)
	return nil
}

// dropProvider logs instead of delivering when email is disabled.
type dropProvider struct {
	logger *slog.Logger
}

func (p dropProvider) Send(_ context.Context, input types.SendInput) (string, error) {
	p.logger.Info("email delivery disabled; dropping message",
		"subject", input.Subject,
		"recipients", len(input.To),
	)
	return "disabled", nil
}

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
