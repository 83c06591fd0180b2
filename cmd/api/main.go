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

	"github.com/atelier-api/internal/config"
	"github.com/atelier-api/internal/infrastructure/dynamo"
	"github.com/atelier-api/internal/infrastructure/google"
	jwtinfra "github.com/atelier-api/internal/infrastructure/jwt"
	"github.com/atelier-api/internal/infrastructure/oauth"
	"github.com/atelier-api/internal/infrastructure/postgres"
	"github.com/atelier-api/internal/infrastructure/smtp"
	"github.com/atelier-api/internal/logging"
	"github.com/atelier-api/internal/pkg/password"
	transporthttp "github.com/atelier-api/internal/transport/http"
	appmiddleware "github.com/atelier-api/internal/transport/http/middleware"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.AppEnv)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.AppEnv,
			TracesSampleRate: 0.2,
		}); err != nil {
			slog.Warn("sentry init failed", "err", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()
	deps := &transporthttp.Deps{}

	switch cfg.StoreDriver {
	case config.DriverDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		// Creates the tables if they don't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		users := dynamo.NewUserRepo(client, cfg.DynamoTables.Users)
		deps.UserRepo = users
		deps.TokenRepo = dynamo.NewTokenRepo(client, cfg.DynamoTables.VerificationTokens, cfg.DynamoTables.PasswordResetTokens, users)
		deps.HealthCheck = func(ctx context.Context) error {
			return dynamo.Ping(ctx, client, cfg.DynamoTables.Users)
		}
	default:
		db, err := postgres.Connect(cfg)
		if err != nil {
			return err
		}
		if err := postgres.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		defer closeDB(db)
		deps.UserRepo = postgres.NewUserRepo(db)
		deps.TokenRepo = postgres.NewTokenRepo(db)
		deps.HealthCheck = func(ctx context.Context) error { return postgres.Ping(ctx, db) }
		deps.Marketplace = &transporthttp.MarketplaceRepos{
			Projects:   postgres.NewProjectRepo(db),
			Bids:       postgres.NewBidRepo(db),
			Reviews:    postgres.NewReviewRepo(db),
			Portfolios: postgres.NewPortfolioRepo(db),
		}
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.JWTExpiry, cfg.OAuthCodeTTL)
	if err != nil {
		return err
	}
	deps.JWTProvider = jwtProvider
	deps.Hasher = password.NewHasher(cfg.BcryptCost)
	deps.Mailer = smtp.NewMailer(cfg)
	deps.OAuth = oauth.NewRegistry(cfg)
	if cfg.Google.ClientID != "" {
		deps.GoogleVerifier = google.NewVerifier(cfg.Google.ClientID)
	}
	for name := range deps.OAuth {
		slog.Info("oauth provider enabled", "provider", name)
	}
	if deps.Marketplace == nil {
		slog.Info("marketplace routes disabled", "store", cfg.StoreDriver)
	}

	limiter := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	defer limiter.Stop()
	deps.RateLimiter = limiter

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Warn("close database", "err", err)
	}
}
