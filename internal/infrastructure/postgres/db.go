package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atelier-api/internal/config"
	"github.com/atelier-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the PostgreSQL pool. Duplicate-key and similar driver errors
// are translated into gorm sentinels so repos can map them to domain errors.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := open(postgres.Open(cfg.DSN()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected", "host", cfg.DBHost, "db", cfg.DBName)
	return db, nil
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
}

// AutoMigrate creates the credential and marketplace tables if they are missing.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&verificationTokenRow{},
		&passwordResetTokenRow{},
		&domain.Project{},
		&domain.ProjectFile{},
		&domain.ProjectRequirement{},
		&domain.Bid{},
		&domain.Review{},
		&domain.Portfolio{},
		&domain.PortfolioImage{},
	)
}

// Ping checks the pool can reach the server.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
