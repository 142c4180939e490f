package database

import (
	"fmt"
	"os"
	"time"

	"github.com/refermarket/backend/internal/logger"
	"github.com/refermarket/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens and configures the database connection. The returned
// handle is the single shared pool for the process; callers inject it
// into services rather than reaching for a package global.
func Connect(databaseURL string) (*gorm.DB, error) {
	gl := gormlogger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gl = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gl,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Log.Info("✅ Database connected successfully")
	return db, nil
}

// Migrate runs auto-migration for all models and creates indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Platform{},
		&models.ReferralCode{},
		&models.Feedback{},
		&models.Click{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Log.Info("✅ Database migrations completed")
	return nil
}

// createIndexes creates performance and integrity indexes
func createIndexes(db *gorm.DB) error {
	// Platform browsing
	db.Exec("CREATE INDEX IF NOT EXISTS idx_platforms_category_active ON platforms (category, is_active)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_platforms_search ON platforms USING gin(to_tsvector('english', name || ' ' || description))")

	// Referral listing hot path: active codes per platform, best performers first
	db.Exec("CREATE INDEX IF NOT EXISTS idx_referral_codes_platform_status_clicks ON referral_codes (platform_slug, status, clicks DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_referral_codes_user_status ON referral_codes (user_id, status)")

	// Duplicate submissions are rejected at the store level, not just by the
	// read-then-write check inside the transaction
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_referral_codes_unique_code ON referral_codes (platform_id, code) WHERE status = 'ACTIVE' AND code IS NOT NULL")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_referral_codes_unique_link ON referral_codes (platform_id, referral_link) WHERE status = 'ACTIVE' AND referral_link IS NOT NULL")

	// Click audit queries
	db.Exec("CREATE INDEX IF NOT EXISTS idx_referral_clicks_referral_created ON referral_clicks (referral_id, created_at DESC)")

	// Feedback history per referral
	db.Exec("CREATE INDEX IF NOT EXISTS idx_referral_feedback_referral ON referral_feedback (referral_id, created_at DESC)")

	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database connectivity
func Health(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
