// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/bizdir-backend/internal/config"
	"github.com/javajoker/bizdir-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return Open(cfg.DSN(), cfg)
}

// Open connects with an explicit DSN and applies the pool settings from cfg.
func Open(dsn string, cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations")

	// gen_random_uuid() on servers older than 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Category{},
		&models.Business{},
		&models.Product{},
		&models.Review{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db)

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_businesses_status_rating ON businesses(status, average_rating DESC NULLS LAST)",
		"CREATE INDEX IF NOT EXISTS idx_businesses_status_category ON businesses(status, category_id)",
		"CREATE INDEX IF NOT EXISTS idx_businesses_city_lower ON businesses(LOWER(city))",
		"CREATE INDEX IF NOT EXISTS idx_products_business_available ON products(business_id, is_available)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_business_created ON reviews(business_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Missing secondary indexes only cost performance.
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}
}

// DefaultCategories is the static reference data every deployment starts with.
var DefaultCategories = []models.Category{
	{Name: "Grocery & Essentials", Slug: "grocery", Icon: "shopping-bag", Description: "Find local grocery stores and essential item providers near you"},
	{Name: "Food & Beverages", Slug: "food", Icon: "utensils", Description: "Explore restaurants, cafes, and food services in your area"},
	{Name: "Clothing & Fashion", Slug: "clothing", Icon: "shirt", Description: "Discover local clothing stores, tailors, and fashion boutiques"},
	{Name: "Home & Furniture", Slug: "home", Icon: "home", Description: "Find furniture stores and home decor businesses nearby"},
	{Name: "Services & Repairs", Slug: "services", Icon: "wrench", Description: "Connect with local service providers and repair professionals"},
	{Name: "Health & Wellness", Slug: "health", Icon: "stethoscope", Description: "Locate healthcare providers, pharmacies, and wellness centers"},
	{Name: "Beauty & Personal Care", Slug: "beauty", Icon: "scissors", Description: "Find salons, spas, and personal care services in your community"},
	{Name: "Education & Learning", Slug: "education", Icon: "book", Description: "Discover schools, tutoring services, and educational resources"},
	{Name: "Electronics & Tech", Slug: "electronics", Icon: "laptop", Description: "Connect with electronics stores and tech service providers"},
}

// SeedCategories inserts any default category whose slug is not present yet.
func SeedCategories(db *gorm.DB) error {
	logrus.Info("Seeding categories")

	for _, category := range DefaultCategories {
		var count int64
		if err := db.Model(&models.Category{}).Where("slug = ?", category.Slug).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check category %s: %w", category.Slug, err)
		}
		if count > 0 {
			continue
		}

		c := category
		if err := db.Create(&c).Error; err != nil {
			return fmt.Errorf("failed to create category %s: %w", category.Slug, err)
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
