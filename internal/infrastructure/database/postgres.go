package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ramuneri/tillpoint-api/internal/config"
	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
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

	zap.L().Info("connected to PostgreSQL database", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		// Catalog entities
		&entity.TaxCategory{},
		&entity.TaxRate{},
		&entity.Product{},
		&entity.Service{},

		// Directory entities
		&entity.Customer{},

		// Settlement entities
		&entity.Order{},
		&entity.OrderItem{},
		&entity.Payment{},
		&entity.Giftcard{},
		&entity.GiftcardPayment{},
		&entity.OrderTip{},
		&entity.Refund{},

		// System entities
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zap.L().Info("database migrations completed")
	return nil
}
