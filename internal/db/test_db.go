package db

import (
	"fmt"

	appLogger "github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB returns a migrated in-memory SQLite database without seed data.
// A single connection keeps every goroutine on the same in-memory database.
func SetupTestDB() (*gorm.DB, error) {
	testDB, err := open(sqlite.Open(":memory:"), poolConfig{maxOpenConns: 1})
	if err != nil {
		return nil, err
	}

	if err := testDB.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	return testDB, nil
}

func CleanupTestDB(testDB *gorm.DB) {
	sqlDB, err := testDB.DB()
	if err != nil {
		appLogger.Warn("Failed to get test database instance", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_ = sqlDB.Close()
}
