package db

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Coupon{},
		&model.Order{},
		&model.Notification{},
		&model.RoleRequest{},
	}
}

// Migrate runs database migrations against DB.
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

var defaultCategories = []model.Category{
	{Name: "General", Description: "Uncategorized products"},
}

func seedInitialData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("Categories already seeded, skipping", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	for i := range defaultCategories {
		category := defaultCategories[i]
		if err := db.Create(&category).Error; err != nil {
			return err
		}
	}

	logger.Info("Initial data seeded successfully", map[string]interface{}{
		"categories": len(defaultCategories),
	})
	return nil
}
