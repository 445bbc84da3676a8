package db

import (
	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/pkg/logger"
	"gorm.io/gorm"
)

// models 마이그레이션 대상 (부모 테이블 먼저)
func models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Store{},
		&model.Jokbo{},
		&model.JokboImg{},
		&model.JokboComment{},
		&model.StoreFavorite{},
		&model.OrphanedAttachment{},
	}
}

// Migrate runs database migrations
func Migrate(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	list := models()
	if err := conn.AutoMigrate(list...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(list),
	})
	return nil
}
