package repository

import (
	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JokboRepository interface {
	Create(jokbo *model.Jokbo) error
	FindByID(id uint) (*model.Jokbo, error)
	CreateImages(images []model.JokboImg) error
	DeleteCascade(id uint) ([]string, error)
	Delete(id uint) error
	CountAll() (int64, error)
}

type jokboRepository struct {
	db *gorm.DB
}

func NewJokboRepository(db *gorm.DB) JokboRepository {
	return &jokboRepository{db: db}
}

// Create persists the jokbo row only; images are linked afterwards with CreateImages.
func (r *jokboRepository) Create(jokbo *model.Jokbo) error {
	logger.Debug("Creating jokbo in database", map[string]interface{}{
		"user_id":  jokbo.UserID,
		"store_id": jokbo.StoreID,
	})

	if err := r.db.Omit(clause.Associations).Create(jokbo).Error; err != nil {
		logger.Error("Failed to create jokbo in database", err, map[string]interface{}{
			"user_id":  jokbo.UserID,
			"store_id": jokbo.StoreID,
		})
		return err
	}

	logger.Debug("Jokbo created in database", map[string]interface{}{
		"jokbo_id": jokbo.ID,
	})
	return nil
}

func (r *jokboRepository) FindByID(id uint) (*model.Jokbo, error) {
	logger.Debug("Finding jokbo by ID in database", map[string]interface{}{
		"jokbo_id": id,
	})

	var jokbo model.Jokbo
	err := r.db.
		Preload("Store").
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&jokbo, id).Error
	if err != nil {
		logger.Error("Failed to find jokbo by ID in database", err, map[string]interface{}{
			"jokbo_id": id,
		})
		return nil, err
	}

	logger.Debug("Jokbo found by ID in database", map[string]interface{}{
		"jokbo_id":    jokbo.ID,
		"image_count": len(jokbo.Images),
	})
	return &jokbo, nil
}

// CreateImages inserts all rows in a single statement, so either every image is linked or none.
func (r *jokboRepository) CreateImages(images []model.JokboImg) error {
	if len(images) == 0 {
		return nil
	}

	logger.Debug("Creating jokbo images in database", map[string]interface{}{
		"jokbo_id": images[0].JokboID,
		"count":    len(images),
	})

	if err := r.db.Create(&images).Error; err != nil {
		logger.Error("Failed to create jokbo images in database", err, map[string]interface{}{
			"jokbo_id": images[0].JokboID,
		})
		return err
	}
	return nil
}

// DeleteCascade removes the jokbo with its comments and image rows in one transaction
// and returns the image URLs that were attached at deletion time.
func (r *jokboRepository) DeleteCascade(id uint) ([]string, error) {
	logger.Debug("Deleting jokbo with comments and images", map[string]interface{}{
		"jokbo_id": id,
	})

	var urls []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var jokbo model.Jokbo
		if err := tx.Select("id").First(&jokbo, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.JokboImg{}).
			Where("jokbo_id = ?", id).
			Order("position ASC, id ASC").
			Pluck("img_url", &urls).Error; err != nil {
			return err
		}

		if err := tx.Where("jokbo_id = ?", id).Delete(&model.JokboComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("jokbo_id = ?", id).Delete(&model.JokboImg{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Jokbo{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete jokbo", err, map[string]interface{}{
			"jokbo_id": id,
		})
		return nil, err
	}

	logger.Debug("Jokbo deleted from database", map[string]interface{}{
		"jokbo_id":    id,
		"image_count": len(urls),
	})
	return urls, nil
}

// Delete removes only the jokbo row; used to roll back a create that never linked images.
func (r *jokboRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Jokbo{}, id).Error; err != nil {
		logger.Error("Failed to delete jokbo row", err, map[string]interface{}{
			"jokbo_id": id,
		})
		return err
	}
	return nil
}

func (r *jokboRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Jokbo{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count jokbos", err)
		return 0, err
	}
	return count, nil
}
