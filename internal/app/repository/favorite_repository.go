package repository

import (
	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	Create(favorite *model.StoreFavorite) error
	FindByID(id uint) (*model.StoreFavorite, error)
	FindByUserAndStore(userID, storeID uint) (*model.StoreFavorite, error)
	FindByUserID(userID uint) ([]model.StoreFavorite, error)
	Delete(id uint) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(favorite *model.StoreFavorite) error {
	logger.Debug("Creating store favorite in database", map[string]interface{}{
		"user_id":  favorite.UserID,
		"store_id": favorite.StoreID,
	})

	if err := r.db.Omit(clause.Associations).Create(favorite).Error; err != nil {
		logger.Error("Failed to create store favorite in database", err, map[string]interface{}{
			"user_id":  favorite.UserID,
			"store_id": favorite.StoreID,
		})
		return err
	}

	logger.Debug("Store favorite created in database", map[string]interface{}{
		"favorite_id": favorite.ID,
	})
	return nil
}

func (r *favoriteRepository) FindByID(id uint) (*model.StoreFavorite, error) {
	var favorite model.StoreFavorite
	if err := r.db.First(&favorite, id).Error; err != nil {
		logger.Error("Failed to find store favorite by ID", err, map[string]interface{}{
			"favorite_id": id,
		})
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) FindByUserAndStore(userID, storeID uint) (*model.StoreFavorite, error) {
	logger.Debug("Finding store favorite by user and store", map[string]interface{}{
		"user_id":  userID,
		"store_id": storeID,
	})

	var favorite model.StoreFavorite
	if err := r.db.Where("user_id = ? AND store_id = ?", userID, storeID).First(&favorite).Error; err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) FindByUserID(userID uint) ([]model.StoreFavorite, error) {
	logger.Debug("Finding store favorites by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var favorites []model.StoreFavorite
	err := r.db.Where("user_id = ?", userID).
		Preload("Store").
		Order("created_at DESC, id DESC").
		Find(&favorites).Error
	if err != nil {
		logger.Error("Failed to find store favorites by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) Delete(id uint) error {
	logger.Debug("Deleting store favorite from database", map[string]interface{}{
		"favorite_id": id,
	})

	result := r.db.Delete(&model.StoreFavorite{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete store favorite", result.Error, map[string]interface{}{
			"favorite_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
