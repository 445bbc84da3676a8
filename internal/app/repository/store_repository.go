package repository

import (
	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreRepository interface {
	FindByID(id uint) (*model.Store, error)
	Exists(id uint) (bool, error)
	BulkCreate(stores []model.Store, batchSize int) (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	logger.Debug("Finding store by ID in database", map[string]interface{}{
		"store_id": id,
	})

	var store model.Store
	if err := r.db.First(&store, id).Error; err != nil {
		logger.Error("Failed to find store by ID in database", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Store{}).Where("id = ?", id).Count(&count).Error; err != nil {
		logger.Error("Failed to check store existence", err, map[string]interface{}{
			"store_id": id,
		})
		return false, err
	}
	return count > 0, nil
}

// BulkCreate inserts stores in batches, skipping rows whose ID already exists.
func (r *storeRepository) BulkCreate(stores []model.Store, batchSize int) (int64, error) {
	if len(stores) == 0 {
		return 0, nil
	}

	logger.Debug("Bulk creating stores in database", map[string]interface{}{
		"count":      len(stores),
		"batch_size": batchSize,
	})

	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(stores, batchSize)
	if result.Error != nil {
		logger.Error("Failed to bulk create stores", result.Error, map[string]interface{}{
			"count": len(stores),
		})
		return 0, result.Error
	}

	logger.Info("Stores bulk created", map[string]interface{}{
		"requested": len(stores),
		"inserted":  result.RowsAffected,
	})
	return result.RowsAffected, nil
}
