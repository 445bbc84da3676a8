package repository

import (
	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/pkg/logger"
	"gorm.io/gorm"
)

// OrphanRepository 스토리지에서 삭제하지 못한 첨부 이미지 기록
type OrphanRepository interface {
	Create(orphans []model.OrphanedAttachment) error
	FindBatch(limit int) ([]model.OrphanedAttachment, error)
	MarkAttempt(id uint, lastErr string) error
	Delete(id uint) error
}

type orphanRepository struct {
	db *gorm.DB
}

func NewOrphanRepository(db *gorm.DB) OrphanRepository {
	return &orphanRepository{db: db}
}

func (r *orphanRepository) Create(orphans []model.OrphanedAttachment) error {
	if len(orphans) == 0 {
		return nil
	}
	if err := r.db.Create(&orphans).Error; err != nil {
		logger.Error("Failed to record orphaned attachments", err, map[string]interface{}{
			"count": len(orphans),
		})
		return err
	}
	return nil
}

// FindBatch returns the least-retried orphans first.
func (r *orphanRepository) FindBatch(limit int) ([]model.OrphanedAttachment, error) {
	var orphans []model.OrphanedAttachment
	err := r.db.Order("attempts ASC, id ASC").Limit(limit).Find(&orphans).Error
	if err != nil {
		logger.Error("Failed to load orphaned attachments", err)
		return nil, err
	}
	return orphans, nil
}

func (r *orphanRepository) MarkAttempt(id uint, lastErr string) error {
	return r.db.Model(&model.OrphanedAttachment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastErr,
		}).Error
}

func (r *orphanRepository) Delete(id uint) error {
	return r.db.Delete(&model.OrphanedAttachment{}, id).Error
}
