package repository

import (
	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(comment *model.JokboComment) error
	FindByJokboID(jokboID uint) ([]model.JokboComment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.JokboComment) error {
	logger.Debug("Creating jokbo comment in database", map[string]interface{}{
		"jokbo_id": comment.JokboID,
		"user_id":  comment.UserID,
	})

	if err := r.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		logger.Error("Failed to create jokbo comment in database", err, map[string]interface{}{
			"jokbo_id": comment.JokboID,
			"user_id":  comment.UserID,
		})
		return err
	}
	return nil
}

func (r *commentRepository) FindByJokboID(jokboID uint) ([]model.JokboComment, error) {
	logger.Debug("Finding comments by jokbo ID in database", map[string]interface{}{
		"jokbo_id": jokboID,
	})

	var comments []model.JokboComment
	err := r.db.Where("jokbo_id = ?", jokboID).
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		logger.Error("Failed to find comments by jokbo ID in database", err, map[string]interface{}{
			"jokbo_id": jokboID,
		})
		return nil, err
	}

	logger.Debug("Comments found by jokbo ID in database", map[string]interface{}{
		"jokbo_id": jokboID,
		"count":    len(comments),
	})
	return comments, nil
}
