package repository

import (
	"errors"
	"time"

	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	UpdatePasswordHash(id uint, hash string) error
	MarkVerified(email string, at time.Time) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		// 로그인 시 존재하지 않는 이메일은 정상 흐름
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find user by email in database", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdatePasswordHash(id uint, hash string) error {
	logger.Debug("Updating password hash in database", map[string]interface{}{
		"user_id": id,
	})

	result := r.db.Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		logger.Error("Failed to update password hash in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkVerified flags the user with email as verified. Returns false when no such user exists.
func (r *userRepository) MarkVerified(email string, at time.Time) (bool, error) {
	logger.Debug("Marking user email as verified", map[string]interface{}{
		"email": email,
	})

	result := r.db.Model(&model.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"email_verified": true,
			"verified_at":    at,
		})
	if result.Error != nil {
		logger.Error("Failed to mark user as verified", result.Error, map[string]interface{}{
			"email": email,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
