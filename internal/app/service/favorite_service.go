package service

import (
	"errors"

	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrFavoriteAlreadyExists = errors.New("store already in favorites")
	ErrFavoriteNotFound      = errors.New("favorite not found")
)

type FavoriteService interface {
	AddFavoriteStore(userID, storeID uint) (*model.StoreFavorite, error)
	ListFavoriteStores(userID uint) ([]model.StoreFavorite, error)
	RemoveFavoriteStore(userID, favoriteID uint) error
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	storeRepo    repository.StoreRepository
}

// NewFavoriteService 좋아요 가게 서비스 생성
func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	storeRepo repository.StoreRepository,
) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		storeRepo:    storeRepo,
	}
}

// AddFavoriteStore 좋아요 가게 추가 (중복이면 ErrFavoriteAlreadyExists)
func (s *favoriteService) AddFavoriteStore(userID, storeID uint) (*model.StoreFavorite, error) {
	exists, err := s.storeRepo.Exists(storeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStoreNotFound
	}

	existing, err := s.favoriteRepo.FindByUserAndStore(userID, storeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrFavoriteAlreadyExists
	}

	favorite := &model.StoreFavorite{
		UserID:  userID,
		StoreID: storeID,
	}
	if err := s.favoriteRepo.Create(favorite); err != nil {
		// 동시 요청으로 유니크 인덱스에 걸린 경우
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFavoriteAlreadyExists
		}
		return nil, err
	}

	logger.Info("Store added to favorites", map[string]interface{}{
		"favorite_id": favorite.ID,
		"user_id":     userID,
		"store_id":    storeID,
	})
	return favorite, nil
}

// ListFavoriteStores 좋아요 가게 목록 조회
func (s *favoriteService) ListFavoriteStores(userID uint) ([]model.StoreFavorite, error) {
	return s.favoriteRepo.FindByUserID(userID)
}

// RemoveFavoriteStore 좋아요 가게 삭제 (본인 것만)
func (s *favoriteService) RemoveFavoriteStore(userID, favoriteID uint) error {
	favorite, err := s.favoriteRepo.FindByID(favoriteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}
	if favorite.UserID != userID {
		logger.Warn("Favorite delete rejected: not owner", map[string]interface{}{
			"favorite_id": favoriteID,
			"user_id":     userID,
		})
		return ErrFavoriteNotFound
	}

	if err := s.favoriteRepo.Delete(favoriteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}

	logger.Info("Store removed from favorites", map[string]interface{}{
		"favorite_id": favoriteID,
		"user_id":     userID,
	})
	return nil
}
