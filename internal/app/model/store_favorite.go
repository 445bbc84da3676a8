package model

import (
	"time"
)

// StoreFavorite 사용자가 좋아요한 가게. (user_id, store_id) 쌍은 유일하다.
type StoreFavorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_store_favorite" json:"user_id"`
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_user_store_favorite" json:"store_id"`
	CreatedAt time.Time `json:"created_at"`

	// Associations (loaded with Preload)
	Store Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}

func (StoreFavorite) TableName() string {
	return "store_favorites"
}
