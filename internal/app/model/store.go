package model

import (
	"time"
)

// Store 맛집(가게)
type Store struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Category    string    `gorm:"type:varchar(30);index" json:"category"` // 한식, 중식, 카페 ...
	Address     string    `gorm:"type:text" json:"address"`
	PhoneNumber string    `gorm:"type:varchar(30)" json:"phone_number"`
	OpenHour    string    `gorm:"type:varchar(50)" json:"open_hour"`
	ImgURL      string    `json:"img_url"` // 대표 이미지
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Store) TableName() string {
	return "stores"
}
