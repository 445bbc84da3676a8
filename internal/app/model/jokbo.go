package model

import (
	"time"
)

// 평점 범위
const (
	MinRating = 1
	MaxRating = 5
)

// Jokbo 가게에 대한 리뷰(족보)
type Jokbo struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`  // 작성자 (생성 후 변경 불가)
	StoreID           uint      `gorm:"not null;index" json:"store_id"` // 대상 가게 (생성 후 변경 불가)
	TotalRating       int       `gorm:"not null" json:"total_rating"`
	FlavorRating      int       `gorm:"not null" json:"flavor_rating"`
	UnderPricedRating int       `gorm:"not null" json:"under_priced_rating"`
	CleanRating       int       `gorm:"not null" json:"clean_rating"`
	Title             string    `gorm:"not null" json:"title"`
	Contents          string    `gorm:"type:text" json:"contents"`
	CreatedAt         time.Time `json:"created_at"`

	// Associations (loaded with Preload)
	User     User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Store    Store          `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"-"`
	Images   []JokboImg     `gorm:"foreignKey:JokboID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Comments []JokboComment `gorm:"foreignKey:JokboID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Jokbo) TableName() string {
	return "jokbos"
}

// ImageURLs 제출 순서대로 정렬된 이미지 URL 목록
func (j *Jokbo) ImageURLs() []string {
	urls := make([]string, 0, len(j.Images))
	for _, img := range j.Images {
		urls = append(urls, img.ImgURL)
	}
	return urls
}

// JokboImg 족보 첨부 이미지. 실제 바이트는 외부 스토리지에 있다.
type JokboImg struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	JokboID   uint      `gorm:"not null;index" json:"jokbo_id"`
	ImgURL    string    `gorm:"not null" json:"img_url"`
	Position  int       `gorm:"not null;default:0" json:"position"` // 제출 순서
	CreatedAt time.Time `json:"created_at"`
}

func (JokboImg) TableName() string {
	return "jokbo_imgs"
}

// JokboComment 족보 댓글
type JokboComment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	JokboID   uint      `gorm:"not null;index" json:"jokbo_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Contents  string    `gorm:"type:text;not null" json:"contents"`
	IsDeleted bool      `gorm:"default:false" json:"is_deleted"` // 소프트 삭제 플래그
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (JokboComment) TableName() string {
	return "jokbo_comments"
}
