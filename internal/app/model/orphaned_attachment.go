package model

import (
	"time"
)

// OrphanedAttachment 족보 삭제 후 스토리지에서 지우지 못한 이미지. 스케줄러가 재시도한다.
type OrphanedAttachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	URL       string    `gorm:"not null" json:"url"`
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`
	LastError string    `gorm:"type:text" json:"last_error"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrphanedAttachment) TableName() string {
	return "orphaned_attachments"
}
