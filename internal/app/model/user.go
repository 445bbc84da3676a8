package model

import (
	"time"
)

type User struct {
	ID            uint       `gorm:"primarykey" json:"id"`              // 사용자 ID
	Email         string     `gorm:"uniqueIndex;not null" json:"email"` // 이메일
	PasswordHash  string     `gorm:"not null" json:"-"`                 // 비밀번호 해시 (argon2id)
	Nickname      string     `gorm:"not null" json:"nickname"`          // 닉네임 (가입 시 자동 생성)
	Department    string     `json:"department"`                        // 학과
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"` // 이메일 인증 시각
	CreatedAt     time.Time  `json:"created_at"`            // 생성 시각
	UpdatedAt     time.Time  `json:"updated_at"`            // 수정 시각
}

func (User) TableName() string {
	return "users"
}
