// Package session 로그인 세션 토큰과 사용자 ID의 매핑을 관리한다.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by a Store when the token is unknown or expired.
	ErrNotFound = errors.New("session not found")
	// ErrUnauthorized is the authorization gate failure.
	ErrUnauthorized = errors.New("unauthorized")
)

// Session binds an opaque token to an authenticated user.
type Session struct {
	Token     string    `json:"-"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store is a concurrency-safe token -> session mapping.
type Store interface {
	Get(ctx context.Context, token string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}

// Sweeper is implemented by stores that need explicit eviction of expired entries.
type Sweeper interface {
	Sweep(now time.Time) int
}
