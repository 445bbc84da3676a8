package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matdori/matdori-backend/pkg/logger"
	"github.com/matdori/matdori-backend/pkg/util"
)

// Registry 세션 토큰 발급 및 인가 확인
type Registry struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	token func() (string, error)
}

// NewRegistry 세션 레지스트리 생성. 프로세스 시작 시 한 번 만들어 주입한다.
func NewRegistry(store Store, ttl time.Duration) *Registry {
	return &Registry{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		token: util.GenerateSessionToken,
	}
}

// Issue userID의 새 세션 발급
func (r *Registry) Issue(ctx context.Context, userID uint) (*Session, error) {
	token, err := r.token()
	if err != nil {
		return nil, err
	}

	now := r.now()
	s := &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
	if err := r.store.Set(ctx, s); err != nil {
		logger.Error("Failed to store session", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("store session: %w", err)
	}

	logger.Debug("Session issued", map[string]interface{}{
		"user_id":    userID,
		"expires_at": s.ExpiresAt,
	})
	return s, nil
}

// Lookup 토큰에 묶인 사용자 조회
func (r *Registry) Lookup(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, ErrUnauthorized
	}

	s, err := r.store.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Error("Failed to read session", err)
		}
		return 0, ErrUnauthorized
	}
	return s.UserID, nil
}

// Authorize 토큰이 살아 있고 정확히 userID의 것일 때만 성공
func (r *Registry) Authorize(ctx context.Context, userID uint, token string) error {
	owner, err := r.Lookup(ctx, token)
	if err != nil {
		return err
	}
	if owner != userID {
		logger.Warn("Session bound to a different user", map[string]interface{}{
			"claimed_user_id": userID,
			"session_user_id": owner,
		})
		return ErrUnauthorized
	}
	return nil
}

// Revoke 토큰 즉시 무효화 (없는 토큰은 에러 아님)
func (r *Registry) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := r.store.Delete(ctx, token); err != nil {
		logger.Error("Failed to revoke session", err)
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Sweep 만료 세션 정리 (필요한 저장소만)
func (r *Registry) Sweep() int {
	sw, ok := r.store.(Sweeper)
	if !ok {
		return 0
	}
	return sw.Sweep(r.now())
}

// TTL 새 세션의 유효 기간
func (r *Registry) TTL() time.Duration {
	return r.ttl
}
