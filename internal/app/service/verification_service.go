package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/pkg/logger"
	"github.com/matdori/matdori-backend/pkg/util"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

var (
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooManyRequests = errors.New("too many verification requests")
	ErrMailDelivery    = errors.New("failed to deliver verification mail")
)

var timeNow = time.Now

// 가입 전 인증을 마친 이메일이 가입을 완료해야 하는 시간
const verifiedEmailTTL = 30 * time.Minute

type VerificationService interface {
	IssueCode(ctx context.Context, email string) error
	CheckCode(ctx context.Context, email, code string) error
	HasVerifiedEmail(email string) bool
	ConsumeVerifiedEmail(email string) bool
	Sweep(now time.Time) int
}

type pendingCode struct {
	code      string
	issuedAt  time.Time
	expiresAt time.Time
	attempts  int
}

type verificationService struct {
	userRepo    repository.UserRepository
	mailer      util.Mailer
	codeTTL     time.Duration
	resendEvery time.Duration
	maxAttempts int
	now         func() time.Time
	newCode     func() (string, error)

	mu       sync.Mutex
	codes    map[string]*pendingCode
	verified map[string]time.Time
	limiters map[string]*rate.Limiter
}

// NewVerificationService 이메일 인증 서비스 생성
func NewVerificationService(
	userRepo repository.UserRepository,
	mailer util.Mailer,
	cfg config.VerificationConfig,
) VerificationService {
	return &verificationService{
		userRepo:    userRepo,
		mailer:      mailer,
		codeTTL:     cfg.CodeTTL,
		resendEvery: cfg.ResendInterval,
		maxAttempts: cfg.MaxAttempts,
		now:         timeNow,
		newCode:     util.GenerateVerificationCode,
		codes:       make(map[string]*pendingCode),
		verified:    make(map[string]time.Time),
		limiters:    make(map[string]*rate.Limiter),
	}
}

// IssueCode 인증번호 발급 및 메일 발송 (이전 인증번호는 덮어씀)
func (s *verificationService) IssueCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if user != nil && user.EmailVerified {
		logger.Warn("Verification requested for verified email", map[string]interface{}{
			"email": email,
		})
		return ErrEmailAlreadyExists
	}

	code, err := s.newCode()
	if err != nil {
		return err
	}

	now := s.now()
	s.mu.Lock()
	reservation := s.limiter(email).ReserveN(now, 1)
	if !reservation.OK() || reservation.DelayFrom(now) > 0 {
		reservation.CancelAt(now)
		s.mu.Unlock()
		logger.Warn("Verification resend throttled", map[string]interface{}{
			"email": email,
		})
		return ErrTooManyRequests
	}
	s.codes[email] = &pendingCode{
		code:      code,
		issuedAt:  now,
		expiresAt: now.Add(s.codeTTL),
	}
	s.mu.Unlock()

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		// 발송 실패는 재발송 제한에 포함하지 않는다
		s.mu.Lock()
		if p, ok := s.codes[email]; ok && p.code == code {
			delete(s.codes, email)
		}
		reservation.CancelAt(now)
		s.mu.Unlock()

		logger.Error("Failed to send verification code", err, map[string]interface{}{
			"email": email,
		})
		return fmt.Errorf("%w: %w", ErrMailDelivery, err)
	}

	logger.Info("Verification code issued", map[string]interface{}{
		"email":      email,
		"expires_at": now.Add(s.codeTTL),
	})
	return nil
}

// CheckCode 인증번호 확인 (일치하면 소비)
func (s *verificationService) CheckCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	now := s.now()

	s.mu.Lock()
	p, ok := s.codes[email]
	if !ok || !now.Before(p.expiresAt) {
		delete(s.codes, email)
		s.mu.Unlock()
		return ErrInvalidCode
	}

	p.attempts++
	if s.maxAttempts > 0 && p.attempts > s.maxAttempts {
		delete(s.codes, email)
		s.mu.Unlock()
		logger.Warn("Verification attempts exceeded", map[string]interface{}{
			"email": email,
		})
		return ErrTooManyRequests
	}

	if subtle.ConstantTimeCompare([]byte(p.code), []byte(code)) != 1 {
		s.mu.Unlock()
		return ErrInvalidCode
	}

	delete(s.codes, email)
	s.verified[email] = now.Add(verifiedEmailTTL)
	s.mu.Unlock()

	// 이미 가입한 사용자면 바로 인증 처리
	marked, err := s.userRepo.MarkVerified(email, now)
	if err != nil {
		// 같은 인증번호로 다시 시도할 수 있게 되돌린다
		s.mu.Lock()
		if _, reissued := s.codes[email]; !reissued {
			s.codes[email] = p
		}
		delete(s.verified, email)
		s.mu.Unlock()

		logger.Error("Failed to mark user verified", err, map[string]interface{}{
			"email": email,
		})
		return err
	}
	if marked {
		s.mu.Lock()
		delete(s.verified, email)
		s.mu.Unlock()
	}

	logger.Info("Email verified", map[string]interface{}{
		"email":         email,
		"existing_user": marked,
	})
	return nil
}

// HasVerifiedEmail 가입 전 인증 기록 확인 (소비하지 않음)
func (s *verificationService) HasVerifiedEmail(email string) bool {
	email = normalizeEmail(email)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.verified[email]
	return ok && now.Before(until)
}

// ConsumeVerifiedEmail 가입 전 인증 기록 소비
func (s *verificationService) ConsumeVerifiedEmail(email string) bool {
	email = normalizeEmail(email)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.verified[email]
	if !ok {
		return false
	}
	delete(s.verified, email)
	return now.Before(until)
}

// Sweep 만료된 인증번호/인증 기록 및 유휴 limiter 정리
func (s *verificationService) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for email, p := range s.codes {
		if !now.Before(p.expiresAt) {
			delete(s.codes, email)
			removed++
		}
	}
	for email, until := range s.verified {
		if !now.Before(until) {
			delete(s.verified, email)
			removed++
		}
	}
	for email, l := range s.limiters {
		if _, pending := s.codes[email]; !pending && l.TokensAt(now) >= 1 {
			delete(s.limiters, email)
		}
	}
	return removed
}

// limiter s.mu를 잡은 상태에서 호출
func (s *verificationService) limiter(email string) *rate.Limiter {
	l, ok := s.limiters[email]
	if !ok {
		limit := rate.Inf
		if s.resendEvery > 0 {
			limit = rate.Every(s.resendEvery)
		}
		l = rate.NewLimiter(limit, 1)
		s.limiters[email] = l
	}
	return l
}
