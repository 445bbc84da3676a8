package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/internal/session"
	"github.com/matdori/matdori-backend/pkg/logger"
	"github.com/matdori/matdori-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = fmt.Errorf("%w: %w", ErrInvalidInput, util.ErrPasswordPolicy)
	ErrUnauthorized       = session.ErrUnauthorized
)

// VerifiedEmails 가입 전에 인증번호 확인을 마친 이메일
type VerifiedEmails interface {
	HasVerifiedEmail(email string) bool
	ConsumeVerifiedEmail(email string) bool
}

type AuthService interface {
	SignUp(email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, *session.Session, error)
	Logout(ctx context.Context, token string) error
	CheckSession(ctx context.Context, userID uint, token string) error
	UpdatePassword(userID uint, currentPassword, newPassword string) error
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo        repository.UserRepository
	registry        *session.Registry
	verified        VerifiedEmails
	requireVerified bool
	dummyHash       string
}

// NewAuthService 인증 서비스 생성
func NewAuthService(
	userRepo repository.UserRepository,
	registry *session.Registry,
	verified VerifiedEmails,
	requireVerified bool,
) AuthService {
	// 존재하지 않는 이메일도 같은 비용으로 검증해 응답 시간을 맞춘다
	dummyHash, err := util.HashPassword("matdori-dummy-password-1")
	if err != nil {
		logger.Warn("Failed to prepare dummy password hash", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return &authService{
		userRepo:        userRepo,
		registry:        registry,
		verified:        verified,
		requireVerified: requireVerified,
		dummyHash:       dummyHash,
	}
}

// SignUp 회원가입 (가입 전 이메일 인증을 마쳤으면 인증된 사용자로 생성)
func (s *authService) SignUp(email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	logger.Info("Attempting user sign-up", map[string]interface{}{
		"email": email,
	})

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePasswordPolicy(password); err != nil {
		return nil, ErrWeakPassword
	}

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("Sign-up failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	nickname, err := util.GenerateNickname()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Nickname:     nickname,
	}

	// 가입 전에 인증번호 확인을 마친 이메일. 기록은 저장에 성공한 뒤에 소비한다
	if s.verified != nil && s.verified.HasVerifiedEmail(email) {
		now := timeNow()
		user.EmailVerified = true
		user.VerifiedAt = &now
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	if user.EmailVerified {
		s.verified.ConsumeVerifiedEmail(email)
	}

	logger.Info("User signed up successfully", map[string]interface{}{
		"user_id":        user.ID,
		"email_verified": user.EmailVerified,
	})
	return user, nil
}

// Login 로그인 후 세션 발급
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *session.Session, error) {
	email = normalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.VerifyPassword(s.dummyHash, password)
			logger.Warn("Login failed: invalid credentials", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid credentials", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrInvalidCredentials
	}

	if s.requireVerified && !user.EmailVerified {
		logger.Warn("Login failed: email not verified", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrEmailNotVerified
	}

	sess, err := s.registry.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Login successful", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, sess, nil
}

// Logout 세션 무효화 (이미 없는 토큰은 ErrUnauthorized)
func (s *authService) Logout(ctx context.Context, token string) error {
	userID, err := s.registry.Lookup(ctx, token)
	if err != nil {
		return err
	}
	if err := s.registry.Revoke(ctx, token); err != nil {
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// CheckSession 세션 토큰이 userID의 것인지 확인
func (s *authService) CheckSession(ctx context.Context, userID uint, token string) error {
	return s.registry.Authorize(ctx, userID, token)
}

// UpdatePassword 비밀번호 변경 (현재 비밀번호 확인)
func (s *authService) UpdatePassword(userID uint, currentPassword, newPassword string) error {
	if err := util.ValidatePasswordPolicy(newPassword); err != nil {
		return ErrWeakPassword
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Password update failed: current password mismatch", map[string]interface{}{
			"user_id": userID,
		})
		return ErrInvalidCredentials
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordHash(userID, hashedPassword); err != nil {
		return err
	}

	logger.Info("Password updated", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// GetUserByID 사용자 조회
func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
