package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matdori/matdori-backend/internal/app/service"
	apperrors "github.com/matdori/matdori-backend/internal/errors"
	"github.com/matdori/matdori-backend/internal/middleware"
)

// SessionCookie 세션 쿠키 설정 (이름은 SessionMiddleware가 가진다)
type SessionCookie struct {
	TTL    time.Duration
	Secure bool
}

type AuthController struct {
	authService service.AuthService
	sessions    *middleware.SessionMiddleware
	cookie      SessionCookie
}

// NewAuthController 인증 컨트롤러 생성
func NewAuthController(authService service.AuthService, sessions *middleware.SessionMiddleware, cookie SessionCookie) *AuthController {
	return &AuthController{
		authService: authService,
		sessions:    sessions,
		cookie:      cookie,
	}
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// SignUp 회원가입
// POST /sign-up
func (ctrl *AuthController) SignUp(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid sign-up request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	user, err := ctrl.authService.SignUp(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "이미 사용 중인 이메일입니다")
		case errors.Is(err, service.ErrWeakPassword):
			apperrors.BadRequest(c, apperrors.AuthPasswordPolicy, "비밀번호는 영문과 숫자를 포함한 8~64자여야 합니다")
		case errors.Is(err, service.ErrInvalidInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		default:
			log.Error("Sign-up failed", err, nil)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create user")
		}
		return
	}

	apperrors.Success(c, http.StatusCreated, gin.H{
		"user_id":        user.ID,
		"email":          user.Email,
		"nickname":       user.Nickname,
		"email_verified": user.EmailVerified,
	})
}

// Login 로그인 (세션 쿠키 발급)
// POST /login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	user, sess, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "이메일 또는 비밀번호가 올바르지 않습니다")
		case errors.Is(err, service.ErrEmailNotVerified):
			apperrors.Forbidden(c, apperrors.AuthEmailNotVerified, "이메일 인증이 필요합니다")
		default:
			log.Error("Login failed", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	middleware.SetSessionCookie(c, ctrl.sessions.CookieName(), sess.Token, int(ctrl.cookie.TTL.Seconds()), ctrl.cookie.Secure)
	apperrors.Success(c, http.StatusOK, gin.H{
		"user_id":    user.ID,
		"nickname":   user.Nickname,
		"department": user.Department,
	})
}

// Logout 로그아웃
// POST /logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	err := ctrl.authService.Logout(c.Request.Context(), ctrl.sessions.Token(c))
	middleware.SetSessionCookie(c, ctrl.sessions.CookieName(), "", -1, ctrl.cookie.Secure)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			apperrors.Unauthorized(c, "")
			return
		}
		log.Error("Logout failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	apperrors.Success(c, http.StatusOK, nil)
}

// UpdatePassword 비밀번호 변경
// PUT /users/:userIndex/password
func (ctrl *AuthController) UpdatePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	if err := ctrl.authService.UpdatePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			apperrors.BadRequest(c, apperrors.AuthPasswordPolicy, "비밀번호는 영문과 숫자를 포함한 8~64자여야 합니다")
		case errors.Is(err, service.ErrInvalidCredentials):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "현재 비밀번호가 올바르지 않습니다")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "사용자를 찾을 수 없습니다")
		default:
			log.Error("Password update failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update password")
		}
		return
	}

	apperrors.Success(c, http.StatusOK, nil)
}
