package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matdori/matdori-backend/internal/app/service"
	apperrors "github.com/matdori/matdori-backend/internal/errors"
	"github.com/matdori/matdori-backend/internal/middleware"
)

type VerificationController struct {
	verificationService service.VerificationService
}

// NewVerificationController 이메일 인증 컨트롤러 생성
func NewVerificationController(verificationService service.VerificationService) *VerificationController {
	return &VerificationController{verificationService: verificationService}
}

type IssueCodeRequest struct {
	Email string `json:"email" binding:"required"`
}

type CheckCodeRequest struct {
	Email  string `json:"email" binding:"required"`
	Number string `json:"number" binding:"required"`
}

// IssueCode 인증번호 메일 발송
// POST /email-authentication
func (ctrl *VerificationController) IssueCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req IssueCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "이메일을 입력해주세요")
		return
	}

	if err := ctrl.verificationService.IssueCode(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "이메일 형식이 올바르지 않습니다")
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "이미 인증된 이메일입니다")
		case errors.Is(err, service.ErrTooManyRequests):
			apperrors.TooManyRequests(c, "잠시 후 다시 요청해주세요")
		case errors.Is(err, service.ErrMailDelivery):
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI, "인증 메일 발송에 실패했습니다")
		default:
			log.Error("Issuing verification code failed", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	apperrors.Success(c, http.StatusOK, nil)
}

// CheckCode 인증번호 확인
// POST /authentication-number
func (ctrl *VerificationController) CheckCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CheckCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "인증번호를 입력해주세요")
		return
	}

	if err := ctrl.verificationService.CheckCode(c.Request.Context(), req.Email, req.Number); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			apperrors.BadRequest(c, apperrors.AuthCodeInvalid, "인증번호가 올바르지 않거나 만료되었습니다")
		case errors.Is(err, service.ErrTooManyRequests):
			apperrors.TooManyRequests(c, "인증 시도 횟수를 초과했습니다. 인증번호를 다시 요청해주세요")
		default:
			log.Error("Checking verification code failed", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	apperrors.Success(c, http.StatusOK, nil)
}
