package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 표준 응답 구조 (성공/실패 공통 envelope)
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`   // 에러 코드 (프론트엔드에서 매핑용)
	Message string      `json:"message,omitempty"` // 사용자 친화적 메시지 (한글)
	Fields  interface{} `json:"fields,omitempty"`  // 필드별 오류 (검증 실패 시)
}

// Success 성공 응답 헬퍼. data가 nil이면 data 필드를 생략한다.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError 에러 응답 헬퍼
// statusCode: HTTP 상태 코드
// errorCode: 에러 코드 상수 (codes.go 참조)
// message: 사용자에게 보여질 한글 메시지
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

// 자주 사용하는 에러 응답 단축 함수들

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "로그인이 필요합니다"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, errorCode string, message string) {
	if message == "" {
		message = "접근 권한이 없습니다"
	}
	RespondWithError(c, http.StatusForbidden, errorCode, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func TooManyRequests(c *gin.Context, message string) {
	RespondWithError(c, http.StatusTooManyRequests, AuthTooManyRequests, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithValidationError 검증 에러 (여러 필드 검증 오류)
func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   ValidationInvalidInput,
		Message: "입력값이 올바르지 않습니다",
		Fields:  fields,
	})
}
