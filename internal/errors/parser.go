package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/matdori/matdori-backend/internal/app/model"
	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// ParseError 분류되지 않은 에러(주로 DB 에러)를 사용자 친화적인 메시지와 코드로 변환
// 보안상 민감한 정보는 숨기되, 사용자가 문제를 해결할 수 있는 정보 제공
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "서버 오류가 발생했습니다",
		}
	}

	errStrLower := strings.ToLower(err.Error())

	// 1. GORM 기본 에러
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorInfo{Code: notFoundCode(context), Message: getNotFoundMessage(context)}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return parseDuplicateKeyError(errStrLower)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return parseForeignKeyError(errStrLower)
	}

	// 2. PostgreSQL / SQLite 에러 문자열
	// Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}
	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower)
	}
	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "필수 항목이 누락되었습니다"}
	}
	// Check constraint violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		if strings.Contains(errStrLower, "rating") {
			return ErrorInfo{Code: JokboInvalidRating, Message: ratingMessage()}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "입력값이 유효하지 않습니다"}
	}

	// 3. 네트워크/연결 에러
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "외부 서비스 연결에 실패했습니다. 잠시 후 다시 시도해주세요",
		}
	}

	// 4. 기본 내부 서버 오류
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// ValidationFields validator 에러를 필드별 메시지로 변환
func ValidationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[toSnake(fe.Field())] = validationMessage(fe)
	}
	return fields
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "필수 항목입니다"
	case "email":
		return "이메일 형식이 올바르지 않습니다"
	case "min", "gte":
		return "최솟값(" + fe.Param() + ")보다 작습니다"
	case "max", "lte":
		return "최댓값(" + fe.Param() + ")보다 큽니다"
	case "len":
		return "길이가 " + fe.Param() + "이어야 합니다"
	case "numeric":
		return "숫자만 입력할 수 있습니다"
	case "rating":
		return ratingMessage()
	default:
		return "값이 올바르지 않습니다"
	}
}

func ratingMessage() string {
	return fmt.Sprintf("평점은 %d~%d 사이의 값이어야 합니다", model.MinRating, model.MaxRating)
}

// toSnake StoreID -> store_id
func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if isUpper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseDuplicateKeyError Unique constraint 위반 에러 파싱
func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "이미 사용 중인 이메일입니다"}
	case strings.Contains(errLower, "store_favorites") || strings.Contains(errLower, "idx_user_store_favorite"):
		return ErrorInfo{Code: FavoriteAlreadyExists, Message: "이미 좋아요한 가게입니다"}
	default:
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "이미 존재하는 데이터입니다"}
	}
}

// parseForeignKeyError Foreign key constraint 위반 에러 파싱
func parseForeignKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "still referenced"):
		return ErrorInfo{Code: ResourceConflict, Message: "연결된 데이터가 있어 삭제할 수 없습니다"}
	case strings.Contains(errLower, "store_id"):
		return ErrorInfo{Code: StoreNotFound, Message: "존재하지 않는 가게입니다"}
	case strings.Contains(errLower, "jokbo_id"):
		return ErrorInfo{Code: JokboNotFound, Message: "존재하지 않는 족보입니다"}
	case strings.Contains(errLower, "user_id"):
		return ErrorInfo{Code: ResourceNotFound, Message: "존재하지 않는 사용자입니다"}
	default:
		return ErrorInfo{Code: ResourceNotFound, Message: "참조하는 데이터를 찾을 수 없습니다"}
	}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "comment"):
		return CommentNotFound
	case strings.Contains(contextLower, "jokbo"):
		return JokboNotFound
	case strings.Contains(contextLower, "store"):
		return StoreNotFound
	default:
		return ResourceNotFound
	}
}

// getNotFoundMessage context에 따른 Not Found 메시지
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "comment") || strings.Contains(contextLower, "댓글"):
		return "댓글을 찾을 수 없습니다"
	case strings.Contains(contextLower, "jokbo") || strings.Contains(contextLower, "족보"):
		return "족보를 찾을 수 없습니다"
	case strings.Contains(contextLower, "store") || strings.Contains(contextLower, "가게"):
		return "가게를 찾을 수 없습니다"
	case strings.Contains(contextLower, "user") || strings.Contains(contextLower, "사용자"):
		return "사용자를 찾을 수 없습니다"
	}
	return "요청한 데이터를 찾을 수 없습니다"
}

// getDefaultErrorMessage context에 따른 기본 에러 메시지
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create") || strings.Contains(contextLower, "생성") || strings.Contains(contextLower, "등록"):
		return "등록 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "update") || strings.Contains(contextLower, "수정"):
		return "수정 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "삭제"):
		return "삭제 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	return "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
}

// ParseAndRespond 에러를 파싱하여 응답 반환 (헬퍼 함수)
// controller에서 간편하게 사용할 수 있도록
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, Response{
		Success: false,
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
