package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // 로그인 필요 / 세션 불일치
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 이메일/비밀번호
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // 이메일 중복
	AuthEmailNotVerified   = "AUTH_EMAIL_NOT_VERIFIED"  // 이메일 미인증
	AuthCodeInvalid        = "AUTH_CODE_INVALID"        // 잘못된(만료된) 인증번호
	AuthPasswordPolicy     = "AUTH_PASSWORD_POLICY"     // 비밀번호 정책 위반
	AuthTooManyRequests    = "AUTH_TOO_MANY_REQUESTS"   // 인증번호 재발송 제한

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // 접근 권한 없음
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // 작성자만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 잘못된 입력
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // 잘못된 ID
	ValidationRequired     = "VALIDATION_REQUIRED"      // 필수 항목
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE" // 범위 초과

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 가게 (STORE_) ====================
	StoreNotFound = "STORE_NOT_FOUND" // 가게 없음

	// ==================== 족보 (JOKBO_) ====================
	JokboNotFound      = "JOKBO_NOT_FOUND"      // 족보 없음
	JokboInvalidRating = "JOKBO_INVALID_RATING" // 잘못된 평점
	CommentNotFound    = "COMMENT_NOT_FOUND"    // 댓글 없음

	// ==================== 좋아요 (FAVORITE_) ====================
	FavoriteAlreadyExists = "FAVORITE_ALREADY_EXISTS" // 이미 좋아요한 가게

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // 파일 너무 큼
	UploadFailed          = "UPLOAD_FAILED"            // 업로드 실패

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
)
