package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matdori/matdori-backend/internal/errors"
)

// Context keys for session information
const (
	UserIDKey       = "user_id"
	SessionTokenKey = "session_token"
)

// Authorizer checks that token is a live session bound to userID.
type Authorizer interface {
	Authorize(ctx context.Context, userID uint, token string) error
}

type SessionMiddleware struct {
	authorizer Authorizer
	cookieName string
}

func NewSessionMiddleware(authorizer Authorizer, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{
		authorizer: authorizer,
		cookieName: cookieName,
	}
}

// RequireUser gates a route on the session cookie belonging to the user id
// in path parameter param.
func (m *SessionMiddleware) RequireUser(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		userID, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil || userID == 0 {
			log.Warn("Invalid user id in path", map[string]interface{}{
				"param": c.Param(param),
			})
			errors.BadRequest(c, errors.ValidationInvalidID, "잘못된 사용자 ID입니다")
			c.Abort()
			return
		}

		if !m.AuthorizeUser(c, uint(userID)) {
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthorizeUser checks the session cookie against userID. On failure it
// writes the 401 response and returns false.
func (m *SessionMiddleware) AuthorizeUser(c *gin.Context, userID uint) bool {
	log := GetLoggerFromContext(c)

	token := m.Token(c)
	if err := m.authorizer.Authorize(c.Request.Context(), userID, token); err != nil {
		log.Warn("Session check failed", map[string]interface{}{
			"user_id":   userID,
			"has_token": token != "",
		})
		errors.Unauthorized(c, "로그인이 필요합니다")
		return false
	}

	c.Set(UserIDKey, userID)
	c.Set(SessionTokenKey, token)
	log.Debug("Session authorized", map[string]interface{}{
		"user_id": userID,
	})
	return true
}

// Token returns the session cookie value or "".
func (m *SessionMiddleware) Token(c *gin.Context) string {
	token, err := c.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return token
}

// CookieName is the name of the session cookie.
func (m *SessionMiddleware) CookieName() string {
	return m.cookieName
}

// SetSessionCookie writes the session cookie; maxAge <= 0 clears it.
func SetSessionCookie(c *gin.Context, name, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, token, maxAge, "/", "", secure, true)
}

// GetUserID extracts the authorized user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}
