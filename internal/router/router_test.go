package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/app/controller"
	"github.com/matdori/matdori-backend/internal/middleware"
	"github.com/matdori/matdori-backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouterTest(checks map[string]HealthCheck) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	sessions := middleware.NewSessionMiddleware(session.NewRegistry(session.NewMemoryStore(), time.Hour), "sessionId")

	r := NewRouter(
		controller.NewAuthController(nil, sessions, controller.SessionCookie{}),
		controller.NewVerificationController(nil),
		controller.NewJokboController(nil, 0),
		controller.NewCommentController(nil, sessions),
		controller.NewFavoriteController(nil),
		sessions,
		nil,
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
		checks,
		cfg,
	)
	return r.Setup()
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantState  string
	}{
		{
			name: "All up",
			checks: map[string]HealthCheck{
				"database": func(context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name: "Redis down",
			checks: map[string]HealthCheck{
				"database": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := setupRouterTest(tt.checks)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body struct {
				Data struct {
					Status string            `json:"status"`
					Checks map[string]string `json:"checks"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Data.Status)
			assert.Len(t, body.Data.Checks, len(tt.checks))
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	engine := setupRouterTest(nil)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_GatedRoutesRequireSession(t *testing.T) {
	engine := setupRouterTest(nil)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/users/1/favorite-stores"},
		{http.MethodPut, "/users/1/password"},
		{http.MethodDelete, "/users/1/jokbos/3"},
		{http.MethodPost, "/users/1/jokbo"},
	}
	for _, rt := range routes {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.path)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
