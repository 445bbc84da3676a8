package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/app/controller"
	apperrors "github.com/matdori/matdori-backend/internal/errors"
	"github.com/matdori/matdori-backend/internal/middleware"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Router struct {
	authController         *controller.AuthController
	verificationController *controller.VerificationController
	jokboController        *controller.JokboController
	commentController      *controller.CommentController
	favoriteController     *controller.FavoriteController
	sessionMiddleware      *middleware.SessionMiddleware
	requestRecorder        middleware.RequestRecorder
	metricsHandler         http.Handler
	healthChecks           map[string]HealthCheck
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	verificationController *controller.VerificationController,
	jokboController *controller.JokboController,
	commentController *controller.CommentController,
	favoriteController *controller.FavoriteController,
	sessionMiddleware *middleware.SessionMiddleware,
	requestRecorder middleware.RequestRecorder,
	metricsHandler http.Handler,
	healthChecks map[string]HealthCheck,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		verificationController: verificationController,
		jokboController:        jokboController,
		commentController:      commentController,
		favoriteController:     favoriteController,
		sessionMiddleware:      sessionMiddleware,
		requestRecorder:        requestRecorder,
		metricsHandler:         metricsHandler,
		healthChecks:           healthChecks,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	if r.requestRecorder != nil {
		router.Use(middleware.MetricsMiddleware(r.requestRecorder))
	}
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)
	if r.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	// 인증
	router.POST("/sign-up", r.authController.SignUp)
	router.POST("/login", r.authController.Login)
	router.POST("/logout", r.authController.Logout)
	router.POST("/email-authentication", r.verificationController.IssueCode)
	router.POST("/authentication-number", r.verificationController.CheckCode)

	// 족보 / 댓글
	router.GET("/jokbo-count", r.jokboController.CountJokbos)
	jokbos := router.Group("/jokbos/:jokboIndex")
	{
		jokbos.GET("", r.jokboController.GetJokbo)
		jokbos.POST("/comment", r.commentController.CreateComment)
		jokbos.GET("/comments", r.commentController.ListComments)
	}

	// 세션 사용자 본인만 접근
	users := router.Group("/users/:userIndex")
	users.Use(r.sessionMiddleware.RequireUser("userIndex"))
	{
		users.PUT("/password", r.authController.UpdatePassword)

		users.POST("/jokbo", r.jokboController.CreateJokbo)
		users.DELETE("/jokbos/:jokboIndex", r.jokboController.DeleteJokbo)

		users.POST("/favorite-store", r.favoriteController.AddFavoriteStore)
		users.GET("/favorite-stores", r.favoriteController.ListFavoriteStores)
		users.DELETE("/favorite-stores/:favoriteStoreIndex", r.favoriteController.RemoveFavoriteStore)
	}

	return router
}

func (r *Router) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(r.healthChecks))
	for name, check := range r.healthChecks {
		if err := check(ctx); err != nil {
			middleware.GetLoggerFromContext(c).Warn("Health check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, apperrors.Response{
		Success: status == http.StatusOK,
		Data: gin.H{
			"status": state,
			"checks": checks,
		},
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		// 쿠키 세션이므로 Origin을 그대로 돌려준다 (credentials + "*" 불가)
		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
