package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/app/controller"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/internal/app/service"
	"github.com/matdori/matdori-backend/internal/db"
	"github.com/matdori/matdori-backend/internal/metrics"
	"github.com/matdori/matdori-backend/internal/middleware"
	"github.com/matdori/matdori-backend/internal/router"
	"github.com/matdori/matdori-backend/internal/scheduler"
	"github.com/matdori/matdori-backend/internal/session"
	"github.com/matdori/matdori-backend/internal/storage"
	"github.com/matdori/matdori-backend/pkg/logger"
	redisclient "github.com/matdori/matdori-backend/pkg/redis"
	"github.com/matdori/matdori-backend/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting MATDORI Backend Server", map[string]interface{}{
		"environment":     cfg.Server.Environment,
		"port":            cfg.Server.Port,
		"log_level":       logLevel,
		"session_backend": cfg.Session.Backend,
		"upload_policy":   cfg.S3.UploadPolicy,
	})

	// Initialize database
	conn, err := db.Initialize(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(conn); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Session registry
	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize session store", err)
	}
	defer func() {
		if err := redisclient.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()
	registry := session.NewRegistry(sessionStore, cfg.Session.TTL)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(conn)
	storeRepo := repository.NewStoreRepository(conn)
	jokboRepo := repository.NewJokboRepository(conn)
	commentRepo := repository.NewCommentRepository(conn)
	favoriteRepo := repository.NewFavoriteRepository(conn)
	orphanRepo := repository.NewOrphanRepository(conn)

	// Initialize services
	attachments := storage.NewS3Storage(&cfg.S3, collector)
	mailer := util.NewSMTPMailer(util.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Password: cfg.SMTP.Password,
	})

	verificationService := service.NewVerificationService(userRepo, mailer, cfg.Verification)
	authService := service.NewAuthService(userRepo, registry, verificationService, cfg.Verification.RequireVerifiedLogin)
	jokboService := service.NewJokboService(jokboRepo, storeRepo, orphanRepo, attachments, service.JokboServiceConfig{
		UploadWorkers: cfg.S3.UploadWorkers,
		UploadPolicy:  cfg.S3.UploadPolicy,
		Orphans:       collector,
	})
	commentService := service.NewCommentService(commentRepo, jokboRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, storeRepo)

	// Initialize middleware and controllers
	sessionMiddleware := middleware.NewSessionMiddleware(registry, cfg.Session.CookieName)

	authController := controller.NewAuthController(authService, sessionMiddleware, controller.SessionCookie{
		TTL:    registry.TTL(),
		Secure: cfg.Session.CookieSecure,
	})
	verificationController := controller.NewVerificationController(verificationService)
	jokboController := controller.NewJokboController(jokboService, cfg.S3.MaxUploadBytes)
	commentController := controller.NewCommentController(commentService, sessionMiddleware)
	favoriteController := controller.NewFavoriteController(favoriteService)

	// Housekeeping
	housekeeping := scheduler.NewHousekeepingScheduler(cfg.Scheduler.SweepSpec, jokboService, registry, verificationService)
	if err := housekeeping.Start(); err != nil {
		logger.Fatal("Failed to start housekeeping scheduler", err)
	}

	// Setup router
	r := router.NewRouter(
		authController,
		verificationController,
		jokboController,
		commentController,
		favoriteController,
		sessionMiddleware,
		collector,
		metrics.Handler(reg),
		map[string]router.HealthCheck{
			"database": func(ctx context.Context) error { return db.Ping(ctx, conn) },
			"redis":    redisclient.Ping,
		},
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	housekeeping.Stop()

	logger.Info("Server stopped successfully")
}

func newSessionStore(cfg *config.Config) (session.Store, error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		return session.NewMemoryStore(), nil
	}
	client, err := redisclient.Init(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	return session.NewRedisStore(client), nil
}
