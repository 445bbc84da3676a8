package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Session      SessionConfig
	Redis        RedisConfig
	Verification VerificationConfig
	CORS         CORSConfig
	S3           S3Config
	SMTP         SMTPConfig
	Scheduler    SchedulerConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SessionConfig controls the session registry and the cookie that carries its token.
type SessionConfig struct {
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	Backend      string // memory, redis
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type VerificationConfig struct {
	CodeTTL              time.Duration
	ResendInterval       time.Duration
	MaxAttempts          int
	RequireVerifiedLogin bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
	Endpoint        string // MinIO / LocalStack
	UsePathStyle    bool
	UploadTimeout   time.Duration
	MaxUploadBytes  int64
	UploadWorkers   int
	UploadPolicy    string // lenient, atomic
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

type SchedulerConfig struct {
	SweepSpec string
}

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	UploadPolicyLenient = "lenient"
	UploadPolicyAtomic  = "atomic"
)

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "matdori"),
			Password: getEnv("DB_PASSWORD", "matdori"),
			DBName:   getEnv("DB_NAME", "matdori"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Session: SessionConfig{
			TTL:          parseDuration(getEnv("SESSION_TTL", "24h"), 24*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "sessionId"),
			CookieSecure: parseBool(getEnv("SESSION_COOKIE_SECURE", "false")),
			Backend:      strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Verification: VerificationConfig{
			CodeTTL:              parseDuration(getEnv("VERIFICATION_CODE_TTL", "5m"), 5*time.Minute),
			ResendInterval:       parseDuration(getEnv("VERIFICATION_RESEND_INTERVAL", "30s"), 30*time.Second),
			MaxAttempts:          parseInt(getEnv("VERIFICATION_MAX_ATTEMPTS", "5"), 5),
			RequireVerifiedLogin: parseBool(getEnv("VERIFICATION_REQUIRED_FOR_LOGIN", "true")),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", "matdori-jokbo"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			UsePathStyle:    parseBool(getEnv("AWS_S3_USE_PATH_STYLE", "false")),
			UploadTimeout:   parseDuration(getEnv("UPLOAD_TIMEOUT", "10s"), 10*time.Second),
			MaxUploadBytes:  int64(parseInt(getEnv("UPLOAD_MAX_BYTES", "10485760"), 10<<20)),
			UploadWorkers:   parseInt(getEnv("UPLOAD_WORKERS", "4"), 4),
			UploadPolicy:    strings.ToLower(getEnv("UPLOAD_POLICY", UploadPolicyLenient)),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnv("SMTP_PORT", "587"),
			From:     getEnv("SMTP_EMAIL", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
		Scheduler: SchedulerConfig{
			SweepSpec: getEnv("SWEEP_SCHEDULE", "@every 10m"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Verification.CodeTTL <= 0 {
		return fmt.Errorf("VERIFICATION_CODE_TTL must be positive, got %s", c.Verification.CodeTTL)
	}
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.Session.Backend)
	}
	switch c.S3.UploadPolicy {
	case UploadPolicyLenient, UploadPolicyAtomic:
	default:
		return fmt.Errorf("unsupported UPLOAD_POLICY %q", c.S3.UploadPolicy)
	}
	if c.S3.UploadWorkers <= 0 {
		c.S3.UploadWorkers = 1
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
