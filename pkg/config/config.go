package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// MaxFetchWorkers caps concurrent course fetches
const MaxFetchWorkers = 32

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production
	API  APIConfig

	// Canvas LMS
	Canvas CanvasConfig

	// Local state and inputs
	Paths PathsConfig

	// Storage backends
	Storage StorageConfig

	// Database (postgres history backend)
	Database DatabaseConfig

	// Redis (redis empty-course cache backend)
	Redis RedisConfig

	// Fetching
	FetchWorkers int

	// Scheduler (cron with seconds)
	Schedule      string
	JobRetries    int
	JobRetryDelay time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// APIConfig holds read API server timeouts
type APIConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// CanvasConfig holds Canvas API and session configuration
type CanvasConfig struct {
	BaseURL   string
	APIKey    string
	RateLimit int // requests per second, 0 = unlimited
	Timeout   time.Duration

	// Retries on 5xx/429
	MaxRetries int
	RetryDelay time.Duration

	// Session login (account scraping only)
	LoginURL string
	Username string
	Password string
	Account  string
}

// PathsConfig holds file locations
type PathsConfig struct {
	Roster       string
	Courses      string
	EmptyCourses string
	History      string
	SQLite       string
}

// StorageConfig selects persistence backends
type StorageConfig struct {
	History    string // file, postgres, sqlite
	EmptyCache string // file, redis
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),
		API: APIConfig{
			ReadTimeout:     getEnvAsDuration("API_READ_TIMEOUT", "15s"),
			WriteTimeout:    getEnvAsDuration("API_WRITE_TIMEOUT", "15s"),
			IdleTimeout:     getEnvAsDuration("API_IDLE_TIMEOUT", "60s"),
			ShutdownTimeout: getEnvAsDuration("API_SHUTDOWN_TIMEOUT", "30s"),
		},

		Canvas: CanvasConfig{
			BaseURL:    getEnv("CANVAS_API_URL", ""),
			APIKey:     getEnv("CANVAS_API_KEY", ""),
			RateLimit:  getEnvAsInt("CANVAS_RATE_LIMIT", 0),
			Timeout:    getEnvAsDuration("CANVAS_TIMEOUT", "30s"),
			MaxRetries: getEnvAsInt("CANVAS_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("CANVAS_RETRY_DELAY", "1s"),
			LoginURL:   getEnv("CANVAS_LOGIN_URL", ""),
			Username:   getEnv("CANVAS_USERNAME", ""),
			Password:   getEnv("CANVAS_PASSWORD", ""),
			Account:    getEnv("CANVAS_ACCOUNT", ""),
		},

		Paths: PathsConfig{
			Roster:       getEnv("ROSTER_PATH", "students.csv"),
			Courses:      getEnv("COURSES_PATH", "courses.yaml"),
			EmptyCourses: getEnv("EMPTY_COURSES_PATH", "empty_courses.json"),
			History:      getEnv("HISTORY_PATH", "history.json"),
			SQLite:       getEnv("SQLITE_PATH", "gradecheck.db"),
		},

		Storage: StorageConfig{
			History:    getEnv("HISTORY_BACKEND", BackendFile),
			EmptyCache: getEnv("EMPTY_CACHE_BACKEND", BackendFile),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		FetchWorkers: getEnvAsInt("FETCH_WORKERS", MaxFetchWorkers),
		Schedule:     getEnv("SCHEDULE", "0 0 16 * * *"),

		JobRetries:    getEnvAsInt("JOB_MAX_RETRIES", 3),
		JobRetryDelay: getEnvAsDuration("JOB_RETRY_DELAY", "1m"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Canvas.BaseURL == "" {
		return fmt.Errorf("CANVAS_API_URL is required")
	}
	if c.Canvas.APIKey == "" {
		return fmt.Errorf("CANVAS_API_KEY is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Storage.History {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres history backend")
		}
	default:
		return fmt.Errorf("HISTORY_BACKEND must be one of: file, postgres, sqlite")
	}

	switch c.Storage.EmptyCache {
	case BackendFile:
	case BackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("REDIS_ENABLED must be true for the redis empty-course cache")
		}
	default:
		return fmt.Errorf("EMPTY_CACHE_BACKEND must be one of: file, redis")
	}

	if c.FetchWorkers < 1 || c.FetchWorkers > MaxFetchWorkers {
		return fmt.Errorf("FETCH_WORKERS must be between 1 and %d", MaxFetchWorkers)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
