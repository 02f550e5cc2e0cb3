package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Server     ServerConfig
	Storage    StorageConfig
	Onboarding OnboardingConfig
	Slack      SlackConfig
	SelfHosted bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds the secret used to verify bearer tokens.
type JWTConfig struct {
	Secret string //nolint:gosec // G117: JWT signing secret config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// StorageConfig holds the S3-compatible object store settings.
type StorageConfig struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string //nolint:gosec // G117: object store credential config
	UsePathStyle  bool
	PublicBaseURL string
}

// OnboardingConfig holds limits for the onboarding endpoint.
type OnboardingConfig struct {
	MaxUploadBytes int64
	LockTTL        time.Duration
}

// SlackConfig holds Slack integration settings. Notifications are disabled
// when BotToken is empty.
type SlackConfig struct {
	BotToken      string
	ReviewChannel string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password, storage keys) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("SAFEPLATE_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("SAFEPLATE_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("SAFEPLATE_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("SAFEPLATE_SERVER_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("SAFEPLATE_SERVER_WRITE_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	usePathStyle, err := getEnvBool("SAFEPLATE_S3_USE_PATH_STYLE", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxUploadMB, err := getEnvInt("SAFEPLATE_UPLOAD_MAX_MB", 64)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	lockTTL, err := getEnvDuration("SAFEPLATE_ONBOARDING_LOCK_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	selfHosted, err := getEnvBool("SAFEPLATE_SELF_HOSTED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("SAFEPLATE_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("SAFEPLATE_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("SAFEPLATE_DB_USER", "safeplate"),
			Password: getEnv("SAFEPLATE_DB_PASSWORD", ""),
			DBName:   getEnv("SAFEPLATE_DB_NAME", "safeplate_dev"),
			SSLMode:  getEnv("SAFEPLATE_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("SAFEPLATE_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("SAFEPLATE_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("SAFEPLATE_JWT_SECRET", ""),
		},
		Server: ServerConfig{
			Addr:         getEnv("SAFEPLATE_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("SAFEPLATE_S3_ENDPOINT", "http://localhost:9000"),
			Region:        getEnv("SAFEPLATE_S3_REGION", "us-east-1"),
			Bucket:        getEnv("SAFEPLATE_S3_BUCKET", "safeplate"),
			AccessKey:     getEnv("SAFEPLATE_S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("SAFEPLATE_S3_SECRET_KEY", ""),
			UsePathStyle:  usePathStyle,
			PublicBaseURL: getEnv("SAFEPLATE_S3_PUBLIC_BASE_URL", ""),
		},
		Onboarding: OnboardingConfig{
			MaxUploadBytes: int64(maxUploadMB) << 20,
			LockTTL:        lockTTL,
		},
		Slack: SlackConfig{
			BotToken:      getEnv("SAFEPLATE_SLACK_BOT_TOKEN", ""),
			ReviewChannel: getEnv("SAFEPLATE_SLACK_REVIEW_CHANNEL", ""),
		},
		SelfHosted: selfHosted,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("SAFEPLATE_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("SAFEPLATE_JWT_SECRET must be at least 32 characters")
	}

	// DB SSL mode warning for non-self-hosted deployments.
	if c.Database.SSLMode == "disable" && !c.SelfHosted {
		log.Warn().Msg("SAFEPLATE_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("SAFEPLATE_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("SAFEPLATE_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SAFEPLATE_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SAFEPLATE_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}

	if c.Storage.Bucket == "" {
		return errors.New("SAFEPLATE_S3_BUCKET is required")
	}
	if c.Storage.Region == "" {
		return errors.New("SAFEPLATE_S3_REGION is required")
	}
	if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		return errors.New("SAFEPLATE_S3_ACCESS_KEY and SAFEPLATE_S3_SECRET_KEY must be set together")
	}

	if c.Onboarding.MaxUploadBytes < 1<<20 {
		return fmt.Errorf("SAFEPLATE_UPLOAD_MAX_MB must be >= 1, got %d", c.Onboarding.MaxUploadBytes>>20)
	}
	if c.Onboarding.LockTTL <= 0 {
		return fmt.Errorf("SAFEPLATE_ONBOARDING_LOCK_TTL must be positive, got %s", c.Onboarding.LockTTL)
	}

	if c.Slack.BotToken != "" && c.Slack.ReviewChannel == "" {
		return errors.New("SAFEPLATE_SLACK_REVIEW_CHANNEL is required when SAFEPLATE_SLACK_BOT_TOKEN is set")
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the connection settings as a postgres:// URL, the form
// expected by the migration runner.
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
