package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"stable-app-go/pkg/logger"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	HTTPPort       string
	Env            string
	StorageDriver  string
	AllowedOrigins []string
	MetricsEnabled bool
	DB             DBConfig
	Redis          RedisConfig
	Auth           AuthConfig
	Stables        StablesConfig
	Announcements  AnnouncementsConfig
	Notify         NotifyConfig
	RateLimit      RateLimitConfig
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret     string
	Issuer        string
	TokenTTL      time.Duration
	SkipAuth      bool
	MockUserID    string
	MockUserEmail string
	MockUserName  string
}

type StablesConfig struct {
	CacheTTL time.Duration
}

type AnnouncementsConfig struct {
	RetentionDays int
	SweepSchedule string
}

type NotifyConfig struct {
	AppName             string
	SendGridAPIKey      string
	SendGridFrom        string
	FirebaseCredentials string
}

type RateLimitConfig struct {
	AuthPerMinute int
	AuthBurst     int
	UserPerMinute int
	UserBurst     int
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8081", "http://localhost:19006"}),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "stable_app"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			Issuer:        getEnv("JWT_ISSUER", "stable-app"),
			TokenTTL:      getEnvDuration("AUTH_TOKEN_TTL", 7*24*time.Hour),
			SkipAuth:      getEnvBool("AUTH_SKIP", false),
			MockUserID:    getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail: getEnv("AUTH_MOCK_USER_EMAIL", "dev@example.com"),
			MockUserName:  getEnv("AUTH_MOCK_USER_NAME", "Developer"),
		},
		Stables: StablesConfig{
			CacheTTL: getEnvDuration("STABLES_CACHE_TTL", 30*time.Second),
		},
		Announcements: AnnouncementsConfig{
			RetentionDays: getEnvInt("ANNOUNCEMENTS_RETENTION_DAYS", 7),
			SweepSchedule: getEnv("ANNOUNCEMENTS_SWEEP_SCHEDULE", "@every 1h"),
		},
		Notify: NotifyConfig{
			AppName:             getEnv("APP_NAME", "Stalden"),
			SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
			SendGridFrom:        getEnv("SENDGRID_FROM_EMAIL", "noreply@stalden.app"),
			FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", 10),
			AuthBurst:     getEnvInt("RATE_LIMIT_AUTH_BURST", 5),
			UserPerMinute: getEnvInt("RATE_LIMIT_USER_PER_MINUTE", 120),
			UserBurst:     getEnvInt("RATE_LIMIT_USER_BURST", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if !c.Auth.SkipAuth && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required unless AUTH_SKIP is set")
	}
	if c.Announcements.RetentionDays <= 0 {
		return fmt.Errorf("ANNOUNCEMENTS_RETENTION_DAYS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

// MigrationURL returns the postgres:// form golang-migrate expects.
func (c DBConfig) MigrationURL() string {
	if strings.HasPrefix(c.DSN, "postgres://") || strings.HasPrefix(c.DSN, "postgresql://") {
		return c.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}
