package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"maisafe-go/pkg/logger"
)

type Config struct {
	HTTPPort           string
	Env                string
	DB                 DBConfig
	Invitations        InvitationConfig
	Cleanup            CleanupConfig
	BcryptCost         int
	CORSAllowedOrigins []string
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
}

type InvitationConfig struct {
	CodeTTL time.Duration
}

type CleanupConfig struct {
	Interval      time.Duration
	InitialDelay  time.Duration
	RetentionDays int
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		DB: DBConfig{
			DSN:             getEnv("DATABASE_URL", getEnv("DB_DSN", "")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "maisafe"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Invitations: InvitationConfig{
			CodeTTL: getEnvDuration("INVITATION_CODE_TTL", 180*time.Second),
		},
		Cleanup: CleanupConfig{
			Interval:      getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour),
			InitialDelay:  getEnvDuration("CLEANUP_INITIAL_DELAY", time.Minute),
			RetentionDays: getEnvInt("RETENTION_DAYS", 60),
		},
		BcryptCost:         getEnvInt("BCRYPT_COST", 0),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", nil),
	}, nil
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			result = append(result, item)
		}
	}
	return result
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
