package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for document bodies.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig holds session signing and password hashing settings.
// Secret signs new tokens; PreviousSecrets are still accepted while a rotation is in progress.
// AdminEmail names a registered account promoted to admin at start-up.
type AuthConfig struct {
	Secret          string
	PreviousSecrets []string
	BcryptCost      int
	AdminEmail      string
}

// RedisConfig enables the session blacklist when URL is set.
type RedisConfig struct {
	URL string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	LogLevel string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Auth     AuthConfig
	Redis    RedisConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			Secret:          getEnv("JWT_SECRET", ""),
			PreviousSecrets: getEnvList("JWT_PREVIOUS_SECRETS"),
			BcryptCost:      getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
			AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
	}
}

// Validate reports settings the service cannot start without.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
