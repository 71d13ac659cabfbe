package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// Redis Configuration (realtime bus)
	Redis RedisConfig `json:"redis"`

	// Object Storage Configuration (attachments)
	Storage StorageConfig `json:"storage"`

	// Session Configuration
	Session SessionConfig `json:"session"`

	// Messaging limits
	Messaging MessagingConfig `json:"messaging"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// RedisConfig contains the realtime bus connection configuration
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// StorageConfig contains object storage (MinIO) configuration
type StorageConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"use_ssl"`
}

// SessionConfig contains session token verification configuration
type SessionConfig struct {
	JWTSecret string `json:"-"`
}

// MessagingConfig contains limits enforced before any network call
type MessagingConfig struct {
	MaxAttachmentBytes int64 `json:"max_attachment_bytes"`
}

// Load assembles configuration from environment variables with
// development defaults.
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "guysocial_user"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("DB_NAME", "guysocial_db"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvIntOrDefault("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:  getEnvOrDefault("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey: getEnvOrDefault("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnvOrDefault("STORAGE_SECRET_KEY", "minioadmin"),
			Bucket:    getEnvOrDefault("STORAGE_BUCKET", "message-attachments"),
			UseSSL:    getEnvOrDefault("STORAGE_USE_SSL", "false") == "true",
		},
		Session: SessionConfig{
			JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
		},
		Messaging: MessagingConfig{
			MaxAttachmentBytes: getEnvInt64OrDefault("MAX_ATTACHMENT_BYTES", 10*1024*1024),
		},
	}
}

// DSN builds the MySQL connection string from the database section.
func (cfg *Config) DSN() string {
	host := cfg.Database.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Database.Port
	if port == "" {
		port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		host,
		port,
		cfg.Database.DatabaseName,
	)
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64OrDefault(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
