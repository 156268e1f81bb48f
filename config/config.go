package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server  ServerConfig
	Service ServiceConfig
	Redis   RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	Debug              bool
	ReadTimeout        int
	WriteTimeout       int
	ShutdownTimeout    int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	StaticDir          string // serves index.html and assets; empty disables
}

// ServiceConfig holds what the API reports about itself.
type ServiceConfig struct {
	Name string
}

// RedisConfig holds Redis connection settings. Empty Addr disables the cross-instance feed.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "5000"),
			Debug:              getEnvBool("DEBUG", true),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			ShutdownTimeout:    getEnvInt("SHUTDOWN_TIMEOUT_SEC", 15),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			StaticDir:          getEnv("STATIC_DIR", "."),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "Sora 2 Video Generation API"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvBool treats only a case-insensitive "true" as true once the variable is set.
func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
