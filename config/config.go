package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the server-side configuration. Everything is driven by
// environment variables with simple defaults, optionally seeded from a .env
// file in the working directory.
type Config struct {
	DBPath       string // Path to the SQLite database file
	Token        string // Shared token expected from devices and admin callers
	Port         int    // HTTP listen port
	BuildVersion string // Reported by GET /version

	// 日志配置
	LogLevel   string
	LogFile    string // empty = stdout only
	LogMaxSize int    // megabytes before rotation
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		DBPath:       getEnv("STATUS_DB", "status.db"),
		Token:        getEnv("STATUS_TOKEN", "dev-token"),
		Port:         getEnvInt("STATUS_PORT", 7999),
		BuildVersion: getEnv("STATUS_BUILD", "homestatus v1.1"),
		LogLevel:     getEnv("STATUS_LOG_LEVEL", "info"),
		LogFile:      getEnv("STATUS_LOG_FILE", ""),
		LogMaxSize:   getEnvInt("STATUS_LOG_MAX_MB", 20),
	}
}
