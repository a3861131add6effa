package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort            string
	AccountKeyHeader      string
	LogLevel              slog.Level
	DeleteReturnsAccounts bool
	CORSAllowedOrigins    []string
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	ShutdownTimeout       time.Duration
}

// LoadEnv loads variables from a .env file when one exists. Variables already
// set in the environment win.
func LoadEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using system environment variables")
	} else {
		logger.Info("environment variables loaded from .env file")
	}
}

// Load reads the configuration from environment variables
func Load() Config {
	return Config{
		ServerPort:            getEnv("SERVER_PORT", "3333"),
		AccountKeyHeader:      getEnv("ACCOUNT_KEY_HEADER", "cpf"),
		LogLevel:              getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
		DeleteReturnsAccounts: getEnvAsBool("DELETE_RETURNS_ACCOUNTS", false),
		CORSAllowedOrigins:    getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ReadTimeout:           getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:          getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:           getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:       getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// getEnv fetches environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value, exists := os.LookupEnv(key); exists {
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err == nil {
			return level
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
