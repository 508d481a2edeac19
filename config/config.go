package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL        string
	SocketURL         string
	AppMode           string
	StatePath         string
	DefaultLanguage   string
	ReconnectDelay    time.Duration
	ReconnectAttempts int
	RequestTimeout    time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:5000/api"),
		SocketURL:         getEnv("SOCKET_URL", "ws://localhost:5000/ws"),
		AppMode:           getEnv("APP_MODE", "development"),
		StatePath:         getEnv("STATE_PATH", defaultStatePath()),
		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "zh"),
		ReconnectDelay:    getEnvAsDuration("RECONNECT_DELAY", time.Second),
		ReconnectAttempts: getEnvAsInt("RECONNECT_ATTEMPTS", 5),
		RequestTimeout:    getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Second),
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "linkin.db"
	}
	return filepath.Join(home, ".linkin", "state.db")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
