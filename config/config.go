package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	UpstreamBaseURL string        // EducBlue API base URL, e.g. https://api.educblue.com
	UpstreamTimeout time.Duration // transport-level timeout for upstream calls

	SessionTTL    time.Duration // idle lifetime of a viewing session
	SessionSweep  string        // cron spec for the session sweep
	AllowedOrigin string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:5000"),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		SessionTTL:    getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionSweep:  getEnv("SESSION_SWEEP_CRON", "@every 5m"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.UpstreamBaseURL == "http://localhost:5000" {
		log.Println("Warning: Using default UPSTREAM_BASE_URL. Update it in your environment.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration retrieves an environment variable as a duration, accepting
// either a Go duration string ("15s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Error converting environment variable %s to duration, using default", key)
	return defaultValue
}
