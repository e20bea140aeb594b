// Package config provides application configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	Port string
	Host string

	// Database settings
	DBPath string

	// Session settings
	SessionMaxAge int // in seconds

	// CSRF settings
	SecretKey       string   // reserved for signed tokens; empty means "generate at startup"
	CSRFExemptPaths []string // path prefixes excluded from CSRF validation

	// Upload settings
	UploadDir     string
	MaxUploadSize int64 // in bytes

	// Environment
	IsDevelopment bool
	DemoMode      bool
}

// New creates a new Config with values from environment variables or defaults.
// A .env file in the working directory is loaded first if present.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Host:            getEnv("HOST", "localhost"),
		DBPath:          getEnv("DB_PATH", filepath.Join("data", "board.db")),
		SessionMaxAge:   86400 * 7, // 7 days
		SecretKey:       getEnv("SECRET_KEY", ""),
		CSRFExemptPaths: getEnvList("CSRF_EXEMPT_PATHS", []string{"/upload-image", "/upload-video"}),
		UploadDir:       getEnv("UPLOAD_DIR", filepath.Join("data", "uploads")),
		MaxUploadSize:   getEnvAsInt64("MAX_UPLOAD_SIZE", 10<<20), // 10MB
		IsDevelopment:   getEnv("ENV", "development") == "development",
		DemoMode:        getEnv("DEMO_MODE", "false") == "true",
	}
}

// Address returns the full address to bind the server to.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable as a slice.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var parts []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return defaultValue
	}
	return parts
}

// getEnvAsInt64 returns an environment variable parsed as int64.
func getEnvAsInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
