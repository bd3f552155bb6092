package config

import (
	"os"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	// BaseURL is the externally advertised origin used when rewriting
	// stored relative paths into absolute URLs.
	BaseURL     string
	UploadDir   string
	DataDir     string
	CORSOrigins string
	// JWKSURL enables JWT verification when set; empty means open
	// single-author mode.
	JWKSURL string
	// AI configuration
	AnthropicAPIKey string
	AIProvider      string
	DefaultModel    string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	port := getEnv("PORT", "8080")

	return &Config{
		Port:        port,
		Environment: env,
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:"+port), "/"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		DataDir:     getEnv("DATA_DIR", "data"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:     getEnv("JWKS_URL", ""),
		// AI configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AIProvider:      getEnv("AI_PROVIDER", "anthropic"),
		DefaultModel:    getEnv("DEFAULT_MODEL", "claude-haiku-4-5-20251001"),
		// Debug defaults to true outside production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
