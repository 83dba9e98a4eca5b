package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the API server's runtime configuration, read from environment
// variables with a .env fallback for local development.
type Config struct {
	DatabaseURL string

	Auth0Domain   string
	Auth0Audience string

	Port        string
	CORSOrigins []string
	Env         string

	// S3 storage for receipt images. Optional: when AccessKeyID is empty
	// the server runs with image uploads disabled.
	S3 S3Config
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the AWS endpoint for MinIO/LocalStack in dev.
	Endpoint string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:           getEnv("ENV", "development"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "ap-southeast-2"),
			Bucket:          getEnv("S3_BUCKET", "taxmate-receipts"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
		},
	}

	for name, value := range map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"AUTH0_DOMAIN":   cfg.Auth0Domain,
		"AUTH0_AUDIENCE": cfg.Auth0Audience,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
