package main

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Port           string
	JWTSecret      string
	FrontendOrigin string

	// Catalog
	PageSize  int
	RedisAddr string

	// Dashboard
	LowStockThreshold int

	// Optional startup admin account
	SeedAdminEmail    string
	SeedAdminPassword string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		FrontendOrigin:    getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		PageSize:          getEnvInt("CATALOG_PAGE_SIZE", 8),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 5),
		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("CATALOG_PAGE_SIZE must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
