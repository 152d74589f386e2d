package config

import (
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	// Server
	HTTPAddr      string
	AllowedOrigin string

	// Postgres connection string is read separately via DATABASE_URL.

	// Redis
	RedisAddr string
	RedisPass string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Bootstrap admin, created on first start when no account exists.
	AdminEmail    string
	AdminName     string
	AdminPassword string

	// Pricing
	ExchangeRate        float64 // TZS per source-currency unit
	MinimumPayment      float64 // TZS
	DiscountPerCustomer float64
	DiscountCap         float64
	WarningThreshold    float64
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		ExchangeRate:        getEnvFloat("EXCHANGE_RATE", 2800),
		MinimumPayment:      getEnvFloat("MINIMUM_PAYMENT", 1000),
		DiscountPerCustomer: getEnvFloat("DISCOUNT_PER_CUSTOMER", 0.05),
		DiscountCap:         getEnvFloat("DISCOUNT_CAP", 0.15),
		WarningThreshold:    getEnvFloat("WARNING_THRESHOLD", 0.25),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
