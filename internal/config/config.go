package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port                   string
	DBUrl                  string
	JWTSecret              string
	AppEnv                 string
	RazorpayKeyID          string
	RazorpayKeySecret      string
	PlatformFixedFee       decimal.Decimal
	PlatformCommissionRate decimal.Decimal
	ExpirySweepInterval    time.Duration
	ExpiryGracePeriod      time.Duration
	PaymentWindow          time.Duration
	CancelCutoff           time.Duration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		DBUrl:                  getEnv("DB_URL", ""),
		JWTSecret:              jwtSecret,
		AppEnv:                 normalizeEnv(getEnv("APP_ENV", "production")),
		RazorpayKeyID:          getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:      getEnv("RAZORPAY_KEY_SECRET", ""),
		PlatformFixedFee:       getEnvDecimal("PLATFORM_FIXED_FEE", decimal.NewFromInt(40)),
		PlatformCommissionRate: getEnvDecimal("PLATFORM_COMMISSION_RATE", decimal.NewFromFloat(0.15)),
		ExpirySweepInterval:    getEnvDuration("EXPIRY_SWEEP_INTERVAL", 5*time.Minute),
		ExpiryGracePeriod:      getEnvDuration("EXPIRY_GRACE_PERIOD", 10*time.Minute),
		PaymentWindow:          getEnvDuration("PAYMENT_WINDOW", 5*time.Minute),
		CancelCutoff:           getEnvDuration("CANCEL_CUTOFF", 24*time.Hour),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
