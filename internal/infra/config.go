package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	DBMaxConns         int
	DBMinConns         int
	JWTSecret          string
	SiteURL            string
	StoragePath        string
	GeoIPDBPath        string
	CORSAllowedOrigins []string
	DefaultLocale      string
	DefaultCompany     string
	DefaultCurrency    string
	LapsedDonorDays    int
	ExchangeRateURL    string
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
	WorkerPollInterval time.Duration
	WorkerMaxAttempts  int
	WorkerRetryBackoff time.Duration
	WorkerStaleAfter   time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               port,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:         getEnvInt("DB_MIN_CONNS", 1),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		SiteURL:            strings.TrimRight(getEnv("SITE_URL", "http://localhost:"+port), "/"),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		DefaultCompany:     getEnv("DEFAULT_COMPANY", "Alkhidmat Foundation"),
		DefaultCurrency:    strings.ToUpper(getEnv("DEFAULT_CURRENCY", "PKR")),
		LapsedDonorDays:    getEnvInt("LAPSED_DONOR_DAYS", 365),
		ExchangeRateURL:    strings.TrimRight(getEnv("EXCHANGE_RATE_URL", "https://api.frankfurter.app"), "/"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:           os.Getenv("SMTP_FROM"),
		WorkerPollInterval: time.Second * time.Duration(getEnvInt("WORKER_POLL_SECONDS", 2)),
		WorkerMaxAttempts:  getEnvInt("WORKER_MAX_ATTEMPTS", 3),
		WorkerRetryBackoff: time.Second * time.Duration(getEnvInt("WORKER_RETRY_BACKOFF_SECONDS", 30)),
		WorkerStaleAfter:   time.Minute * time.Duration(getEnvInt("WORKER_STALE_MINUTES", 15)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.LapsedDonorDays <= 0 {
		return nil, fmt.Errorf("LAPSED_DONOR_DAYS must be positive")
	}

	if cfg.DBMaxConns <= 0 {
		cfg.DBMaxConns = 10
	}
	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		cfg.DBMinConns = 1
	}

	if cfg.WorkerMaxAttempts <= 0 {
		cfg.WorkerMaxAttempts = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
