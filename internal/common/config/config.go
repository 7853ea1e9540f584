package config

import (
	"os"
	"strconv"
	"time"

	"pinboard/internal/common/constants"
)

type Config struct {
	Environment    string
	HTTPPort       string
	DataFile       string
	PublicDir      string
	AdminUsername  string
	AdminPassword  string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() Config {
	return Config{
		Environment:    getEnv("APP_ENV", "development"),
		HTTPPort:       getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DataFile:       getEnv("DATA_FILE", constants.DefaultDataFile),
		PublicDir:      getEnv("PUBLIC_DIR", constants.DefaultPublicDir),
		AdminUsername:  getEnv("ADMIN_USERNAME", constants.DefaultAdminUsername),
		AdminPassword:  getEnv("ADMIN_PASSWORD", constants.DefaultAdminPassword),
		SessionTTL:     getDurationEnv("SESSION_TTL", constants.DefaultSessionTTL),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", constants.DefaultRateLimitPerSecond),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", constants.DefaultRateLimitBurst),
	}
}

// IsProduction controls the Secure attribute on the session cookie.
func (c Config) IsProduction() bool {
	return c.Environment == constants.ProductionEnvironment
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getFloatEnv(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
