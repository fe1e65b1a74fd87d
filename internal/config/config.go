// Package config loads server settings from the environment (and a .env file in development).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration.
type Config struct {
	Port             string
	LogLevel         string
	LogPretty        bool
	DatabasePath     string
	SessionStore     string // "sqlite" | "memory"
	JWTSecret        string
	JWTTTL           time.Duration
	CookieName       string
	ClientOrigin     string
	DailySalt        string
	SeriesFile       string // optional override of the embedded series
	JanitorSchedule  string
	SessionRetention time.Duration
	Production       bool
}

const devJWTSecret = "dev_secret_change_me"

// Load reads .env (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() *Config {
	cfg := &Config{
		Port:             getEnv("PORT", "5175"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogPretty:        getBool("LOG_PRETTY", false),
		DatabasePath:     getEnv("DATABASE_PATH", "./data/app.db"),
		SessionStore:     strings.ToLower(getEnv("SESSION_STORE", "sqlite")),
		JWTSecret:        getEnv("JWT_SECRET", devJWTSecret),
		JWTTTL:           time.Duration(getInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour,
		CookieName:       getEnv("COOKIE_NAME", "guess_token"),
		ClientOrigin:     getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:        getEnv("DAILY_SALT", "local_dev_salt"),
		SeriesFile:       os.Getenv("SERIES_FILE"),
		JanitorSchedule:  getEnv("JANITOR_SCHEDULE", "@daily"),
		SessionRetention: time.Duration(getInt("SESSION_RETENTION_HOURS", 48)) * time.Hour,
		Production:       os.Getenv("NODE_ENV") == "production",
	}
	if cfg.SessionStore != "memory" && cfg.SessionStore != "sqlite" {
		log.Warn().Str("value", cfg.SessionStore).Msg("unknown SESSION_STORE, using sqlite")
		cfg.SessionStore = "sqlite"
	}
	if cfg.Production && cfg.JWTSecret == devJWTSecret {
		log.Warn().Msg("JWT_SECRET not set in production")
	}
	return cfg
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("invalid integer, using default")
		return def
	}
	return n
}

func getBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
