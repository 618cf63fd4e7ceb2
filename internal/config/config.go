package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const devSecret = "dev-only-secret"

type Config struct {
	Port                string
	LogLevel            zerolog.Level
	ClientOrigin        string
	JWTSecret           string
	TokenTTL            time.Duration
	ResultsDB           string
	OutboxSize          int
	MatchmakingInterval time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:         get("PORT", "3000"),
		ClientOrigin: get("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getenv("JWT_SECRET"),
		ResultsDB:    getenv("RESULTS_DB"),
	}

	lvl, err := zerolog.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl

	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "24h")); err != nil {
		return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.MatchmakingInterval, err = time.ParseDuration(get("MATCHMAKING_INTERVAL", "1s")); err != nil {
		return Config{}, fmt.Errorf("MATCHMAKING_INTERVAL: %w", err)
	}
	if cfg.MatchmakingInterval <= 0 {
		return Config{}, errors.New("MATCHMAKING_INTERVAL must be positive")
	}
	if cfg.OutboxSize, err = strconv.Atoi(get("OUTBOX_SIZE", "16")); err != nil {
		return Config{}, fmt.Errorf("OUTBOX_SIZE: %w", err)
	}
	if cfg.OutboxSize < 1 {
		return Config{}, errors.New("OUTBOX_SIZE must be at least 1")
	}

	if cfg.JWTSecret == "" {
		if get("APP_ENV", "development") != "development" {
			return Config{}, errors.New("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = devSecret
	}
	return cfg, nil
}
