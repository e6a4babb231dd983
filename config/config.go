package config

import (
	"os"
	"strconv"
	"time"
)

const defaultDbName = "BlogServer.db"

// Config holds all process-wide settings. It is loaded once in main and
// injected into the services that need it; nothing reads the environment
// after startup.
type Config struct {
	Addr           string
	DatabasePath   string
	SecretKey      string
	AccessTokenTTL time.Duration
}

// Load reads the configuration from the environment, applying defaults for
// anything unset. ACCESS_TOKEN_TTL is a number of minutes.
func Load() Config {
	cfg := Config{
		Addr:           ":8080",
		DatabasePath:   defaultDbName,
		SecretKey:      "dev_only_secret_key_change_me_!@#$%^",
		AccessTokenTTL: 30 * time.Minute,
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		cfg.DatabasePath = path
	}
	if key := os.Getenv("SECRET_KEY"); key != "" {
		cfg.SecretKey = key
	}
	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		if minutes, err := strconv.Atoi(ttl); err == nil && minutes > 0 {
			cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute
		}
	}
	return cfg
}
