// Package config reads runtime settings from an optional .env file and
// SIMFLOW_* environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds every setting the commands share.
type Config struct {
	Addr          string
	Store         string
	SessionDir    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
	SQLitePath    string
	LogLevel      string
	LogFormat     string
	Debounce      time.Duration

	// EncryptionKey seals stored sessions with AES-256 when set.
	EncryptionKey []byte
	// PIIPatterns mask matching "question.placeholder" answers in the store.
	PIIPatterns []string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:       ":8080",
		Store:      StoreMemory,
		SessionDir: ".simflow/sessions",
		RedisAddr:  "localhost:6379",
		SQLitePath: "simflow.db",
		LogLevel:   "info",
		LogFormat:  "text",
		Debounce:   300 * time.Millisecond,
	}
}

// Load reads .env files (missing ones are fine) and applies the environment
// on top of Default. Values already present in the environment win over
// .env entries.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv applies variables found through lookup to Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("SIMFLOW_ADDR", &cfg.Addr)
	str("SIMFLOW_STORE", &cfg.Store)
	str("SIMFLOW_SESSION_DIR", &cfg.SessionDir)
	str("SIMFLOW_REDIS_ADDR", &cfg.RedisAddr)
	str("SIMFLOW_REDIS_PASSWORD", &cfg.RedisPassword)
	str("SIMFLOW_SQLITE_PATH", &cfg.SQLitePath)
	str("SIMFLOW_LOG_LEVEL", &cfg.LogLevel)
	str("SIMFLOW_LOG_FORMAT", &cfg.LogFormat)

	if v, ok := lookup("SIMFLOW_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("SIMFLOW_REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}
	for key, dst := range map[string]*time.Duration{
		"SIMFLOW_REDIS_TTL": &cfg.RedisTTL,
		"SIMFLOW_DEBOUNCE":  &cfg.Debounce,
	} {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup("SIMFLOW_ENCRYPTION_KEY"); ok && v != "" {
		k, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return cfg, fmt.Errorf("SIMFLOW_ENCRYPTION_KEY: %w", err)
		}
		cfg.EncryptionKey = k
	}
	if v, ok := lookup("SIMFLOW_PII_PATTERNS"); ok && v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.PIIPatterns = append(cfg.PIIPatterns, p)
			}
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want memory, file, redis or sqlite)", c.Store)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if len(c.EncryptionKey) != 0 && len(c.EncryptionKey) != 32 {
		return fmt.Errorf("encryption key must decode to 32 bytes, got %d", len(c.EncryptionKey))
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	return nil
}
