// Package config loads server settings from the environment. A .env file in
// the working directory is honoured when the binary imports
// github.com/joho/godotenv/autoload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/skat/internal/auth"
	"github.com/sirupsen/logrus"
)

// DefaultPort is the port the table listens on unless SKAT_PORT says otherwise.
const DefaultPort = 50007

// Config is the complete server configuration.
type Config struct {
	Port     int
	LogDir   string
	LogLevel logrus.Level

	// Debug writes the game log to a truncated debug file instead of LogDir.
	Debug bool

	TurnTimeout time.Duration
	BotName     string

	// TablePassword is an Argon2id hash, or empty for an open table.
	TablePassword string
	RequireToken  bool
	TokenTTL      time.Duration
	PrivateKey    string
	PublicKey     string

	RedisAddr   string
	RedisDB     int
	LogQueue    string
	DatabaseURL string
}

// Load reads the environment. A plain SKAT_TABLE_PASSWORD is hashed here so the
// rest of the server only ever sees the hash.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("SKAT_PORT", DefaultPort),
		LogDir:      getEnv("SKAT_LOG_DIR", "log"),
		BotName:     getEnv("SKAT_BOT_NAME", "Bot"),
		PrivateKey:  os.Getenv("SKAT_PRIVATE_KEY"),
		PublicKey:   os.Getenv("SKAT_PUBLIC_KEY"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		LogQueue:    getEnv("SKAT_LOG_QUEUE", "skat_game_log"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	level, err := logrus.ParseLevel(getEnv("SKAT_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SKAT_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if cfg.TurnTimeout, err = getEnvDuration("SKAT_TURN_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.RequireToken, err = getEnvBool("SKAT_REQUIRE_TOKEN", false); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = auth.ParseTTL(os.Getenv("SKAT_TOKEN_TTL")); err != nil {
		return nil, fmt.Errorf("SKAT_TOKEN_TTL: %w", err)
	}
	if (cfg.PrivateKey == "") != (cfg.PublicKey == "") {
		return nil, fmt.Errorf("SKAT_PRIVATE_KEY and SKAT_PUBLIC_KEY must be set together")
	}

	if pw := os.Getenv("SKAT_TABLE_PASSWORD"); pw != "" {
		if auth.IsHash(pw) {
			cfg.TablePassword = pw
		} else if cfg.TablePassword, err = auth.CreateHash(pw, auth.Params); err != nil {
			return nil, fmt.Errorf("failed to hash table password: %w", err)
		}
	}
	return cfg, nil
}

// ApplyArgs applies the command-line switches: "d" for debug logging to a
// scratch file and "-v" for verbose output. Unknown arguments are returned.
func (c *Config) ApplyArgs(args []string) []string {
	var rest []string
	for _, arg := range args {
		switch arg {
		case "d":
			c.Debug = true
		case "-v":
			c.LogLevel = logrus.DebugLevel
		default:
			rest = append(rest, arg)
		}
	}
	return rest
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
