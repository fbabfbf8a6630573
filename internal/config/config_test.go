package config

import (
	"testing"
	"time"

	"github.com/jason-s-yu/skat/internal/auth"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SKAT_PORT", "SKAT_LOG_DIR", "SKAT_LOG_LEVEL", "SKAT_TURN_TIMEOUT", "SKAT_BOT_NAME",
		"SKAT_TABLE_PASSWORD", "SKAT_REQUIRE_TOKEN", "SKAT_TOKEN_TTL", "SKAT_PRIVATE_KEY",
		"SKAT_PUBLIC_KEY", "REDIS_ADDR", "REDIS_DB", "SKAT_LOG_QUEUE", "DATABASE_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, ":50007", cfg.Addr())
	assert.Equal(t, "log", cfg.LogDir)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "Bot", cfg.BotName)
	assert.Equal(t, "skat_game_log", cfg.LogQueue)
	assert.Zero(t, cfg.TurnTimeout)
	assert.Zero(t, cfg.TokenTTL)
	assert.False(t, cfg.RequireToken)
	assert.Empty(t, cfg.TablePassword)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKAT_PORT", "6000")
	t.Setenv("SKAT_LOG_LEVEL", "warn")
	t.Setenv("SKAT_TURN_TIMEOUT", "90s")
	t.Setenv("SKAT_REQUIRE_TOKEN", "true")
	t.Setenv("SKAT_TOKEN_TTL", "24h")
	t.Setenv("SKAT_BOT_NAME", "Robo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel)
	assert.Equal(t, 90*time.Second, cfg.TurnTimeout)
	assert.True(t, cfg.RequireToken)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "Robo", cfg.BotName)
}

func TestInvalidValues(t *testing.T) {
	for key, val := range map[string]string{
		"SKAT_LOG_LEVEL":     "loud",
		"SKAT_TURN_TIMEOUT":  "forever",
		"SKAT_REQUIRE_TOKEN": "maybe",
		"SKAT_TOKEN_TTL":     "soon",
		"SKAT_PRIVATE_KEY":   "only-half.key",
	} {
		clearEnv(t)
		t.Setenv(key, val)
		_, err := Load()
		assert.Error(t, err, key)
	}
}

func TestTablePasswordIsHashed(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKAT_TABLE_PASSWORD", "open sesame")
	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, auth.IsHash(cfg.TablePassword))

	ok, err := auth.ComparePasswordAndHash("open sesame", cfg.TablePassword)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Setenv("SKAT_TABLE_PASSWORD", cfg.TablePassword)
	again, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.TablePassword, again.TablePassword)
}

func TestApplyArgs(t *testing.T) {
	cfg := &Config{LogLevel: logrus.InfoLevel}
	rest := cfg.ApplyArgs([]string{"d", "-v", "extra"})
	assert.True(t, cfg.Debug)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, []string{"extra"}, rest)
}
