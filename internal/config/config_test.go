package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var managedVars = []string{
	"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL", "DATABASE_URL", "REDIS_URL", "RPC_URL", "PROGRAM_ID",
	"RPC_TIMEOUT", "RPC_TIMEOUT_SECONDS", "CHALLENGE_TTL", "CHALLENGE_TTL_SECONDS", "CHALLENGE_STORE",
	"CHALLENGE_RATE_LIMIT", "STRICT_DISCRIMINATOR", "CORS_ALLOW_ORIGINS", "SHUTDOWN_TIMEOUT",
	"SHUTDOWN_TIMEOUT_SECONDS", "IDEMPOTENCY_TTL", "IDEMPOTENCY_TTL_SECONDS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedVars {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "BlueshiftInbox", cfg.AppName)
	require.Equal(t, ":8080", cfg.Address())
	require.Equal(t, defaultProgramID, cfg.ProgramID.String())
	require.Equal(t, 10*time.Second, cfg.RPCTimeout)
	require.Equal(t, 300*time.Second, cfg.ChallengeTTL)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, ChallengeStoreMemory, cfg.ChallengeStore)
	require.Equal(t, 30, cfg.ChallengeRateLimit)
	require.False(t, cfg.StrictDiscriminator)
	require.True(t, cfg.IsDev())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9000")
	t.Setenv("CHALLENGE_TTL_SECONDS", "60")
	t.Setenv("RPC_TIMEOUT", "3s")
	t.Setenv("STRICT_DISCRIMINATOR", "true")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CHALLENGE_RATE_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Address())
	require.Equal(t, time.Minute, cfg.ChallengeTTL)
	require.Equal(t, 3*time.Second, cfg.RPCTimeout)
	require.True(t, cfg.StrictDiscriminator)
	require.Equal(t, ChallengeStoreRedis, cfg.ChallengeStore)
	require.Equal(t, 5, cfg.ChallengeRateLimit)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PROGRAM_ID":            "not-base58!",
		"CHALLENGE_TTL_SECONDS": "soon",
		"RPC_TIMEOUT":           "ten",
		"STRICT_DISCRIMINATOR":  "maybe",
		"CHALLENGE_RATE_LIMIT":  "x",
		"CHALLENGE_STORE":       "disk",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadRequiresStoresOutsideDev(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://inbox@localhost/inbox")
	_, err = Load()
	require.ErrorContains(t, err, "REDIS_URL")

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.IsDev())
}

func TestLoadRedisStoreNeedsURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHALLENGE_STORE", "redis")
	_, err := Load()
	require.ErrorContains(t, err, "REDIS_URL")
}
