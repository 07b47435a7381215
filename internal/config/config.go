package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blueshift/inbox/internal/profile"
)

const (
	defaultAppName            = "BlueshiftInbox"
	defaultAppEnv             = "development"
	defaultPort               = "8080"
	defaultLogLevel           = "info"
	defaultRPCURL             = "https://api.devnet.solana.com"
	defaultProgramID          = "D4vno1rrteswpFM3SSfzvJwyPzSkQKCiN6WfEuK7qGyS"
	defaultCORSOrigins        = "*"
	defaultShutdownDelay      = 10 * time.Second
	defaultIdempotencyTTL     = 24 * time.Hour
	defaultRPCTimeout         = 10 * time.Second
	defaultChallengeTTL       = 300 * time.Second
	defaultChallengeRate      = 30
	challengeStoreAuto        = ""
	ChallengeStoreMemory      = "memory"
	ChallengeStoreRedis       = "redis"
	challengeRateEnvVar       = "CHALLENGE_RATE_LIMIT"
	strictDiscriminatorEnvVar = "STRICT_DISCRIMINATOR"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName             string
	AppEnv              string
	Port                string
	LogLevel            string
	DatabaseURL         string
	RedisURL            string
	RPCURL              string
	ProgramID           profile.PublicKey
	RPCTimeout          time.Duration
	ChallengeTTL        time.Duration
	ChallengeStore      string
	ChallengeRateLimit  int
	StrictDiscriminator bool
	CORSAllowOrigins    string
	ShutdownPeriod      time.Duration
	IdempotencyTTL      time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:            getEnv("APP_NAME", defaultAppName),
		AppEnv:             getEnv("APP_ENV", defaultAppEnv),
		Port:               getEnv("PORT", defaultPort),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RPCURL:             getEnv("RPC_URL", defaultRPCURL),
		ChallengeStore:     strings.ToLower(os.Getenv("CHALLENGE_STORE")),
		ChallengeRateLimit: defaultChallengeRate,
		CORSAllowOrigins:   getEnv("CORS_ALLOW_ORIGINS", defaultCORSOrigins),
	}

	programID, err := profile.ParsePublicKey(getEnv("PROGRAM_ID", defaultProgramID))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PROGRAM_ID: %w", err)
	}
	cfg.ProgramID = programID

	durations := []struct {
		target   *time.Duration
		fallback time.Duration
		name     string
	}{
		{&cfg.ShutdownPeriod, defaultShutdownDelay, "SHUTDOWN_TIMEOUT"},
		{&cfg.IdempotencyTTL, defaultIdempotencyTTL, "IDEMPOTENCY_TTL"},
		{&cfg.RPCTimeout, defaultRPCTimeout, "RPC_TIMEOUT"},
		{&cfg.ChallengeTTL, defaultChallengeTTL, "CHALLENGE_TTL"},
	}
	for _, d := range durations {
		v, err := durationEnv(d.name, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.target = v
	}

	if v := os.Getenv(challengeRateEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", challengeRateEnvVar, err)
		}
		cfg.ChallengeRateLimit = n
	}

	if v := os.Getenv(strictDiscriminatorEnvVar); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", strictDiscriminatorEnvVar, err)
		}
		cfg.StrictDiscriminator = b
	}

	switch cfg.ChallengeStore {
	case challengeStoreAuto, ChallengeStoreMemory, ChallengeStoreRedis:
	default:
		return Config{}, fmt.Errorf("invalid CHALLENGE_STORE %q: want memory or redis", cfg.ChallengeStore)
	}
	if cfg.ChallengeStore == challengeStoreAuto {
		cfg.ChallengeStore = ChallengeStoreMemory
		if cfg.RedisURL != "" {
			cfg.ChallengeStore = ChallengeStoreRedis
		}
	}
	if cfg.ChallengeStore == ChallengeStoreRedis && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("CHALLENGE_STORE=redis requires REDIS_URL")
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set")
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set")
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the service may run without its backing stores.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads NAME_SECONDS as whole seconds, else NAME as a Go duration.
func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	secondsVar := name + "_SECONDS"
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(name); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", name, err)
		}
		return d, nil
	}
	return fallback, nil
}
