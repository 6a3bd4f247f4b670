package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "nilgate/pkg/platform/strings"
)

// Config captures process-level configuration. Built from the environment so
// main stays lean; services receive the slices they need, never the whole
// struct.
type Config struct {
	Addr           string
	PostgresURL    string
	Redis          RedisConfig
	KafkaBrokers   []string
	KafkaTopic     string
	PolicyFile     string
	JWTSigningKey  string
	IssuerTokenTTL time.Duration
	OTLPEndpoint   string
	ChainTimeout   time.Duration
	NotifyTimeout  time.Duration

	// RateLimit is requests per client per RateLimitWindow; 0 disables limiting.
	RateLimit       int
	RateLimitWindow time.Duration
}

// RedisConfig tunes the optional attestation read cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:           getEnv("NILGATE_ADDR", ":8080"),
		PostgresURL:    os.Getenv("NILGATE_POSTGRES_URL"),
		KafkaTopic:     getEnv("NILGATE_KAFKA_TOPIC", "nilgate.deal-events"),
		PolicyFile:     os.Getenv("NILGATE_POLICY_FILE"),
		JWTSigningKey:  getEnv("NILGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		IssuerTokenTTL: getDuration("NILGATE_ISSUER_TOKEN_TTL", time.Hour),
		OTLPEndpoint:   os.Getenv("NILGATE_OTLP_ENDPOINT"),
		ChainTimeout:   getDuration("NILGATE_CHAIN_TIMEOUT", 15*time.Second),
		NotifyTimeout:  getDuration("NILGATE_NOTIFY_TIMEOUT", 5*time.Second),

		RateLimit:       getInt("NILGATE_RATE_LIMIT", 0),
		RateLimitWindow: getDuration("NILGATE_RATE_LIMIT_WINDOW", time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("NILGATE_REDIS_URL"),
			PoolSize:     getInt("NILGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("NILGATE_REDIS_MIN_IDLE", 2),
			DialTimeout:  getDuration("NILGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("NILGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("NILGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     getDuration("NILGATE_ATTESTATION_CACHE_TTL", 30*time.Second),
		},
	}
	if brokers := os.Getenv("NILGATE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = platformstrings.DedupeAndTrim(strings.Split(brokers, ","))
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
