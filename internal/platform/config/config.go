package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"keyledger/pkg/domain"
)

// Server captures process level configuration.
type Server struct {
	Addr     string
	LogLevel string

	// RegistryAddress is the identity pools are derived from.
	RegistryAddress domain.Address
	// RegistryOwner may change the display defaults.
	RegistryOwner       domain.Address
	DefaultBaseTokenURI string
	DefaultTokenSymbol  string

	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Outbox      OutboxConfig
}

// RedisConfig configures the event stream and tombstone archive client.
// An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	StreamMaxLen int64
}

// KafkaConfig configures the outbox relay target. No brokers disables the relay.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// OutboxConfig tunes the relay worker.
type OutboxConfig struct {
	Interval  time.Duration
	BatchSize int
}

const (
	defaultRegistryAddress = "0x0000000000000000000000000000000000001000"
	defaultRegistryOwner   = "0x0000000000000000000000000000000000001001"
)

// FromEnv builds a Server config from KEYLEDGER_* environment variables so main
// stays lean. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	registry := getAddress(&errs, "KEYLEDGER_REGISTRY_ADDRESS", defaultRegistryAddress)
	owner := getAddress(&errs, "KEYLEDGER_REGISTRY_OWNER", defaultRegistryOwner)

	cfg := Server{
		Addr:                getenv("KEYLEDGER_ADDR", ":8080"),
		LogLevel:            getenv("KEYLEDGER_LOG_LEVEL", "info"),
		RegistryAddress:     registry,
		RegistryOwner:       owner,
		DefaultBaseTokenURI: getenv("KEYLEDGER_DEFAULT_BASE_TOKEN_URI", ""),
		DefaultTokenSymbol:  getenv("KEYLEDGER_DEFAULT_TOKEN_SYMBOL", "KEY"),
		DatabaseURL:         os.Getenv("KEYLEDGER_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("KEYLEDGER_REDIS_URL"),
			PoolSize:     getInt(&errs, "KEYLEDGER_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt(&errs, "KEYLEDGER_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration(&errs, "KEYLEDGER_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration(&errs, "KEYLEDGER_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration(&errs, "KEYLEDGER_REDIS_WRITE_TIMEOUT", 3*time.Second),
			StreamMaxLen: int64(getInt(&errs, "KEYLEDGER_REDIS_STREAM_MAXLEN", 100_000)),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KEYLEDGER_KAFKA_BROKERS")),
			Topic:   getenv("KEYLEDGER_KAFKA_TOPIC", "keyledger.events"),
		},
		Outbox: OutboxConfig{
			Interval:  getDuration(&errs, "KEYLEDGER_OUTBOX_INTERVAL", time.Second),
			BatchSize: getInt(&errs, "KEYLEDGER_OUTBOX_BATCH_SIZE", 100),
		},
	}
	if err := errors.Join(errs...); err != nil {
		return Server{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getAddress(errs *[]error, key, fallback string) domain.Address {
	addr, err := domain.ParseAddress(getenv(key, fallback))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return addr
}

func getInt(errs *[]error, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		*errs = append(*errs, fmt.Errorf("%s: expected a non-negative integer, got %q", key, v))
		return fallback
	}
	return n
}

func getDuration(errs *[]error, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: expected a positive duration, got %q", key, v))
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
