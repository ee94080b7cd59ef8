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
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	DatabaseURL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	HTTPAddr       string
	Store          string
	SessionTTL     time.Duration
	MigrateOnStart bool

	KafkaBrokers []string
	KafkaTopic   string

	TracingEndpoint string
	LogLevel        string
}

// LoadDotenv loads variables from the given files (".env" when none) without
// overriding ones already set. Missing files are ignored.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() Config {
	return Config{
		DatabaseURL:     getenv("DATABASE_URL", ""),
		MaxOpenConns:    getenvInt("DB_MAX_OPEN", 20),
		MaxIdleConns:    getenvInt("DB_MAX_IDLE", 10),
		ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime: getenvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		Store:           strings.ToLower(getenv("STORE", StorePostgres)),
		SessionTTL:      getenvDuration("SESSION_TTL", 30*24*time.Hour),
		MigrateOnStart:  getenvBool("MIGRATE_ON_START", false),
		KafkaBrokers:    getenvList("KAFKA_BROKERS"),
		KafkaTopic:      getenv("KAFKA_TOPIC", "notes.events"),
		TracingEndpoint: getenv("TRACING_ENDPOINT", ""),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
