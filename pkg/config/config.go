package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Port          string
	Env           string
	StorageDriver string
	PostgresUrl   string
	MongoURI      string
	MongoDatabase string
	RedisURL      string
	RedisChannel  string
	NatsURL       string
	NatsSubject   string
	EventSinks    []string
	JWTSecret     string
	MetricsPort   string
	LogLevel      string
	// SeedUsers are created on start when StorageDriver is memory
	SeedUsers []string
	// AllowAll lets every user be watched and hides the per-user opt-in
	AllowAll bool
}

// Load reads the configuration from the environment, after an optional .env file
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		StorageDriver: getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		PostgresUrl:   getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "userswatch"),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisChannel:  getEnv("REDIS_CHANNEL", "userswatch.new-follower"),
		NatsURL:       getEnv("NATS_URL", ""),
		NatsSubject:   getEnv("NATS_SUBJECT", "userswatch.new-follower"),
		EventSinks:    getEnvList("EVENT_SINKS", nil),
		JWTSecret:     getEnv("JWT_SECRET", "supersecretjwtkey"),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		SeedUsers:     getEnvList("SEED_USERS", nil),
		AllowAll:      getEnvBool("USERSWATCH_ALLOW_ALL", false),
	}
	if cfg.EventSinks == nil {
		cfg.EventSinks = defaultEventSinks(cfg.StorageDriver)
	}
	return cfg
}

// defaultEventSinks fills the notifications table whenever there is one to read it from
func defaultEventSinks(storageDriver string) []string {
	if storageDriver == StorageDriverPostgres {
		return []string{"log", "notifications"}
	}
	return []string{"log"}
}

// IsProduction is true for any environment other than development and test
func (c *Config) IsProduction() bool {
	return c.Env != "development" && c.Env != "test"
}

// HasSink reports whether an event sink is enabled
func (c *Config) HasSink(name string) bool {
	for _, s := range c.EventSinks {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
