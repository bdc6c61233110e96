package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "STORAGE_DRIVER", "EVENT_SINKS", "USERSWATCH_ALLOW_ALL", "SEED_USERS", "REDIS_CHANNEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, []string{"log", "notifications"}, cfg.EventSinks)
	assert.True(t, cfg.HasSink("notifications"))
	assert.Equal(t, "userswatch.new-follower", cfg.RedisChannel)
	assert.False(t, cfg.AllowAll)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.SeedUsers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("EVENT_SINKS", " log, Redis ,,nats ")
	t.Setenv("USERSWATCH_ALLOW_ALL", "true")
	t.Setenv("SEED_USERS", "Alice,Bob Smith")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, []string{"log", "Redis", "nats"}, cfg.EventSinks)
	assert.True(t, cfg.HasSink("redis"))
	assert.False(t, cfg.HasSink("mongo"))
	assert.True(t, cfg.AllowAll)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"Alice", "Bob Smith"}, cfg.SeedUsers)
}

func TestDefaultEventSinksFollowStorageDriver(t *testing.T) {
	t.Setenv("EVENT_SINKS", "")
	t.Setenv("STORAGE_DRIVER", "memory")
	assert.Equal(t, []string{"log"}, Load().EventSinks)

	t.Setenv("STORAGE_DRIVER", "postgres")
	assert.Equal(t, []string{"log", "notifications"}, Load().EventSinks)

	t.Setenv("EVENT_SINKS", "nats")
	assert.Equal(t, []string{"nats"}, Load().EventSinks)
}

func TestInvalidBoolFallsBackToDefault(t *testing.T) {
	t.Setenv("USERSWATCH_ALLOW_ALL", "sometimes")
	assert.False(t, Load().AllowAll)
}

func TestInitLogger(t *testing.T) {
	log := InitLogger(&Config{Env: "production", LogLevel: "debug"})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = InitLogger(&Config{Env: "development", LogLevel: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestInitDBRequiresPostgresURL(t *testing.T) {
	_, err := InitDB(&Config{StorageDriver: StorageDriverPostgres})
	assert.Error(t, err)

	db, err := InitDB(&Config{StorageDriver: StorageDriverMemory})
	assert.NoError(t, err)
	assert.Nil(t, db.Postgres)
	assert.Nil(t, db.Mongo)
}
