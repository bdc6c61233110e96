package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/userswatch/backend/internal/events"
	"github.com/anonto42/userswatch/backend/internal/watchlist"
	"github.com/anonto42/userswatch/backend/pkg/config"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestSetupRoutesWithMemoryStorage(t *testing.T) {
	cfg := &config.Config{
		StorageDriver: config.StorageDriverMemory,
		SeedUsers:     []string{"alice", "bob"},
		EventSinks:    []string{"log"},
		JWTSecret:     "secret",
	}
	e := echo.New()
	SetupMiddleware(e, nil)

	store, err := SetupRoutes(e, cfg, Services{})
	require.NoError(t, err)

	accepted, err := store.Follow(context.Background(), 1, []watchlist.UserRef{watchlist.ByName("Bob")})
	require.NoError(t, err)
	assert.Len(t, accepted, 1)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/userswatch", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSetupRoutesRejectsBadStorage(t *testing.T) {
	_, err := SetupRoutes(echo.New(), &config.Config{StorageDriver: "sqlite"}, Services{})
	assert.Error(t, err)

	_, err = SetupRoutes(echo.New(), &config.Config{StorageDriver: config.StorageDriverPostgres}, Services{})
	assert.Error(t, err)

	assert.Error(t, AutoMigrate(nil))
}

func TestBuildPublisherSkipsUnavailableSinks(t *testing.T) {
	cfg := &config.Config{EventSinks: []string{"redis", "nats", "mongo", "notifications", "carrier-pigeon"}}
	assert.Equal(t, events.Nop{}, buildPublisher(cfg, Services{}, nil, nil))

	cfg.EventSinks = []string{"log", "redis"}
	pub := buildPublisher(cfg, Services{}, nil, nil)
	require.IsType(t, events.Multi{}, pub)
	assert.Len(t, pub.(events.Multi), 1)
}

func hasRoute(e *echo.Echo, method, path string) bool {
	for _, r := range e.Routes() {
		if r.Method == method && r.Path == path {
			return true
		}
	}
	return false
}

func TestNotificationRoutesFollowSink(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	pgdb, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, PreferSimpleProtocol: true}), &gorm.Config{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		sinks  []string
		routed bool
	}{
		{name: "notifications sink enabled", sinks: []string{"log", "notifications"}, routed: true},
		{name: "log only", sinks: []string{"log"}, routed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			cfg := &config.Config{StorageDriver: config.StorageDriverPostgres, EventSinks: tt.sinks, JWTSecret: "secret"}

			_, err := SetupRoutes(e, cfg, Services{Postgres: pgdb})
			require.NoError(t, err)
			assert.Equal(t, tt.routed, hasRoute(e, http.MethodGet, "/api/v1/notifications"))
			assert.True(t, hasRoute(e, http.MethodGet, "/api/v1/userswatch/is/:name"))
		})
	}
}
