package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/userswatch/backend/internal/events"
	"github.com/anonto42/userswatch/backend/internal/handlers"
	"github.com/anonto42/userswatch/backend/internal/metrics"
	"github.com/anonto42/userswatch/backend/internal/middleware"
	"github.com/anonto42/userswatch/backend/internal/models"
	"github.com/anonto42/userswatch/backend/internal/repositories"
	"github.com/anonto42/userswatch/backend/internal/watchlist"
	"github.com/anonto42/userswatch/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Services are the connections the routes depend on. Any of them may be nil.
type Services struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
	Redis    *redis.Client
	NATS     *nats.Conn
	Metrics  *metrics.Metrics
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, m *metrics.Metrics) {
	log := config.LogWithContext("router", "middleware")

	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestID())
	e.Use(middleware.RequestLogger(config.LogWithContext("http", "request")))
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(middleware.WatchListMemo())
	log.Info("Global middleware configured.")
}

// AutoMigrate creates or updates the PostgreSQL schema
func AutoMigrate(pgdb *gorm.DB) error {
	if pgdb == nil {
		return errors.New("postgres is not configured")
	}
	return pgdb.AutoMigrate(
		&models.User{},
		&models.UsersWatch{},
		&models.Notification{},
	)
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, svc Services) (*watchlist.Store, error) {
	log := config.LogWithContext("router", "routes")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"message": "users watch list"})
	})

	// --- Initialize Repositories ---
	var (
		userRepo  repositories.UserRepository
		watchRepo repositories.WatchRepository
		notifRepo repositories.NotificationRepository
	)
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		if svc.Postgres == nil {
			return nil, errors.New("postgres storage selected but no connection given")
		}
		userRepo = repositories.NewPostgresUserRepository(svc.Postgres)
		watchRepo = repositories.NewPostgresWatchRepository(svc.Postgres)
		notifRepo = repositories.NewPostgresNotificationRepository(svc.Postgres)
	case config.StorageDriverMemory:
		users := repositories.NewMemoryUserRepository()
		if err := seedUsers(users, cfg.SeedUsers); err != nil {
			return nil, err
		}
		userRepo = users
		watchRepo = repositories.NewMemoryWatchRepository(users)
		log.Warn("Using in-memory storage; the watch list is lost on restart.")
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	store := watchlist.NewStore(userRepo, watchRepo, watchlist.Config{
		AllowAll: cfg.AllowAll,
		Events:   buildPublisher(cfg, svc, userRepo, notifRepo),
		Metrics:  svc.Metrics,
		Log:      config.LogWithContext("watchlist", "store"),
	})

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	log.Info("JWT authentication middleware applied to /api/v1 group.")

	handlers.NewUserHandler(userRepo, store).RegisterUserRoutes(api)
	log.Info("User profile routes configured.")

	handlers.NewUsersWatchHandler(store).RegisterUsersWatchRoutes(api)
	handlers.NewFollowHandler(store).RegisterFollowRoutes(api)
	log.Info("Watch list routes configured.")

	handlers.NewPreferencesHandler(store).RegisterPreferencesRoutes(api)
	log.Info("Preference routes configured.")

	if notifRepo != nil && cfg.HasSink("notifications") {
		handlers.NewNotificationHandler(notifRepo, userRepo).RegisterNotificationRoutes(api)
		log.Info("Notification routes configured.")
	}

	log.Info("All routes configured.")
	return store, nil
}

// buildPublisher assembles the event sinks named in EVENT_SINKS. Sinks whose
// connection is missing are skipped with a warning.
func buildPublisher(cfg *config.Config, svc Services, userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository) events.Publisher {
	log := config.LogWithContext("router", "events")
	var sinks events.Multi

	for _, name := range cfg.EventSinks {
		entry := log.WithField("sink", name)
		switch name {
		case "log":
			sinks = append(sinks, events.NewLogPublisher(config.LogWithContext("events", "log")))
		case "notifications":
			if notifRepo == nil {
				entry.Warn("Notifications sink needs postgres storage, skipping.")
				continue
			}
			sinks = append(sinks, events.NewNotificationPublisher(notifRepo, userRepo, config.LogWithContext("events", "notifications")))
		case "redis":
			if svc.Redis == nil {
				entry.Warn("REDIS_URL not set, skipping.")
				continue
			}
			sinks = append(sinks, events.NewRedisPublisher(svc.Redis, cfg.RedisChannel, config.LogWithContext("events", "redis")))
		case "nats":
			if svc.NATS == nil {
				entry.Warn("NATS_URL not set, skipping.")
				continue
			}
			sinks = append(sinks, events.NewNATSPublisher(svc.NATS, cfg.NatsSubject, config.LogWithContext("events", "nats")))
		case "mongo":
			if svc.Mongo == nil {
				entry.Warn("MONGO_URI not set, skipping.")
				continue
			}
			activityRepo := repositories.NewMongoActivityRepository(svc.Mongo.Database(cfg.MongoDatabase))
			sinks = append(sinks, events.NewActivityPublisher(activityRepo, config.LogWithContext("events", "mongo")))
		default:
			entry.Warn("Unknown event sink, skipping.")
			continue
		}
		entry.Info("Event sink enabled.")
	}

	if len(sinks) == 0 {
		return events.Nop{}
	}
	return sinks
}

func seedUsers(users *repositories.MemoryUserRepository, names []string) error {
	for _, raw := range names {
		name, ok := watchlist.NormalizeName(raw)
		if !ok {
			config.LogWithContext("router", "seed").WithField("name", raw).Warn("Skipping invalid seed user name.")
			continue
		}
		if err := users.CreateUser(context.Background(), &models.User{Name: name, AllowFollow: true}); err != nil {
			return fmt.Errorf("seed user %q: %w", name, err)
		}
	}
	return nil
}
