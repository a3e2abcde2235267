package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/api"
	"github.com/Rrens/floorboard/internal/api/handler"
	"github.com/Rrens/floorboard/internal/clock"
	"github.com/Rrens/floorboard/internal/config"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/livesync"
	"github.com/Rrens/floorboard/internal/logging"
	"github.com/Rrens/floorboard/internal/repository/memory"
	"github.com/Rrens/floorboard/internal/repository/mongo"
	"github.com/Rrens/floorboard/internal/repository/postgres"
	"github.com/Rrens/floorboard/internal/repository/redis"
	"github.com/Rrens/floorboard/internal/repository/sqlite"
	"github.com/Rrens/floorboard/internal/security"
	"github.com/Rrens/floorboard/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logging.Setup(cfg.Logging, os.Getenv("ENV") == "production")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("documents", cfg.Storage.Documents).
		Str("objects", cfg.Storage.Objects).
		Str("users", cfg.Storage.Users).
		Str("views", cfg.Storage.Views).
		Msg("Starting floorboard API server")

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		st.close()
		log.Fatal().Err(err).Msg("Failed to open stores")
	}
	defer st.close()

	c := clock.NewSystem()

	// Live catalog
	adapter := livesync.NewAdapter(st.documents)
	if err := adapter.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start catalog sync")
	}
	defer adapter.Close()
	go func() {
		waitCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := adapter.WaitReady(waitCtx); err != nil {
			log.Warn().Err(err).Msg("Catalog not loaded yet")
			return
		}
		log.Info().Msg("Catalog loaded")
	}()

	// Security
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	admins := security.NewAdminList(cfg.Auth.AdminEmails)
	if admins.Len() == 0 {
		log.Warn().Msg("Admin allow-list is empty, catalog writes are disabled")
	}
	cfg.OnChange(func(next *config.Config) {
		admins.Set(next.Auth.AdminEmails)
		log.Info().Int("admins", admins.Len()).Msg("Admin allow-list reloaded")
	}, func(err error) {
		log.Error().Err(err).Msg("Failed to reload configuration")
	})

	// Services
	dashboard := service.NewDashboardService(adapter, cfg.Dashboard, c)
	deps := api.Deps{
		Adapter:   adapter,
		Objects:   st.objects,
		JWT:       jwtManager,
		Admins:    admins,
		Auth:      service.NewAuthService(st.users, jwtManager, admins, c),
		Catalog:   service.NewCatalogService(st.documents, st.objects, c),
		Dashboard: dashboard,
		Overseas:  service.NewOverseasService(st.documents, st.objects, c),
		Views:     service.NewViewService(st.views, adapter, dashboard),
		Ready:     st.ready,
	}
	if cfg.Security.RateLimit.Enabled {
		if st.redis == nil {
			log.Warn().Msg("Rate limiting needs redis, disabled")
		} else {
			deps.RateLimiter = redis.NewRateLimiter(
				st.redis,
				cfg.Security.RateLimit.RequestsPerMinute,
				cfg.Security.RateLimit.Burst,
			)
		}
	}

	router := api.NewRouter(cfg, deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// stores holds the selected backends and the cleanups that release them
type stores struct {
	documents domain.DocumentStore
	objects   domain.ObjectStore
	users     domain.UserRepository
	views     domain.ViewRepository
	redis     *redis.Client
	ready     map[string]handler.Pinger
	closers   []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// openStores connects the backends named in cfg.Storage. On error the
// returned stores still hold the cleanups of what was opened.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{ready: map[string]handler.Pinger{}}

	var mongoClient *mongo.Client
	needMongo := cfg.Storage.Documents == "mongo" || cfg.Storage.Objects == "gridfs"
	if needMongo {
		client, err := mongo.NewClient(ctx, cfg.Mongo)
		if err != nil {
			return s, fmt.Errorf("mongo: %w", err)
		}
		mongoClient = client
		s.closers = append(s.closers, func() { _ = client.Close() })
	}

	needRedis := cfg.Storage.Views == "redis" || cfg.Security.RateLimit.Enabled
	if needRedis {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			if cfg.Storage.Views == "redis" {
				return s, fmt.Errorf("redis: %w", err)
			}
			log.Warn().Err(err).Msg("Redis unavailable")
		} else {
			s.redis = client
			s.ready["redis"] = client
			s.closers = append(s.closers, func() { _ = client.Close() })
		}
	}

	switch cfg.Storage.Documents {
	case "mongo":
		docs := mongo.NewDocumentStore(mongoClient)
		s.documents = docs
		s.ready["mongo"] = docs
	case "memory", "":
		s.documents = memory.NewDocumentStore()
	default:
		return s, fmt.Errorf("unknown document storage %q", cfg.Storage.Documents)
	}

	switch cfg.Storage.Objects {
	case "gridfs":
		objects, err := mongo.NewObjectStore(mongoClient)
		if err != nil {
			return s, fmt.Errorf("gridfs: %w", err)
		}
		s.objects = objects
	case "sqlite":
		objects, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return s, fmt.Errorf("sqlite: %w", err)
		}
		s.objects = objects
		s.ready["sqlite"] = objects
		s.closers = append(s.closers, func() { _ = objects.Close() })
	case "memory", "":
		s.objects = memory.NewObjectStore()
	default:
		return s, fmt.Errorf("unknown object storage %q", cfg.Storage.Objects)
	}

	switch cfg.Storage.Users {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return s, fmt.Errorf("postgres: %w", err)
		}
		s.users = postgres.NewUserRepository(db)
		s.ready["postgres"] = db
		s.closers = append(s.closers, db.Close)
	case "memory", "":
		s.users = memory.NewUserRepository()
	default:
		return s, fmt.Errorf("unknown user storage %q", cfg.Storage.Users)
	}

	switch cfg.Storage.Views {
	case "redis":
		s.views = redis.NewViewStore(s.redis, cfg.Views.TTL)
	case "memory", "":
		s.views = memory.NewViewStore(cfg.Views.TTL, clock.NewSystem())
	default:
		return s, fmt.Errorf("unknown view storage %q", cfg.Storage.Views)
	}

	return s, nil
}
