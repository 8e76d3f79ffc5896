package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargehub/internal/cache"
	appconfig "chargehub/internal/config"
	"chargehub/internal/db"
	httpserver "chargehub/internal/http"
	"chargehub/internal/http/handlers"
	"chargehub/internal/http/middleware"
	"chargehub/internal/models"
	"chargehub/internal/password"
	"chargehub/internal/service"
	"chargehub/internal/storage"
	"chargehub/internal/storage/memory"
	"chargehub/internal/storage/postgres"
	"chargehub/internal/ws"
)

// App wires the dependency graph for the service.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	redis  *redis.Client
	logger *zap.Logger
}

// New builds the application graph.
func New(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	app := &App{logger: logger}

	var store storage.Store
	switch cfg.Storage.Driver {
	case appconfig.DriverPostgres:
		pool, err := db.NewPostgres(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		app.db = pool
		store = postgres.New(pool)
	default:
		memStore := memory.New()
		if cfg.Storage.Seed {
			if err := memStore.Seed(ctx); err != nil {
				return nil, err
			}
			logger.Info("seeded in-memory store with station catalogue")
		}
		store = memStore
	}

	var availCache *cache.AvailabilityCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.redis = client
		availCache = cache.NewAvailabilityCache(client, cfg.CacheTTL())
	}

	hub := ws.NewHub(logger)
	keeper := service.NewAvailabilityKeeper(store, availCache, hub, logger)

	hasher := password.NewBcryptHasher(0)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	authSvc := service.NewAuthService(store, hasher, tokens, logger)
	if cfg.Admin.Username != "" {
		if err := bootstrapAdmin(ctx, authSvc, cfg, logger); err != nil {
			app.Close()
			return nil, err
		}
	}
	stationSvc := service.NewStationService(store, keeper, logger)
	bookingSvc := service.NewBookingService(store, keeper, logger)
	vehicleSvc := service.NewVehicleService(store, logger)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Auth:         handlers.NewAuthHandlers(authSvc),
		Stations:     handlers.NewStationHandlers(stationSvc),
		Slots:        handlers.NewSlotHandlers(stationSvc),
		Bookings:     handlers.NewBookingHandlers(bookingSvc),
		Vehicles:     handlers.NewVehicleHandlers(vehicleSvc),
		Health:       handlers.NewHealthHandler(),
		Availability: hub.HandleSubscribe,
		AuthRequired: middleware.Auth(tokens),
	})

	app.server = httpserver.NewServer(cfg.HTTPAddress(), router, logger)
	return app, nil
}

// bootstrapAdmin ensures the configured admin account exists. A username or
// email already taken means a previous run created it, which is fine.
func bootstrapAdmin(ctx context.Context, auth *service.AuthService, cfg *appconfig.Config, logger *zap.Logger) error {
	name := cfg.Admin.Name
	if name == "" {
		name = cfg.Admin.Username
	}
	_, err := auth.Register(ctx, service.RegisterInput{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Name:     name,
		Role:     models.RoleAdmin,
	})
	switch {
	case err == nil:
		logger.Info("bootstrapped admin account", zap.String("username", cfg.Admin.Username))
		return nil
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
		return nil
	default:
		return err
	}
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
}
