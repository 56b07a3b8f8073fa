package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq" // PostgreSQL driver

	_ "beacon/docs" // swagger docs

	"beacon/internal/authoring"
	"beacon/internal/config"
	"beacon/internal/constants"
	"beacon/internal/dispatch"
	"beacon/internal/logger"
	"beacon/internal/provider"
	"beacon/internal/registry"
	"beacon/internal/store"
	"beacon/internal/tracking"
	"beacon/pkg/bootstrap"
	"beacon/pkg/cel"
	"beacon/pkg/health"
	"beacon/pkg/metrics"
	"beacon/pkg/middleware"
	"beacon/pkg/migrations"
	"beacon/pkg/ratelimit"
	"beacon/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	config      *config.Config
	logger      logger.Logger
	dbConnector *bootstrap.DatabaseConnector

	postgresDB  *sql.DB
	mongoClient *mongo.Client
	redisClient *redis.Client

	repo      store.Repository
	options   *registry.OptionRegistry
	triggers  *registry.TriggerRegistry
	service   tracking.Service
	transport *dispatch.Transport
	pipelines *tracking.PipelineFactory

	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize template store: %w", err)
	}

	a.initRegistries(ctx)
	a.initDelivery()

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	if err := a.initServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	tp, err := tracing.Init(a.config.Tracing, "tracking-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	return nil
}

// initDatabases connects whatever backends the deployment configures. All of
// them are optional: without Mongo the template store is in-memory, without
// the others the matching option backends are simply not registered.
func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		a.logger.WarnwCtx(ctx, "PostgreSQL connection failed, continuing without it", "error", err)
	} else {
		a.postgresDB = db
	}

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		a.logger.WarnwCtx(ctx, "MongoDB connection failed, continuing without it", "error", err)
	} else {
		a.mongoClient = mongoClient
	}

	if a.config.Database.Redis.Host != "" {
		redisClient, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			a.logger.WarnwCtx(ctx, "Redis connection failed, continuing without it", "error", err)
		} else {
			a.redisClient = redisClient
		}
	}

	return nil
}

func (a *App) initStore(ctx context.Context) error {
	if a.mongoClient == nil {
		a.logger.InfowCtx(ctx, "MongoDB not configured, using in-memory template store")
		a.repo = store.NewMemoryRepository()
		return nil
	}

	dbName := a.config.Database.MongoDB.Database
	if dbName == "" {
		dbName = "beacon"
	}
	mongoDB := a.mongoClient.Database(dbName)

	if err := migrations.EnsureMongoCollection(ctx, mongoDB); err != nil {
		return err
	}

	a.repo = store.NewMongoRepository(mongoDB)

	if count, err := a.repo.CountEnabled(ctx); err == nil {
		metrics.SetTemplateConfigsActive(int(count))
	}

	return nil
}

// initRegistries builds the option and trigger registries from the registry
// configuration and freezes them.
func (a *App) initRegistries(ctx context.Context) {
	a.options = registry.NewOptionRegistry(a.logger)
	a.triggers = registry.NewTriggerRegistry(a.options, a.logger)

	backends := a.buildBackends()

	for _, opt := range a.config.Registry.Options {
		backend, ok := backends[opt.Source]
		if !ok {
			a.logger.WarnwCtx(ctx, "No backend available for option type, registering without resolver",
				"type", opt.ID,
				"source", opt.Source,
			)
		}

		declared := make([]registry.OptionDescriptor, 0, len(opt.Declared))
		for _, d := range opt.Declared {
			declared = append(declared, registry.OptionDescriptor{
				Key:         d.Key,
				Description: d.Description,
				Example:     d.Example,
			})
		}

		optType := registry.OptionType{
			ID:       opt.ID,
			Declared: declared,
			Global:   opt.Global,
		}
		if ok {
			optType.Resolver = provider.Bind(opt.ID, backend, provider.SourceConfig{
				URL:        opt.URL,
				Method:     opt.Method,
				Headers:    opt.Headers,
				RetryCount: opt.RetryCount,
				Database:   opt.Database,
				Collection: opt.Collection,
				Query:      opt.Query,
				Field:      opt.Field,
				KeyPattern: opt.KeyPattern,
			})
		}
		a.options.Register(optType)
	}

	for _, trig := range a.config.Registry.Triggers {
		a.triggers.Register(registry.Trigger{
			ID:             trig.ID,
			Name:           trig.Name,
			Description:    trig.Description,
			OptionTypes:    trig.OptionTypes,
			SupportsSingle: trig.SupportsSingle,
			SupportsGlobal: trig.SupportsGlobal,
		})
	}

	a.triggers.Finalize()
}

// buildBackends wires one backend per configured data source, each behind a
// circuit breaker when breakers are enabled.
func (a *App) buildBackends() map[string]provider.Backend {
	backends := make(map[string]provider.Backend)
	cbConfig := a.config.CircuitBreaker

	backends[constants.SourceTypeAPI] = provider.WrapWithCircuitBreaker(
		provider.NewAPIBackend(a.logger), constants.ProviderNameAPI, cbConfig)

	if a.mongoClient != nil {
		backends[constants.SourceTypeMongoDB] = provider.WrapWithCircuitBreaker(
			provider.NewMongoDBBackend(a.mongoClient), constants.ProviderNameMongoDB, cbConfig)
	}

	if a.postgresDB != nil {
		backends[constants.SourceTypePostgreSQL] = provider.WrapWithCircuitBreaker(
			provider.NewPostgreSQLBackend(a.postgresDB), constants.ProviderNamePostgreSQL, cbConfig)
	}

	if a.redisClient != nil {
		cacheBackend := provider.WrapWithCircuitBreaker(
			provider.NewCacheBackend(a.redisClient), constants.ProviderNameCache, cbConfig)
		backends[constants.SourceTypeCache] = cacheBackend
		backends[constants.SourceTypeRedis] = cacheBackend
	}

	return backends
}

func (a *App) initDelivery() {
	a.transport = dispatch.NewTransport(a.config.Delivery, nil, a.logger, config.ValidateEndpoint)

	a.service = tracking.NewService(a.triggers, a.options, a.repo, a.logger)
	a.pipelines = tracking.NewPipelineFactory(a.service, a.transport, a.logger)
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("tracking-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.config.Authoring.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.config.Authoring.RateLimit.RPS,
			Burst:           a.config.Authoring.RateLimit.Burst,
			CleanupInterval: time.Duration(a.config.Authoring.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.Authoring.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.logger.InfowCtx(context.Background(), "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	evaluator, err := cel.NewEvaluator()
	if err != nil {
		a.logger.WarnwCtx(context.Background(), "Failed to create CEL evaluator, condition validation disabled", "error", err)
	}

	handler := authoring.NewHandler(a.triggers, a.options, a.repo, a.service, a.pipelines, a.transport, evaluator, a.logger)
	handler.RegisterRoutes(router)

	metrics.RegisterTrackingMetrics()
	metrics.RegisterDeliveryMetrics()
	metrics.RegisterProviderMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	metrics.RegisterAuthoringMetrics()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewDeliveryChecker(a.transport.Enabled))
	if a.postgresDB != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.postgresDB))
	}
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) initServer() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.config.Server.WriteTimeoutSeconds * time.Second,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "HTTP server starting", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.refreshActiveGauge(gCtx)
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

// refreshActiveGauge keeps the active template config gauge in sync with the
// store until the context is cancelled.
func (a *App) refreshActiveGauge(ctx context.Context) {
	ticker := time.NewTicker(constants.GaugeRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := a.repo.CountEnabled(ctx)
			if err != nil {
				a.logger.DebugwCtx(ctx, "Failed to count enabled template configs", "error", err)
				continue
			}
			metrics.SetTemplateConfigsActive(int(count))
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	// Background flushes spawned by in-flight requests finish before the
	// database connections close underneath them.
	if a.pipelines != nil {
		if err := a.pipelines.Wait(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("pending deliveries not flushed: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	dbErrs := a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.postgresDB, a.mongoClient)
	errs = append(errs, dbErrs...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
