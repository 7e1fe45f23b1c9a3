package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/authplus-license-service/internal/app"
	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/config"
	"github.com/sandeepkv93/authplus-license-service/internal/database"
	"github.com/sandeepkv93/authplus-license-service/internal/health"
	"github.com/sandeepkv93/authplus-license-service/internal/http/handler"
	"github.com/sandeepkv93/authplus-license-service/internal/http/middleware"
	"github.com/sandeepkv93/authplus-license-service/internal/http/router"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
	"github.com/sandeepkv93/authplus-license-service/internal/security"
	"github.com/sandeepkv93/authplus-license-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	provideStoreOptions,
	repository.NewLicenseRepository,
	repository.NewAccountRepository,
	repository.NewTransactor,
)

var SecuritySet = wire.NewSet(
	providePasswordStore,
	provideFernet,
	provideResponseEncoder,
)

var ServiceSet = wire.NewSet(
	service.NewLicenseLedger,
	service.NewAccountDirectory,
	provideLoginGuard,
	service.NewAuthorizationEngine,
	service.NewStatsService,
	wire.Bind(new(service.AccountDirectoryService), new(*service.AccountDirectory)),
	wire.Bind(new(service.LicenseIssuer), new(*service.LicenseLedger)),
	wire.Bind(new(service.LoginAuthorizer), new(*service.AuthorizationEngine)),
	wire.Bind(new(service.StatsReader), new(*service.StatsService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAccountHandler,
	handler.NewLicenseHandler,
	handler.NewStatsHandler,
	provideGlobalRateLimiter,
	provideRouteRateLimitPolicies,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	start := time.Now()
	db, err := database.Open(cfg)
	observability.RecordDatabaseStartupDuration(context.Background(), "open", time.Since(start))
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "open", "error")
		return nil, err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "open", "success")
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RateLimitRedisEnabled && !cfg.LoginGuardRedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideStoreOptions(cfg *config.Config) repository.StoreOptions {
	return repository.StoreOptions{OperationTimeout: cfg.DatabaseOperationTimeout}
}

func providePasswordStore(cfg *config.Config) (security.PasswordStore, error) {
	return security.NewPasswordStore(cfg.PasswordStorage)
}

func provideFernet(cfg *config.Config) (*codec.Fernet, error) {
	return codec.NewFernet(cfg.EncryptionKeys)
}

func provideResponseEncoder(f *codec.Fernet) *codec.ResponseEncoder {
	return codec.NewResponseEncoder(f)
}

func provideLoginGuardPolicy(cfg *config.Config) service.LoginGuardPolicy {
	return service.LoginGuardPolicy{
		FreeAttempts: cfg.LoginGuardFreeAttempts,
		BaseDelay:    cfg.LoginGuardBaseDelay,
		Multiplier:   cfg.LoginGuardMultiplier,
		MaxDelay:     cfg.LoginGuardMaxDelay,
		ResetWindow:  cfg.LoginGuardResetWindow,
	}
}

func provideLoginGuard(cfg *config.Config, redisClient redis.UniversalClient) service.LoginGuard {
	if !cfg.LoginGuardEnabled {
		return service.NoopLoginGuard{}
	}
	policy := provideLoginGuardPolicy(cfg)
	if cfg.LoginGuardRedisEnabled && redisClient != nil {
		return service.NewRedisLoginGuard(redisClient, cfg.RateLimitRedisPrefix+":login_guard", policy)
	}
	return service.NewInMemoryLoginGuard(policy)
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	return buildRoutePolicyLimiter(cfg, redisClient, "api", cfg.APIRateLimitPerMin, middleware.FailOpen)
}

func provideRouteRateLimitPolicies(cfg *config.Config, redisClient redis.UniversalClient) router.RouteRateLimitPolicies {
	return router.RouteRateLimitPolicies{
		router.RoutePolicyLogin:        buildRoutePolicyLimiter(cfg, redisClient, router.RoutePolicyLogin, cfg.LoginRateLimitPerMin, middleware.FailClosed),
		router.RoutePolicyAdminRead:    buildRoutePolicyLimiter(cfg, redisClient, router.RoutePolicyAdminRead, cfg.AdminReadRateLimitPerMin, middleware.FailOpen),
		router.RoutePolicyAdminWrite:   buildRoutePolicyLimiter(cfg, redisClient, router.RoutePolicyAdminWrite, cfg.AdminWriteRateLimitPerMin, middleware.FailOpen),
		router.RoutePolicyLicenseIssue: buildRoutePolicyLimiter(cfg, redisClient, router.RoutePolicyLicenseIssue, cfg.LicenseIssueRateLimitPerMin, middleware.FailOpen),
	}
}

// buildRoutePolicyLimiter picks the Redis limiter when it is enabled and a
// client exists; otherwise each policy keeps its own in-process windows.
func buildRoutePolicyLimiter(
	cfg *config.Config,
	redisClient redis.UniversalClient,
	scope string,
	limit int,
	mode middleware.FailureMode,
) func(http.Handler) http.Handler {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":"+scope)
		return middleware.NewDistributedRateLimiter(redisLimiter, limit, time.Minute, mode, scope).Middleware()
	}
	return middleware.NewDistributedRateLimiter(middleware.NewLocalFixedWindowLimiter(), limit, time.Minute, middleware.FailOpen, scope).Middleware()
}

func provideRouterDependencies(
	accountHandler *handler.AccountHandler,
	licenseHandler *handler.LicenseHandler,
	statsHandler *handler.StatsHandler,
	globalRateLimiter router.GlobalRateLimiterFunc,
	routePolicies router.RouteRateLimitPolicies,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	// config.Load has already rejected malformed entries
	trustedProxies, _ := cfg.TrustedProxyPrefixes()
	return router.Dependencies{
		AccountHandler:         accountHandler,
		LicenseHandler:         licenseHandler,
		StatsHandler:           statsHandler,
		AdminCredentials:       middleware.Credentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword},
		ClientCredentials:      middleware.Credentials{Username: cfg.ClientUsername, Password: cfg.ClientPassword},
		CORSOrigins:            cfg.CORSAllowedOrigins,
		TrustedProxies:         trustedProxies,
		APIRateLimitRPM:        cfg.APIRateLimitPerMin,
		GlobalRateLimiter:      globalRateLimiter,
		RouteRateLimitPolicies: routePolicies,
		Readiness:              readiness,
		EnableOTelHTTP:         cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := []health.Checker{
		health.NewDBChecker(db),
		health.NewSchemaChecker(db),
	}
	if redisClient != nil {
		checkers = append(checkers, health.NewRedisChecker(redisClient))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
