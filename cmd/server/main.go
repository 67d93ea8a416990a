package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizcms/backend/docs"
	appevent "github.com/bizcms/backend/internal/application/event"
	financeapp "github.com/bizcms/backend/internal/application/finance"
	ledgerapp "github.com/bizcms/backend/internal/application/ledger"
	partnerapp "github.com/bizcms/backend/internal/application/partner"
	"github.com/bizcms/backend/internal/infrastructure/cache"
	"github.com/bizcms/backend/internal/infrastructure/config"
	"github.com/bizcms/backend/internal/infrastructure/event"
	"github.com/bizcms/backend/internal/infrastructure/logger"
	"github.com/bizcms/backend/internal/infrastructure/persistence"
	"github.com/bizcms/backend/internal/infrastructure/telemetry"
	"github.com/bizcms/backend/internal/interfaces/http/handler"
	"github.com/bizcms/backend/internal/interfaces/http/middleware"
	"github.com/bizcms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

//	@title			Finance Core API
//	@version		1.0
//	@description	Invoices, payments, allocations, customer balances and the double-entry ledger.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	TenantHeader
//	@in							header
//	@name						X-Tenant-ID
//	@description				Tenant the request acts for

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry providers are no-ops unless enabled in config
	tel := cfg.Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tel.Enabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		SamplingRatio:     tel.SamplingRatio,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	prof := tel.Profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           prof.Enabled,
		ServerAddress:     prof.ServerAddress,
		ApplicationName:   prof.ApplicationName,
		BasicAuthUser:     prof.BasicAuthUser,
		BasicAuthPassword: prof.BasicAuthPassword,
		ProfileTypes:      prof.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler stop failed", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && prof.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tel.Enabled && tel.MetricsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ExportInterval:    tel.MetricsInterval,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tel.Enabled && tel.LogsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if level, err := logger.ParseLevel(cfg.Log.Level); err == nil {
		log = telemetry.Bridge(log, tel.ServiceName, loggerProvider, level)
	}
	defer shutdownTelemetry(log, tracerProvider, meterProvider, loggerProvider)

	log.Info("Starting finance backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	financeMetrics, err := telemetry.NewFinanceMetrics(meterProvider.Meter("finance"))
	if err != nil {
		log.Fatal("Failed to create finance metrics", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithZapLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowThreshold(tel.DBSlowQueryThresh),
			logger.WithFullSQL(tel.DBLogFullSQL),
		),
		persistence.WithTracing(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         tel.Enabled && tel.DBTraceEnabled,
			LogFullSQL:      tel.DBLogFullSQL,
			SlowQueryThresh: tel.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		}, log)),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Warn("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Event bus; handlers only observe, state changes happen in the services
	bus := event.NewInMemoryEventBus(log)
	statusHandler := financeapp.NewInvoiceStatusHandler(financeMetrics, log)
	bus.Subscribe(statusHandler, statusHandler.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := bus.Stop(stopCtx); err != nil {
			log.Warn("Event bus stopped with pending events", zap.Error(err))
		}
	}()

	dispatcher := appevent.NewDispatcher(log,
		appevent.WithEventPublisher(bus),
		appevent.WithAuditLogger(logger.NewAuditLogger(log)),
		appevent.WithMetrics(financeMetrics),
	)

	// Application services
	financeScope := persistence.NewFinanceTransactionScope(db.DB)
	financeReader := persistence.NewFinanceRepositories(db.DB)
	balanceService := financeapp.NewBalanceService(financeScope, financeReader, log)
	invoiceService := financeapp.NewInvoiceService(financeScope, financeReader, balanceService, dispatcher, log)
	paymentService := financeapp.NewPaymentService(financeScope, financeReader, balanceService, dispatcher, log,
		financeapp.WithIdempotencyStore(idempotencyStore, cfg.Finance.IdempotencyTTL),
	)
	ledgerService := ledgerapp.NewChartOfAccountsService(
		persistence.NewLedgerTransactionScope(db.DB),
		persistence.NewLedgerRepositories(db.DB),
		dispatcher, log,
	)
	customerService := partnerapp.NewCustomerService(persistence.NewGormCustomerRepository(db.DB), log)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.Tracing(tel.ServiceName, tel.Enabled),
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		httpMetrics,
	)
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(ctx)
		engine.Use(middleware.RateLimit(limiter))
	}

	// Outside the tenant middleware
	engine.GET("/health", handler.NewHealthHandler(db).Check)
	if cfg.App.Env != "production" {
		engine.GET("/openapi.json", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(docs.SwaggerInfo.ReadDoc()))
		})
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/openapi.json")))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1")).
		Use(
			middleware.TenantMiddleware(middleware.DefaultTenantConfig()),
			middleware.SpanEnricher(),
			middleware.Timeout(cfg.HTTP.RequestTimeout),
		)
	for _, group := range router.FinanceGroups(router.Handlers{
		Invoices:  handler.NewInvoiceHandler(invoiceService),
		Payments:  handler.NewPaymentHandler(paymentService),
		Customers: handler.NewCustomerHandler(customerService, paymentService, balanceService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
	}) {
		r.Register(group)
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownTelemetry flushes exporters, logs go last so earlier errors reach them
func shutdownTelemetry(log *zap.Logger, providers ...shutdowner) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
}
