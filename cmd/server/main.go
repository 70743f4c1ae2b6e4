package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	agreementapp "github.com/hotelagreement/backend/internal/application/agreement"
	"github.com/hotelagreement/backend/internal/infrastructure/cache"
	"github.com/hotelagreement/backend/internal/infrastructure/config"
	"github.com/hotelagreement/backend/internal/infrastructure/logger"
	"github.com/hotelagreement/backend/internal/infrastructure/printing"
	"github.com/hotelagreement/backend/internal/infrastructure/storage"
	"github.com/hotelagreement/backend/internal/infrastructure/telemetry"
	"github.com/hotelagreement/backend/internal/interfaces/http/handler"
	"github.com/hotelagreement/backend/internal/interfaces/http/middleware"
	"github.com/hotelagreement/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/hotelagreement/backend/docs"
)

//	@title			Hotel Agreement API
//	@version		1.0
//	@description	Renders hotel agreement documents from submitted field values.

//	@BasePath	/

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting hotel agreement service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()
	tel, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = tel.logger

	service, err := buildService(cfg, tel, log)
	if err != nil {
		log.Fatal("Failed to build agreement service", zap.Error(err))
	}

	rateStore, err := cache.NewRateLimitStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create rate limit store", zap.Error(err))
	}
	defer func() {
		_ = rateStore.Close()
	}()

	engine := newEngine(cfg, tel, rateStore, log)

	agreementHandler := handler.NewAgreementHandler(service, handlerConfig(cfg, log))
	router.NewRouter(engine, routerOptions(cfg)...).
		RegisterRoot(handler.NewHealthHandler()).
		RegisterRoot(agreementHandler).
		Register(agreementHandler).
		Setup()

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	go service.RunCleanup(cleanupCtx, cfg.Export.CleanupInterval, cfg.Export.Retention)

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
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stopCleanup()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	tel.shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}

// buildService wires the asset source, layouts and the render pipeline
func buildService(cfg *config.Config, tel *telemetryStack, log *zap.Logger) (*agreementapp.Service, error) {
	assets, err := newAssetSource(cfg, log)
	if err != nil {
		return nil, err
	}

	layouts, err := printing.NewLayoutStore(&printing.LayoutStoreConfig{
		ExternalDir: cfg.Layout.Dir,
		DefaultName: cfg.Layout.Default,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	outputs, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
		BasePath: cfg.Export.Dir,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	metrics, err := telemetry.NewAgreementMetrics(telemetry.AgreementMetricsConfig{
		Meter:  tel.meters.Meter("agreement"),
		Logger: log,
	})
	if err != nil {
		return nil, err
	}

	fonts := printing.NewFontResolver(assets, log)
	fonts.OnFallback(metrics.RecordFontFallback)

	log.Info("Agreement pipeline ready",
		zap.String("assets", cfg.Assets.Source),
		zap.String("default_layout", layouts.DefaultName()),
		zap.String("output_dir", cfg.Export.Dir),
	)

	return agreementapp.NewService(agreementapp.ServiceDeps{
		Layouts:   layouts,
		Templates: printing.NewTemplateLoader(assets),
		Fonts:     fonts,
		Renderer:  printing.NewCanvasRenderer(log),
		Exporter: printing.NewDocumentExporter(&printing.DocumentExporterConfig{
			DPI:    cfg.Export.DPI,
			Title:  cfg.Export.Title,
			Logger: log,
		}),
		Storage: outputs,
		Metrics: metrics,
		Logger:  log,
	})
}

func newAssetSource(cfg *config.Config, log *zap.Logger) (printing.AssetSource, error) {
	if cfg.Assets.Source == config.AssetSourceS3 {
		return storage.NewS3AssetSource(&cfg.Assets.S3, storage.WithLogger(log))
	}
	return printing.NewFileSystemAssets(cfg.Assets.Dir), nil
}

// newEngine builds the gin engine with the middleware stack in order:
// request id, recovery, request log, tracing, profiling labels, metrics,
// security headers, CORS, body limit, rate limit
func newEngine(cfg *config.Config, tel *telemetryStack, rateStore cache.RateLimitStore, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled
	tracing.ServiceName = cfg.Telemetry.ServiceName

	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = cfg.Telemetry.ProfilingEnabled

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.TracingWithConfig(tracing))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.ProfilingWithConfig(profiling))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: tel.meters,
		Enabled:       cfg.Telemetry.Enabled,
		Logger:        log,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Store:  rateStore,
			Limit:  cfg.HTTP.RateLimitRequests,
			Window: cfg.HTTP.RateLimitWindow,
			Logger: log,
		}))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.Bool("redis", cfg.Redis.Enabled),
		)
	}

	return engine
}

func routerOptions(cfg *config.Config) []router.RouterOption {
	opts := []router.RouterOption{
		router.WithSwagger(middleware.SwaggerConfig{
			Enabled:    cfg.HTTP.SwaggerEnabled,
			AllowedIPs: cfg.HTTP.SwaggerAllowedIPs,
		}),
	}
	if cfg.HTTP.StaticDir != "" {
		opts = append(opts, router.WithStaticDir(cfg.HTTP.StaticDir))
	}
	return opts
}

func handlerConfig(cfg *config.Config, log *zap.Logger) handler.AgreementHandlerConfig {
	return handler.AgreementHandlerConfig{
		MaxFieldLength: cfg.HTTP.MaxFieldLength,
		Template:       cfg.Layout.Template,
		Font:           cfg.Layout.Font,
		Logger:         log,
	}
}
