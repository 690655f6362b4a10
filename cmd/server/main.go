package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shelfsync/backend/internal/application/sync"
	"github.com/shelfsync/backend/internal/infrastructure/cache"
	"github.com/shelfsync/backend/internal/infrastructure/config"
	"github.com/shelfsync/backend/internal/infrastructure/logger"
	"github.com/shelfsync/backend/internal/infrastructure/notion"
	"github.com/shelfsync/backend/internal/infrastructure/persistence"
	"github.com/shelfsync/backend/internal/infrastructure/persistence/models"
	"github.com/shelfsync/backend/internal/infrastructure/shopify"
	"github.com/shelfsync/backend/internal/infrastructure/telemetry"
	"github.com/shelfsync/backend/internal/interfaces/http/handler"
	"github.com/shelfsync/backend/internal/interfaces/http/middleware"
	"github.com/shelfsync/backend/internal/interfaces/http/router"

	"github.com/shelfsync/backend/internal/domain/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ShelfSync Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Schema is managed by cmd/migrate; AutoMigrate covers local development
	if cfg.App.Env != "production" {
		if err := db.DB.AutoMigrate(&models.ShopConnectionModel{}); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
	}

	connectionRepo := persistence.NewGormConnectionRepository(db.DB)

	// Run lock: Redis when configured, process-local otherwise
	var runLock sync.RunLock
	if cfg.Redis.Enabled {
		redisLock, err := cache.NewRedisRunLock(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisLock.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		runLock = redisLock
		log.Info("Using redis run lock",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		runLock = cache.NewInMemoryRunLock()
		log.Info("Using in-memory run lock")
	}

	// Notion source catalog
	notionConfig := notion.NewConfig(cfg.Notion.APIKey, cfg.Notion.DatabaseID)
	notionConfig.APIBaseURL = cfg.Notion.APIBaseURL
	notionConfig.NotionVersion = cfg.Notion.Version
	notionConfig.PageSize = cfg.Notion.PageSize
	notionConfig.MaxPages = cfg.Notion.MaxPages
	notionConfig.TimeoutSeconds = int(cfg.Notion.Timeout.Seconds())
	documentStore, err := notion.NewAdapter(notionConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize notion adapter", zap.Error(err))
	}

	// Shopify platform factory, one adapter per connected store
	platformFactory := shopify.NewFactory(shopify.FactoryOptions{
		APIVersion:     cfg.Shopify.APIVersion,
		APIBaseURL:     cfg.Shopify.APIBaseURL,
		PageSize:       cfg.Shopify.PageSize,
		MaxPages:       cfg.Shopify.MaxPages,
		TimeoutSeconds: int(cfg.Shopify.Timeout.Seconds()),
	}, log)

	syncService := sync.NewService(documentStore, platformFactory, connectionRepo, runLock, log)

	defaultStrategy, err := catalog.ParseStrategy(cfg.Sync.DefaultStrategy)
	if err != nil {
		log.Fatal("Invalid default sync strategy", zap.String("strategy", cfg.Sync.DefaultStrategy))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request ID, recovery, logging, tracing, security,
	// CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Handlers
	systemHandler := handler.NewSystemHandler(db)
	connectionHandler := handler.NewConnectionHandler(connectionRepo)
	productsHandler := handler.NewProductsHandler(documentStore)
	syncHandler := handler.NewSyncHandler(syncService, defaultStrategy, cfg.Sync.RunTimeout)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(systemHandler).
		Register(connectionHandler).
		Register(productsHandler).
		Register(syncHandler).
		Setup()

	// Liveness probe outside the versioned API surface
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Sync runs are served synchronously, so the write timeout must outlast
	// the longest permitted run
	writeTimeout := cfg.HTTP.WriteTimeout
	if cfg.Sync.RunTimeout+30*time.Second > writeTimeout {
		writeTimeout = cfg.Sync.RunTimeout + 30*time.Second
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
