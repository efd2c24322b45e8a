package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"analytics-service/config"
	"analytics-service/controllers"
	"analytics-service/database"
	apperrors "analytics-service/errors"
	"analytics-service/hooks"
	"analytics-service/logger"
	"analytics-service/middleware"
	"analytics-service/models"
	aws_pkg "analytics-service/pkg/aws"
	"analytics-service/repository"
	"analytics-service/routes"
	"analytics-service/shaper"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	// --- AWS setup ---
	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	var tee io.Writer
	if cfg.CloudWatchLogGroup != "" {
		cwLogs, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, cfg.ServiceName)
		if err != nil {
			log.Printf("CloudWatch Logs disabled: %v", err)
		} else {
			tee = cwLogs
		}
	}

	zapLogger, err := logger.New(cfg.Env, tee)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	metricsClient := aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)

	// --- Database ---
	db, err := database.ConnectPostgres(zapLogger, cfg.PostgresDSN(),
		&models.Term{}, &models.Download{}, &models.DownloadPrice{},
		&models.Payment{}, &models.PaymentItem{},
	)
	if err != nil {
		zapLogger.Fatal("DB connection failed", zap.Error(err))
	}

	// --- Redis (optional) ---
	var redisClient *redis.Client
	var carts controllers.CartLookup
	if redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL); err != nil {
		zapLogger.Warn("Redis unavailable, cart removals will not be tracked", zap.Error(err))
	} else {
		carts = repository.NewRedisCartRepository(redisClient)
	}

	// --- Deferred store and sink ---
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	stores, memStore := buildStores(cfg, redisClient, zapLogger)
	if memStore != nil {
		go memStore.RunSweeper(bgCtx, cfg.DeferredTTL)
	}
	eventSink := buildSink(cfg, awsCfg, zapLogger)

	// --- Hooks ---
	registry := hooks.NewRegistry()
	shaper.New(
		repository.NewGormCatalogRepository(db, cfg.UseSKUs),
		repository.NewGormOrderRepository(db),
		cfg.SingularLabel,
		zapLogger,
	).Register(registry)

	controller := controllers.NewAnalyticsController(registry, stores, carts, eventSink, metricsClient, zapLogger)

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware(metricsClient, cfg.ServiceName))
	r.Use(middleware.RequestLogger(zapLogger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(apperrors.ErrorMiddleware())

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	limiter := middleware.NewRateLimiter(
		rate.Limit(float64(cfg.RateLimitPerMinute)/60),
		cfg.RateLimitBurst,
		10*time.Minute,
	)
	go limiter.RunCleanup(bgCtx)

	routes.RegisterAnalyticsRoutes(r, controller, middleware.VisitorCookie{
		Name:   cfg.VisitorCookie,
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
	}, limiter)

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLogger.Info("Analytics Service started",
			zap.String("port", cfg.Port),
			zap.String("deferred_store", string(stores.Mode())),
			zap.String("sink", string(cfg.SinkType)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server shutdown error", zap.Error(err))
	}
	stopBackground()
	controller.Wait()

	if err := eventSink.Close(); err != nil {
		zapLogger.Error("Sink close error", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zapLogger.Error("Redis close error", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		zapLogger.Error("Database close error", zap.Error(err))
	}
	zapLogger.Info("Shutdown complete")
}
