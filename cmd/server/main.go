package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/quillhq/quill/backend/internal/auth"
	"github.com/quillhq/quill/backend/internal/cache"
	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/handlers"
	"github.com/quillhq/quill/backend/internal/logger"
	"github.com/quillhq/quill/backend/internal/metrics"
	"github.com/quillhq/quill/backend/internal/middleware"
	"github.com/quillhq/quill/backend/internal/storage"
	"github.com/quillhq/quill/backend/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// .env is optional in containerized deployments
	_ = godotenv.Load()

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		panic(err)
	}
	defer logger.Close()

	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.FatalWithFields("JWT_SECRET is required", nil)
	}

	metrics.Initialize()

	// Redis is optional; the rate limiter passes through without it
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		redisClient, err := cache.NewRedisClient(redisHost, os.Getenv("REDIS_PORT"), os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			logger.ErrorWithFields("Redis unavailable, continuing without rate limiting", err)
		} else {
			defer redisClient.Close()
		}
	}

	// Tracing is optional, enabled by OTEL_EXPORTER_OTLP_ENDPOINT
	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "quill-backend",
		Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Enabled:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "",
		SamplingRate: 1.0,
	})
	if err != nil {
		logger.ErrorWithFields("Tracing unavailable, continuing without it", err)
	}
	if tracerProvider != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracerProvider.Shutdown(ctx)
		}()
	}

	uploader, mediaDir := buildUploader()

	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if tracerProvider != nil {
		r.Use(otelgin.Middleware("quill-backend"))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(cors.Default())

	h := handlers.NewHandlers(auth.NewService([]byte(jwtSecret)), uploader)
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("Panic recovered", zap.Any("panic", err))
		h.Recovery(c, err)
	}))

	r.LoadHTMLGlob(getEnvOrDefault("TEMPLATES_GLOB", "web/templates/*.html"))
	if mediaDir != "" {
		r.Static("/media", mediaDir)
	}

	h.RegisterRoutes(r)

	port := getEnvOrDefault("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.InfoWithFields("Server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorWithFields("Forced shutdown", err)
	}
}

// buildUploader picks S3 when AWS_BUCKET is configured, local disk otherwise.
// The second return value is the directory to serve under /media, empty for S3.
func buildUploader() (storage.Uploader, string) {
	if bucket := os.Getenv("AWS_BUCKET"); bucket != "" {
		region := getEnvOrDefault("AWS_REGION", "us-east-1")
		baseURL := getEnvOrDefault("CDN_BASE_URL", "https://"+bucket+".s3.amazonaws.com")
		s3Uploader, err := storage.NewS3Uploader(region, bucket, baseURL)
		if err != nil {
			logger.FatalWithFields("Failed to initialize S3 uploader", err)
		}
		if err := s3Uploader.CheckBucketAccess(context.Background()); err != nil {
			logger.ErrorWithFields("S3 bucket check failed", err)
		}
		return s3Uploader, ""
	}

	mediaDir := getEnvOrDefault("MEDIA_DIR", "media")
	localUploader, err := storage.NewLocalUploader(mediaDir, "/media")
	if err != nil {
		logger.FatalWithFields("Failed to initialize local uploader", err)
	}
	return localUploader, mediaDir
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
