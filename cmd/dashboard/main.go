package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ttf-construction/ai-takeoff-api/api/swagger"
	"github.com/ttf-construction/ai-takeoff-api/internal/auth"
	"github.com/ttf-construction/ai-takeoff-api/internal/client"
	"github.com/ttf-construction/ai-takeoff-api/internal/handler"
	"github.com/ttf-construction/ai-takeoff-api/internal/middleware"
	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	"github.com/ttf-construction/ai-takeoff-api/internal/repository"
	"github.com/ttf-construction/ai-takeoff-api/internal/service"
	"github.com/ttf-construction/ai-takeoff-api/pkg/cache"
	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
	"github.com/ttf-construction/ai-takeoff-api/pkg/database"
	"github.com/ttf-construction/ai-takeoff-api/pkg/jobs"
	"github.com/ttf-construction/ai-takeoff-api/pkg/logger"
	corsmiddleware "github.com/ttf-construction/ai-takeoff-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ttf-construction/ai-takeoff-api/pkg/middleware/requestid"
	"github.com/ttf-construction/ai-takeoff-api/pkg/storage"
)

// @title AI Take-Off API
// @version 1.0.0
// @description Construction drawing upload, analysis and take-off history API
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	refresher := auth.NewRefresher(cfg.OAuth, logr)

	var store service.TakeoffStore
	if cfg.Takeoffs.Backend == config.TakeoffBackendPostgres {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("postgres connection failed", "error", err)
		}
		defer db.Close() //nolint:errcheck
		store = repository.NewTakeoffRepository(db)
	} else {
		store = client.NewTakeoffDB(cfg.Takeoffs)
	}

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("exports storage init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	takeoffs := service.NewTakeoffService(store, cfg.Takeoffs.DefaultLimit, files, signer, logr)

	persistQueue := jobs.NewQueue("persist-takeoffs", func(ctx context.Context, job jobs.Job) error {
		record, ok := job.Payload.(*models.TakeOffRecord)
		if !ok {
			return fmt.Errorf("unexpected payload type for job %s", job.ID)
		}
		return takeoffs.Save(ctx, record)
	}, jobs.QueueConfig{
		Workers:    cfg.Takeoffs.PersistQueue.Workers,
		MaxRetries: cfg.Takeoffs.PersistQueue.MaxRetries,
		RetryDelay: cfg.Takeoffs.PersistQueue.RetryDelay,
		Logger:     logr,
	})
	persistQueue.Start(context.Background())
	defer persistQueue.Stop()

	go func() {
		ticker := time.NewTicker(cfg.Exports.CleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := takeoffs.CleanupExports(cfg.Exports.SignedURLTTL); err != nil {
				logr.Sugar().Warnw("exports cleanup failed", "error", err)
			}
		}
	}()

	var cacheSvc *service.CacheService
	if cfg.Directory.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, directory cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Directory.CacheTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	directory := service.NewDirectoryService(client.NewDirectory(cfg.Directory), cacheSvc, cfg.Directory.CacheTTL, logr)
	analyzer := client.NewAnalyzer(cfg.Analyzer)
	driveFactory := func(ctx context.Context, hc *http.Client) (service.DriveUploader, error) {
		return client.NewDrive(ctx, hc, cfg.Drive)
	}
	uploads := service.NewUploadService(driveFactory, analyzer, persistQueue, metrics, logr)
	rewrites := service.NewRewriteService(cfg.OpenAI, logr)

	authHandler := handler.NewAuthHandler(cfg.OAuth, refresher)
	uploadHandler := handler.NewUploadHandler(uploads, cfg.OAuth, refresher, logr)
	takeoffHandler := handler.NewTakeoffHandler(takeoffs)
	rewriteHandler := handler.NewRewriteHandler(rewrites)
	directoryHandler := handler.NewDirectoryHandler(directory)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/session", authHandler.CreateSession)
		api.GET("/auth/session", authHandler.Session)
		api.DELETE("/auth/session", authHandler.DeleteSession)
		api.POST("/auth/refresh", authHandler.Refresh)

		api.POST("/takeoffs", uploadHandler.Upload)
		api.GET("/takeoffs", takeoffHandler.List)
		api.GET("/takeoffs/:id", takeoffHandler.Get)
		api.POST("/takeoffs/:id/enhanced-text", takeoffHandler.UpdateEnhancedText)
		api.POST("/takeoffs/:id/export", takeoffHandler.Export)
		api.GET("/downloads", takeoffHandler.Download)

		api.POST("/rewrite-text", rewriteHandler.Rewrite)

		api.GET("/companies", directoryHandler.Companies)
		api.GET("/jobsites", directoryHandler.Jobsites)

		api.GET("/status", metricsHandler.Status)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "backend", cfg.Takeoffs.Backend)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
