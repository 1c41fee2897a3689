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
	"go.uber.org/zap"

	_ "github.com/safetrack/incident-api/api/swagger"
	"github.com/safetrack/incident-api/internal/handler"
	"github.com/safetrack/incident-api/internal/middleware"
	"github.com/safetrack/incident-api/internal/models"
	"github.com/safetrack/incident-api/internal/repository"
	"github.com/safetrack/incident-api/internal/service"
	"github.com/safetrack/incident-api/pkg/cache"
	"github.com/safetrack/incident-api/pkg/config"
	"github.com/safetrack/incident-api/pkg/database"
	"github.com/safetrack/incident-api/pkg/logger"
	corsmiddleware "github.com/safetrack/incident-api/pkg/middleware/cors"
	reqidmiddleware "github.com/safetrack/incident-api/pkg/middleware/requestid"
	"github.com/safetrack/incident-api/pkg/storage"
)

// @title SafeTrack Incident API
// @version 1.0.0
// @description Incident tracking service: users file, acknowledge, close and annotate incidents
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close()
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	auditSvc := service.NewAuditService(userRepo, logr)
	auditCtx, auditCancel := context.WithCancel(context.Background())
	auditSvc.Start(auditCtx)
	defer func() {
		auditCancel()
		auditSvc.Stop()
	}()

	exportArchive, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export archive", "error", err)
	}
	go cleanupExports(auditCtx, exportArchive, cfg.Export.TTL, logr)

	authSvc := service.NewAuthService(userRepo, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, logr)
	incidentSvc := service.NewIncidentService(incidentRepo, auditSvc, cacheSvc, metricsSvc, exportArchive, nil, logr)
	noteSvc := service.NewNoteService(noteRepo, incidentRepo, cacheSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	incidentHandler := handler.NewIncidentHandler(incidentSvc)
	noteHandler := handler.NewNoteHandler(noteSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/stats", metricsHandler.Stats)

	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)

	auth := middleware.JWT(authSvc)

	r.GET("/users", auth, userHandler.List)

	incidents := r.Group("/incidents", auth)
	{
		incidents.GET("", incidentHandler.List)
		incidents.POST("", incidentHandler.Create)
		incidents.GET("/export", incidentHandler.Export)
		incidents.PUT("/:incidentId", incidentHandler.UpdateTitle)
		incidents.DELETE("/:incidentId", incidentHandler.Delete)
		incidents.POST("/:incidentId/close", incidentHandler.Close)
		incidents.POST("/:incidentId/acknowledge", incidentHandler.Acknowledge)

		incidents.POST("/:incidentId/notes", middleware.Audit(userRepo, models.AuditActionNoteCreate, "note"), noteHandler.Create)
		incidents.PUT("/:incidentId/notes/:noteId", middleware.Audit(userRepo, models.AuditActionNoteUpdate, "note"), noteHandler.Update)
		incidents.DELETE("/:incidentId/notes/:noteId", middleware.Audit(userRepo, models.AuditActionNoteDelete, "note"), noteHandler.Delete)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func cleanupExports(ctx context.Context, archive *storage.LocalStorage, ttl time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := archive.CleanupOlderThan(ttl)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("expired exports removed", "count", len(deleted))
			}
		}
	}
}
