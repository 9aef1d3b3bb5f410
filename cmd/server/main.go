package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"guardian-audit-service/internal/adapters/primary/http/handlers"
	"guardian-audit-service/internal/adapters/primary/http/middleware"
	"guardian-audit-service/internal/adapters/secondary/localfs"
	"guardian-audit-service/internal/adapters/secondary/mlscorer"
	"guardian-audit-service/internal/adapters/secondary/pdf"
	"guardian-audit-service/internal/adapters/secondary/postgres"
	"guardian-audit-service/internal/config"
	"guardian-audit-service/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	if err := postgres.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Secondary adapters
	modelRepo := postgres.NewModelRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	artifactStore, err := localfs.NewStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatalf("init artifact store: %v", err)
	}

	scorerClient := mlscorer.NewScorerClient(&cfg.MLScorer)
	reportRenderer := pdf.NewRenderer()

	// Core services
	auditSvc := services.NewAuditService(auditRepo, modelRepo, scorerClient, cfg.MLScorer.Timeout)
	modelSvc := services.NewModelService(modelRepo, artifactStore)
	userSvc := services.NewUserService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	reportSvc := services.NewReportService(auditRepo, reportRenderer)

	// Primary adapter
	h := handlers.New(auditSvc, modelSvc, userSvc, reportSvc)
	auth := middleware.NewAuth(cfg.Auth.JWTSecret)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api")
	h.RegisterRoutes(api, auth)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
