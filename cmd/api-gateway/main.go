package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/business-school/campus-api/api/swagger"
	"github.com/business-school/campus-api/internal/app"
	"github.com/business-school/campus-api/internal/handler"
	"github.com/business-school/campus-api/internal/middleware"
	"github.com/business-school/campus-api/pkg/cache"
	"github.com/business-school/campus-api/pkg/config"
	"github.com/business-school/campus-api/pkg/database"
	"github.com/business-school/campus-api/pkg/logger"
	reqidmiddleware "github.com/business-school/campus-api/pkg/middleware/requestid"
)

// @title Business School Campus API
// @version 1.0.0
// @description Ops surface for the schema, seed and identity bootstrap
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	container, err := app.NewContainer(cfg, db, redisClient, logr)
	if err != nil {
		logr.Fatal("failed to wire services", zap.Error(err))
	}

	if cfg.Bootstrap.RunOnStart {
		if _, err := container.Bootstrap.Run(ctx); err != nil {
			logr.Fatal("bootstrap failed", zap.Error(err))
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(container.Metrics, "/metrics"))

	ops := handler.NewMetricsHandler(container.Metrics, db)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	reports := handler.NewReportHandler(container.Reports)
	api := r.Group("/api/v1")
	api.GET("/reports/standings", reports.Standings)
	api.GET("/reports/standings/export", reports.ExportStandings)

	catalog := handler.NewCatalogHandler(container.Catalog)
	api.GET("/status", catalog.Status)
	api.GET("/departments", catalog.ListDepartments)
	api.GET("/departments/:id", catalog.GetDepartment)
	api.GET("/clubs/:id", catalog.GetClub)
	api.GET("/events", catalog.ListEvents)
	api.GET("/events/:id", catalog.GetEvent)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
}
