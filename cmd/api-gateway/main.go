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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/contoso-university-api/api/swagger"
	"github.com/noah-isme/contoso-university-api/internal/bootstrap"
	"github.com/noah-isme/contoso-university-api/internal/handler"
	internalmiddleware "github.com/noah-isme/contoso-university-api/internal/middleware"
	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/router"
	"github.com/noah-isme/contoso-university-api/internal/seed"
	"github.com/noah-isme/contoso-university-api/internal/service"
	"github.com/noah-isme/contoso-university-api/pkg/config"
	"github.com/noah-isme/contoso-university-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/contoso-university-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/contoso-university-api/pkg/middleware/requestid"
)

// @title Contoso University API
// @version 1.0.0
// @description Student, course and enrollment records for Contoso University.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()

	store, err := bootstrap.OpenStore(ctx, cfg.Database, metricsSvc.ObserveDBQuery, logr)
	if err != nil {
		logr.Fatal("failed to open school store", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	checks := map[string]handler.HealthCheck{"database": store.Ping}

	listCache, err := bootstrap.OpenCache(ctx, cfg.Cache, cfg.Redis, metricsSvc, logr)
	if err != nil {
		logr.Warn("redis unavailable, list cache disabled", zap.Error(err))
	}
	if listCache != nil {
		defer listCache.Close() //nolint:errcheck
		checks["redis"] = listCache.Ping
	}
	cacheSvc := listCache.Service()

	if cfg.Seed.OnStartup {
		loader := seed.NewLoader(store, logr).OnStudentsChanged(listCache.InvalidateStudents)
		if _, err := loader.Run(ctx); err != nil {
			logr.Fatal("failed to seed sample data", zap.Error(err))
		}
	}

	validate := validator.New()
	students := service.NewStudentService(store.Students(), store, cacheSvc, metricsSvc, validate, logr, cfg.Students.PageSize)
	courses := service.NewCourseService(store.Courses(), store, metricsSvc, validate, logr)
	enrollments := service.NewEnrollmentService(store.Enrollments(), store.Students(), store.Courses(), store, metricsSvc, validate, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	opts := router.Options{APIPrefix: cfg.APIPrefix}
	if cfg.Auth.Enabled {
		tokens := service.NewTokenService(service.TokenConfig{
			Secret:     cfg.Auth.Secret,
			Issuer:     cfg.Auth.Issuer,
			Expiration: cfg.Auth.Expiration,
		})
		opts.Guard = []gin.HandlerFunc{
			internalmiddleware.JWT(tokens),
			internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar),
		}
	}

	router.Register(r, router.Handlers{
		Students:    handler.NewStudentHandler(students, enrollments),
		Courses:     handler.NewCourseHandler(courses, enrollments),
		Enrollments: handler.NewEnrollmentHandler(enrollments),
		Metrics:     handler.NewMetricsHandler(metricsSvc, checks),
	}, opts)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "driver", cfg.Database.Driver, "auth", cfg.Auth.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
