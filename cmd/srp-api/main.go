package main

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/srp-api/internal/handler"
	"github.com/noah-isme/srp-api/internal/repository"
	"github.com/noah-isme/srp-api/internal/router"
	"github.com/noah-isme/srp-api/internal/service"
	"github.com/noah-isme/srp-api/pkg/cache"
	"github.com/noah-isme/srp-api/pkg/config"
	"github.com/noah-isme/srp-api/pkg/database"
	"github.com/noah-isme/srp-api/pkg/logger"
)

// @title Secure Result Platform API
// @version 1.0.0
// @description Examination result management with role based access
// @BasePath /api
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, result caching disabled", "error", err)
			redisClient = nil
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	adminRepo := repository.NewAdminRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	auditSvc := service.NewAuditService(auditRepo, logr)
	authSvc := service.NewAuthService(adminRepo, studentRepo, auditSvc, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, cacheRepo, auditSvc, validate, logr)
	resultSvc := service.NewResultService(resultRepo, studentRepo, cacheRepo, cfg.Cache.ResultTTL, auditSvc, metricsSvc, validate, logr)

	r := router.New(router.Deps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authSvc,
		Metrics: metricsSvc,

		AuthHandler:    handler.NewAuthHandler(authSvc),
		StudentHandler: handler.NewStudentHandler(studentSvc),
		ResultHandler:  handler.NewResultHandler(resultSvc),
		AuditHandler:   handler.NewAuditHandler(auditSvc),
		MetricsHandler: handler.NewMetricsHandler(metricsSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
