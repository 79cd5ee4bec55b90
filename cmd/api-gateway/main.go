package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/degree-audit-api/api/swagger"
	"github.com/noah-isme/degree-audit-api/internal/fixtures"
	"github.com/noah-isme/degree-audit-api/internal/handler"
	internalmiddleware "github.com/noah-isme/degree-audit-api/internal/middleware"
	"github.com/noah-isme/degree-audit-api/internal/migrate"
	"github.com/noah-isme/degree-audit-api/internal/repository"
	"github.com/noah-isme/degree-audit-api/internal/service"
	"github.com/noah-isme/degree-audit-api/pkg/cache"
	"github.com/noah-isme/degree-audit-api/pkg/config"
	"github.com/noah-isme/degree-audit-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/degree-audit-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/degree-audit-api/pkg/middleware/requestid"
)

// @title Degree Audit API
// @version 1.0.0
// @description Transcript building, remote degree audits and report tree editing.
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
	if cfg.Sessions.TokenSecret == "" || (cfg.Env == config.EnvProduction && cfg.Sessions.TokenSecret == config.DefaultTokenSecret) {
		logr.Fatal("SESSION_TOKEN_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Audit.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("audit cache disabled, redis unavailable", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "degree-audit", logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()
	store := repository.NewSessionRepository()
	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.Sessions.TokenSecret, TTL: cfg.Sessions.TokenTTL})
	normalizer := migrate.New(migrate.Options{EnforceFailingCredit: cfg.Normalizer.EnforceFailingCredit})
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Audit.CacheTTL, logr, redisClient != nil)

	sessions := service.NewSessionService(store, tokens, metrics, logr, service.SessionServiceConfig{
		IdleTTL:         cfg.Sessions.IdleTTL,
		CleanupInterval: cfg.Sessions.CleanupInterval,
	})
	audits := service.NewAuditService(store, service.NewAuditClient(cfg.Audit.BaseURL, cfg.Audit.Timeout), normalizer, cacheSvc, metrics, logr, service.AuditServiceConfig{
		Workers:  cfg.Audit.Workers,
		CacheTTL: cfg.Audit.CacheTTL,
	})
	transcripts := service.NewTranscriptService(store, fixtures.NewLoader(cfg.Fixtures.SampleTranscriptPath), validate, logr)
	reports := service.NewReportService(store, metrics, validate, logr)
	exchange := service.NewExchangeService(store, normalizer, nil, nil, metrics, logr)

	audits.Start(ctx)
	sessions.StartCleanup(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics"))

	probes := map[string]handler.ReadinessProbe{}
	if redisClient != nil {
		probes["redis"] = cacheRepo
	}
	ops := handler.NewMetricsHandler(metrics, probes)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	r.GET("/metrics/summary", ops.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handler.Handlers{
		Sessions:   handler.NewSessionHandler(sessions, audits),
		Transcript: handler.NewTranscriptHandler(transcripts),
		Reports:    handler.NewReportHandler(reports),
		Courses:    handler.NewCourseHandler(service.NewCourseTextService(validate)),
		Exchange:   handler.NewExchangeHandler(exchange),
	}, internalmiddleware.SessionToken(tokens))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "audit_url", cfg.Audit.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown", zap.Error(err))
	}
	audits.Stop()
}
