package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shipshape/internal/core/domain"
	"shipshape/internal/core/services"
	handlers "shipshape/internal/handlers/http"
	"shipshape/internal/infrastructure/analysis"
	"shipshape/internal/infrastructure/audit"
	"shipshape/internal/infrastructure/middleware"
	"shipshape/internal/infrastructure/monitoring"
	"shipshape/internal/infrastructure/pipeline"
	"shipshape/internal/infrastructure/ratelimit"
	"shipshape/internal/infrastructure/realtime"
	"shipshape/internal/infrastructure/repositories"
	"shipshape/pkg/config"
	"shipshape/pkg/logger"
	"shipshape/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func loadConfig() *config.Config {
	configPaths := []string{
		"configs/config.yaml",
		"./config.yaml",
		"/etc/shipshape/config.yaml",
	}
	for _, path := range configPaths {
		if cfg, err := config.Load(path); err == nil {
			log.Printf("loaded config from %s", path)
			return cfg
		}
	}
	log.Printf("no config file found, using defaults")
	return config.DefaultConfig()
}

func main() {
	cfg := loadConfig()

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "shipshape",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		sugar.Fatalw("tracing init failed", "error", err)
	}

	factory, err := repositories.NewFactory(cfg, sugar)
	if err != nil {
		sugar.Fatalw("repository factory init failed", "error", err)
	}
	defer factory.Close()

	surveyRepo := factory.SurveyRepository()
	subscriptionRepo := factory.SubscriptionRepository()
	userRepo := factory.UserRepository()

	collector := monitoring.NewCollector()
	auditSink := audit.NewZapSink(sugar)

	tokenService := services.NewTokenService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	entitlementService := services.NewEntitlementService(subscriptionRepo, auditSink, sugar)

	hub := realtime.NewHub(sugar, collector)
	wsServer := realtime.NewWebSocketServer(hub, tokenService, realtime.Options{
		PingInterval:      cfg.Realtime.PingInterval,
		PongTimeout:       cfg.Realtime.PongTimeout,
		WriteTimeout:      cfg.Realtime.WriteTimeout,
		SendBufferSize:    cfg.Realtime.SendBufferSize,
		MaxMessageBytes:   cfg.Realtime.MaxMessageBytes,
		MessagesPerSecond: cfg.Realtime.MessagesPerSecond,
		MessageBurst:      cfg.Realtime.MessageBurst,
	}, collector, sugar)

	surveyService := services.NewSurveyService(surveyRepo, hub, auditSink, sugar)
	analyzer := analysis.NewClient(cfg.Analysis.Endpoint, cfg.Analysis.Timeout, sugar)

	limiter := ratelimit.NewLimiter(map[domain.Plan]ratelimit.Policy{
		domain.PlanProfessional: {
			Window: cfg.RateLimiting.Professional.Window,
			Limit:  cfg.RateLimiting.Professional.Limit,
		},
		domain.PlanEnterprise: {
			Window: cfg.RateLimiting.Enterprise.Window,
			Limit:  cfg.RateLimiting.Enterprise.Limit,
		},
	})

	router := gin.New()
	router.Use(middleware.Recovery(sugar))
	if cfg.Tracing.Enabled {
		router.Use(middleware.Tracing())
	}
	if cfg.Monitoring.PrometheusEnabled {
		router.Use(middleware.RequestMetrics(collector))
	}
	router.Use(middleware.ErrorHandler(sugar))

	// Public surface: auth, health, metrics, realtime upgrade. The
	// websocket endpoint authenticates during the upgrade itself.
	public := router.Group("/api/v1")
	handlers.NewAuthHandler(tokenService, userRepo).SetupRoutes(public)

	router.GET("/health", monitoring.HealthHandler(
		func() error { return factory.HealthCheck(context.Background()) },
		hub.SessionCount,
	))
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	router.GET("/ws", gin.WrapF(wsServer.HandleWebSocket))

	// Protected surface: identity, then rate limiting, then the
	// subscription gate.
	stages := []pipeline.Stage{pipeline.Identity(tokenService)}
	if cfg.RateLimiting.Enabled {
		stages = append(stages, pipeline.RateLimit(limiter, entitlementService.PlanFor))
	}
	stages = append(stages, pipeline.Entitlement(entitlementService, domain.PlanProfessional, domain.PlanEnterprise))

	protected := router.Group("/api/v1")
	protected.Use(pipeline.New(sugar, stages...).Handler())
	handlers.NewSurveyHandler(surveyService, analyzer).SetupRoutes(protected)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sugar.Infow("starting shipshape API server", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		sugar.Errorw("server shutdown failed", "error", err)
	}
	if err := tp.Shutdown(ctx); err != nil {
		sugar.Errorw("tracer shutdown failed", "error", err)
	}
}
