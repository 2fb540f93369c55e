// Package main runs the Party Weaver HTTP server with the live RSVP feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/partyweaver/backend/config"
	"github.com/partyweaver/backend/internal/analytics"
	"github.com/partyweaver/backend/internal/auth"
	"github.com/partyweaver/backend/internal/deliverylogs"
	"github.com/partyweaver/backend/internal/dispatch"
	"github.com/partyweaver/backend/internal/events"
	"github.com/partyweaver/backend/internal/exports"
	"github.com/partyweaver/backend/internal/invites"
	"github.com/partyweaver/backend/internal/messages"
	"github.com/partyweaver/backend/internal/metrics"
	"github.com/partyweaver/backend/internal/middleware"
	"github.com/partyweaver/backend/internal/notify"
	"github.com/partyweaver/backend/internal/policy"
	"github.com/partyweaver/backend/internal/realtime"
	"github.com/partyweaver/backend/internal/rsvp"
	"github.com/partyweaver/backend/pkg/database"
	"github.com/partyweaver/backend/pkg/queue"
	"github.com/partyweaver/backend/pkg/redis"
	"github.com/partyweaver/backend/pkg/response"
	"github.com/partyweaver/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{ApplicationName: "partyweaver-server"}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var exportStore exports.ObjectStore
	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		ExportsBucket:        cfg.AWS.ExportsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	if s3Cfg.Configured() {
		s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			exportStore = s3Client
		}
	}

	reg := prometheus.DefaultRegisterer
	m := metrics.New(reg)
	renderer := messages.NewRenderer(cfg.App.Location())
	mailer, err := notify.NewMailer(cfg.Email, logger)
	if err != nil {
		logger.Fatal("email", zap.Error(err))
	}
	sms := notify.NewSMSSender(cfg.SMS, logger)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, logger)

	// Invitation dispatcher (HTTP function and in-process callers)
	dispatcher := dispatch.NewService(eventRepo, mailer, sms, renderer, dispatch.Config{
		PublicBaseURL: cfg.App.PublicBaseURL,
		EmailFrom:     cfg.Email.From,
		SMSFrom:       cfg.SMS.From,
	}, m, logger)
	dispatchHandler := dispatch.NewHandler(dispatcher, eventRepo, logger)

	// Invites, delivery logs, exports
	deliveryRepo := deliverylogs.NewRepository(pool)
	deliveryHandler := deliverylogs.NewHandler(deliveryRepo, logger)
	inviteRepo := invites.NewRepository(pool)
	inviteHandler := invites.NewHandler(inviteRepo, dispatcher, deliveryRepo, jobQueue, logger)
	exportHandler := exports.NewHandler(inviteRepo, exportStore, logger)

	// RSVP summary (counts, deliveries, live viewers)
	analyticsHandler := analytics.NewHandler(analytics.NewRepository(pool), hub, logger)

	// RSVP (public, token in path)
	rsvpHandler := rsvp.NewHandler(inviteRepo, hub, renderer, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, mailer, renderer, auth.LinkConfig{
		AppBaseURL: cfg.App.AppBaseURL,
		TTL:        cfg.MagicLink.TTL,
		EmailFrom:  cfg.Email.From,
	}, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins, "/functions/"))
	router.Use(middleware.Logger(logger))

	// Health and metrics
	router.GET("/health", func(c *gin.Context) {
		if !rdb.Healthy(c.Request.Context()) || pool.Ping(c.Request.Context()) != nil {
			response.ServiceUnavailable(c, "degraded")
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// HTTP-triggered function (permissive CORS, {success,message} shape). Preflight carries no token.
	fn := router.Group("/functions/v1", middleware.FunctionCORS())
	{
		fn.POST("/send-invitation", middleware.JWT(jwtService), dispatchHandler.SendInvitation)
		fn.OPTIONS("/send-invitation", dispatchHandler.Preflight)
	}

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/magic-link", authHandler.RequestMagicLink)
		authGroup.POST("/magic-link/consume", authHandler.ConsumeMagicLink)
		authGroup.GET("/me", middleware.JWT(jwtService), authHandler.Me)
	}

	rsvpHandler.RegisterRoutes(router)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		eventHandler.RegisterRoutes(api)

		ev := api.Group("/events/:id")
		ev.POST("/invites", events.RequireAccess(eventRepo, policy.ActionInviteGuests), inviteHandler.Create)
		ev.GET("/invites", events.RequireAccess(eventRepo, policy.ActionViewInvites), inviteHandler.List)
		ev.POST("/invites/:inviteId/resend", events.RequireAccess(eventRepo, policy.ActionInviteGuests), inviteHandler.Resend)
		ev.GET("/deliveries", events.RequireAccess(eventRepo, policy.ActionViewInvites), deliveryHandler.ListByEvent)
		ev.POST("/guest-list/export", events.RequireAccess(eventRepo, policy.ActionViewInvites), exportHandler.GuestList)
		ev.GET("/summary", events.RequireAccess(eventRepo, policy.ActionViewInvites), analyticsHandler.Summary)
	}

	// WebSocket (token in query; browsers cannot set Authorization on upgrade)
	router.GET("/events/:id/live",
		middleware.JWTQuery(jwtService),
		events.RequireAccess(eventRepo, policy.ActionViewInvites),
		realtime.ServeWs(hub, logger),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
