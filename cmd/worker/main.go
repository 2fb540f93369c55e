// Package main runs the background job worker (manual invitation resends).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/partyweaver/backend/config"
	"github.com/partyweaver/backend/internal/deliverylogs"
	"github.com/partyweaver/backend/internal/dispatch"
	"github.com/partyweaver/backend/internal/events"
	"github.com/partyweaver/backend/internal/invites"
	"github.com/partyweaver/backend/internal/messages"
	"github.com/partyweaver/backend/internal/metrics"
	"github.com/partyweaver/backend/internal/notify"
	"github.com/partyweaver/backend/internal/worker"
	"github.com/partyweaver/backend/pkg/database"
	"github.com/partyweaver/backend/pkg/queue"
	"github.com/partyweaver/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{ApplicationName: "partyweaver-worker"}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	mailer, err := notify.NewMailer(cfg.Email, logger)
	if err != nil {
		logger.Fatal("email", zap.Error(err))
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	dispatcher := dispatch.NewService(
		events.NewRepository(pool),
		mailer,
		notify.NewSMSSender(cfg.SMS, logger),
		messages.NewRenderer(cfg.App.Location()),
		dispatch.Config{
			PublicBaseURL: cfg.App.PublicBaseURL,
			EmailFrom:     cfg.Email.From,
			SMSFrom:       cfg.SMS.From,
		},
		m, logger,
	)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewInvitationProcessor(
		invites.NewRepository(pool),
		dispatcher,
		deliverylogs.NewRepository(pool),
		jobQueue,
		logger,
	)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started", zap.String("queue", queue.QueueInvitations))

	// Metrics only; the worker serves no API.
	metricsSrv := &http.Server{Addr: ":" + cfg.Server.WorkerMetricsPort, Handler: promhttp.Handler()}
	if cfg.Server.WorkerMetricsPort != "" {
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(worker.JobTimeout + worker.DeadLetterTimeout):
		logger.Warn("worker did not finish the in-flight job before shutdown")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	_ = metricsSrv.Shutdown(shutdownCtx)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
