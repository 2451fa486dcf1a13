package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slotwise/slotwise/cmd/mainconfig"
	"github.com/slotwise/slotwise/internal/api/router"
	"github.com/slotwise/slotwise/internal/app/bootstrap"
	"github.com/slotwise/slotwise/internal/appointments"
	"github.com/slotwise/slotwise/internal/audit"
	appconfig "github.com/slotwise/slotwise/internal/config"
	"github.com/slotwise/slotwise/internal/jobs"
	"github.com/slotwise/slotwise/internal/notifications"
	"github.com/slotwise/slotwise/internal/observability/metrics"
	"github.com/slotwise/slotwise/internal/stats"
	"github.com/slotwise/slotwise/internal/users"
	mailerworker "github.com/slotwise/slotwise/internal/worker/mailer"
	"github.com/slotwise/slotwise/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting slotwise API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	sqlDB := stdlib.OpenDBFromPool(dbPool)
	defer sqlDB.Close()

	userRepo := users.NewPostgresRepository(dbPool)
	apptRepo := appointments.NewPostgresRepository(dbPool)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Error("redis is required for notifications")
		os.Exit(1)
	}
	defer redisClient.Close()
	notificationService := notifications.NewService(bootstrap.BuildNotificationStore(redisClient), userRepo, logger)

	var queue jobs.Queue
	var jobStore *jobs.JobStore
	var inlineWorker *mailerworker.Worker
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.UseMemoryQueue {
		memQueue := jobs.NewMemoryQueue(128)
		queue = memQueue
		// No SQS available, consume cancellation mail inline.
		sender := bootstrap.BuildEmailSender(cfg, nil, logger)
		inlineWorker = mailerworker.NewWorker(memQueue, sender, nil, logger,
			mailerworker.WithWorkerCount(cfg.WorkerCount),
			mailerworker.WithReceiveWaitSeconds(cfg.QueueWaitSeconds),
		)
		inlineWorker.Start(workerCtx)
		logger.Info("inline mail worker started", "workers", cfg.WorkerCount)
	} else {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		queue = jobs.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CancellationQueueURL)
		jobStore = jobs.NewJobStore(dynamodb.NewFromConfig(awsCfg), cfg.MailJobsTable, logger)
	}
	enqueuer := jobs.NewEnqueuer(queue, jobStore, logger)

	bookingMetrics := metrics.NewBookingMetrics(nil)

	appointmentService := appointments.NewService(appointments.ServiceConfig{
		Repo:        apptRepo,
		Users:       userRepo,
		Notifier:    notificationService,
		Enqueuer:    enqueuer,
		Auditor:     audit.NewService(sqlDB),
		WindowHours: int(cfg.CancellationWindow.Hours()),
		PageSize:    cfg.PageSize,
		Metrics:     bookingMetrics,
		Logger:      logger,
	})

	statsHandler := stats.NewHandler(stats.NewRepository(dbPool), userRepo, logger)

	r := router.New(&router.Config{
		Logger:               logger,
		AppointmentsHandler:  appointments.NewHandler(appointmentService, logger),
		NotificationsHandler: notifications.NewHandler(notificationService, logger),
		StatsHandler:         statsHandler,
		MetricsHandler:       promhttp.Handler(),
		AuthSecret:           cfg.AuthJWTSecret,
		CORSAllowedOrigins:   bootstrap.ParseOrigins(cfg.CORSAllowedOrigins),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if inlineWorker != nil {
		stopWorker()
		inlineWorker.Wait()
	}

	logger.Info("server stopped")
}
