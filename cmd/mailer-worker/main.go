package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/slotwise/slotwise/cmd/mainconfig"
	"github.com/slotwise/slotwise/internal/app/bootstrap"
	appconfig "github.com/slotwise/slotwise/internal/config"
	"github.com/slotwise/slotwise/internal/jobs"
	mailerworker "github.com/slotwise/slotwise/internal/worker/mailer"
	"github.com/slotwise/slotwise/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting slotwise mail worker",
		"env", cfg.Env,
		"workers", cfg.WorkerCount,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("mail worker failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *appconfig.Config, logger *logging.Logger) error {
	if cfg.UseMemoryQueue {
		return fmt.Errorf("mail worker cannot run when USE_MEMORY_QUEUE=true; run inline workers via the API process instead")
	}
	if cfg.CancellationQueueURL == "" {
		return fmt.Errorf("CANCELLATION_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	queue := jobs.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CancellationQueueURL)
	jobStore := jobs.NewJobStore(dynamodb.NewFromConfig(awsCfg), cfg.MailJobsTable, logger)
	sender := bootstrap.BuildEmailSender(cfg, sesv2.NewFromConfig(awsCfg), logger)

	worker := mailerworker.NewWorker(queue, sender, jobStore, logger,
		mailerworker.WithWorkerCount(cfg.WorkerCount),
		mailerworker.WithReceiveWaitSeconds(cfg.QueueWaitSeconds),
	)
	worker.Start(ctx)

	<-ctx.Done()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("mail worker stopped")
	case <-doneCtx.Done():
		logger.Error("mail worker shutdown timed out", "error", doneCtx.Err())
	}

	return nil
}
