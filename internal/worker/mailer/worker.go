package mailerworker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/slotwise/slotwise/internal/jobs"
	"github.com/slotwise/slotwise/internal/mailer"
	"github.com/slotwise/slotwise/pkg/logging"
)

const (
	defaultWorkerCount   = 2
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	maxWaitSeconds       = 20
	maxReceiveBatchSize  = 10
	deleteTimeoutSeconds = 5
)

// JobTracker is the subset of the job store the worker needs. May be nil when
// job tracking is disabled.
type JobTracker interface {
	GetJob(ctx context.Context, jobID string) (*jobs.Record, error)
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
}

// Worker consumes cancellation mail jobs from the queue and sends the emails.
type Worker struct {
	queue  jobs.Queue
	sender mailer.EmailSender
	jobs   JobTracker
	logger *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the SQS long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// NewWorker builds a mail worker. tracker may be nil.
func NewWorker(queue jobs.Queue, sender mailer.EmailSender, tracker JobTracker, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("mailerworker: queue cannot be nil")
	}
	if sender == nil {
		panic("mailerworker: email sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		queue:  queue,
		sender: sender,
		jobs:   tracker,
		logger: logger,
		cfg:    cfg,
	}
}

// Start launches the consumer goroutines. It returns immediately.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("mail worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("mail worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive mail jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg jobs.Message) {
	payload, err := jobs.DecodeCancellation(msg.Body)
	if err != nil {
		// Undecodable messages would redeliver forever.
		w.logger.Error("failed to decode mail job", "error", err, "msg_id", msg.ID)
		w.deleteMessage(context.Background(), msg.ReceiptHandle)
		return
	}

	w.logger.Info("worker processing mail job",
		"job_id", payload.JobID,
		"appointment_id", payload.Appointment.ID,
		"msg_id", msg.ID,
	)

	if w.jobs != nil {
		record, err := w.jobs.GetJob(ctx, payload.JobID)
		if err != nil && !errors.Is(err, jobs.ErrJobNotFound) {
			w.logger.Warn("job status lookup failed", "error", err, "job_id", payload.JobID)
		} else if record != nil && record.Status == jobs.StatusCompleted {
			w.logger.Info("skipping mail job: already completed", "job_id", payload.JobID)
			w.deleteMessage(context.Background(), msg.ReceiptHandle)
			return
		}
	}

	email := mailer.ComposeCancellation(payload)
	if err := w.sender.Send(ctx, email); err != nil {
		w.logger.Error("cancellation mail send failed",
			"error", err,
			"job_id", payload.JobID,
			"appointment_id", payload.Appointment.ID,
		)
		if w.jobs != nil {
			if storeErr := w.jobs.MarkFailed(ctx, payload.JobID, err.Error()); storeErr != nil {
				w.logger.Error("failed to update job status", "error", storeErr, "job_id", payload.JobID)
			}
		}
		// Leave the message for redelivery.
		return
	}

	if w.jobs != nil {
		if storeErr := w.jobs.MarkCompleted(ctx, payload.JobID); storeErr != nil {
			w.logger.Error("failed to update job status", "error", storeErr, "job_id", payload.JobID)
		}
	}
	w.deleteMessage(context.Background(), msg.ReceiptHandle)

	w.logger.Info("cancellation mail sent",
		"job_id", payload.JobID,
		"appointment_id", payload.Appointment.ID,
		"to", payload.Appointment.Provider.Email,
	)
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, deleteTimeoutSeconds*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete mail job message", "error", err)
	}
}
