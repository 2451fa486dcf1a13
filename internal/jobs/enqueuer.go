package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/slotwise/slotwise/internal/appointments"
	"github.com/slotwise/slotwise/pkg/logging"
)

// Enqueuer publishes cancellation mail jobs. It satisfies the appointments
// cancellation enqueuer port.
type Enqueuer struct {
	queue  Queue
	store  *JobStore
	logger *logging.Logger
	tracer trace.Tracer
}

// NewEnqueuer builds an Enqueuer. store may be nil when job tracking is
// disabled.
func NewEnqueuer(queue Queue, store *JobStore, logger *logging.Logger) *Enqueuer {
	if queue == nil {
		panic("jobs: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Enqueuer{
		queue:  queue,
		store:  store,
		logger: logger,
		tracer: otel.Tracer("slotwise.internal.jobs"),
	}
}

// EnqueueCancellation snapshots the canceled appointment onto the queue.
func (e *Enqueuer) EnqueueCancellation(ctx context.Context, job appointments.CancellationJob) error {
	ctx, span := e.tracer.Start(ctx, "jobs.enqueue_cancellation")
	defer span.End()

	payload := CancellationPayload{
		JobID: uuid.NewString(),
		Kind:  KindAppointmentCanceled,
		Appointment: CanceledAppointment{
			ID:         job.AppointmentID,
			Date:       job.Date,
			CanceledAt: job.CanceledAt,
			Client:     Party{Name: job.ClientName, Email: job.ClientEmail},
			Provider:   Party{Name: job.ProviderName, Email: job.ProviderEmail},
		},
	}

	if e.store != nil {
		record := &Record{
			JobID:         payload.JobID,
			AppointmentID: job.AppointmentID,
			Recipient:     job.ProviderEmail,
		}
		if err := e.store.PutPending(ctx, record); err != nil {
			// Tracking is best effort, delivery must not depend on it.
			e.logger.Warn("failed to record pending mail job", "job_id", payload.JobID, "error", err)
		}
	}

	body, err := EncodeCancellation(payload)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := e.queue.Send(ctx, body); err != nil {
		span.RecordError(err)
		return fmt.Errorf("jobs: failed to enqueue cancellation: %w", err)
	}

	e.logger.Info("cancellation mail job enqueued",
		"job_id", payload.JobID,
		"appointment_id", job.AppointmentID)
	return nil
}
