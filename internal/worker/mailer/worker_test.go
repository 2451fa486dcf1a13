package mailerworker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise/internal/appointments"
	"github.com/slotwise/slotwise/internal/jobs"
	"github.com/slotwise/slotwise/internal/mailer"
)

type capturingSender struct {
	mu   sync.Mutex
	sent []mailer.EmailMessage
	err  error
}

func (c *capturingSender) Send(_ context.Context, msg mailer.EmailMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *capturingSender) messages() []mailer.EmailMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]mailer.EmailMessage(nil), c.sent...)
}

type trackingStore struct {
	mu        sync.Mutex
	records   map[string]*jobs.Record
	completed []string
	failed    []string
}

func newTrackingStore() *trackingStore {
	return &trackingStore{records: make(map[string]*jobs.Record)}
}

func (s *trackingStore) GetJob(_ context.Context, jobID string) (*jobs.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[jobID]
	if !ok {
		return nil, jobs.ErrJobNotFound
	}
	return record, nil
}

func (s *trackingStore) MarkCompleted(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, jobID)
	s.records[jobID] = &jobs.Record{JobID: jobID, Status: jobs.StatusCompleted}
	return nil
}

func (s *trackingStore) MarkFailed(_ context.Context, jobID string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, jobID)
	s.records[jobID] = &jobs.Record{JobID: jobID, Status: jobs.StatusFailed, ErrorMessage: errMsg}
	return nil
}

func enqueueSample(t *testing.T, queue jobs.Queue) {
	t.Helper()
	enqueuer := jobs.NewEnqueuer(queue, nil, nil)
	require.NoError(t, enqueuer.EnqueueCancellation(context.Background(), appointments.CancellationJob{
		AppointmentID: 7,
		Date:          time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC),
		CanceledAt:    time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		ClientName:    "Cleo Client",
		ClientEmail:   "cleo@example.com",
		ProviderName:  "Pat Provider",
		ProviderEmail: "pat@example.com",
	}))
}

func runWorkerFor(worker *Worker, d time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	time.Sleep(d)
	cancel()
	worker.Wait()
}

func TestWorkerSendsCancellationMail(t *testing.T) {
	queue := jobs.NewMemoryQueue(8)
	sender := &capturingSender{}
	store := newTrackingStore()
	enqueueSample(t, queue)

	worker := NewWorker(queue, sender, store, nil, WithWorkerCount(1), WithReceiveWaitSeconds(0))
	runWorkerFor(worker, 200*time.Millisecond)

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "pat@example.com", sent[0].To)
	assert.Contains(t, sent[0].Body, "Cleo Client")
	require.Len(t, store.completed, 1)
	assert.Empty(t, store.failed)
}

func TestWorkerMarksFailedOnSendError(t *testing.T) {
	queue := jobs.NewMemoryQueue(8)
	sender := &capturingSender{err: errors.New("smtp timeout")}
	store := newTrackingStore()
	enqueueSample(t, queue)

	worker := NewWorker(queue, sender, store, nil, WithWorkerCount(1), WithReceiveWaitSeconds(0))
	runWorkerFor(worker, 200*time.Millisecond)

	assert.Empty(t, sender.messages())
	require.Len(t, store.failed, 1)
	assert.Empty(t, store.completed)

	record, err := store.GetJob(context.Background(), store.failed[0])
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailed, record.Status)
	assert.Equal(t, "smtp timeout", record.ErrorMessage)
}

func TestWorkerSkipsCompletedJobs(t *testing.T) {
	queue := jobs.NewMemoryQueue(8)
	sender := &capturingSender{}
	store := newTrackingStore()

	payload := jobs.CancellationPayload{
		JobID: "job-dup",
		Kind:  jobs.KindAppointmentCanceled,
		Appointment: jobs.CanceledAppointment{
			ID:       7,
			Client:   jobs.Party{Name: "Cleo Client", Email: "cleo@example.com"},
			Provider: jobs.Party{Name: "Pat Provider", Email: "pat@example.com"},
		},
	}
	require.NoError(t, store.MarkCompleted(context.Background(), "job-dup"))

	body, err := jobs.EncodeCancellation(payload)
	require.NoError(t, err)
	require.NoError(t, queue.Send(context.Background(), body))

	worker := NewWorker(queue, sender, store, nil, WithWorkerCount(1), WithReceiveWaitSeconds(0))
	runWorkerFor(worker, 200*time.Millisecond)

	assert.Empty(t, sender.messages())
}

func TestWorkerDropsPoisonMessages(t *testing.T) {
	queue := jobs.NewMemoryQueue(8)
	sender := &capturingSender{}

	require.NoError(t, queue.Send(context.Background(), "not json"))

	worker := NewWorker(queue, sender, nil, nil, WithWorkerCount(1), WithReceiveWaitSeconds(0))
	runWorkerFor(worker, 200*time.Millisecond)

	assert.Empty(t, sender.messages())
}
