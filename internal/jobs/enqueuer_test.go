package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise/internal/appointments"
)

type fakeQueue struct {
	sent []string
	err  error
}

func (f *fakeQueue) Send(_ context.Context, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}

func (f *fakeQueue) Receive(_ context.Context, _, _ int) ([]Message, error) {
	return nil, nil
}

func (f *fakeQueue) Delete(_ context.Context, _ string) error {
	return nil
}

func sampleJob() appointments.CancellationJob {
	return appointments.CancellationJob{
		AppointmentID: 7,
		Date:          time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC),
		CanceledAt:    time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		ClientName:    "Cleo Client",
		ClientEmail:   "cleo@example.com",
		ProviderName:  "Pat Provider",
		ProviderEmail: "pat@example.com",
	}
}

func TestEnqueueCancellation(t *testing.T) {
	queue := &fakeQueue{}
	enqueuer := NewEnqueuer(queue, nil, nil)

	require.NoError(t, enqueuer.EnqueueCancellation(context.Background(), sampleJob()))
	require.Len(t, queue.sent, 1)

	payload, err := DecodeCancellation(queue.sent[0])
	require.NoError(t, err)
	assert.NotEmpty(t, payload.JobID)
	assert.Equal(t, KindAppointmentCanceled, payload.Kind)
	assert.Equal(t, int64(7), payload.Appointment.ID)
	assert.Equal(t, "pat@example.com", payload.Appointment.Provider.Email)
	assert.Equal(t, "Cleo Client", payload.Appointment.Client.Name)
}

func TestEnqueueCancellationQueueError(t *testing.T) {
	queue := &fakeQueue{err: errors.New("sqs down")}
	enqueuer := NewEnqueuer(queue, nil, nil)

	err := enqueuer.EnqueueCancellation(context.Background(), sampleJob())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enqueue cancellation")
}

func TestDecodeCancellationRejectsOtherKinds(t *testing.T) {
	_, err := DecodeCancellation(`{"job_id":"x","kind":"something.else"}`)
	require.Error(t, err)

	_, err = DecodeCancellation(`{"kind":"appointment.canceled"}`)
	require.Error(t, err)

	_, err = DecodeCancellation(`not json`)
	require.Error(t, err)
}

func TestMemoryQueueRoundTrip(t *testing.T) {
	queue := NewMemoryQueue(8)
	ctx := context.Background()

	require.NoError(t, queue.Send(ctx, "a"))
	require.NoError(t, queue.Send(ctx, "b"))

	messages, err := queue.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "a", messages[0].Body)
	assert.Equal(t, "b", messages[1].Body)
}

func TestMemoryQueueWaitTimeout(t *testing.T) {
	queue := NewMemoryQueue(1)

	start := time.Now()
	messages, err := queue.Receive(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}
