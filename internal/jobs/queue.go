package jobs

import "context"

// Queue is the transport for asynchronous cancellation work. Implemented by
// SQSQueue in deployment and MemoryQueue in development and tests.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Message is one queued item as seen by a consumer.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}
