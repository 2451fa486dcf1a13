package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/slotwise/slotwise/internal/users"
	"github.com/slotwise/slotwise/pkg/logging"
)

// listLimit caps how many notifications a provider sees per load.
const listLimit = 20

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, userID int64, limit int64) ([]Notification, error)
	Get(ctx context.Context, id string) (*Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
}

// Service creates and serves provider notifications. It satisfies the
// appointments booking notifier.
type Service struct {
	store  Store
	users  users.Repository
	logger *logging.Logger
	tracer trace.Tracer
}

func NewService(store Store, userRepo users.Repository, logger *logging.Logger) *Service {
	if store == nil {
		panic("notifications: store is required")
	}
	if userRepo == nil {
		panic("notifications: user repository is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:  store,
		users:  userRepo,
		logger: logger,
		tracer: otel.Tracer("slotwise.internal.notifications"),
	}
}

// NotifyBooked records a booking notification for the provider.
func (s *Service) NotifyBooked(ctx context.Context, providerID int64, clientName string, date time.Time) error {
	ctx, span := s.tracer.Start(ctx, "notifications.notify_booked")
	defer span.End()

	n := &Notification{
		UserID:  providerID,
		Content: fmt.Sprintf("New appointment from %s on %s", clientName, date.Format("Monday, January 2 at 3:04 PM")),
	}
	if err := s.store.Create(ctx, n); err != nil {
		span.RecordError(err)
		return fmt.Errorf("notifications: record booking notification: %w", err)
	}
	s.logger.Info("notification created", "notification_id", n.ID, "provider_id", providerID)
	return nil
}

// ListForProvider returns the newest notifications for a provider. Regular
// users are refused.
func (s *Service) ListForProvider(ctx context.Context, userID int64) ([]Notification, error) {
	ctx, span := s.tracer.Start(ctx, "notifications.list_for_provider")
	defer span.End()

	if _, err := s.users.GetProvider(ctx, userID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrNotProvider
		}
		return nil, fmt.Errorf("notifications: verify provider: %w", err)
	}
	return s.store.ListForUser(ctx, userID, listLimit)
}

// MarkRead marks one of the user's own notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID int64, id string) (*Notification, error) {
	ctx, span := s.tracer.Start(ctx, "notifications.mark_read")
	defer span.End()

	n, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrForbidden
	}
	return s.store.MarkRead(ctx, id)
}
