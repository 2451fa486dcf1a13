package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/slotwise/slotwise/internal/observability/metrics"
	"github.com/slotwise/slotwise/internal/schedule"
	"github.com/slotwise/slotwise/internal/users"
	"github.com/slotwise/slotwise/pkg/logging"
)

var tracer = otel.Tracer("slotwise.internal.appointments")

// Notifier records a provider-facing notification for a new booking.
type Notifier interface {
	NotifyBooked(ctx context.Context, providerID int64, clientName string, date time.Time) error
}

// CancellationEnqueuer submits a cancellation mail job to the work queue.
// Submission is synchronous; job execution is not awaited.
type CancellationEnqueuer interface {
	EnqueueCancellation(ctx context.Context, job CancellationJob) error
}

// Auditor records lifecycle events for the audit trail. Recording is best
// effort and never fails the operation.
type Auditor interface {
	AppointmentCreated(ctx context.Context, appointmentID, userID, providerID int64, date time.Time) error
	AppointmentCanceled(ctx context.Context, appointmentID, userID int64, canceledAt time.Time) error
}

// Service drives the appointment lifecycle: requested, active, canceled.
type Service struct {
	repo        Repository
	usersRepo   users.Repository
	checker     *Checker
	notifier    Notifier
	enqueuer    CancellationEnqueuer
	auditor     Auditor
	windowHours int
	pageSize    int
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
	now         func() time.Time
}

// ServiceConfig collects the service's collaborators.
type ServiceConfig struct {
	Repo        Repository
	Users       users.Repository
	Notifier    Notifier
	Enqueuer    CancellationEnqueuer
	Auditor     Auditor
	WindowHours int
	PageSize    int
	Metrics     *metrics.BookingMetrics
	Logger      *logging.Logger
}

// NewService constructs an appointments service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Repo == nil {
		panic("appointments: repository required")
	}
	if cfg.Users == nil {
		panic("appointments: users repository required")
	}
	if cfg.WindowHours <= 0 {
		cfg.WindowHours = 2
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		repo:        cfg.Repo,
		usersRepo:   cfg.Users,
		checker:     NewChecker(cfg.Repo),
		notifier:    cfg.Notifier,
		enqueuer:    cfg.Enqueuer,
		auditor:     cfg.Auditor,
		windowHours: cfg.WindowHours,
		pageSize:    cfg.PageSize,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Book validates and creates an appointment, then records the provider's
// notification. The appointment survives a notification failure, but the
// failure propagates so the caller can observe the partial state.
func (s *Service) Book(ctx context.Context, userID int64, req *BookRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("slotwise.user_id", userID),
		attribute.Int64("slotwise.provider_id", req.ProviderID),
	)

	if err := req.Validate(); err != nil {
		s.metrics.ObserveBooking("invalid")
		return nil, err
	}
	if req.ProviderID == userID {
		s.metrics.ObserveBooking("invalid_provider")
		return nil, ErrInvalidProvider
	}

	provider, err := s.usersRepo.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			s.metrics.ObserveBooking("invalid_provider")
			return nil, ErrInvalidProvider
		}
		span.RecordError(err)
		return nil, err
	}

	slot := schedule.StartOfHour(req.Date)
	now := s.now()
	if schedule.IsPast(slot, now) {
		s.metrics.ObserveBooking("past_date")
		return nil, ErrPastDate
	}

	available, err := s.checker.CheckAvailability(ctx, provider.ID, slot)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !available {
		s.metrics.ObserveBooking("slot_taken")
		return nil, ErrSlotTaken
	}

	appt, err := s.repo.Create(ctx, &Appointment{
		UserID:     userID,
		ProviderID: provider.ID,
		Date:       slot,
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			// Lost the unique-index race to a concurrent booking.
			s.metrics.ObserveBooking("slot_taken")
			return nil, ErrSlotTaken
		}
		span.RecordError(err)
		return nil, err
	}
	summary := provider.Summary()
	appt.Provider = &summary
	s.metrics.ObserveBooking("created")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"user_id", userID,
		"provider_id", provider.ID,
		"date", slot,
	)
	if s.auditor != nil {
		if err := s.auditor.AppointmentCreated(ctx, appt.ID, userID, provider.ID, slot); err != nil {
			s.logger.Warn("audit record failed", "appointment_id", appt.ID, "error", err)
		}
	}

	if s.notifier != nil {
		client, err := s.usersRepo.GetByID(ctx, userID)
		if err != nil {
			span.RecordError(err)
			s.metrics.ObserveNotifyFailure()
			return appt, fmt.Errorf("appointments: load client for notification: %w", err)
		}
		if err := s.notifier.NotifyBooked(ctx, provider.ID, client.Name, slot); err != nil {
			span.RecordError(err)
			s.metrics.ObserveNotifyFailure()
			return appt, fmt.Errorf("appointments: notify provider: %w", err)
		}
	}

	return appt, nil
}

// Cancel marks the caller's appointment canceled and enqueues the
// cancellation mail job. Only the owner may cancel, only once, and only
// while now is still ahead of the cancellation window.
func (s *Service) Cancel(ctx context.Context, userID, appointmentID int64) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("slotwise.user_id", userID),
		attribute.Int64("slotwise.appointment_id", appointmentID),
	)

	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.UserID != userID {
		s.metrics.ObserveCancellation("forbidden")
		return nil, ErrForbidden
	}
	if appt.Canceled() {
		s.metrics.ObserveCancellation("already_canceled")
		return nil, ErrAlreadyCanceled
	}

	now := s.now()
	if !now.Before(schedule.HoursBefore(appt.Date, s.windowHours)) {
		s.metrics.ObserveCancellation("window_closed")
		return nil, ErrCancellationWindow
	}

	canceled, err := s.repo.Cancel(ctx, appointmentID, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveCancellation("canceled")
	s.logger.Info("appointment canceled",
		"appointment_id", canceled.ID,
		"user_id", userID,
		"date", canceled.Date,
	)
	if s.auditor != nil {
		if err := s.auditor.AppointmentCanceled(ctx, canceled.ID, userID, now); err != nil {
			s.logger.Warn("audit record failed", "appointment_id", canceled.ID, "error", err)
		}
	}

	if s.enqueuer != nil {
		job, err := s.buildCancellationJob(ctx, canceled)
		if err != nil {
			span.RecordError(err)
			s.metrics.ObserveMailJob("failed")
			return canceled, err
		}
		if err := s.enqueuer.EnqueueCancellation(ctx, job); err != nil {
			span.RecordError(err)
			s.metrics.ObserveMailJob("failed")
			return canceled, fmt.Errorf("appointments: enqueue cancellation mail: %w", err)
		}
		s.metrics.ObserveMailJob("enqueued")
	}

	return canceled, nil
}

func (s *Service) buildCancellationJob(ctx context.Context, appt *Appointment) (CancellationJob, error) {
	client, err := s.usersRepo.GetByID(ctx, appt.UserID)
	if err != nil {
		return CancellationJob{}, fmt.Errorf("appointments: load client for cancellation mail: %w", err)
	}
	provider, err := s.usersRepo.GetByID(ctx, appt.ProviderID)
	if err != nil {
		return CancellationJob{}, fmt.Errorf("appointments: load provider for cancellation mail: %w", err)
	}
	return CancellationJob{
		AppointmentID: appt.ID,
		Date:          appt.Date,
		CanceledAt:    *appt.CanceledAt,
		ClientName:    client.Name,
		ClientEmail:   client.Email,
		ProviderName:  provider.Name,
		ProviderEmail: provider.Email,
	}, nil
}

// List returns a page of the user's active appointments, date ascending,
// annotated with derived flags.
func (s *Service) List(ctx context.Context, userID int64, page int) ([]View, error) {
	if page < 1 {
		page = 1
	}
	appts, err := s.repo.ListByUser(ctx, userID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]View, 0, len(appts))
	for _, appt := range appts {
		views = append(views, View{
			Appointment: appt,
			Past:        appt.Past(now),
			Cancellable: appt.Cancellable(now, s.windowHours),
		})
	}
	return views, nil
}

// ListSchedule returns a provider's own active appointments within the
// calendar day containing at. Only providers may call it.
func (s *Service) ListSchedule(ctx context.Context, providerID int64, at time.Time) ([]*Appointment, error) {
	if _, err := s.usersRepo.GetProvider(ctx, providerID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrNotProvider
		}
		return nil, err
	}

	from := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	return s.repo.ListByProviderRange(ctx, providerID, from, from.AddDate(0, 0, 1))
}
