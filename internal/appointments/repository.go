package appointments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for appointment storage
type Repository interface {
	// Create persists a new active appointment. Implementations backed by a
	// store with a uniqueness guarantee on (provider_id, date) for active
	// rows must surface a collision as ErrSlotTaken.
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	// ExistsActive reports whether a non-canceled appointment holds the exact
	// (provider, date) slot.
	ExistsActive(ctx context.Context, providerID int64, date time.Time) (bool, error)
	// Cancel sets canceled_at iff it is still null, so racing cancels cannot
	// both win. Returns ErrAlreadyCanceled when the row was canceled already
	// and ErrNotFound when it does not exist.
	Cancel(ctx context.Context, id int64, at time.Time) (*Appointment, error)
	// ListByUser returns the user's non-canceled appointments, date ascending.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Appointment, error)
	// ListByProviderRange returns the provider's non-canceled appointments
	// within [from, to), date ascending.
	ListByProviderRange(ctx context.Context, providerID int64, from, to time.Time) ([]*Appointment, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	appts  map[int64]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{appts: make(map[int64]*Appointment)}
}

// Create persists a new appointment in memory, enforcing slot uniqueness.
func (r *InMemoryRepository) Create(_ context.Context, appt *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appts {
		if existing.ProviderID == appt.ProviderID && existing.CanceledAt == nil && existing.Date.Equal(appt.Date) {
			return nil, ErrSlotTaken
		}
	}

	r.nextID++
	now := time.Now().UTC()
	cp := *appt
	cp.ID = r.nextID
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.appts[cp.ID] = &cp

	out := cp
	return &out, nil
}

// GetByID retrieves an appointment by id
func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

// ExistsActive checks for a non-canceled appointment in the exact slot.
func (r *InMemoryRepository) ExistsActive(_ context.Context, providerID int64, date time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, appt := range r.appts {
		if appt.ProviderID == providerID && appt.CanceledAt == nil && appt.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

// Cancel marks the appointment canceled iff it was not canceled before.
func (r *InMemoryRepository) Cancel(_ context.Context, id int64, at time.Time) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if appt.CanceledAt != nil {
		return nil, ErrAlreadyCanceled
	}
	canceled := at
	appt.CanceledAt = &canceled
	appt.UpdatedAt = at

	cp := *appt
	return &cp, nil
}

// ListByUser lists the user's active appointments, date ascending, paginated.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID int64, limit, offset int) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, appt := range r.appts {
		if appt.UserID == userID && appt.CanceledAt == nil {
			cp := *appt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListByProviderRange lists the provider's active appointments within [from, to).
func (r *InMemoryRepository) ListByProviderRange(_ context.Context, providerID int64, from, to time.Time) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, appt := range r.appts {
		if appt.ProviderID == providerID && appt.CanceledAt == nil &&
			!appt.Date.Before(from) && appt.Date.Before(to) {
			cp := *appt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
