package appointments

import (
	"context"
	"time"
)

// Checker decides whether a provider/slot pair is bookable. The check is a
// read, not a reservation: concurrent creates for the same slot are settled
// by the persistence layer's uniqueness guarantee, which the repository
// surfaces as ErrSlotTaken.
type Checker struct {
	repo Repository
}

// NewChecker creates an availability checker over the repository.
func NewChecker(repo Repository) *Checker {
	if repo == nil {
		panic("appointments: repository required")
	}
	return &Checker{repo: repo}
}

// CheckAvailability reports whether the slot at the normalized date is free.
// Canceled appointments do not block a slot.
func (c *Checker) CheckAvailability(ctx context.Context, providerID int64, date time.Time) (bool, error) {
	taken, err := c.repo.ExistsActive(ctx, providerID, date)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
