package quote

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"campbook/internal/domain/stay"

	"github.com/google/uuid"
)

var (
	ErrUnavailable        = errors.New("site is not available for the requested stay")
	ErrSiteInactive       = errors.New("site is inactive")
	ErrInvalidGuests      = errors.New("guest count is not admitted by the site class")
	ErrIncompleteSnapshot = errors.New("catalog snapshot is incomplete")
)

// AvailabilityError lists the requested nights that are already allocated.
type AvailabilityError struct {
	SiteID uuid.UUID
	Nights []time.Time
}

func (e *AvailabilityError) Error() string {
	dates := make([]string, len(e.Nights))
	for i, n := range e.Nights {
		dates[i] = n.Format(stay.DateLayout)
	}
	return fmt.Sprintf("site %s is unavailable on %s", e.SiteID, strings.Join(dates, ", "))
}

func (e *AvailabilityError) Is(target error) bool {
	return target == ErrUnavailable
}

type GuestCountError struct {
	Guests       int
	MaxOccupancy int
}

func (e *GuestCountError) Error() string {
	return fmt.Sprintf("%d guests requested, site class admits 1 to %d", e.Guests, e.MaxOccupancy)
}

func (e *GuestCountError) Is(target error) bool {
	return target == ErrInvalidGuests
}
