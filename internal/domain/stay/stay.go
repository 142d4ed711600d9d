package stay

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidRange = errors.New("invalid stay range")

// InvalidRangeError reports a stay whose arrival is not before its
// departure, or which exceeds the configured maximum length.
type InvalidRangeError struct {
	Arrival   time.Time
	Departure time.Time
	MaxNights int
}

func (e *InvalidRangeError) Error() string {
	if e.MaxNights > 0 {
		return fmt.Sprintf("stay %s..%s exceeds the maximum of %d nights",
			e.Arrival.Format(DateLayout), e.Departure.Format(DateLayout), e.MaxNights)
	}
	return fmt.Sprintf("arrival %s must be before departure %s",
		e.Arrival.Format(DateLayout), e.Departure.Format(DateLayout))
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// Stay is the half-open night range [arrival, departure) on UTC calendar dates.
type Stay struct {
	arrival   time.Time
	departure time.Time
}

func New(arrival, departure time.Time) (Stay, error) {
	a, d := Day(arrival), Day(departure)
	if !a.Before(d) {
		return Stay{}, &InvalidRangeError{Arrival: a, Departure: d}
	}
	return Stay{arrival: a, departure: d}, nil
}

func MustNew(arrival, departure time.Time) Stay {
	s, err := New(arrival, departure)
	if err != nil {
		panic(err)
	}
	return s
}

func Parse(arrival, departure string) (Stay, error) {
	a, err := time.Parse(DateLayout, arrival)
	if err != nil {
		return Stay{}, fmt.Errorf("parse arrival: %w", err)
	}
	d, err := time.Parse(DateLayout, departure)
	if err != nil {
		return Stay{}, fmt.Errorf("parse departure: %w", err)
	}
	return New(a, d)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s Stay) Arrival() time.Time   { return s.arrival }
func (s Stay) Departure() time.Time { return s.departure }
func (s Stay) IsZero() bool         { return s.arrival.IsZero() && s.departure.IsZero() }

func (s Stay) Nights() int {
	return int(s.departure.Sub(s.arrival).Hours() / 24)
}

// Dates lists every night of the stay, arrival first.
func (s Stay) Dates() []time.Time {
	out := make([]time.Time, 0, s.Nights())
	for d := s.arrival; d.Before(s.departure); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func (s Stay) Contains(night time.Time) bool {
	n := Day(night)
	return !n.Before(s.arrival) && n.Before(s.departure)
}

func (s Stay) Overlaps(o Stay) bool {
	return s.arrival.Before(o.departure) && o.arrival.Before(s.departure)
}

func (s Stay) CheckMaxNights(maxNights int) error {
	if maxNights > 0 && s.Nights() > maxNights {
		return &InvalidRangeError{Arrival: s.arrival, Departure: s.departure, MaxNights: maxNights}
	}
	return nil
}

func (s Stay) String() string {
	return s.arrival.Format(DateLayout) + ".." + s.departure.Format(DateLayout)
}
