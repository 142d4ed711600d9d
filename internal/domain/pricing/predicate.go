package pricing

import (
	"errors"
	"slices"
	"time"

	"campbook/internal/domain/money"
	"campbook/internal/domain/stay"
)

// Kind names the predicate variant, which is also the rule type.
type Kind string

const (
	KindSeason  Kind = "season"
	KindWeekend Kind = "weekend"
	KindHoliday Kind = "holiday"
	KindEvent   Kind = "event"
	KindDemand  Kind = "demand"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindSeason, KindWeekend, KindHoliday, KindEvent, KindDemand:
		return true
	default:
		return false
	}
}

var (
	ErrNoWeekdays        = errors.New("weekend predicate needs at least one weekday")
	ErrNoHolidayDates    = errors.New("holiday predicate needs at least one date")
	ErrMissingName       = errors.New("predicate name is required")
	ErrInvalidOccupancy  = errors.New("demand threshold must be between 0 and 100%")
	ErrUnknownPredicate  = errors.New("unknown predicate kind")
	ErrMissingPredicate  = errors.New("rule predicate is required")
)

// Night is the evaluation context of a single calendar night.
type Night struct {
	Date time.Time
	// Occupancy is the share of the site class already allocated that night.
	Occupancy money.Bps
}

// Predicate is the closed set of rule conditions. Every variant lives in
// this package.
type Predicate interface {
	Kind() Kind
	Includes(n Night) bool
	validate() error
	clone() Predicate
}

type SeasonPredicate struct {
	Window Window
}

func (p SeasonPredicate) Kind() Kind            { return KindSeason }
func (p SeasonPredicate) Includes(n Night) bool { return p.Window.Includes(n.Date) }
func (p SeasonPredicate) validate() error       { return p.Window.validate() }
func (p SeasonPredicate) clone() Predicate      { return p }

// WeekendPredicate matches nights starting on the listed weekdays.
type WeekendPredicate struct {
	Days []time.Weekday
}

func (p WeekendPredicate) Kind() Kind { return KindWeekend }

func (p WeekendPredicate) Includes(n Night) bool {
	return slices.Contains(p.Days, n.Date.Weekday())
}

func (p WeekendPredicate) clone() Predicate {
	return WeekendPredicate{Days: slices.Clone(p.Days)}
}

func (p WeekendPredicate) validate() error {
	if len(p.Days) == 0 {
		return ErrNoWeekdays
	}
	return nil
}

type HolidayPredicate struct {
	Name  string
	Dates []time.Time
}

func (p HolidayPredicate) Kind() Kind { return KindHoliday }

func (p HolidayPredicate) Includes(n Night) bool {
	d := stay.Day(n.Date)
	for _, h := range p.Dates {
		if stay.Day(h).Equal(d) {
			return true
		}
	}
	return false
}

func (p HolidayPredicate) clone() Predicate {
	return HolidayPredicate{Name: p.Name, Dates: slices.Clone(p.Dates)}
}

func (p HolidayPredicate) validate() error {
	if p.Name == "" {
		return ErrMissingName
	}
	if len(p.Dates) == 0 {
		return ErrNoHolidayDates
	}
	return nil
}

type EventPredicate struct {
	Name   string
	Window Window
}

func (p EventPredicate) Kind() Kind            { return KindEvent }
func (p EventPredicate) Includes(n Night) bool { return p.Window.Includes(n.Date) }

func (p EventPredicate) clone() Predicate { return p }

func (p EventPredicate) validate() error {
	if p.Name == "" {
		return ErrMissingName
	}
	return p.Window.validate()
}

// DemandPredicate matches once class occupancy reaches MinOccupancy,
// optionally restricted to a window.
type DemandPredicate struct {
	MinOccupancy money.Bps
	Window       *Window
}

func (p DemandPredicate) Kind() Kind { return KindDemand }

func (p DemandPredicate) Includes(n Night) bool {
	if p.Window != nil && !p.Window.Includes(n.Date) {
		return false
	}
	return n.Occupancy >= p.MinOccupancy
}

func (p DemandPredicate) clone() Predicate {
	if p.Window == nil {
		return p
	}
	w := *p.Window
	return DemandPredicate{MinOccupancy: p.MinOccupancy, Window: &w}
}

func (p DemandPredicate) validate() error {
	if !p.MinOccupancy.IsValidRatio() {
		return ErrInvalidOccupancy
	}
	if p.Window != nil {
		return p.Window.validate()
	}
	return nil
}
