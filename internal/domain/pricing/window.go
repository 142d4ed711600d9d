package pricing

import (
	"errors"
	"time"

	"campbook/internal/domain/stay"
)

var ErrInvalidWindow = errors.New("window end precedes its start")

// Window is an inclusive range of calendar dates. A yearly window compares
// month and day only and may wrap over the new year (Nov 15 - Feb 15).
type Window struct {
	From   time.Time
	To     time.Time
	Yearly bool
}

func NewWindow(from, to time.Time) (Window, error) {
	w := Window{From: stay.Day(from), To: stay.Day(to)}
	return w, w.validate()
}

func NewYearlyWindow(fromMonth time.Month, fromDay int, toMonth time.Month, toDay int) Window {
	return Window{
		From:   stay.Date(2000, fromMonth, fromDay),
		To:     stay.Date(2000, toMonth, toDay),
		Yearly: true,
	}
}

func (w Window) validate() error {
	if !w.Yearly && w.To.Before(w.From) {
		return ErrInvalidWindow
	}
	return nil
}

func (w Window) Includes(night time.Time) bool {
	n := stay.Day(night)
	if !w.Yearly {
		return !n.Before(w.From) && !n.After(w.To)
	}

	key := monthDay(n)
	from, to := monthDay(w.From), monthDay(w.To)
	if from <= to {
		return key >= from && key <= to
	}
	return key >= from || key <= to
}

func monthDay(t time.Time) int {
	return int(t.Month())*100 + t.Day()
}
