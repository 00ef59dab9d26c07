package listview

import (
	"errors"
	"time"
)

var (
	ErrRangeInverted = errors.New("start date must not be after end date")
	ErrRangeFuture   = errors.New("end date must not be after today")
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a day within the range. Zero times
// are never contained.
func (r DateRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	start := startOfDay(r.Start)
	end := startOfDay(r.End).AddDate(0, 0, 1)
	t = t.In(start.Location())
	return !t.Before(start) && t.Before(end)
}

// Validate checks a custom range before any request is made: the start
// may not follow the end and the end may not be later than today.
func (r DateRange) Validate(now time.Time) error {
	start := startOfDay(r.Start)
	end := startOfDay(r.End)
	if start.After(end) {
		return ErrRangeInverted
	}
	if end.After(startOfDay(now.In(end.Location()))) {
		return ErrRangeFuture
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
