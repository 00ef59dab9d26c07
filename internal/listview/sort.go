package listview

import (
	"cmp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Epoch is the date assumed for records with a missing or unparseable date.
var Epoch = time.Unix(0, 0).UTC()

// ByText compares a string field with Indonesian collation.
func ByText[T any](field func(T) string) Comparator[T] {
	// collate.Collator keeps an internal buffer and is not safe for
	// concurrent use.
	var mu sync.Mutex
	c := collate.New(language.Indonesian)
	return func(a, b T) int {
		mu.Lock()
		defer mu.Unlock()
		return c.CompareString(field(a), field(b))
	}
}

// ByAmount compares the sum of one or more amount fields.
func ByAmount[T any](parts ...func(T) decimal.Decimal) Comparator[T] {
	sum := func(rec T) decimal.Decimal {
		total := decimal.Zero
		for _, p := range parts {
			total = total.Add(p(rec))
		}
		return total
	}
	return func(a, b T) int {
		return sum(a).Cmp(sum(b))
	}
}

// ByInt compares an integer field.
func ByInt[T any](field func(T) int64) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(field(a), field(b))
	}
}

// ByTime compares a timestamp field. Zero times count as Epoch.
func ByTime[T any](field func(T) time.Time) Comparator[T] {
	return func(a, b T) int {
		return orEpoch(field(a)).Compare(orEpoch(field(b)))
	}
}

func orEpoch(t time.Time) time.Time {
	if t.IsZero() {
		return Epoch
	}
	return t
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

var clockLayouts = []string{"15:04", "15:04:05", "15.04"}

// ParseDateTime combines a date string and an optional clock string in loc.
// An unparseable date yields Epoch; an unparseable clock is ignored.
func ParseDateTime(date, clock string, loc *time.Location) time.Time {
	date = strings.TrimSpace(date)
	if date == "" {
		return Epoch
	}
	var d time.Time
	var err error
	for _, layout := range dateLayouts {
		if d, err = time.ParseInLocation(layout, date, loc); err == nil {
			break
		}
	}
	if err != nil {
		return Epoch
	}
	return WithClock(d, clock)
}

// WithClock sets the time of day on d from an "HH:MM" style string.
// d is returned unchanged when clock is empty or invalid.
func WithClock(d time.Time, clock string) time.Time {
	if d.IsZero() {
		return d
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return d
	}
	for _, layout := range clockLayouts {
		c, err := time.Parse(layout, clock)
		if err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, d.Location())
		}
	}
	return d
}
