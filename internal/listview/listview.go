// Package listview derives the visible page of an in-memory record
// collection from a search term, equality filters, a sort key and a page
// number. Every admin list (orders, reservations, customers, menu, staff,
// packages, reviews) is a Spec over its own record type.
//
// Derivation is pure: the source slice is never modified and malformed
// records degrade to zero values instead of failing.
package listview

import (
	"slices"
	"strings"
	"time"
)

// All is the filter value meaning "no constraint".
const All = "all"

// DefaultPageSize is used when neither the query nor the spec sets one.
const DefaultPageSize = 10

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort selects a comparator by field name and a direction.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// ParseSort accepts either a bare field ("name", ascending) or a combined
// key such as "date_desc" / "total_asc".
func ParseSort(s string) Sort {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Sort{}
	}
	if i := strings.LastIndexByte(s, '_'); i > 0 {
		switch d := Direction(s[i+1:]); d {
		case Asc, Desc:
			return Sort{Field: s[:i], Direction: d}
		}
	}
	return Sort{Field: s, Direction: Asc}
}

// String renders the combined key form, e.g. "date_desc".
func (s Sort) String() string {
	if s.Field == "" {
		return ""
	}
	return s.Field + "_" + string(s.dir())
}

func (s Sort) dir() Direction {
	if s.Direction == Desc {
		return Desc
	}
	return Asc
}

// Filters maps a filter name to the selected value. Missing, empty and
// "all" values are inactive.
type Filters map[string]string

// Active reports whether the named filter constrains the result.
func (f Filters) Active(name string) bool {
	v, ok := f[name]
	return ok && v != "" && v != All
}

// Query is the user-controlled state of one list screen.
type Query struct {
	Search   string     `json:"search"`
	Filters  Filters    `json:"filters"`
	Sort     Sort       `json:"sort"`
	Range    *DateRange `json:"range,omitempty"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// Result is the derived view. Page is the effective page used for slicing,
// which is 1 whenever the requested page fell outside [1, max(TotalPages,1)].
// TotalPages is 0 when nothing matched.
type Result[T any] struct {
	Filtered   []T `json:"-"`
	Paged      []T `json:"data"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

// Comparator orders two records; negative means a sorts before b.
type Comparator[T any] func(a, b T) int

// Filter is an exact-match predicate over one record field. When Resolve is
// set the selected value is first mapped (for example a category id to its
// name); an unresolvable value matches nothing.
type Filter[T any] struct {
	Field   func(T) string
	Resolve func(value string) (string, bool)
}

// Spec configures derivation for one record type.
type Spec[T any] struct {
	// Search lists the string fields a search term is matched against.
	Search []func(T) string
	// Filters are keyed by the query filter name.
	Filters map[string]Filter[T]
	// Sorts are keyed by Sort.Field.
	Sorts map[string]Comparator[T]
	// DateField is used by Query.Range. Records with a zero date are
	// excluded while a range is active.
	DateField   func(T) time.Time
	DefaultSort Sort
	PageSize    int
}

// Derive filters, sorts and paginates source according to q.
func (s Spec[T]) Derive(source []T, q Query) Result[T] {
	term := strings.ToLower(q.Search)

	var preds []func(T) bool
	blocked := false
	for name, f := range s.Filters {
		if !q.Filters.Active(name) {
			continue
		}
		want := q.Filters[name]
		if f.Resolve != nil {
			resolved, ok := f.Resolve(want)
			if !ok {
				blocked = true
				break
			}
			want = resolved
		}
		field := f.Field
		preds = append(preds, func(rec T) bool { return field(rec) == want })
	}
	if q.Range != nil && s.DateField != nil {
		rng := *q.Range
		field := s.DateField
		preds = append(preds, func(rec T) bool { return rng.Contains(field(rec)) })
	}

	filtered := make([]T, 0, len(source))
	if !blocked {
	records:
		for _, rec := range source {
			if !s.matches(rec, term) {
				continue
			}
			for _, p := range preds {
				if !p(rec) {
					continue records
				}
			}
			filtered = append(filtered, rec)
		}
	}

	if cmp := s.comparator(q.Sort); cmp != nil {
		slices.SortStableFunc(filtered, cmp)
	}

	size := q.PageSize
	if size <= 0 {
		size = s.PageSize
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(filtered)
	totalPages := (total + size - 1) / size
	page := q.Page
	if page < 1 || page > max(totalPages, 1) {
		page = 1
	}

	start := min((page-1)*size, total)
	end := min(start+size, total)

	return Result[T]{
		Filtered:   filtered,
		Paged:      slices.Clone(filtered[start:end]),
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   size,
	}
}

func (s Spec[T]) matches(rec T, term string) bool {
	if term == "" {
		return true
	}
	for _, field := range s.Search {
		if strings.Contains(strings.ToLower(field(rec)), term) {
			return true
		}
	}
	return false
}

func (s Spec[T]) comparator(sort Sort) Comparator[T] {
	if sort.Field == "" {
		sort = s.DefaultSort
	}
	cmp, ok := s.Sorts[sort.Field]
	if !ok {
		return nil
	}
	if sort.dir() == Desc {
		return func(a, b T) int { return cmp(b, a) }
	}
	return cmp
}
