// Package daterange decides which dated records fall inside a query range.
//
// Dates are ISO YYYY-MM-DD strings. The format is fixed-width and
// zero-padded, so lexicographic order equals chronological order and the
// overlap test compares strings directly. The empty string means "absent".
package daterange

import (
	"fmt"
	"time"
)

// Layout is the only accepted date format.
const Layout = "2006-01-02"

// Sentinels substituted for a missing bound.
const (
	MinDate = "0000-00-00"
	MaxDate = "9999-12-31"
)

// Dated is implemented by anything carrying an optional inclusive date range.
type Dated interface {
	DateRange() (start, end string)
}

// Range is a plain inclusive date range; either side may be empty.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DateRange implements Dated.
func (r Range) DateRange() (string, string) {
	return r.Start, r.End
}

// Query is the user's filter. A query with neither bound is open.
type Query struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Open reports whether the query has no bounds.
func (q Query) Open() bool {
	return q.Start == "" && q.End == ""
}

// Bounds returns the effective inclusive interval of q.
func (q Query) Bounds() (string, string) {
	return orMin(q.Start), orMax(q.End)
}

// Single returns a query covering exactly one day.
func Single(day string) Query {
	return Query{Start: day, End: day}
}

// ParseQuery validates raw start and end parameters.
func ParseQuery(start, end string) (Query, error) {
	if start != "" && !Valid(start) {
		return Query{}, fmt.Errorf("invalid start date %q", start)
	}
	if end != "" && !Valid(end) {
		return Query{}, fmt.Errorf("invalid end date %q", end)
	}
	return Query{Start: start, End: end}, nil
}

// Valid reports whether s is a real calendar date in YYYY-MM-DD form.
func Valid(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Reporter receives records excluded because a present date is malformed.
type Reporter func(record Dated, err error)

// IsVisible reports whether record should be shown for q.
//
// An open query shows everything. A bounded query hides records with no
// dates at all; a record missing one side is unbounded on that side. Ranges
// whose end precedes their start are empty and never visible.
func IsVisible(record Dated, q Query) bool {
	return visible(record, q, nil)
}

// Filter returns the records of in that are visible for q, preserving order.
// report may be nil.
func Filter[T Dated](in []T, q Query, report Reporter) []T {
	out := make([]T, 0, len(in))
	for _, r := range in {
		if visible(r, q, report) {
			out = append(out, r)
		}
	}
	return out
}

func visible(record Dated, q Query, report Reporter) bool {
	if q.Open() {
		return true
	}

	start, end := record.DateRange()
	if start == "" && end == "" {
		return false
	}
	if err := checkDates(start, end); err != nil {
		if report != nil {
			report(record, err)
		}
		return false
	}

	qStart, qEnd := q.Bounds()
	rStart, rEnd := orMin(start), orMax(end)
	if rEnd < rStart || qEnd < qStart {
		return false
	}
	return rStart <= qEnd && rEnd >= qStart
}

// Overlaps reports whether two fully-dated closed ranges share a day.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart <= bEnd && aEnd >= bStart
}

func checkDates(start, end string) error {
	if start != "" && !Valid(start) {
		return fmt.Errorf("malformed start date %q", start)
	}
	if end != "" && !Valid(end) {
		return fmt.Errorf("malformed end date %q", end)
	}
	return nil
}

func orMin(s string) string {
	if s == "" {
		return MinDate
	}
	return s
}

func orMax(s string) string {
	if s == "" {
		return MaxDate
	}
	return s
}
