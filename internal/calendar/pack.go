// Package calendar packs date-ranged records into non-overlapping display rows
// and lays them out as week and month grids.
package calendar

import (
	"fmt"
	"sort"

	"github.com/Rrens/floorboard/internal/daterange"
)

// Item is a record placed on the calendar.
type Item struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// DateRange implements daterange.Dated.
func (i Item) DateRange() (string, string) {
	return i.Start, i.End
}

// Window is an inclusive range of days being rendered.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Valid reports whether both bounds are real dates in order.
func (w Window) Valid() bool {
	return daterange.Valid(w.Start) && daterange.Valid(w.End) && w.Start <= w.End
}

// placed is an item with its interval clipped to the window.
type placed struct {
	item       Item
	start, end string
}

// candidates returns the items intersecting w with their intervals clipped to
// it, in input order. Items with no dates, malformed dates or reversed ranges
// are dropped; malformed ones are passed to report, which may be nil.
func candidates(items []Item, w Window, report daterange.Reporter) []placed {
	if !w.Valid() {
		return nil
	}
	q := daterange.Query{Start: w.Start, End: w.End}

	out := make([]placed, 0, len(items))
	for _, it := range daterange.Filter(items, q, report) {
		start, end := it.Start, it.End
		if start == "" || start < w.Start {
			start = w.Start
		}
		if end == "" || end > w.End {
			end = w.End
		}
		out = append(out, placed{item: it, start: start, end: end})
	}
	return out
}

// pack assigns each candidate to the lowest row it fits in. Candidates are
// stable-sorted by start, so a row only needs its last end to test for a
// clash: every earlier member ends before it.
func pack(cands []placed) [][]placed {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].start < cands[j].start
	})

	var rows [][]placed
	for _, c := range cands {
		row := -1
		for r := range rows {
			last := rows[r][len(rows[r])-1]
			if !daterange.Overlaps(last.start, last.end, c.start, c.end) {
				row = r
				break
			}
		}
		if row < 0 {
			rows = append(rows, nil)
			row = len(rows) - 1
		}
		rows[row] = append(rows[row], c)
	}
	return rows
}

// PackRows assigns the items intersecting w to display rows so that no two
// items in a row share a day. The row count equals the largest number of
// items covering any single day of the window. Output is deterministic for a
// given input order.
func PackRows(items []Item, w Window) [][]Item {
	rows := pack(candidates(items, w, nil))
	out := make([][]Item, len(rows))
	for i, row := range rows {
		out[i] = make([]Item, len(row))
		for j, p := range row {
			out[i][j] = p.item
		}
	}
	return out
}

// MaxOverlap returns the largest number of items in w covering one day. An
// invalid window has none.
func MaxOverlap(items []Item, w Window) int {
	if !w.Valid() {
		return 0
	}
	cands := candidates(items, w, nil)
	best := 0
	for day := w.Start; day <= w.End; {
		n := 0
		for _, c := range cands {
			if c.start <= day && day <= c.end {
				n++
			}
		}
		if n > best {
			best = n
		}
		// 9999-12-31 is the last day with a four-digit year.
		next := daterange.AddDays(day, 1)
		if next <= day {
			break
		}
		day = next
	}
	return best
}

// ParseMonth validates a YYYY-MM month and returns its window.
func ParseMonth(month string) (Window, error) {
	t, err := daterange.Parse(month + "-01")
	if err != nil || len(month) != len("2006-01") {
		return Window{}, fmt.Errorf("invalid month %q", month)
	}
	return Window{
		Start: daterange.Format(t),
		End:   daterange.Format(t.AddDate(0, 1, -1)),
	}, nil
}
