package calendar

import (
	"fmt"
	"time"

	"github.com/Rrens/floorboard/internal/daterange"
)

// DefaultRowCap is how many rows a week cell renders before summarizing the
// rest as "+N more".
const DefaultRowCap = 6

// DaysPerWeek is the number of columns in a week row.
const DaysPerWeek = 7

// Bar is one item's segment within a week.
type Bar struct {
	Item Item `json:"item"`
	Row  int  `json:"row"`
	// ColStart is the 1-based first column; ColSpan is in 1..7.
	ColStart       int  `json:"colStart"`
	ColSpan        int  `json:"colSpan"`
	StartsThisWeek bool `json:"startsThisWeek"`
	EndsThisWeek   bool `json:"endsThisWeek"`
}

// Week is the rendered layout of seven consecutive days.
type Week struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Days  []string `json:"days"`
	// Rows counts every packed row, including hidden ones.
	Rows int   `json:"rows"`
	Bars []Bar `json:"bars"`
	// Hidden is the number of items in rows beyond the cap; More breaks it
	// down per day column.
	Hidden int   `json:"hidden"`
	More   []int `json:"more"`
}

// Month is a month grid: the weeks covering every day of the month.
type Month struct {
	Month string `json:"month"`
	Start string `json:"start"`
	End   string `json:"end"`
	Weeks []Week `json:"weeks"`
}

// WeekStart returns the first day of the week containing day, with weeks
// beginning on first.
func WeekStart(day string, first time.Weekday) (string, error) {
	t, err := daterange.Parse(day)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", day, err)
	}
	back := (int(t.Weekday()) - int(first) + DaysPerWeek) % DaysPerWeek
	return daterange.Format(t.AddDate(0, 0, -back)), nil
}

// LayoutWeek packs the items overlapping the week beginning at weekStart and
// returns their bars. Rows at index >= rowCap are not rendered; their items
// are counted in Hidden and More. A non-positive rowCap means DefaultRowCap.
// report receives items dropped for malformed dates and may be nil.
func LayoutWeek(items []Item, weekStart string, rowCap int, report daterange.Reporter) (Week, error) {
	if !daterange.Valid(weekStart) {
		return Week{}, fmt.Errorf("invalid week start %q", weekStart)
	}
	if rowCap <= 0 {
		rowCap = DefaultRowCap
	}

	w := Window{Start: weekStart, End: daterange.AddDays(weekStart, DaysPerWeek-1)}
	week := Week{
		Start: w.Start,
		End:   w.End,
		Days:  make([]string, DaysPerWeek),
		Bars:  []Bar{},
		More:  make([]int, DaysPerWeek),
	}
	for i := range week.Days {
		week.Days[i] = daterange.AddDays(weekStart, i)
	}

	rows := pack(candidates(items, w, report))
	week.Rows = len(rows)
	for r, row := range rows {
		for _, p := range row {
			// Clipped dates are valid and inside the week.
			first, _ := daterange.DaysBetween(p.start, weekStart)
			last, _ := daterange.DaysBetween(p.end, weekStart)

			if r >= rowCap {
				week.Hidden++
				for d := first; d <= last; d++ {
					week.More[d]++
				}
				continue
			}
			week.Bars = append(week.Bars, Bar{
				Item:           p.item,
				Row:            r,
				ColStart:       first + 1,
				ColSpan:        last - first + 1,
				StartsThisWeek: inWindow(p.item.Start, w),
				EndsThisWeek:   inWindow(p.item.End, w),
			})
		}
	}
	return week, nil
}

// LayoutMonth lays out every week touching month (YYYY-MM). Rows are packed
// per week, so an item may sit on different rows in different weeks.
func LayoutMonth(items []Item, month string, first time.Weekday, rowCap int, report daterange.Reporter) (Month, error) {
	mw, err := ParseMonth(month)
	if err != nil {
		return Month{}, err
	}
	start, err := WeekStart(mw.Start, first)
	if err != nil {
		return Month{}, err
	}

	m := Month{Month: month, Start: mw.Start, End: mw.End}
	for ws := start; ws <= mw.End; ws = daterange.AddDays(ws, DaysPerWeek) {
		week, err := LayoutWeek(items, ws, rowCap, report)
		if err != nil {
			return Month{}, err
		}
		m.Weeks = append(m.Weeks, week)
	}
	return m, nil
}

func inWindow(day string, w Window) bool {
	return day != "" && w.Start <= day && day <= w.End
}
