package daterange

import "time"

// Parse reads a YYYY-MM-DD date as midnight UTC.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// Format renders t's calendar day.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// AddDays shifts a valid date by n days. Invalid input is returned unchanged.
func AddDays(s string, n int) string {
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return Format(t.AddDate(0, 0, n))
}

// DaysBetween returns the whole days from base to s (negative when s is
// earlier). Both dates must be valid.
func DaysBetween(s, base string) (int, error) {
	a, err := Parse(s)
	if err != nil {
		return 0, err
	}
	b, err := Parse(base)
	if err != nil {
		return 0, err
	}
	return int(a.Sub(b).Hours() / 24), nil
}
