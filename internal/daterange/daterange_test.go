package daterange

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVisible(t *testing.T) {
	tests := []struct {
		name   string
		record Range
		query  Query
		want   bool
	}{
		{"open query shows dated record", Range{"2024-01-01", "2024-01-05"}, Query{}, true},
		{"open query shows undated record", Range{}, Query{}, true},
		{"bounded query hides undated record", Range{}, Query{Start: "2024-01-01"}, false},
		{"overlap inside", Range{"2024-01-03", "2024-01-08"}, Query{"2024-01-01", "2024-01-31"}, true},
		{"touching start day counts", Range{"2023-12-20", "2024-01-01"}, Query{"2024-01-01", "2024-01-31"}, true},
		{"touching end day counts", Range{"2024-01-31", "2024-02-10"}, Query{"2024-01-01", "2024-01-31"}, true},
		{"adjacent before is hidden", Range{"2023-12-20", "2023-12-31"}, Query{"2024-01-01", "2024-01-31"}, false},
		{"adjacent after is hidden", Range{"2024-02-01", "2024-02-10"}, Query{"2024-01-01", "2024-01-31"}, false},
		{"record covering whole query", Range{"2023-01-01", "2025-01-01"}, Query{"2024-01-01", "2024-01-31"}, true},
		{"single day record and query", Range{"2024-01-05", "2024-01-05"}, Single("2024-01-05"), true},
		{"start only query", Range{"2024-01-01", "2024-01-05"}, Query{Start: "2024-01-05"}, true},
		{"end only query", Range{"2024-01-10", "2024-01-15"}, Query{End: "2024-01-09"}, false},
		{"record without end is open ended", Range{Start: "2023-06-01"}, Query{"2024-01-01", "2024-01-31"}, true},
		{"record without start is open started", Range{End: "2024-01-01"}, Query{"2024-01-01", "2024-01-31"}, true},
		{"record without start ending before query", Range{End: "2023-12-31"}, Query{"2024-01-01", "2024-01-31"}, false},
		{"reversed record never visible", Range{"2024-01-10", "2024-01-02"}, Query{"2024-01-01", "2024-01-31"}, false},
		{"reversed query matches nothing", Range{"2024-01-01", "2024-01-31"}, Query{"2024-01-10", "2024-01-02"}, false},
		{"malformed record date hidden", Range{"2024-13-01", "2024-12-01"}, Query{"2024-01-01", "2024-01-31"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisible(tt.record, tt.query))
		})
	}
}

func TestFilter_ConcreteScenario(t *testing.T) {
	z1 := Range{"2024-01-01", "2024-01-05"}
	z2 := Range{"2024-01-03", "2024-01-08"}
	z3 := Range{"2024-01-10", "2024-01-12"}

	got := Filter([]Range{z1, z2, z3}, Query{"2024-01-01", "2024-01-31"}, nil)
	assert.Equal(t, []Range{z1, z2, z3}, got)

	got = Filter([]Range{z1, z2, z3}, Single("2024-01-09"), nil)
	assert.Empty(t, got)
}

func TestFilter_ReportsMalformedDates(t *testing.T) {
	var reported []Dated
	report := func(r Dated, err error) {
		assert.Error(t, err)
		reported = append(reported, r)
	}

	bad := Range{"2024-01-xx", "2024-01-05"}
	good := Range{"2024-01-01", "2024-01-05"}

	got := Filter([]Range{bad, good}, Query{Start: "2024-01-01"}, report)
	assert.Equal(t, []Range{good}, got)
	require.Len(t, reported, 1)
	assert.Equal(t, bad, reported[0])

	// Open queries never inspect dates.
	reported = nil
	got = Filter([]Range{bad, good}, Query{}, report)
	assert.Len(t, got, 2)
	assert.Empty(t, reported)
}

// Brute force: a record is visible iff some day inside the test window lies in
// both effective intervals. Generated dates stay inside the window, so
// clamping the sentinels to its edges does not change the answer.
func TestIsVisible_MatchesDayByDayOverlap(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	const span = 60
	rng := rand.New(rand.NewSource(7))

	day := func() string {
		if rng.Intn(6) == 0 {
			return ""
		}
		return Format(base.AddDate(0, 0, rng.Intn(span)))
	}

	for i := 0; i < 20000; i++ {
		r := Range{Start: day(), End: day()}
		q := Query{Start: day(), End: day()}

		assert.Equal(t, sharesDay(base, span, r, q), IsVisible(r, q), "record=%+v query=%+v", r, q)
	}
}

func sharesDay(base time.Time, span int, r Range, q Query) bool {
	if q.Open() {
		return true
	}
	if r.Start == "" && r.End == "" {
		return false
	}
	first, last := Format(base), Format(base.AddDate(0, 0, span-1))
	rs, re := clampTo(r.Start, first), clampTo(r.End, last)
	qs, qe := clampTo(q.Start, first), clampTo(q.End, last)

	for d := 0; d < span; d++ {
		day := Format(base.AddDate(0, 0, d))
		if rs <= day && day <= re && qs <= day && day <= qe {
			return true
		}
	}
	return false
}

func clampTo(s, edge string) string {
	if s == "" {
		return edge
	}
	return s
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("2024-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, Query{Start: "2024-01-01"}, q)
	assert.False(t, q.Open())

	_, err = ParseQuery("2024-1-1", "")
	assert.Error(t, err)

	_, err = ParseQuery("", "2024-02-30")
	assert.Error(t, err)
}

func TestDays(t *testing.T) {
	n, err := DaysBetween("2024-03-01", "2024-02-27")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = DaysBetween("2024-01-01", "2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, -6, n)

	assert.Equal(t, "2024-01-01", AddDays("2023-12-31", 1))
	assert.Equal(t, "garbage", AddDays("garbage", 1))
}
