package schedule

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

// scanFromZero is the reference enumeration: a plain walk from index 0 with
// no start-index estimation. The iterator must always match it.
func scanFromZero(s Series, opts WindowOptions) []Occurrence {
	maxCount := opts.MaxCount
	if maxCount <= 0 {
		maxCount = DefaultMaxOccurrences
	}
	var out []Occurrence
	for index := 0; ; index++ {
		if limit, ok := opts.CycleCap.Get(); ok && index >= limit {
			break
		}
		if len(out) >= maxCount {
			break
		}
		date := s.DateOf(index)
		if opts.To != nil && date.After(StartOfDay(*opts.To)) {
			break
		}
		if opts.From != nil && date.Before(StartOfDay(*opts.From)) {
			continue
		}
		out = append(out, Occurrence{Index: index, Date: date})
	}
	return out
}

func window(t *testing.T, from, to string) WindowOptions {
	t.Helper()
	f := mustDate(t, from)
	u := mustDate(t, to)
	return WindowOptions{From: &f, To: &u}
}

func TestIterate_WindowBounds(t *testing.T) {
	series := NewSeries(mustDate(t, "2025-01-01"), 14, nil)
	opts := window(t, "2025-02-01", "2025-03-31")

	got := series.OccurrencesWithin(opts)
	require.NotEmpty(t, got)

	from := StartOfDay(*opts.From)
	to := StartOfDay(*opts.To)
	prev := time.Time{}
	for _, occ := range got {
		assert.False(t, occ.Date.Before(from), "occurrence %d before window", occ.Index)
		assert.False(t, occ.Date.After(to), "occurrence %d after window", occ.Index)
		if !prev.IsZero() {
			assert.True(t, occ.Date.After(prev), "dates must ascend strictly")
		}
		prev = occ.Date
	}
}

func TestIterate_CycleCap(t *testing.T) {
	series := NewSeries(mustDate(t, "2025-01-01"), 14, nil)
	opts := window(t, "2025-01-01", "2025-12-31")
	opts.CycleCap = mo.Some(6)

	got := series.OccurrencesWithin(opts)
	require.Len(t, got, 6)
	for _, occ := range got {
		assert.Less(t, occ.Index, 6)
	}
}

func TestIterate_MaxCountGuard(t *testing.T) {
	series := NewSeries(mustDate(t, "2025-01-01"), 1, nil)
	opts := window(t, "2025-01-01", "2030-12-31")
	opts.MaxCount = 10

	got := series.OccurrencesWithin(opts)
	assert.Len(t, got, 10)
}

func TestIterate_MatchesScanFromZero(t *testing.T) {
	start := mustDate(t, "2020-01-01")

	tests := []struct {
		name      string
		frequency int
		overrides []Override
		opts      WindowOptions
	}{
		{
			name:      "window far from start",
			frequency: 14,
			opts:      window(t, "2025-06-01", "2025-09-30"),
		},
		{
			name:      "window before start",
			frequency: 14,
			opts:      window(t, "2019-01-01", "2019-06-30"),
		},
		{
			name:      "window straddling start",
			frequency: 7,
			opts:      window(t, "2019-12-15", "2020-02-15"),
		},
		{
			name:      "override near window boundary",
			frequency: 14,
			overrides: []Override{{Index: 140, Date: mustDate(t, "2025-06-20")}},
			opts:      window(t, "2025-06-01", "2025-08-31"),
		},
		{
			name:      "pathological far-future override with small index",
			frequency: 14,
			overrides: []Override{{Index: 2, Date: mustDate(t, "2026-01-10")}},
			opts:      window(t, "2026-01-01", "2026-03-31"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := NewSeries(start, tt.frequency, tt.overrides)
			assert.Equal(t, scanFromZero(series, tt.opts), series.OccurrencesWithin(tt.opts))
		})
	}
}

func TestIterate_Restartable(t *testing.T) {
	series := NewSeries(mustDate(t, "2025-01-01"), 14, []Override{
		{Index: 1, Date: mustDate(t, "2025-01-20")},
	})
	opts := window(t, "2025-01-01", "2025-06-30")

	first := series.Iterate(opts).Collect()
	second := series.Iterate(opts).Collect()
	assert.Equal(t, first, second)

	// An exhausted iterator stays exhausted.
	it := series.Iterate(opts)
	it.Collect()
	_, ok := it.Next()
	assert.False(t, ok)
}

// The no-override series is plain DAILY;INTERVAL=f recurrence, so rrule
// serves as an independent oracle for the linear path.
func TestIterate_AgreesWithRRule(t *testing.T) {
	start := mustDate(t, "2025-01-01")
	series := NewSeries(start, 14, nil)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: 14,
		Count:    12,
		Dtstart:  start,
	})
	require.NoError(t, err)
	want := r.All()

	opts := window(t, "2025-01-01", "2025-12-31")
	opts.MaxCount = 12
	got := series.OccurrencesWithin(opts)

	require.Len(t, got, len(want))
	for i, occ := range got {
		assert.True(t, SameCalendarDay(want[i], occ.Date), "occurrence %d", i)
	}
}
