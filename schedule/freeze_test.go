package schedule

import (
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreezePastOccurrences(t *testing.T) {
	series := NewSeries(mustDate(t, "2025-01-01"), 14, nil)

	tests := []struct {
		name   string
		cutoff string
		cap    mo.Option[int]
		want   []Override
	}{
		{
			name:   "cutoff before start freezes nothing",
			cutoff: "2024-12-31",
			cap:    mo.None[int](),
			want:   nil,
		},
		{
			name:   "cutoff on an occurrence includes it",
			cutoff: "2025-01-15",
			cap:    mo.None[int](),
			want: []Override{
				{Index: 0, Date: mustDate(t, "2025-01-01")},
				{Index: 1, Date: mustDate(t, "2025-01-15")},
			},
		},
		{
			name:   "cutoff between occurrences stops at the elapsed one",
			cutoff: "2025-01-20",
			cap:    mo.None[int](),
			want: []Override{
				{Index: 0, Date: mustDate(t, "2025-01-01")},
				{Index: 1, Date: mustDate(t, "2025-01-15")},
			},
		},
		{
			name:   "cycle cap bounds the walk",
			cutoff: "2025-12-31",
			cap:    mo.Some(3),
			want: []Override{
				{Index: 0, Date: mustDate(t, "2025-01-01")},
				{Index: 1, Date: mustDate(t, "2025-01-15")},
				{Index: 2, Date: mustDate(t, "2025-01-29")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FreezePastOccurrences(series, mustDate(t, tt.cutoff), tt.cap))
		})
	}
}

func TestFreezeThenFrequencyChange(t *testing.T) {
	// Freeze under the original 14-day series as of 2025-01-20, then switch
	// to 21 days: #0 and #1 keep their historical dates, #2 extrapolates
	// from the last frozen anchor with the new frequency.
	old := NewSeries(mustDate(t, "2025-01-01"), 14, nil)
	frozen := FreezePastOccurrences(old, mustDate(t, "2025-01-20"), mo.None[int]())
	merged := MergeOverrides(nil, frozen)

	updated := NewSeries(mustDate(t, "2025-01-01"), 21, merged)
	assert.Equal(t, "2025-01-01", FormatISODate(updated.DateOf(0)))
	assert.Equal(t, "2025-01-15", FormatISODate(updated.DateOf(1)))
	assert.Equal(t, "2025-02-05", FormatISODate(updated.DateOf(2)))
}

func TestFreezeIdempotence(t *testing.T) {
	series := NewSeries(mustDate(t, "2025-01-01"), 14, nil)
	cutoff := mustDate(t, "2025-02-20")

	first := FreezePastOccurrences(series, cutoff, mo.None[int]())
	once := MergeOverrides(nil, first)

	// Freezing again under the pinned series with the same cutoff changes
	// nothing: every past occurrence already resolves to its pinned date.
	pinned := NewSeries(mustDate(t, "2025-01-01"), 14, once)
	second := FreezePastOccurrences(pinned, cutoff, mo.None[int]())
	twice := MergeOverrides(once, second)

	require.Equal(t, once, twice)
}

func TestMergeOverrides(t *testing.T) {
	existing := []Override{
		{Index: 1, Date: mustDate(t, "2025-01-18")},
		{Index: 4, Date: mustDate(t, "2025-03-01")},
	}
	additions := []Override{
		{Index: 1, Date: mustDate(t, "2025-01-20")}, // addition wins
		{Index: 2, Date: mustDate(t, "2025-02-05")},
	}

	got := MergeOverrides(existing, additions)
	want := []Override{
		{Index: 1, Date: mustDate(t, "2025-01-20")},
		{Index: 2, Date: mustDate(t, "2025-02-05")},
		{Index: 4, Date: mustDate(t, "2025-03-01")},
	}
	assert.Equal(t, want, got)
}

func TestUpsertOverride(t *testing.T) {
	overrides := UpsertOverride(nil, Override{Index: 1, Date: mustDate(t, "2025-01-20")})
	require.Len(t, overrides, 1)

	// Same index: the new write replaces the old one.
	overrides = UpsertOverride(overrides, Override{Index: 1, Date: mustDate(t, "2025-01-22")})
	require.Len(t, overrides, 1)
	assert.Equal(t, "2025-01-22", FormatISODate(overrides[0].Date))

	series := NewSeries(mustDate(t, "2025-01-01"), 14, overrides)
	assert.Equal(t, "2025-01-22", FormatISODate(series.DateOf(1)))
	assert.Equal(t, "2025-02-05", FormatISODate(series.DateOf(2)))
}
