package schedule

import (
	"time"

	"github.com/samber/mo"
)

// startIndexMargin is the backoff applied to the estimated first index in
// the window. Overrides make spacing nonlinear near the window start, so the
// walk begins a few occurrences early and lets the window filter discard
// them.
const startIndexMargin = 3

// WindowOptions bounds an enumeration.
type WindowOptions struct {
	// From and To bound yielded occurrence dates, inclusive, as calendar
	// days. Either may be nil for an open end.
	From *time.Time
	To   *time.Time
	// MaxCount caps the number of yielded occurrences; 0 means
	// DefaultMaxOccurrences. The cap applies regardless of the other bounds.
	MaxCount int
	// CycleCap, when present, is the number of occurrences in the plan;
	// indices at or beyond it are never yielded.
	CycleCap mo.Option[int]
}

// Iterator walks a series' occurrences in ascending index order. It is
// restartable: a fresh Iterate with the same inputs reproduces the same
// sequence, and no cursor survives between iterators.
type Iterator struct {
	series  Series
	opts    WindowOptions
	index   int
	yielded int
	done    bool
}

// Iterate returns an iterator over the occurrences whose dates fall in the
// window. The first candidate index is estimated by inverse projection, so
// windows far from the start need not walk from index 0. The estimate is an
// optimization only: the yielded sequence is identical to scanning from 0.
func (s Series) Iterate(opts WindowOptions) *Iterator {
	if opts.MaxCount <= 0 {
		opts.MaxCount = DefaultMaxOccurrences
	}
	start := 0
	if opts.From != nil && s.frequencyDays >= 1 {
		start = s.estimateStartIndex(*opts.From)
	}
	return &Iterator{series: s, opts: opts, index: start}
}

// estimateStartIndex guesses the first index whose date can reach from.
// Projecting from occurrence 0 alone overshoots when an override pulls later
// dates forward, so every anchor contributes a candidate and the walk starts
// at the smallest one, backed off by startIndexMargin. Undershooting is
// harmless: dates before the window are skipped, never yielded.
func (s Series) estimateStartIndex(from time.Time) int {
	from = StartOfDay(from)
	start := -1
	for _, a := range s.anchors {
		steps := DayDifference(a.Date, from) / s.frequencyDays
		if steps < 0 {
			steps = 0
		}
		candidate := a.Index + steps
		if start == -1 || candidate < start {
			start = candidate
		}
	}
	start -= startIndexMargin
	if start < 0 {
		start = 0
	}
	return start
}

// Next returns the next occurrence in the window, or false once the
// enumeration is exhausted.
func (it *Iterator) Next() (Occurrence, bool) {
	for !it.done {
		if limit, ok := it.opts.CycleCap.Get(); ok && it.index >= limit {
			break
		}
		if it.yielded >= it.opts.MaxCount {
			break
		}
		date := it.series.DateOf(it.index)
		if it.opts.To != nil && date.After(StartOfDay(*it.opts.To)) {
			break
		}
		index := it.index
		it.index++
		// Before the window: skip without stopping, the walk may still
		// reach it.
		if it.opts.From != nil && date.Before(StartOfDay(*it.opts.From)) {
			continue
		}
		it.yielded++
		return Occurrence{Index: index, Date: date}, true
	}
	it.done = true
	return Occurrence{}, false
}

// Collect drains the iterator into a slice.
func (it *Iterator) Collect() []Occurrence {
	var out []Occurrence
	for occ, ok := it.Next(); ok; occ, ok = it.Next() {
		out = append(out, occ)
	}
	return out
}

// OccurrencesWithin enumerates all occurrences in the window eagerly.
func (s Series) OccurrencesWithin(opts WindowOptions) []Occurrence {
	return s.Iterate(opts).Collect()
}
