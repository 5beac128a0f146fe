package schedule

import (
	"sort"
	"time"
)

// Series is the anchor series a plan's occurrence dates are computed from:
// the implicit start anchor plus one anchor per override, sorted by index
// with duplicate indices collapsed.
type Series struct {
	anchors       []Anchor
	frequencyDays int
}

// NewSeries builds the anchor series for a start date, frequency and
// override set. Duplicate indices keep the last entry in sort order, which
// makes rebuilding the series from an already-merged override list
// idempotent. frequencyDays must be >= 1; that is the caller's contract.
func NewSeries(startDate time.Time, frequencyDays int, overrides []Override) Series {
	candidates := make([]Anchor, 0, len(overrides)+1)
	candidates = append(candidates, Anchor{Index: 0, Date: StartOfDay(startDate)})
	for _, ov := range overrides {
		candidates = append(candidates, Anchor{Index: ov.Index, Date: StartOfDay(ov.Date)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Index < candidates[j].Index
	})

	anchors := make([]Anchor, 0, len(candidates))
	for _, a := range candidates {
		if n := len(anchors); n > 0 && anchors[n-1].Index == a.Index {
			anchors[n-1] = a
			continue
		}
		anchors = append(anchors, a)
	}
	return Series{anchors: anchors, frequencyDays: frequencyDays}
}

// SeriesFromPlan builds the series for a plan and its current override list.
func SeriesFromPlan(p Plan, overrides []Override) Series {
	return NewSeries(p.StartDate, p.FrequencyDays, overrides)
}

// FrequencyDays returns the interval between consecutive occurrences.
func (s Series) FrequencyDays() int {
	return s.frequencyDays
}

// Anchors returns a copy of the sorted, deduplicated anchor list.
func (s Series) Anchors() []Anchor {
	return append([]Anchor(nil), s.anchors...)
}

// DateOf computes the calendar date of the given occurrence index: the most
// recent anchor at or before the index, extrapolated linearly by frequency.
// Anchors are sorted, so the scan stops at the first anchor past the target.
func (s Series) DateOf(index int) time.Time {
	anchor := s.anchors[0]
	for _, a := range s.anchors {
		if a.Index > index {
			break
		}
		anchor = a
	}
	return AddDays(anchor.Date, (index-anchor.Index)*s.frequencyDays)
}
