package schedule

import (
	"sort"
	"time"

	"github.com/samber/mo"
)

// FreezePastOccurrences computes the override set that pins every occurrence
// already elapsed as of cutoff to its current date under the given series.
// Callers apply it before committing a plan-wide change (start date,
// frequency, cycle cap): frozen occurrences keep their historical dates even
// though the new parameters would otherwise shift them retroactively.
//
// The walk is bounded by DefaultMaxOccurrences and, when present, cycleCap.
// Occurrence dates are monotonic past the last anchor, so the walk exits at
// the first occurrence beyond the cutoff.
func FreezePastOccurrences(s Series, cutoff time.Time, cycleCap mo.Option[int]) []Override {
	cutoff = StartOfDay(cutoff)
	var frozen []Override
	for index := 0; index < DefaultMaxOccurrences; index++ {
		if limit, ok := cycleCap.Get(); ok && index >= limit {
			break
		}
		date := s.DateOf(index)
		if date.After(cutoff) {
			break
		}
		frozen = append(frozen, Override{Index: index, Date: date})
	}
	return frozen
}

// MergeOverrides unions two override lists keyed by index; where both
// specify the same index the addition wins. The result is sorted by index
// ascending, and merging identical input twice yields the same set
// (idempotent).
func MergeOverrides(existing, additions []Override) []Override {
	merged := make(map[int]time.Time, len(existing)+len(additions))
	for _, ov := range existing {
		merged[ov.Index] = StartOfDay(ov.Date)
	}
	for _, ov := range additions {
		merged[ov.Index] = StartOfDay(ov.Date)
	}
	out := make([]Override, 0, len(merged))
	for index, date := range merged {
		out = append(out, Override{Index: index, Date: date})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// UpsertOverride applies a single move: it replaces any existing override
// for the same index and keeps the list sorted. A single move needs no
// freeze step; it only ever affects its own occurrence and later ones.
func UpsertOverride(overrides []Override, ov Override) []Override {
	return MergeOverrides(overrides, []Override{ov})
}
