package storage

import (
	"encoding/json"
	"fmt"

	"github.com/samber/mo"

	"github.com/terencehorsman/ChemoCare/schedule"
)

// Wire records use ISO YYYY-MM-DD dates and HH:MM times so stored documents
// stay readable and portable across backends. Day indicators are normalized
// on decode: a stored 0 can never reach the engine.

type planRecord struct {
	StartDate     string         `json:"startDate"`
	FrequencyDays int            `json:"frequencyDays"`
	CycleCap      *int           `json:"cycleCap,omitempty"`
	Rules         []ruleRecord   `json:"rules,omitempty"`
	OneOffs       []oneOffRecord `json:"oneOffs,omitempty"`
}

type ruleRecord struct {
	ID           string `json:"id"`
	DayIndicator int    `json:"dayIndicator"`
	Title        string `json:"title"`
	Notes        string `json:"notes,omitempty"`
	TimeOfDay    string `json:"timeOfDay,omitempty"`
	Enabled      bool   `json:"enabled"`
}

type oneOffRecord struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	TimeOfDay string `json:"timeOfDay,omitempty"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	Kind      string `json:"kind"`
}

type overrideRecord struct {
	Index int    `json:"index"`
	Date  string `json:"date"`
}

// EncodePlan serializes a plan to its JSON wire form.
func EncodePlan(p schedule.Plan) ([]byte, error) {
	rec := planRecord{
		StartDate:     schedule.FormatISODate(p.StartDate),
		FrequencyDays: p.FrequencyDays,
	}
	if limit, ok := p.CycleCap.Get(); ok {
		rec.CycleCap = &limit
	}
	for _, r := range p.Rules {
		rr := ruleRecord{
			ID:           r.ID,
			DayIndicator: schedule.NormalizeDayIndicator(r.DayIndicator),
			Title:        r.Title,
			Notes:        r.Notes,
			Enabled:      r.Enabled,
		}
		if tod, ok := r.TimeOfDay.Get(); ok {
			rr.TimeOfDay = tod.String()
		}
		rec.Rules = append(rec.Rules, rr)
	}
	for _, item := range p.OneOffs {
		ir := oneOffRecord{
			ID:    item.ID,
			Date:  schedule.FormatISODate(item.Date),
			Title: item.Title,
			Notes: item.Notes,
			Kind:  string(item.Kind),
		}
		if tod, ok := item.TimeOfDay.Get(); ok {
			ir.TimeOfDay = tod.String()
		}
		rec.OneOffs = append(rec.OneOffs, ir)
	}
	return json.Marshal(rec)
}

// DecodePlan deserializes a plan from its JSON wire form.
func DecodePlan(data []byte) (schedule.Plan, error) {
	var rec planRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return schedule.Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	start, err := schedule.ParseISODate(rec.StartDate)
	if err != nil {
		return schedule.Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	p := schedule.Plan{
		StartDate:     start,
		FrequencyDays: rec.FrequencyDays,
	}
	if rec.CycleCap != nil {
		p.CycleCap = mo.Some(*rec.CycleCap)
	}
	for _, rr := range rec.Rules {
		r := schedule.ActionRule{
			ID:           rr.ID,
			DayIndicator: schedule.NormalizeDayIndicator(rr.DayIndicator),
			Title:        rr.Title,
			Notes:        rr.Notes,
			Enabled:      rr.Enabled,
		}
		if rr.TimeOfDay != "" {
			tod, err := schedule.ParseTimeOfDay(rr.TimeOfDay)
			if err != nil {
				return schedule.Plan{}, fmt.Errorf("decode rule %s: %w", rr.ID, err)
			}
			r.TimeOfDay = mo.Some(tod)
		}
		p.Rules = append(p.Rules, r)
	}
	for _, ir := range rec.OneOffs {
		date, err := schedule.ParseISODate(ir.Date)
		if err != nil {
			return schedule.Plan{}, fmt.Errorf("decode one-off %s: %w", ir.ID, err)
		}
		item := schedule.OneOffItem{
			ID:    ir.ID,
			Date:  date,
			Title: ir.Title,
			Notes: ir.Notes,
			Kind:  schedule.OneOffKind(ir.Kind),
		}
		if ir.TimeOfDay != "" {
			tod, err := schedule.ParseTimeOfDay(ir.TimeOfDay)
			if err != nil {
				return schedule.Plan{}, fmt.Errorf("decode one-off %s: %w", ir.ID, err)
			}
			item.TimeOfDay = mo.Some(tod)
		}
		p.OneOffs = append(p.OneOffs, item)
	}
	return p, nil
}

// EncodeOverrides serializes the override list.
func EncodeOverrides(overrides []schedule.Override) ([]byte, error) {
	recs := make([]overrideRecord, 0, len(overrides))
	for _, ov := range overrides {
		recs = append(recs, overrideRecord{
			Index: ov.Index,
			Date:  schedule.FormatISODate(ov.Date),
		})
	}
	return json.Marshal(recs)
}

// DecodeOverrides deserializes the override list.
func DecodeOverrides(data []byte) ([]schedule.Override, error) {
	var recs []overrideRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	var overrides []schedule.Override
	for _, rec := range recs {
		date, err := schedule.ParseISODate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("decode override %d: %w", rec.Index, err)
		}
		overrides = append(overrides, schedule.Override{Index: rec.Index, Date: date})
	}
	return overrides, nil
}
