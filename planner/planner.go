// Package planner is the adapter between callers and the pure scheduling
// engine. It owns the store handle, the display labels, and the clock;
// the engine itself holds no process-wide state. Every read recomputes from
// freshly loaded Plan and Overrides.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/terencehorsman/ChemoCare/ics"
	"github.com/terencehorsman/ChemoCare/schedule"
	"github.com/terencehorsman/ChemoCare/storage"
)

// Planner coordinates plan edits and calendar reads against a Store.
type Planner struct {
	store  storage.Store
	labels schedule.Labels
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithLabels sets the display labels used in generated event titles.
func WithLabels(labels schedule.Labels) Option {
	return func(p *Planner) { p.labels = labels }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New creates a Planner over the given store.
func New(store storage.Store, opts ...Option) *Planner {
	p := &Planner{
		store:  store,
		labels: schedule.DefaultLabels,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns the stored plan and override list.
func (p *Planner) Snapshot(ctx context.Context) (schedule.Plan, []schedule.Override, error) {
	plan, err := p.store.GetPlan(ctx)
	if err != nil {
		return schedule.Plan{}, nil, fmt.Errorf("load plan: %w", err)
	}
	overrides, err := p.store.GetOverrides(ctx)
	if err != nil {
		return schedule.Plan{}, nil, fmt.Errorf("load overrides: %w", err)
	}
	return plan, overrides, nil
}

// Events materializes the calendar for the display window.
func (p *Planner) Events(ctx context.Context, monthsAhead int) ([]schedule.Event, error) {
	plan, overrides, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.BuildEvents(plan, overrides, schedule.MaterializeOptions{
		Now:         p.now(),
		MonthsAhead: monthsAhead,
		Labels:      p.labels,
	}), nil
}

// ExportICS renders the current calendar as iCalendar text.
func (p *Planner) ExportICS(ctx context.Context, calendarName string, monthsAhead int) (string, error) {
	events, err := p.Events(ctx, monthsAhead)
	if err != nil {
		return "", err
	}
	return ics.Encode(events, ics.Options{CalendarName: calendarName, Now: p.now()})
}

// SavePlan persists a plan edit. When a plan-wide scheduling parameter
// changed (start date, frequency, or cycle cap), past occurrences are frozen
// to their historical dates under the old series before the new plan is
// committed, so the edit only affects the future. The merged overrides are
// persisted before the plan: if the second write fails, the stored state
// still resolves every past occurrence to its historical date.
func (p *Planner) SavePlan(ctx context.Context, plan schedule.Plan) error {
	if plan.FrequencyDays < 1 {
		return fmt.Errorf("frequencyDays must be >= 1, got %d", plan.FrequencyDays)
	}
	plan = plan.Normalized()

	old, err := p.store.GetPlan(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// First save: nothing to freeze.
	case err != nil:
		return fmt.Errorf("load plan: %w", err)
	case scheduleChanged(old, plan):
		overrides, err := p.store.GetOverrides(ctx)
		if err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
		series := schedule.SeriesFromPlan(old, overrides)
		frozen := schedule.FreezePastOccurrences(series, p.now(), old.CycleCap)
		merged := schedule.MergeOverrides(overrides, frozen)
		if err := p.store.PutOverrides(ctx, merged); err != nil {
			return fmt.Errorf("persist frozen overrides: %w", err)
		}
		p.logger.Info("froze past occurrences before plan change",
			"frozen", len(frozen), "overrides", len(merged))
	}

	if err := p.store.PutPlan(ctx, plan); err != nil {
		return fmt.Errorf("persist plan: %w", err)
	}
	return nil
}

// scheduleChanged reports whether a plan edit touches a parameter that
// shifts occurrence dates retroactively.
func scheduleChanged(old, updated schedule.Plan) bool {
	return !schedule.SameCalendarDay(old.StartDate, updated.StartDate) ||
		old.FrequencyDays != updated.FrequencyDays ||
		old.CycleCap != updated.CycleCap
}

// MoveOccurrence pins a single occurrence to a new date. A move is
// future-only by construction, so no freeze step is involved.
func (p *Planner) MoveOccurrence(ctx context.Context, index int, date time.Time) error {
	if index < 0 {
		return fmt.Errorf("occurrence index must be >= 0, got %d", index)
	}
	overrides, err := p.store.GetOverrides(ctx)
	if err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}
	merged := schedule.UpsertOverride(overrides, schedule.Override{Index: index, Date: date})
	if err := p.store.PutOverrides(ctx, merged); err != nil {
		return fmt.Errorf("persist overrides: %w", err)
	}
	p.logger.Info("moved occurrence", "index", index, "date", schedule.FormatISODate(date))
	return nil
}

// AddRule appends a rule to the plan, assigning an id when absent and
// normalizing the day indicator. The stored rule is returned.
func (p *Planner) AddRule(ctx context.Context, rule schedule.ActionRule) (schedule.ActionRule, error) {
	plan, err := p.store.GetPlan(ctx)
	if err != nil {
		return schedule.ActionRule{}, fmt.Errorf("load plan: %w", err)
	}
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	rule = rule.Normalized()
	plan.Rules = append(plan.Rules, rule)
	if err := p.store.PutPlan(ctx, plan); err != nil {
		return schedule.ActionRule{}, fmt.Errorf("persist plan: %w", err)
	}
	return rule, nil
}

// UpdateRule replaces the rule with the same id.
func (p *Planner) UpdateRule(ctx context.Context, rule schedule.ActionRule) error {
	plan, err := p.store.GetPlan(ctx)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	for i := range plan.Rules {
		if plan.Rules[i].ID == rule.ID {
			plan.Rules[i] = rule.Normalized()
			return p.store.PutPlan(ctx, plan)
		}
	}
	return fmt.Errorf("rule %s: %w", rule.ID, storage.ErrNotFound)
}

// RemoveRule deletes the rule with the given id, if present.
func (p *Planner) RemoveRule(ctx context.Context, id string) error {
	plan, err := p.store.GetPlan(ctx)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	kept := plan.Rules[:0]
	for _, r := range plan.Rules {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	plan.Rules = kept
	return p.store.PutPlan(ctx, plan)
}

// AddOneOff appends a standalone item, assigning an id when absent and
// defaulting the kind to appointment.
func (p *Planner) AddOneOff(ctx context.Context, item schedule.OneOffItem) (schedule.OneOffItem, error) {
	plan, err := p.store.GetPlan(ctx)
	if err != nil {
		return schedule.OneOffItem{}, fmt.Errorf("load plan: %w", err)
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Kind == "" {
		item.Kind = schedule.OneOffAppointment
	}
	plan.OneOffs = append(plan.OneOffs, item)
	if err := p.store.PutPlan(ctx, plan); err != nil {
		return schedule.OneOffItem{}, fmt.Errorf("persist plan: %w", err)
	}
	return item, nil
}

// RemoveOneOff deletes the item with the given id, if present.
func (p *Planner) RemoveOneOff(ctx context.Context, id string) error {
	plan, err := p.store.GetPlan(ctx)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	kept := plan.OneOffs[:0]
	for _, item := range plan.OneOffs {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	plan.OneOffs = kept
	return p.store.PutPlan(ctx, plan)
}

// Reset clears the plan and all overrides.
func (p *Planner) Reset(ctx context.Context) error {
	p.logger.Info("resetting plan and overrides")
	return p.store.Reset(ctx)
}
