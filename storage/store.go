// Package storage persists the two documents the engine is computed from:
// the plan ("settings") and the override list ("moves"). The engine itself
// never touches a Store; the planner reads fresh state before every
// computation and writes through these methods.
package storage

import (
	"context"
	"errors"

	"github.com/terencehorsman/ChemoCare/schedule"
)

// ErrNotFound is returned when no plan has been stored yet.
var ErrNotFound = errors.New("not found")

// Keys under which the two documents live in key-value backends.
const (
	KeyPlan      = "settings"
	KeyOverrides = "moves"
)

// Store is the persistence interface backends implement. GetOverrides
// returns an empty list, not ErrNotFound, when no moves have been recorded:
// a plan without moves is the normal initial state.
type Store interface {
	GetPlan(ctx context.Context) (schedule.Plan, error)
	PutPlan(ctx context.Context, p schedule.Plan) error

	GetOverrides(ctx context.Context) ([]schedule.Override, error)
	PutOverrides(ctx context.Context, overrides []schedule.Override) error

	// Reset clears both the plan and the overrides. This is the only way
	// either document is ever deleted.
	Reset(ctx context.Context) error

	Close() error
}
