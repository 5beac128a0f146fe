// Package memory provides an in-memory Store, used by tests and the demo
// configuration.
package memory

import (
	"context"
	"sync"

	"github.com/terencehorsman/ChemoCare/schedule"
	"github.com/terencehorsman/ChemoCare/storage"
)

// Store keeps the encoded documents in a map guarded by a RWMutex. Values
// go through the same codec as the durable backends so a plan that survives
// a memory round-trip also survives a database round-trip.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

func (s *Store) get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[key]
	return data, ok
}

func (s *Store) put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = value
}

func (s *Store) GetPlan(_ context.Context) (schedule.Plan, error) {
	data, ok := s.get(storage.KeyPlan)
	if !ok {
		return schedule.Plan{}, storage.ErrNotFound
	}
	return storage.DecodePlan(data)
}

func (s *Store) PutPlan(_ context.Context, p schedule.Plan) error {
	data, err := storage.EncodePlan(p)
	if err != nil {
		return err
	}
	s.put(storage.KeyPlan, data)
	return nil
}

func (s *Store) GetOverrides(_ context.Context) ([]schedule.Override, error) {
	data, ok := s.get(storage.KeyOverrides)
	if !ok {
		return nil, nil
	}
	return storage.DecodeOverrides(data)
}

func (s *Store) PutOverrides(_ context.Context, overrides []schedule.Override) error {
	data, err := storage.EncodeOverrides(overrides)
	if err != nil {
		return err
	}
	s.put(storage.KeyOverrides, data)
	return nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, storage.KeyPlan)
	delete(s.docs, storage.KeyOverrides)
	return nil
}

func (s *Store) Close() error {
	return nil
}
