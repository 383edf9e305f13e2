// Package session holds the single-slot cache of the most recently activated
// engine state. Load/solve operations replace the slot; dependent operations
// read it and fail with StateNotLoaded when nothing has been activated.
package session

import (
	"sync"
	"time"

	"github.com/smilealdway/PowerMCP/internal/envelope"
)

// Handle is the cached reference to an activated engine state.
type Handle struct {
	// Engine names the engine family that owns the state (e.g. "andes").
	Engine string

	// Value is the opaque engine state. Dependent operations assert its
	// concrete type themselves.
	Value any

	// ActivatedAt records when the handle was set.
	ActivatedAt time.Time
}

// Store is a process-lifetime single slot. It has no eviction or expiry; a
// new activation unconditionally overwrites the previous one. Stores are
// injected, not global, so tests can instantiate independent ones.
type Store struct {
	mu  sync.Mutex
	h   *Handle
	now func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Set activates value as the current handle for engine, replacing whatever
// was there.
func (s *Store) Set(engine string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h = &Handle{Engine: engine, Value: value, ActivatedAt: s.now()}
}

// Get returns the current handle for engine. It fails with a StateNotLoaded
// tagged failure when the slot is empty or holds state belonging to a
// different engine; it never constructs a default.
func (s *Store) Get(engine string) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.h == nil || s.h.Engine != engine {
		return nil, envelope.StateNotLoaded(engine + " case")
	}
	return s.h, nil
}

// Loaded reports whether any handle has been activated.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h != nil
}

// Current returns the handle regardless of owner, or nil. Informational
// surfaces (status endpoints) use it; operations go through Get.
func (s *Store) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h
}
