package common

import (
	"sync"
	"time"
)

// Settings carries the tunables the config watcher may swap while the
// server runs. Reads see the values current at that moment; sessions
// and operations already in flight keep the values they started with.
type Settings struct {
	mu       sync.RWMutex
	rowLimit int
	policy   string
	debounce time.Duration
}

// NewSettings creates Settings with the given initial values.
func NewSettings(rowLimit int, policy string, debounce time.Duration) *Settings {
	return &Settings{rowLimit: rowLimit, policy: policy, debounce: debounce}
}

// RowLimit returns the current preview row limit.
func (s *Settings) RowLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rowLimit
}

// Policy returns the current field type policy name.
func (s *Settings) Policy() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// Debounce returns the current index refresh debounce interval.
func (s *Settings) Debounce() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debounce
}

// Update replaces all tunables at once.
func (s *Settings) Update(rowLimit int, policy string, debounce time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowLimit = rowLimit
	s.policy = policy
	s.debounce = debounce
}
