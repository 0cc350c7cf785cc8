package routing

import (
	"sync"
)

// ModelState holds the process-wide routing state: the model attempted
// first on every request, and the running count of consecutive failed
// attempts. It is seeded with the primary model at startup and mutated
// only by the dispatcher (promotion on fallback success) and by config
// hot reload (fallback list replacement).
//
// Individual accesses are mutex-guarded, but concurrent requests still
// interleave updates last-write-wins. That is accepted: the values steer
// first-attempt routing and feed /health and metrics, nothing stronger.
type ModelState struct {
	mu       sync.RWMutex
	primary  string
	current  string
	fallback []string
	failures int
}

// NewModelState creates routing state seeded to the primary model.
func NewModelState(primary string, fallbacks []string) *ModelState {
	return &ModelState{
		primary:  primary,
		current:  primary,
		fallback: append([]string(nil), fallbacks...),
	}
}

// Current returns the model attempted first on the next request.
func (s *ModelState) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Primary returns the configured primary model.
func (s *ModelState) Primary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary
}

// Fallbacks returns a copy of the fallback list in declared order.
func (s *ModelState) Fallbacks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.fallback...)
}

// Models returns the primary model followed by the fallbacks.
func (s *ModelState) Models() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.fallback)+1)
	out = append(out, s.primary)
	out = append(out, s.fallback...)
	return out
}

// Promote records a successful fallback: the given model becomes current
// until the next promotion. It never resets to primary on its own.
func (s *ModelState) Promote(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = model
}

// SetFallbacks replaces the fallback list (config hot reload). The current
// model is left alone even if it no longer appears in the new list; it
// remains valid until the next promotion.
func (s *ModelState) SetFallbacks(fallbacks []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = append([]string(nil), fallbacks...)
}

// RecordFailure increments the consecutive-failure counter and returns the
// new value.
func (s *ModelState) RecordFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	return s.failures
}

// ResetFailures zeroes the consecutive-failure counter.
func (s *ModelState) ResetFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = 0
}

// Failures returns the consecutive-failure counter.
func (s *ModelState) Failures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures
}
