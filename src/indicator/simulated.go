package indicator

import (
	"log/slog"
	"sync"
)

// Simulated is an in-memory indicator. It is always ready unless told otherwise.
type Simulated struct {
	mu         sync.Mutex
	ready      bool
	configured bool
	active     bool
	ops        int
	logger     *slog.Logger
}

// NewSimulated creates a ready simulated indicator.
func NewSimulated(logger *slog.Logger) *Simulated {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulated{ready: true, logger: logger}
}

// SetReady changes what IsReady reports.
func (s *Simulated) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady implements Indicator.
func (s *Simulated) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Configure implements Indicator.
func (s *Simulated) Configure(active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configured = true
	s.ops++
	s.drive(active)
	return nil
}

// Set implements Indicator.
func (s *Simulated) Set(active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops++
	s.drive(active)
	return nil
}

// Toggle implements Indicator.
func (s *Simulated) Toggle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops++
	s.drive(!s.active)
	return nil
}

// Active implements Indicator.
func (s *Simulated) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Configured reports whether Configure has been called.
func (s *Simulated) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configured
}

// Ops returns the number of Configure, Set and Toggle calls made.
func (s *Simulated) Ops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops
}

// drive must be called with mu held
func (s *Simulated) drive(active bool) {
	if active != s.active {
		s.logger.Debug("Indicator changed", "state", StateName(active))
	}
	s.active = active
}
