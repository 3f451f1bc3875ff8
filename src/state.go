package main

import (
	"sync"
	"time"

	"github.com/ryansname/microinverter/src/governor"
)

// SimSnapshot is a consistent copy of the shared simulation state
type SimSnapshot struct {
	Voltage  float64
	AutoMode bool
	RangeMin float64 // lowest voltage seen in the last hour
	RangeMax float64 // highest voltage seen in the last hour
}

// SimState is the voltage cell shared by the simulator, the control loop and the override commands.
// While AutoMode is true only the simulator writes the voltage; while false only overrides do.
type SimState struct {
	mu       sync.Mutex
	voltage  float64
	autoMode bool
	history  governor.RollingMinMax
	now      func() time.Time
}

// NewSimState creates the state at 0V in auto mode
func NewSimState() *SimState {
	return &SimState{
		autoMode: true,
		history:  governor.NewRollingMinMax(),
		now:      time.Now,
	}
}

// Voltage returns the current voltage
func (s *SimState) Voltage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voltage
}

// AutoMode reports whether the simulator owns the voltage
func (s *SimState) AutoMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoMode
}

// Snapshot returns voltage, mode and the 1h range read under one lock.
// The current voltage is recorded first so buckets older than an hour expire even while an override holds it.
func (s *SimState) Snapshot() SimSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.UpdateAt(s.voltage, s.now())
	return SimSnapshot{
		Voltage:  s.voltage,
		AutoMode: s.autoMode,
		RangeMin: s.history.Min(),
		RangeMax: s.history.Max(),
	}
}

// AdvanceIfAuto replaces the voltage with next(voltage) when in auto mode.
// The mode check and the write happen under one lock so an override can never be overwritten by a stale tick.
// Returns the resulting voltage and whether it was advanced.
func (s *SimState) AdvanceIfAuto(next func(float64) float64) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.autoMode {
		return s.voltage, false
	}
	s.store(next(s.voltage))
	return s.voltage, true
}

// Override switches to manual mode and sets the voltage
func (s *SimState) Override(voltage float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoMode = false
	s.store(voltage)
}

// EnableAuto hands the voltage back to the simulator without touching its value
func (s *SimState) EnableAuto() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoMode = true
}

// store must be called with mu held
func (s *SimState) store(voltage float64) {
	s.voltage = voltage
	s.history.UpdateAt(voltage, s.now())
}
