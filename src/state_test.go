package main

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimState_Initial(t *testing.T) {
	s := NewSimState()
	snap := s.Snapshot()

	assert.Equal(t, 0.0, snap.Voltage)
	assert.True(t, snap.AutoMode)
	assert.Equal(t, 0.0, snap.RangeMin)
	assert.Equal(t, 0.0, snap.RangeMax)
}

func TestSimState_OverrideRoundTrip(t *testing.T) {
	s := NewSimState()
	s.Override(17)

	assert.Equal(t, 17.0, s.Voltage())
	assert.False(t, s.AutoMode())
}

func TestSimState_EnableAutoKeepsVoltage(t *testing.T) {
	s := NewSimState()
	s.Override(33)
	s.EnableAuto()

	assert.Equal(t, 33.0, s.Voltage())
	assert.True(t, s.AutoMode())
}

func TestSimState_AdvanceIfAuto(t *testing.T) {
	s := NewSimState()
	plusOne := func(v float64) float64 { return v + 1 }

	v, advanced := s.AdvanceIfAuto(plusOne)
	assert.True(t, advanced)
	assert.Equal(t, 1.0, v)

	s.Override(30)
	v, advanced = s.AdvanceIfAuto(plusOne)
	assert.False(t, advanced)
	assert.Equal(t, 30.0, v)
	assert.Equal(t, 30.0, s.Voltage())
}

func TestSimState_TracksRange(t *testing.T) {
	s := NewSimState()
	s.Override(42)
	s.Override(-3)
	s.EnableAuto()
	s.AdvanceIfAuto(func(v float64) float64 { return v + 10 })

	snap := s.Snapshot()
	assert.Equal(t, 7.0, snap.Voltage)
	assert.Equal(t, -3.0, snap.RangeMin)
	assert.Equal(t, 42.0, snap.RangeMax)
}

func TestSimState_ConcurrentWritersStayConsistent(t *testing.T) {
	s := NewSimState()
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		for n := 0; n < 1000; n++ {
			s.AdvanceIfAuto(func(v float64) float64 { return v + 0.5 })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				s.Override(25)
			} else {
				s.EnableAuto()
			}
		}
	}()
	go func() {
		defer wg.Done()
		for n := 0; n < 1000; n++ {
			snap := s.Snapshot()
			assert.LessOrEqual(t, snap.RangeMin, snap.Voltage)
			assert.GreaterOrEqual(t, snap.RangeMax, snap.Voltage)
		}
	}()
	wg.Wait()

	// The override goroutine finishes on EnableAuto
	assert.True(t, s.AutoMode())
}
