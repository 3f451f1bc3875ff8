// Package governor provides the voltage shaping and grid judgement algorithms
// used by the simulator and control workers.
package governor

// Default waveform parameters: a 0-50V day/night ramp in 0.5V steps.
const (
	DefaultStep = 0.5
	DefaultLow  = 0.0
	DefaultHigh = 50.0
)

// TriangleWave ramps a value up and down between Low and High.
// The value itself lives outside the wave so that a manual override can
// replace it; only the direction is owned here.
//
// Rising:  value += Step, turn around once value >= High.
// Falling: value -= Step, turn around once value <= Low.
//
// Direction is never re-synchronised with the value. Resuming from an
// override above High while rising takes one more step up before turning.
type TriangleWave struct {
	Rising bool

	Step float64
	Low  float64
	High float64
}

// NewTriangleWave creates a wave that starts rising.
func NewTriangleWave(step, low, high float64) *TriangleWave {
	return &TriangleWave{
		Rising: true,
		Step:   step,
		Low:    low,
		High:   high,
	}
}

// DefaultTriangleWave returns the 0-50V, 0.5V step wave.
func DefaultTriangleWave() *TriangleWave {
	return NewTriangleWave(DefaultStep, DefaultLow, DefaultHigh)
}

// Next advances value by one step and returns the new value,
// flipping direction when a bound is reached.
func (w *TriangleWave) Next(value float64) float64 {
	if w.Rising {
		value += w.Step
		if value >= w.High {
			w.Rising = false
		}
		return value
	}

	value -= w.Step
	if value <= w.Low {
		w.Rising = true
	}
	return value
}
