package governor

// Inverter operating window in volts.
const (
	DefaultGridLow  = 20.0
	DefaultGridHigh = 45.0
)

// GridWindow is the open voltage interval in which the inverter can feed the grid.
type GridWindow struct {
	Low  float64
	High float64
}

// DefaultGridWindow returns the 20-45V window.
func DefaultGridWindow() GridWindow {
	return GridWindow{Low: DefaultGridLow, High: DefaultGridHigh}
}

// OK reports whether voltage lies strictly inside the window.
// Both bounds count as a fault.
func (g GridWindow) OK(voltage float64) bool {
	return voltage > g.Low && voltage < g.High
}
