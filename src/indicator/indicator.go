// Package indicator drives the single status output of the inverter.
// The real implementation uses a Linux GPIO character device line.
// The simulated implementation allows running and testing without hardware.
package indicator

import (
	"fmt"
	"log/slog"
)

// Indicator is a binary output such as a status LED.
type Indicator interface {
	// IsReady reports whether the underlying output can be used.
	IsReady() bool

	// Configure claims the output and drives it to the initial state.
	Configure(active bool) error

	// Set drives the output to the given logical state.
	Set(active bool) error

	// Toggle inverts the current logical state.
	Toggle() error

	// Active returns the last logical state driven.
	Active() bool
}

// Drivers understood by New.
const (
	DriverSim      = "sim"
	DriverGPIOCdev = "gpiocdev"
)

// Config selects and parameterises an indicator driver.
type Config struct {
	Driver    string `mapstructure:"driver"`
	Chip      string `mapstructure:"chip"`
	Line      int    `mapstructure:"line"`
	ActiveLow bool   `mapstructure:"active_low"`
}

// New creates the indicator named by cfg.Driver.
func New(cfg Config, logger *slog.Logger) (Indicator, error) {
	switch cfg.Driver {
	case "", DriverSim:
		return NewSimulated(logger), nil
	case DriverGPIOCdev:
		return NewLine(cfg.Chip, cfg.Line, cfg.ActiveLow, logger), nil
	default:
		return nil, fmt.Errorf("unknown indicator driver %q", cfg.Driver)
	}
}

// StateName returns "on" or "off".
func StateName(active bool) string {
	if active {
		return "on"
	}
	return "off"
}
