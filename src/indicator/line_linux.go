//go:build linux

package indicator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

const consumerName = "microinverter"

// Line drives a GPIO character device line, e.g. gpiochip0 line 13.
type Line struct {
	chip      string
	offset    int
	activeLow bool
	logger    *slog.Logger

	mu     sync.Mutex
	line   *gpiocdev.Line
	active bool
}

// NewLine creates an unclaimed GPIO line indicator.
func NewLine(chip string, offset int, activeLow bool, logger *slog.Logger) *Line {
	if logger == nil {
		logger = slog.Default()
	}
	return &Line{
		chip:      chip,
		offset:    offset,
		activeLow: activeLow,
		logger:    logger.With("chip", chip, "line", offset),
	}
}

// IsReady reports whether the chip exists and is a GPIO character device.
func (l *Line) IsReady() bool {
	return gpiocdev.IsChip(l.chip) == nil
}

// Configure requests the line as an output driven to the initial state.
func (l *Line) Configure(active bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.line != nil {
		return l.setValue(active)
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithConsumer(consumerName),
		gpiocdev.AsOutput(toValue(active)),
	}
	if l.activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := gpiocdev.RequestLine(l.chip, l.offset, opts...)
	if err != nil {
		return fmt.Errorf("request %s:%d: %w", l.chip, l.offset, err)
	}
	l.line = line
	l.active = active
	l.logger.Info("Indicator line configured", "active_low", l.activeLow, "state", StateName(active))
	return nil
}

// Set drives the line to the given logical state.
func (l *Line) Set(active bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setValue(active)
}

// Toggle inverts the logical state of the line.
func (l *Line) Toggle() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setValue(!l.active)
}

// Active returns the last logical state driven.
func (l *Line) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Close reverts the line to an input and releases it.
func (l *Line) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.line == nil {
		return nil
	}
	err := l.line.Reconfigure(gpiocdev.AsInput)
	err = errors.Join(err, l.line.Close())
	l.line = nil
	return err
}

// setValue must be called with mu held
func (l *Line) setValue(active bool) error {
	if l.line == nil {
		return fmt.Errorf("line %s:%d not configured", l.chip, l.offset)
	}
	if err := l.line.SetValue(toValue(active)); err != nil {
		return fmt.Errorf("set %s:%d: %w", l.chip, l.offset, err)
	}
	l.active = active
	return nil
}

func toValue(active bool) int {
	if active {
		return 1
	}
	return 0
}
