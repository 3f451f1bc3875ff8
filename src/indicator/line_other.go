//go:build !linux

package indicator

import (
	"errors"
	"log/slog"
)

var errNoCdev = errors.New("GPIO character devices are only available on linux")

// Line is unavailable outside linux and never reports ready.
type Line struct {
	chip   string
	offset int
}

// NewLine creates a line indicator that is never ready.
func NewLine(chip string, offset int, _ bool, _ *slog.Logger) *Line {
	return &Line{chip: chip, offset: offset}
}

// IsReady always returns false.
func (l *Line) IsReady() bool { return false }

// Configure always fails.
func (l *Line) Configure(bool) error { return errNoCdev }

// Set always fails.
func (l *Line) Set(bool) error { return errNoCdev }

// Toggle always fails.
func (l *Line) Toggle() error { return errNoCdev }

// Active always returns false.
func (l *Line) Active() bool { return false }

// Close is a no-op.
func (l *Line) Close() error { return nil }
