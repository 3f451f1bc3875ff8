package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/ryansname/microinverter/src/governor"
	"github.com/ryansname/microinverter/src/indicator"
)

// ControlConfig holds configuration for the inverter control loop
type ControlConfig struct {
	Period   time.Duration `mapstructure:"period"`
	GridLow  float64       `mapstructure:"grid_low"`
	GridHigh float64       `mapstructure:"grid_high"`
}

// Window returns the grid window described by the config
func (c ControlConfig) Window() governor.GridWindow {
	return governor.GridWindow{Low: c.GridLow, High: c.GridHigh}
}

// gridStatusName names the inverter state for a grid judgement
func gridStatusName(gridOK bool) string {
	if gridOK {
		return "GENERATING"
	}
	return "FAULT"
}

// controlTick applies the grid policy once: solid on while generating, blink on fault
func controlTick(state *SimState, window governor.GridWindow, ind indicator.Indicator) (bool, float64, error) {
	voltage := state.Voltage()
	gridOK := window.OK(voltage)

	if gridOK {
		return gridOK, voltage, ind.Set(true)
	}
	return gridOK, voltage, ind.Toggle()
}

// controlLoopWorker drives the status indicator from the shared voltage.
// If the indicator is not ready at startup the worker returns at once and never touches it.
func controlLoopWorker(
	ctx context.Context,
	state *SimState,
	ind indicator.Indicator,
	config ControlConfig,
	logger *slog.Logger,
) {
	if !ind.IsReady() {
		logger.Debug("Indicator not ready, control loop exiting")
		return
	}
	if err := ind.Configure(true); err != nil {
		logger.Warn("Failed to configure indicator", "error", err)
	}

	logger.Info("Control loop started",
		"period", config.Period, "grid_low", config.GridLow, "grid_high", config.GridHigh)

	window := config.Window()
	ticker := time.NewTicker(config.Period)
	defer ticker.Stop()

	var lastOK *bool
	failing := false
	for {
		gridOK, voltage, err := controlTick(state, window, ind)
		switch {
		case err != nil && !failing:
			logger.Warn("Indicator update failed, suppressing until it recovers", "error", err)
			failing = true
		case err == nil && failing:
			logger.Info("Indicator update recovered")
			failing = false
		}

		if lastOK == nil || *lastOK != gridOK {
			logger.Debug("Status: "+gridStatusName(gridOK), "voltage", int(voltage))
			lastOK = &gridOK
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			logger.Info("Control loop stopped")
			return
		}
	}
}
