package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/ryansname/microinverter/src/governor"
)

// SimulatorConfig holds configuration for the voltage simulator worker
type SimulatorConfig struct {
	Period time.Duration `mapstructure:"period"`
	Step   float64       `mapstructure:"step"`
	Low    float64       `mapstructure:"low"`
	High   float64       `mapstructure:"high"`
}

// simulatorTick advances the shared voltage one step along the wave unless an override holds it
func simulatorTick(state *SimState, wave *governor.TriangleWave) (float64, bool) {
	return state.AdvanceIfAuto(wave.Next)
}

// voltageSimulatorWorker ramps the shared voltage through a day/night triangle wave
func voltageSimulatorWorker(
	ctx context.Context,
	state *SimState,
	config SimulatorConfig,
	logger *slog.Logger,
) {
	logger.Info("Voltage simulator started",
		"period", config.Period, "step", config.Step, "low", config.Low, "high", config.High)

	wave := governor.NewTriangleWave(config.Step, config.Low, config.High)
	ticker := time.NewTicker(config.Period)
	defer ticker.Stop()

	wasAuto := true
	for {
		simulatorTick(state, wave)

		// Mode changes are made by override commands, only noted here
		if auto := state.AutoMode(); auto != wasAuto {
			if auto {
				logger.Debug("Simulation resumed", "rising", wave.Rising)
			} else {
				logger.Debug("Simulation suspended by override")
			}
			wasAuto = auto
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			logger.Info("Voltage simulator stopped")
			return
		}
	}
}
