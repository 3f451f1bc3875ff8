package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ryansname/microinverter/src/indicator"
)

// SafeGo launches a goroutine with panic recovery and retry logic.
// On panic, retries with exponential backoff (max 10 retries).
// Retry count resets if worker ran for 2+ minutes before failing.
// After exhausting retries, cancels context to trigger shutdown.
func SafeGo(
	ctx context.Context,
	cancel context.CancelFunc,
	name string,
	fn func(ctx context.Context),
) {
	const maxRetries = 10
	const maxDelay = 10 * time.Minute
	const resetAfter = 2 * time.Minute

	go func() {
		retries := 0
		delay := time.Second

		for {
			startTime := time.Now()
			var panicValue any

			func() {
				defer func() {
					panicValue = recover()
				}()
				fn(ctx)
			}()

			// Returned normally: cancelled, or the worker chose to stop for good
			if panicValue == nil {
				return
			}

			if time.Since(startTime) >= resetAfter {
				retries = 0
				delay = time.Second
			}

			retries++
			slog.Error("Worker panicked", "worker", name, "attempt", retries, "max", maxRetries, "panic", panicValue)

			if retries >= maxRetries {
				slog.Error("Worker failed too many times, shutting down", "worker", name, "retries", maxRetries)
				cancel()
				return
			}

			slog.Info("Worker will retry", "worker", name, "delay", delay)
			select {
			case <-time.After(delay):
				delay = min(delay*2, maxDelay)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// options holds command line flags
type options struct {
	configFile string
	logLevel   string
	headless   bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "microinverter",
		Short: "Solar microinverter control demonstrator",
		Long: "Simulates a solar panel voltage ramping through day and night, " +
			"drives a status indicator from it and accepts manual voltage overrides " +
			"from an interactive shell or an MQTT command topic.",
		Version:      versioninfo.Short(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Path to config file (default $CONFIG_FILE)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "Run without the interactive sensor shell")

	return cmd
}

func run(parent context.Context, opts options) error {
	// Load .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Error loading .env file", "error", err)
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	logger := newLogger(rlWriter, level)
	slog.SetDefault(logger)
	logger.Info("Starting microinverter", "version", versioninfo.Short())

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	state := NewSimState()

	ind, err := indicator.New(cfg.Indicator, logger.With("worker", "indicator"))
	if err != nil {
		return err
	}
	if closer, ok := ind.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to release indicator", "error", err)
			}
		}()
	}

	commands := NewSensorCommands(NewOverrideChannel(state), state, cfg.Control.Window(), ind)

	// Simulator first so the control loop sees a fresh value on its first tick
	SafeGo(ctx, cancel, "voltage-simulator", func(ctx context.Context) {
		voltageSimulatorWorker(ctx, state, cfg.Simulator, logger.With("worker", "simulator"))
	})

	SafeGo(ctx, cancel, "control-loop", func(ctx context.Context) {
		controlLoopWorker(ctx, state, ind, cfg.Control, logger.With("worker", "control"))
	})

	if cfg.MQTT.Enabled() {
		mqttOutgoingChan := make(chan MQTTMessage, 100) // Larger buffer for queuing
		mqttClientChan := make(chan mqtt.Client, 1)     // Buffered to prevent blocking onConnect
		sender := NewMQTTSender(mqttOutgoingChan)

		SafeGo(ctx, cancel, "mqtt-sender-worker", func(ctx context.Context) {
			mqttSenderWorker(ctx, mqttOutgoingChan, mqttClientChan, logger.With("worker", "mqtt-sender"))
		})
		SafeGo(ctx, cancel, "mqtt-worker", func(ctx context.Context) {
			mqttWorker(ctx, cfg.MQTT, commands, sender, mqttClientChan, logger.With("worker", "mqtt"))
		})
	}

	if !opts.headless {
		SafeGo(ctx, cancel, "sensor-shell", func(ctx context.Context) {
			sensorShellWorker(ctx, cancel, commands, logger.With("worker", "shell"))
		})
	}

	// Wait for interrupt signal or context cancellation (from panic or Ctrl+C in the shell)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logger.Info("Shutting down...")
	case <-ctx.Done():
		logger.Info("Shutting down...")
	}
	cancel()
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
