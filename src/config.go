package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/viper"

	"github.com/ryansname/microinverter/src/governor"
	"github.com/ryansname/microinverter/src/indicator"
)

// Config is the full daemon configuration
type Config struct {
	LogLevel  string           `mapstructure:"log_level"`
	Simulator SimulatorConfig  `mapstructure:"simulator"`
	Control   ControlConfig    `mapstructure:"control"`
	Indicator indicator.Config `mapstructure:"indicator"`
	MQTT      MQTTConfig       `mapstructure:"mqtt"`
}

const envPrefix = "microinverter"

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("simulator.period", 100*time.Millisecond)
	v.SetDefault("simulator.step", governor.DefaultStep)
	v.SetDefault("simulator.low", governor.DefaultLow)
	v.SetDefault("simulator.high", governor.DefaultHigh)

	v.SetDefault("control.period", 200*time.Millisecond)
	v.SetDefault("control.grid_low", governor.DefaultGridLow)
	v.SetDefault("control.grid_high", governor.DefaultGridHigh)

	v.SetDefault("indicator.driver", indicator.DriverSim)
	v.SetDefault("indicator.chip", "gpiochip0")
	v.SetDefault("indicator.line", 13)
	v.SetDefault("indicator.active_low", true)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.client_id", "microinverter")
	v.SetDefault("mqtt.prefix", "microinverter")
}

// loadConfig reads defaults, the optional config file and MICROINVERTER_* environment variables
func loadConfig(configFile string) (Config, error) {
	v := viper.New()
	setConfigDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials keep working from the plain names used in .env files
	_ = v.BindEnv("mqtt.username", "MICROINVERTER_MQTT_USERNAME", "MQTT_USERNAME")
	_ = v.BindEnv("mqtt.password", "MICROINVERTER_MQTT_PASSWORD", "MQTT_PASSWORD")

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would stop the workers from running
func (c Config) Validate() error {
	var errs []error
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Simulator.Period <= 0 {
		errs = append(errs, fmt.Errorf("simulator.period must be positive, got %v", c.Simulator.Period))
	}
	if c.Simulator.Step <= 0 {
		errs = append(errs, fmt.Errorf("simulator.step must be positive, got %v", c.Simulator.Step))
	}
	if c.Simulator.High <= c.Simulator.Low {
		errs = append(errs, fmt.Errorf("simulator.high (%v) must be above simulator.low (%v)",
			c.Simulator.High, c.Simulator.Low))
	}
	if c.Control.Period <= 0 {
		errs = append(errs, fmt.Errorf("control.period must be positive, got %v", c.Control.Period))
	}
	if c.Control.GridHigh <= c.Control.GridLow {
		errs = append(errs, fmt.Errorf("control.grid_high (%v) must be above control.grid_low (%v)",
			c.Control.GridHigh, c.Control.GridLow))
	}
	switch c.Indicator.Driver {
	case indicator.DriverSim, indicator.DriverGPIOCdev:
	default:
		errs = append(errs, fmt.Errorf("indicator.driver must be %q or %q, got %q",
			indicator.DriverSim, indicator.DriverGPIOCdev, c.Indicator.Driver))
	}
	return errors.Join(errs...)
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", level)
	}
}

// newLogger builds a colourised slog logger writing to w
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}
