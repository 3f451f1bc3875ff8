package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ryansname/microinverter/src/governor"
	"github.com/ryansname/microinverter/src/indicator"
)

// ErrUsage is returned when an override command is missing its argument
var ErrUsage = errors.New("usage: sensor set <voltage>")

// OverrideChannel lets an operator force the voltage or hand it back to the simulator
type OverrideChannel struct {
	state *SimState
}

// NewOverrideChannel creates an OverrideChannel on the shared state
func NewOverrideChannel(state *SimState) *OverrideChannel {
	return &OverrideChannel{state: state}
}

// SetVoltage switches to manual mode and sets the voltage to the first argument.
// Values are not range checked. Returns the accepted voltage.
func (o *OverrideChannel) SetVoltage(args ...string) (int, error) {
	if len(args) < 1 {
		return 0, ErrUsage
	}
	voltage := parseVoltage(args[0])
	o.state.Override(float64(voltage))
	return voltage, nil
}

// EnableAuto resumes the simulation from the current voltage
func (o *OverrideChannel) EnableAuto() {
	o.state.EnableAuto()
}

// parseVoltage converts the leading integer of s, ignoring leading whitespace and any trailing text.
// Input without a leading integer gives 0. Results are clamped to the int32 range.
func parseVoltage(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	var n int64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int64(s[i]-'0')
		if n > math.MaxInt32+1 {
			n = math.MaxInt32 + 1
		}
	}

	if negative {
		n = -n
	}
	return int(max(math.MinInt32, min(math.MaxInt32, n)))
}

// Sensor command output
const (
	sensorUsageText  = "Usage: sensor set <voltage>"
	sensorAutoText   = "Auto Simulation Enabled"
	sensorStatusFail = -1
)

func printSensorHelp(out io.Writer) {
	fmt.Fprintln(out, "sensor - Sensor Simulation Commands")
	fmt.Fprintln(out, "Subcommands:")
	fmt.Fprintln(out, "  set     :Set voltage manually")
	fmt.Fprintln(out, "  auto    :Enable auto simulation")
	fmt.Fprintln(out, "  status  :Show voltage, mode and indicator")
}

// SensorCommands runs `sensor` subcommands for any command surface
type SensorCommands struct {
	override  *OverrideChannel
	state     *SimState
	window    governor.GridWindow
	indicator indicator.Indicator
}

// NewSensorCommands creates the sensor command set
func NewSensorCommands(
	override *OverrideChannel,
	state *SimState,
	window governor.GridWindow,
	ind indicator.Indicator,
) *SensorCommands {
	return &SensorCommands{
		override:  override,
		state:     state,
		window:    window,
		indicator: ind,
	}
}

// Run executes a sensor subcommand (args excludes the word "sensor"),
// writes its output to out and returns 0 on success or a negative status.
func (c *SensorCommands) Run(args []string, out io.Writer) int {
	if len(args) == 0 {
		printSensorHelp(out)
		return sensorStatusFail
	}

	switch args[0] {
	case "set":
		voltage, err := c.override.SetVoltage(args[1:]...)
		if errors.Is(err, ErrUsage) {
			fmt.Fprintln(out, sensorUsageText)
			return sensorStatusFail
		}
		fmt.Fprintf(out, "Manual Override: %d V\n", voltage)
		return 0

	case "auto":
		c.override.EnableAuto()
		fmt.Fprintln(out, sensorAutoText)
		return 0

	case "status":
		c.printStatus(out)
		return 0

	case "help", "-h", "--help":
		printSensorHelp(out)
		return 0

	default:
		fmt.Fprintf(out, "sensor: unknown parameter: %s\n", args[0])
		return sensorStatusFail
	}
}

func (c *SensorCommands) printStatus(out io.Writer) {
	snap := c.state.Snapshot()

	mode := "auto"
	if !snap.AutoMode {
		mode = "manual"
	}

	fmt.Fprintf(out, "Voltage:   %.1f V (%s)\n", snap.Voltage, mode)
	fmt.Fprintf(out, "Grid:      %s\n", gridStatusName(c.window.OK(snap.Voltage)))
	if c.indicator != nil {
		fmt.Fprintf(out, "Indicator: %s\n", indicator.StateName(c.indicator.Active()))
	}
	fmt.Fprintf(out, "Range 1h:  %.1f - %.1f V\n", snap.RangeMin, snap.RangeMax)
}
