package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// readlineWriter wraps log output to work with readline
type readlineWriter struct {
	mu  sync.Mutex
	rl  *readline.Instance
	out io.Writer
}

// attach routes output around the given prompt, nil detaches
func (w *readlineWriter) attach(rl *readline.Instance) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rl = rl
}

func (w *readlineWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rl != nil {
		w.rl.Clean()
	}
	n, err = w.out.Write(p)
	if w.rl != nil {
		w.rl.Refresh()
	}
	return n, err
}

// Global readline writer for log output
var rlWriter = &readlineWriter{out: os.Stderr}

// handleShellCommand processes one shell line and returns the command status
func handleShellCommand(line string, commands *SensorCommands, out io.Writer) int {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return 0
	}

	switch parts[0] {
	case "sensor":
		return commands.Run(parts[1:], out)

	case "help":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  sensor set <voltage>   - Override the simulated voltage")
		fmt.Fprintln(out, "  sensor auto            - Resume the automatic day/night simulation")
		fmt.Fprintln(out, "  sensor status          - Show voltage, mode, grid and indicator")
		fmt.Fprintln(out, "  help                   - Show this help")
		return 0

	default:
		fmt.Fprintf(out, "%s: command not found (try 'help')\n", parts[0])
		return sensorStatusFail
	}
}

// readlineLoop runs the readline loop, sending commands to the channel
func readlineLoop(
	ctx context.Context,
	cancel context.CancelFunc,
	rl *readline.Instance,
	commandChan chan<- string,
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			cancel() // Ctrl+C pressed, shutdown the app
			return
		}
		if err != nil {
			return // EOF or other error
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		select {
		case commandChan <- line:
		case <-ctx.Done():
			return
		}
	}
}

// getHistoryFilePath returns the path for the shell history file
func getHistoryFilePath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "" // No history if we can't find home
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	appCache := filepath.Join(cacheDir, "microinverter")
	// Create directory if it doesn't exist
	_ = os.MkdirAll(appCache, 0750)
	return filepath.Join(appCache, "shell_history")
}

// sensorShellWorker provides the interactive operator shell
func sensorShellWorker(
	ctx context.Context,
	cancel context.CancelFunc,
	commands *SensorCommands,
	logger *slog.Logger,
) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "uart:~$ ",
		HistoryFile: getHistoryFilePath(),
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("sensor",
				readline.PcItem("set"),
				readline.PcItem("auto"),
				readline.PcItem("status"),
			),
			readline.PcItem("help"),
		),
	})
	if err != nil {
		logger.Error("Sensor shell: readline init failed", "error", err)
		return
	}
	defer func() {
		_ = rl.Close()
		rlWriter.attach(nil) // Clear readline reference on exit
	}()

	// Log output already goes through rlWriter, attach it to the prompt
	rlWriter.attach(rl)

	logger.Info("Sensor shell started (type 'help' for commands)")

	commandChan := make(chan string, 10)
	go readlineLoop(ctx, cancel, rl, commandChan)

	for {
		select {
		case line := <-commandChan:
			if status := handleShellCommand(line, commands, rl.Stdout()); status != 0 {
				logger.Debug("Shell command failed", "command", line, "status", status)
			}
		case <-ctx.Done():
			logger.Info("Sensor shell stopped")
			return
		}
	}
}
