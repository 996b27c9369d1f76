package adapter

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Launcher opens cover images in an external viewer
type Launcher struct {
	command string   // configured viewer command, empty for auto-detection
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// start runs a command without waiting for it
	start func(name string, args ...string) error
	// lookPath resolves a command in PATH
	lookPath func(name string) (string, error)
}

// candidateViewers defines the preferred viewer order for each platform
var candidateViewers = map[string][]string{
	"linux":  {"imv", "feh", "sxiv", "eog"},
	"darwin": {},
}

// NewLauncher creates a new Launcher. command may carry arguments, e.g.
// "feh --scale-down".
func NewLauncher(command string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	fields := strings.Fields(command)
	l := &Launcher{
		logger:   logger,
		start:    startDetached,
		lookPath: exec.LookPath,
	}
	if len(fields) > 0 {
		l.command = fields[0]
		l.args = fields[1:]
	}
	return l
}

func startDetached(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open shows the image at path
func (l *Launcher) Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cover file unavailable: %w", err)
	}

	// Tier 1: User configured a specific viewer
	if l.command != "" {
		args := append(append([]string{}, l.args...), path)
		l.logger.Info("launching viewer", "command", l.command, "args", args)
		return l.start(l.command, args...)
	}

	// Tier 2: Try candidate viewers in order
	candidates, ok := candidateViewers[runtime.GOOS]
	if !ok {
		candidates = candidateViewers["linux"]
	}
	for _, viewer := range candidates {
		if _, err := l.lookPath(viewer); err != nil {
			l.logger.Debug("viewer not available", "viewer", viewer)
			continue
		}
		if err := l.start(viewer, path); err == nil {
			l.logger.Info("launched with detected viewer", "viewer", viewer, "path", path)
			return nil
		}
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate viewers found, using system default")
	return l.launchDefault(path)
}

// launchDefault opens the file using the system default handler
func (l *Launcher) launchDefault(path string) error {
	l.logger.Info("launching with system default", "os", runtime.GOOS, "path", path)
	switch runtime.GOOS {
	case "darwin":
		return l.start("open", path)
	case "windows":
		return l.start("cmd", "/c", "start", "", path)
	default:
		return l.start("xdg-open", path)
	}
}
