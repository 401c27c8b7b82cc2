// Package host launches MapInfo Pro, or hands an application to a running instance.
//
// Talking to a running instance is platform specific and sits behind Platform.
// The default ExecPlatform can only start new processes.
package host

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoExecutable is returned when a new instance is needed and the host executable is missing.
var ErrNoExecutable = errors.New("host executable not specified or not found")

// Handle identifies a running host instance for its Platform.
type Handle any

// Platform is the capability to find, drive and start host instances.
type Platform interface {
	// Running returns a handle to a running instance registered under progID.
	Running(progID string) (Handle, bool)

	// Invoke runs one MapBasic command in the instance.
	Invoke(h Handle, command string) error

	// Start launches a new instance without waiting for it.
	Start(exe string, args ...string) error
}

// Request describes one launch.
type Request struct {
	// Executable of the host, used when a new instance is started
	Executable string

	// Application is the compiled program to run; may be empty
	Application string

	// ProgID names the instance to attach to
	ProgID string

	// Attach prefers a running instance over starting a new one
	Attach bool
}

// Launcher starts the host or attaches to it.
type Launcher struct {
	platform Platform
	log      zerolog.Logger
}

// NewLauncher returns a Launcher on platform; nil selects ExecPlatform.
func NewLauncher(platform Platform, log zerolog.Logger) *Launcher {
	if platform == nil {
		platform = ExecPlatform{}
	}
	return &Launcher{platform: platform, log: log}
}

// RunCommand is the MapBasic statement that runs app in an instance.
func RunCommand(app string) string {
	return fmt.Sprintf(`Run Application "%s"`, strings.ReplaceAll(app, `"`, `""`))
}

// Launch runs req.Application in a running instance when attaching is allowed and
// one is found, and in a new instance otherwise.
func (l *Launcher) Launch(req Request) error {
	if req.Attach && req.Application != "" && req.ProgID != "" {
		if h, ok := l.platform.Running(req.ProgID); ok {
			cmd := RunCommand(req.Application)
			l.log.Info().Str("prog_id", req.ProgID).Str("command", cmd).Msg("Attaching to running host")
			if err := l.platform.Invoke(h, cmd); err != nil {
				return fmt.Errorf("failed to run application in host: %w", err)
			}
			return nil
		}
		l.log.Debug().Str("prog_id", req.ProgID).Msg("No running host found")
	}

	if req.Executable == "" {
		return ErrNoExecutable
	}
	if info, err := os.Stat(req.Executable); err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoExecutable, req.Executable)
	}

	var args []string
	if req.Application != "" {
		args = append(args, req.Application)
	}
	l.log.Info().Str("exe", req.Executable).Strs("args", args).Msg("Starting host")
	if err := l.platform.Start(req.Executable, args...); err != nil {
		return fmt.Errorf("failed to start host: %w", err)
	}
	return nil
}

// ExecPlatform starts processes with os/exec and never sees running instances.
type ExecPlatform struct{}

func (ExecPlatform) Running(string) (Handle, bool) {
	return nil, false
}

func (ExecPlatform) Invoke(Handle, string) error {
	return errors.New("attaching to a running host is not supported on this platform")
}

func (ExecPlatform) Start(exe string, args ...string) error {
	cmd := exec.Command(exe, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
