// Package desktop runs the host side effects of key bindings on a Linux
// desktop session.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Default commands.
var (
	DefaultNotifyCmd   = []string{"notify-send", "-a", "evremap"}
	DefaultLockCmd     = []string{"loginctl", "lock-session"}
	DefaultMinimizeCmd = []string{"xdotool", "getactivewindow", "windowminimize"}
	ActiveWindowPID    = []string{"xdotool", "getactivewindow", "getwindowpid"}
)

// lookupTimeout bounds commands whose output is waited for.
var lookupTimeout = 2 * time.Second

// Options configures an Executor. Empty commands use the defaults.
type Options struct {
	NotifyCmd   []string
	LockCmd     []string
	MinimizeCmd []string
}

// Executor implements evremap.Executor with external commands. Commands
// are started and not waited for, so a slow notification daemon never
// delays key processing.
type Executor struct {
	notifyCmd   []string
	lockCmd     []string
	minimizeCmd []string

	start      func(argv []string) error
	output     func(argv []string) ([]byte, error)
	kill       func(pid int, sig unix.Signal) error
	background func(fn func())
}

// New creates an Executor.
func New(opts Options) *Executor {
	x := &Executor{
		notifyCmd:   opts.NotifyCmd,
		lockCmd:     opts.LockCmd,
		minimizeCmd: opts.MinimizeCmd,
		start:       startCommand,
		output:      commandOutput,
		kill:        unix.Kill,
		background:  func(fn func()) { go fn() },
	}
	if len(x.notifyCmd) == 0 {
		x.notifyCmd = DefaultNotifyCmd
	}
	if len(x.lockCmd) == 0 {
		x.lockCmd = DefaultLockCmd
	}
	if len(x.minimizeCmd) == 0 {
		x.minimizeCmd = DefaultMinimizeCmd
	}
	return x
}

// Notify shows text as a desktop notification.
func (x *Executor) Notify(text string) error {
	argv := append(append([]string{}, x.notifyCmd...), text)
	return x.start(argv)
}

// LockSession locks the current session.
func (x *Executor) LockSession() error {
	return x.start(x.lockCmd)
}

// Minimize minimizes the active window.
func (x *Executor) Minimize() error {
	return x.start(x.minimizeCmd)
}

// KillForegroundProcess sends SIGKILL to the process owning the active
// window. The window lookup runs in the background; failures are logged.
func (x *Executor) KillForegroundProcess() error {
	x.background(func() {
		if err := x.killForeground(); err != nil {
			slog.Warn("cannot kill foreground process", "error", err)
		}
	})
	return nil
}

func (x *Executor) killForeground() error {
	out, err := x.output(ActiveWindowPID)
	if err != nil {
		return fmt.Errorf("cannot find active window: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return fmt.Errorf("invalid pid %q: %w", strings.TrimSpace(string(out)), err)
	}
	if pid <= 1 || pid == os.Getpid() {
		return fmt.Errorf("refusing to kill pid %d", pid)
	}

	slog.Info("killing foreground process", "pid", pid)

	return x.kill(pid, unix.SIGKILL)
}

// ResetLayer has nothing to reset: the layer state lives in the engine and
// the desktop has no layout of its own to restore.
func (x *Executor) ResetLayer() error {
	return nil
}

func startCommand(argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("command failed", "command", argv[0], "error", err)
		}
	}()

	return nil
}

func commandOutput(argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	return exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
}
