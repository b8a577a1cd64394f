package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/holoplot/go-evremap"
	"github.com/holoplot/go-evremap/desktop"
	"github.com/holoplot/go-evremap/device"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DeviceOptions

	Wait        bool
	Qwerty      bool
	VirtualName string
	NotifyCmd   string
	LockCmd     string
	MinimizeCmd string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Grab a keyboard and remap it",
		Long: `Grab a physical keyboard and re-emit its keys through a virtual keyboard.

Without --device or --name the keyboards in /dev/input are scanned. With more
than one and a terminal on stdin, you are asked which one to use.

The daemon stops on SIGINT or SIGTERM, or with CapsLock+Esc+Space. Keys
still held are released on the virtual keyboard before it is destroyed.

Example:
  evremap run
  evremap run --device /dev/input/by-id/usb-Keychron_K2-event-kbd --wait
  evremap run --name "AT Translated Set 2 keyboard" --qwerty -v`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemap(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Device, "device", "d", "", "path of the keyboard device node")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "kernel name of the keyboard")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "wait for the device node to appear")
	cmd.Flags().BoolVar(&opts.Qwerty, "qwerty", false, "start with the Colemak base layout off")
	cmd.Flags().StringVar(&opts.VirtualName, "virtual-name", device.DefaultVirtualName, "name of the virtual keyboard")
	cmd.Flags().StringVar(&opts.NotifyCmd, "notify-cmd", strings.Join(desktop.DefaultNotifyCmd, " "), "command showing notifications, the text is appended")
	cmd.Flags().StringVar(&opts.LockCmd, "lock-cmd", strings.Join(desktop.DefaultLockCmd, " "), "command locking the session")
	cmd.Flags().StringVar(&opts.MinimizeCmd, "minimize-cmd", strings.Join(desktop.DefaultMinimizeCmd, " "), "command minimizing the active window")
	cmd.MarkFlagsMutuallyExclusive("device", "name")

	return cmd
}

func runRemap(cmd *cobra.Command, opts *RunOptions) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, unix.SIGTERM)
	defer stop()

	info, err := selectDevice(&opts.DeviceOptions, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if opts.Wait {
		if err := device.WaitFor(ctx, info.Path); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return WrapExitError(ExitCommandError, "cannot wait for device", err)
		}
	}

	kbd, err := device.OpenKeyboard(info.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open keyboard", err)
	}
	defer func() {
		if err := kbd.Close(); err != nil {
			slog.Error("error closing keyboard", "error", err)
		}
	}()

	virt, err := device.NewVirtual(opts.VirtualName, kbd.KeyCodes())
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot create virtual keyboard", err)
	}
	defer func() {
		if err := virt.Close(); err != nil {
			slog.Error("error closing virtual keyboard", "error", err)
		}
	}()

	eng := evremap.New(virt, evremap.Config{
		AltLayout: !opts.Qwerty,
		Logger:    slog.Default(),
	})
	x := desktop.New(desktop.Options{
		NotifyCmd:   strings.Fields(opts.NotifyCmd),
		LockCmd:     strings.Fields(opts.LockCmd),
		MinimizeCmd: strings.Fields(opts.MinimizeCmd),
	})

	slog.Info("remapping", "keyboard", kbd.Name(), "path", kbd.Path(), "modifiers", eng.State())

	err = remap(ctx, kbd.Events(ctx), eng, virt, x)

	if relErr := eng.ReleaseAll(); relErr != nil {
		slog.Error("cannot release held keys", "error", relErr)
	}

	switch {
	case errors.Is(err, evremap.ErrTerminated):
		slog.Info("terminated by key binding")
		return nil
	case err != nil:
		return WrapExitError(ExitFailure, "remapping failed", err)
	case ctx.Err() != nil:
		slog.Info("shutting down")
		return nil
	}

	if readErr := kbd.Err(); readErr != nil {
		return WrapExitError(ExitFailure, "keyboard lost", readErr)
	}
	return nil
}

// forwarder writes physical events the engine did not handle.
type forwarder interface {
	Forward(ev evremap.KeyEvent) error
}

// remap feeds events to the engine until the channel closes, ctx is done,
// the output fails or a Terminate effect runs.
func remap(ctx context.Context, events <-chan evremap.KeyEvent, eng *evremap.Engine, fwd forwarder, x evremap.Executor) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}

			out, err := eng.Process(ev)
			if err != nil {
				return err
			}

			if !out.Handled {
				if err := fwd.Forward(ev); err != nil {
					return fmt.Errorf("%w: forward %s: %w", evremap.ErrSink, ev.Code, err)
				}
			}

			if err := eng.Execute(x, out.Effects); err != nil {
				return err
			}
		}
	}
}
