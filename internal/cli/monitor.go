package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/holoplot/go-evremap"
	"github.com/holoplot/go-evremap/device"
	"github.com/holoplot/go-evremap/key"
)

// MonitorOptions holds flags for the monitor command.
type MonitorOptions struct {
	*RootOptions
	DeviceOptions

	Qwerty bool
}

// NewMonitorCommand creates the monitor command.
func NewMonitorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MonitorOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print key events and the remap decisions they would produce",
		Long: `Read a keyboard without grabbing it and print every key event together with
what the remapper would emit. Nothing is written to a virtual keyboard and no
effect is run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Device, "device", "d", "", "path of the keyboard device node")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "kernel name of the keyboard")
	cmd.Flags().BoolVar(&opts.Qwerty, "qwerty", false, "start with the Colemak base layout off")
	cmd.MarkFlagsMutuallyExclusive("device", "name")

	return cmd
}

func runMonitor(cmd *cobra.Command, opts *MonitorOptions) error {
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

	kbd, err := device.Open(info.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open keyboard", err)
	}
	defer kbd.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Input device name: \"%s\"\n", kbd.Name())
	fmt.Fprintf(w, "Testing ... (interrupt to exit)\n")

	p := &printer{w: w}
	eng := evremap.New(p, evremap.Config{AltLayout: !opts.Qwerty})

	monitor(ctx, kbd.Events(ctx), eng, p)

	if ctx.Err() == nil {
		if readErr := kbd.Err(); readErr != nil {
			return WrapExitError(ExitFailure, "keyboard lost", readErr)
		}
	}
	return nil
}

// monitor prints each event with its decision. A Terminate effect is
// reported and ignored.
func monitor(ctx context.Context, events <-chan evremap.KeyEvent, eng *evremap.Engine, p *printer) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			fmt.Fprintf(p.w, "Event: %s\n", ev)

			// The printer never fails.
			out, _ := eng.Process(ev)

			if !out.Handled {
				fmt.Fprintf(p.w, "  forward %s %s\n", ev.Code, ev.State)
			}
			if err := eng.Execute(p, out.Effects); errors.Is(err, evremap.ErrTerminated) {
				fmt.Fprintf(p.w, "  would terminate\n")
			}
			fmt.Fprintf(p.w, "  modifiers %s\n", eng.State())
		}
	}
}

// printer is an output sink and executor describing what it would do.
type printer struct {
	w io.Writer
}

func (p *printer) Send(code key.Code, st evremap.KeyState) error {
	fmt.Fprintf(p.w, "  emit %s %s\n", code, st)
	return nil
}

func (p *printer) Notify(text string) error {
	fmt.Fprintf(p.w, "  would notify %q\n", text)
	return nil
}

func (p *printer) KillForegroundProcess() error {
	fmt.Fprintf(p.w, "  would kill the foreground process\n")
	return nil
}

func (p *printer) LockSession() error {
	fmt.Fprintf(p.w, "  would lock the session\n")
	return nil
}

func (p *printer) Minimize() error {
	fmt.Fprintf(p.w, "  would minimize the active window\n")
	return nil
}

func (p *printer) ResetLayer() error {
	fmt.Fprintf(p.w, "  would reset the layer\n")
	return nil
}
