package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/holoplot/go-evremap/device"
)

// DeviceOptions selects the keyboard for commands reading a device.
type DeviceOptions struct {
	Device string
	Name   string
}

func (o *DeviceOptions) criteria() device.Criteria {
	return device.Criteria{Path: o.Device, Name: o.Name}
}

// selectDevice resolves the device flags. An explicit path skips the scan
// of /dev/input so a device that is not plugged in yet can be waited for.
func selectDevice(opts *DeviceOptions, in io.Reader, out io.Writer) (device.Info, error) {
	if opts.Device != "" {
		return device.Info{Path: opts.Device}, nil
	}

	devices, err := device.List()
	if err != nil {
		return device.Info{}, WrapExitError(ExitCommandError, "cannot list input devices", err)
	}

	info, err := device.Select(devices, opts.criteria(), chooser(in, out))
	if err != nil {
		return device.Info{}, WrapExitError(ExitCommandError, "cannot select keyboard", err)
	}

	return info, nil
}

// chooser prompts for a keyboard when in is a terminal. Otherwise the first
// keyboard is used.
func chooser(in io.Reader, out io.Writer) device.Chooser {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}

	return func(candidates []device.Info) (int, error) {
		return readChoice(bufio.NewReader(in), out, candidates)
	}
}

func readChoice(r *bufio.Reader, out io.Writer, candidates []device.Info) (int, error) {
	for i, d := range candidates {
		fmt.Fprintf(out, "%d: %s\t%s\n", i, d.Path, d.Name)
	}

	for {
		fmt.Fprintf(out, "Select the device [0-%d]: ", len(candidates)-1)

		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("reading selection: %w", err)
		}

		i, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && i >= 0 && i < len(candidates) {
			return i, nil
		}

		if err != nil {
			return 0, fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
		}
		fmt.Fprintln(out, "Invalid selection.")
	}
}
