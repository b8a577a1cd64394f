package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/holoplot/go-evremap/device"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var keyboardsOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List input devices",
		Long: `List the readable input devices with their kernel names. Devices usable
as the remapped keyboard are marked.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := device.List()
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot list input devices", err)
			}
			if keyboardsOnly {
				devices = device.Keyboards(devices)
			}
			printDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&keyboardsOnly, "keyboards", "k", false, "list keyboards only")

	return cmd
}

func printDevices(w io.Writer, devices []device.Info) {
	if len(devices) == 0 {
		fmt.Fprintln(w, "No input devices found.")
		return
	}

	for _, d := range devices {
		mark := ""
		if d.Keyboard {
			mark = "\t(keyboard)"
		}
		fmt.Fprintf(w, "%s:\t%s%s\n", d.Path, d.Name, mark)
	}
}
