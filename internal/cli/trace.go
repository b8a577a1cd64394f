package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holoplot/go-evremap/internal/harness"
)

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <scenario.yaml>...",
		Short: "Replay scripted key events and print the output trace",
		Long: `Replay the key events of scenario files through the remapper without any
device and print what a virtual keyboard would receive.

The command fails when a scenario leaves keys pressed.

Example:
  evremap trace internal/harness/testdata/scenarios/colemak_reconcile.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			stuck := 0

			for i, path := range args {
				scenario, err := harness.LoadScenario(path)
				if err != nil {
					return WrapExitError(ExitCommandError, path, err)
				}

				result, err := harness.Run(scenario)
				if err != nil {
					return WrapExitError(ExitCommandError, scenario.Name, err)
				}

				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "# %s: %s\n", scenario.Name, scenario.Description)
				fmt.Fprint(w, result.String())

				if result.Held > 0 || len(result.Pressed) > 0 {
					stuck++
				}
			}

			if stuck > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) left keys pressed", stuck))
			}
			return nil
		},
	}

	return cmd
}
