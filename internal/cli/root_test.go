package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "evremap", cmd.Use)
	assert.Contains(t, cmd.Long, "CapsLock")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "list", "monitor", "trace"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{name: "device", shorthand: "d", def: ""},
		{name: "name", shorthand: "n", def: ""},
		{name: "wait", def: "false"},
		{name: "qwerty", def: "false"},
		{name: "virtual-name", def: "evremap virtual keyboard"},
		{name: "notify-cmd", def: "notify-send -a evremap"},
		{name: "lock-cmd", def: "loginctl lock-session"},
		{name: "minimize-cmd", def: "xdotool getactivewindow windowminimize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := runCmd.Flags().Lookup(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.shorthand, f.Shorthand)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestRunRejectsDeviceAndName(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--device", "/dev/input/event3", "--name", "kbd"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "plain", err: errors.New("boom"), want: ExitFailure},
		{name: "exit error", err: NewExitError(ExitCommandError, "bad"), want: ExitCommandError},
		{
			name: "wrapped",
			err:  WrapExitError(ExitFailure, "remapping failed", errors.New("write: no such device")),
			want: ExitFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	inner := errors.New("permission denied")
	err := WrapExitError(ExitCommandError, "cannot open keyboard", inner)

	assert.Equal(t, "cannot open keyboard: permission denied", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}
