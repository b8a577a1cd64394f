package device

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/holoplot/go-evdev"
)

// ErrNoKeyboard is returned by Select when no device matches.
var ErrNoKeyboard = errors.New("no keyboard found")

// Info describes an input device node.
type Info struct {
	Path     string
	Name     string
	Keyboard bool
}

// List returns every readable input device, in the order of their paths.
func List() ([]Info, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("cannot list input devices: %w", err)
	}

	var list []Info
	for _, p := range paths {
		d, err := evdev.OpenWithFlags(p.Path, os.O_RDONLY)
		if err != nil {
			continue
		}

		list = append(list, Info{
			Path:     p.Path,
			Name:     p.Name,
			Keyboard: isKeyboard(d.CapableTypes(), d.CapableEvents(evdev.EV_KEY)),
		})
		d.Close()
	}

	return list, nil
}

// Keyboards filters the keyboards out of devices.
func Keyboards(devices []Info) []Info {
	var kbds []Info
	for _, d := range devices {
		if d.Keyboard {
			kbds = append(kbds, d)
		}
	}
	return kbds
}

// isKeyboard reports devices with key repeat that can type letters and
// Enter. Mice and power buttons report EV_KEY as well.
func isKeyboard(types []evdev.EvType, keys []evdev.EvCode) bool {
	if !slices.Contains(types, evdev.EV_KEY) || !slices.Contains(types, evdev.EV_REP) {
		return false
	}
	return slices.Contains(keys, evdev.KEY_A) && slices.Contains(keys, evdev.KEY_ENTER)
}

// Criteria selects the device to remap.
type Criteria struct {
	// Path selects a device node directly.
	Path string
	// Name selects the first device with this kernel name.
	Name string
}

// Chooser picks one of several keyboards and returns its index.
type Chooser func(candidates []Info) (int, error)

// Select picks a device out of devices. An explicit path wins and does not
// need to be listed. Without criteria the only keyboard is used; with more
// than one, choose decides, or the first one is used when choose is nil.
func Select(devices []Info, c Criteria, choose Chooser) (Info, error) {
	if c.Path != "" {
		for _, d := range devices {
			if d.Path == c.Path {
				return d, nil
			}
		}
		return Info{Path: c.Path}, nil
	}

	if c.Name != "" {
		for _, d := range devices {
			if d.Name == c.Name {
				return d, nil
			}
		}
		return Info{}, fmt.Errorf("%w: no device named %q", ErrNoKeyboard, c.Name)
	}

	kbds := Keyboards(devices)
	switch {
	case len(kbds) == 0:
		return Info{}, ErrNoKeyboard
	case len(kbds) == 1 || choose == nil:
		return kbds[0], nil
	}

	i, err := choose(kbds)
	if err != nil {
		return Info{}, err
	}
	if i < 0 || i >= len(kbds) {
		return Info{}, fmt.Errorf("invalid selection %d, want 0-%d", i, len(kbds)-1)
	}

	return kbds[i], nil
}
