// Package device connects the remap engine to Linux input devices: the
// physical keyboard it grabs and the uinput keyboard it writes to.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/holoplot/go-evdev"

	"github.com/holoplot/go-evremap"
	"github.com/holoplot/go-evremap/key"
)

// source is the read side of an input device.
type source interface {
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

// Keyboard is a physical keyboard opened for reading. When it was opened
// with OpenKeyboard no other process receives its events until Close.
type Keyboard struct {
	dev     *evdev.InputDevice
	src     source
	path    string
	name    string
	keys    []key.Code
	grabbed bool

	mu  sync.Mutex
	err error
}

// Open opens the keyboard at path without grabbing it.
func Open(path string) (*Keyboard, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}

	name, err := dev.Name()
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("cannot get name of %s: %w", path, err)
	}

	// Capabilities are queried through the file descriptor, which puts it
	// back into blocking mode. That must happen before NonBlock.
	return &Keyboard{
		dev:  dev,
		src:  dev,
		path: path,
		name: name,
		keys: keyCodes(dev.CapableEvents(evdev.EV_KEY)),
	}, nil
}

// OpenKeyboard opens the keyboard at path and grabs it for exclusive access.
// Reads are switched to non-blocking mode so that Close interrupts a pending
// read.
func OpenKeyboard(path string) (*Keyboard, error) {
	k, err := Open(path)
	if err != nil {
		return nil, err
	}

	if err := k.dev.Grab(); err != nil {
		k.dev.Close()
		return nil, fmt.Errorf("cannot grab %s: %w", path, err)
	}
	k.grabbed = true

	if err := k.dev.NonBlock(); err != nil {
		k.Close()
		return nil, fmt.Errorf("cannot set %s non-blocking: %w", path, err)
	}

	slog.Info("grabbed keyboard", "path", path, "name", k.name)

	return k, nil
}

// Path returns the device node path.
func (k *Keyboard) Path() string {
	return k.path
}

// Name returns the name reported by the kernel.
func (k *Keyboard) Name() string {
	return k.name
}

// KeyCodes returns the key codes the keyboard reported when it was opened.
func (k *Keyboard) KeyCodes() []key.Code {
	return slices.Clone(k.keys)
}

func keyCodes(caps []evdev.EvCode) []key.Code {
	codes := make([]key.Code, 0, len(caps))
	for _, c := range caps {
		codes = append(codes, key.Code(c))
	}
	return codes
}

// Events starts reading key events. Non-key events and key events with
// unknown values are dropped. The channel is closed when ctx is done or the
// read fails; Err reports the failure.
func (k *Keyboard) Events(ctx context.Context) <-chan evremap.KeyEvent {
	ch := make(chan evremap.KeyEvent)

	go func() {
		defer close(ch)

		for {
			ev, err := k.src.ReadOne()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				k.setErr(err)
				return
			}

			if ev.Type != evdev.EV_KEY {
				continue
			}

			kev, ok := evremap.NewKeyEvent(key.Code(ev.Code), ev.Value)
			if !ok {
				continue
			}

			select {
			case ch <- kev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// Err returns the read error that closed the Events channel, if any.
func (k *Keyboard) Err() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.err
}

func (k *Keyboard) setErr(err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.err = fmt.Errorf("reading %s: %w", k.path, err)
}

// Close releases the grab, if any, and closes the device.
func (k *Keyboard) Close() error {
	var errs []error

	if k.grabbed {
		if err := k.dev.Ungrab(); err != nil {
			errs = append(errs, fmt.Errorf("cannot ungrab %s: %w", k.path, err))
		}
		k.grabbed = false
		slog.Info("released keyboard", "path", k.path)
	}

	if err := k.src.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
