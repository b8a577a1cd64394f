package device

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/holoplot/go-evdev"

	"github.com/holoplot/go-evremap"
	"github.com/holoplot/go-evremap/key"
)

// DefaultVirtualName is the name of the uinput keyboard.
const DefaultVirtualName = "evremap virtual keyboard"

var virtualID = evdev.InputID{
	BusType: 0x03,
	Vendor:  0x4711,
	Product: 0x0817,
	Version: 1,
}

// sink is the write side of an input device.
type sink interface {
	WriteOne(event *evdev.InputEvent) error
	Close() error
}

var synReport = evdev.InputEvent{
	Type:  evdev.EV_SYN,
	Code:  evdev.SYN_REPORT,
	Value: 0,
}

// Virtual is a uinput keyboard. It implements evremap.OutputSink and is safe
// for concurrent use.
type Virtual struct {
	mu  sync.Mutex
	dst sink
}

// NewVirtual creates a uinput keyboard able to emit every known key code
// plus the given extra codes, usually the capabilities of the grabbed
// keyboard.
func NewVirtual(name string, extra []key.Code) (*Virtual, error) {
	if name == "" {
		name = DefaultVirtualName
	}

	dev, err := evdev.CreateDevice(name, virtualID, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: capabilities(extra),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create virtual keyboard: %w", err)
	}

	slog.Info("created virtual keyboard", "name", name)

	return &Virtual{dst: dev}, nil
}

// capabilities merges the known key codes with extra, without duplicates.
func capabilities(extra []key.Code) []evdev.EvCode {
	seen := make(map[key.Code]bool)

	var codes []evdev.EvCode
	add := func(c key.Code) {
		if c == key.Reserved || c > key.Max || seen[c] {
			return
		}
		seen[c] = true
		codes = append(codes, evdev.EvCode(c))
	}

	for _, c := range key.All() {
		add(c)
	}
	for _, c := range extra {
		add(c)
	}

	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	return codes
}

// Send writes one key transition followed by a SYN_REPORT.
func (v *Virtual) Send(code key.Code, st evremap.KeyState) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	ev := &evdev.InputEvent{
		Type:  evdev.EV_KEY,
		Code:  evdev.EvCode(code),
		Value: int32(st),
	}
	if err := v.dst.WriteOne(ev); err != nil {
		return err
	}

	syn := synReport
	return v.dst.WriteOne(&syn)
}

// Forward writes a physical event unchanged.
func (v *Virtual) Forward(ev evremap.KeyEvent) error {
	return v.Send(ev.Code, ev.State)
}

// Close destroys the virtual keyboard.
func (v *Virtual) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dst.Close()
}
