package evremap

import (
	"sort"

	"github.com/holoplot/go-evremap/key"
)

// heldKeys remembers what was emitted for every physical key that is still
// down, so the emission can be retracted when the state changes under it.
//
// Only Pass and Substitute targets are kept: a Sequence releases everything
// it presses and Block never pressed anything. A retracted code stays in the
// retracted set until its physical release.
type heldKeys struct {
	targets   map[key.Code]Target
	retracted map[key.Code]struct{}
}

func newHeldKeys() *heldKeys {
	return &heldKeys{
		targets:   make(map[key.Code]Target),
		retracted: make(map[key.Code]struct{}),
	}
}

func tracked(t Target) bool {
	return t.Kind == Pass || t.Kind == Substitute
}

// emitted returns the code the OS believes is down for t, which was resolved
// for the physical key code.
func emitted(code key.Code, t Target) key.Code {
	if t.Kind == Substitute {
		return t.Code
	}
	return code
}

func (h *heldKeys) get(code key.Code) (Target, bool) {
	t, ok := h.targets[code]
	return t, ok
}

// track records t for code. Targets that hold nothing drop the entry.
func (h *heldKeys) track(code key.Code, t Target) {
	if tracked(t) {
		h.targets[code] = t
	} else {
		delete(h.targets, code)
	}
}

func (h *heldKeys) forget(code key.Code) {
	delete(h.targets, code)
}

// retract drops the entry for code and marks the physical key as un-held.
func (h *heldKeys) retract(code key.Code) {
	delete(h.targets, code)
	h.retracted[code] = struct{}{}
}

func (h *heldKeys) isRetracted(code key.Code) bool {
	_, ok := h.retracted[code]
	return ok
}

// settle clears the retracted mark once the physical key is pressed anew or
// released.
func (h *heldKeys) settle(code key.Code, st KeyState) {
	if st != KeyRepeat {
		delete(h.retracted, code)
	}
}

// codes lists the held codes in ascending order.
func (h *heldKeys) codes() []key.Code {
	codes := make([]key.Code, 0, len(h.targets))
	for c := range h.targets {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func (h *heldKeys) len() int {
	return len(h.targets)
}
