package evremap

import "strings"

// Modifier is a named flag of the remap state.
type Modifier uint8

const (
	// ModLayer1 is set while the Layer1 key (CapsLock) is held.
	ModLayer1 Modifier = iota
	// ModLayer2 is set while the Layer2 key (102ND) is held.
	ModLayer2
	// ModCtrlSub is set while the Layer1 Ctrl substitute is held.
	ModCtrlSub
	// ModWinSub is set while the Super substitute (RightAlt) is held.
	ModWinSub
	// ModAdmin is set while Escape is held under Layer1.
	ModAdmin
	// ModLeftAlt tracks the physical left Alt key.
	ModLeftAlt
	// ModLeftCtrl tracks the physical left Ctrl key.
	ModLeftCtrl
	// ModAltLayout enables the alternate base layout.
	ModAltLayout

	numModifiers
)

var modifierNames = [numModifiers]string{
	ModLayer1:    "layer1",
	ModLayer2:    "layer2",
	ModCtrlSub:   "ctrlsub",
	ModWinSub:    "winsub",
	ModAdmin:     "admin",
	ModLeftAlt:   "leftalt",
	ModLeftCtrl:  "leftctrl",
	ModAltLayout: "altlayout",
}

func (m Modifier) String() string {
	if m < numModifiers {
		return modifierNames[m]
	}
	return "unknown"
}

// State is the set of active modifiers. The zero value has none active and
// two states are equal when the same modifiers are active.
type State struct {
	mods uint16
}

// Active reports whether m is set.
func (s State) Active(m Modifier) bool {
	return s.mods&(1<<m) != 0
}

// Set sets or clears m.
func (s *State) Set(m Modifier, on bool) {
	if on {
		s.mods |= 1 << m
	} else {
		s.mods &^= 1 << m
	}
}

// With returns a copy of s with m set or cleared.
func (s State) With(m Modifier, on bool) State {
	s.Set(m, on)
	return s
}

// Modifiers lists the active modifiers in declaration order.
func (s State) Modifiers() []Modifier {
	var a []Modifier
	for m := Modifier(0); m < numModifiers; m++ {
		if s.Active(m) {
			a = append(a, m)
		}
	}
	return a
}

func (s State) String() string {
	mods := s.Modifiers()
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}
