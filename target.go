package evremap

import (
	"fmt"
	"strings"

	"github.com/holoplot/go-evremap/key"
)

// TargetKind tags the variant held by a Target.
type TargetKind uint8

const (
	// Pass forwards the original event unchanged. It is the "no decision"
	// result: the engine reports the event as forwarded.
	Pass TargetKind = iota
	// Substitute emits a different code with the same key state.
	Substitute
	// Sequence emits a fixed, self-releasing chord.
	Sequence
	// Block emits nothing.
	Block
)

func (k TargetKind) String() string {
	switch k {
	case Pass:
		return "pass"
	case Substitute:
		return "substitute"
	case Sequence:
		return "sequence"
	case Block:
		return "block"
	}
	return "unknown"
}

// KeyAction is one step of a Sequence. State is KeyDown or KeyUp.
type KeyAction struct {
	Code  key.Code
	State KeyState
}

func (a KeyAction) String() string {
	return a.Code.String() + " " + a.State.String()
}

// Target is the output decision for one event.
type Target struct {
	Kind TargetKind
	// Code is the emitted code of a Substitute.
	Code key.Code
	// Seq holds the actions of a Sequence.
	Seq []KeyAction
}

func passTarget() Target { return Target{Kind: Pass} }

func blockTarget() Target { return Target{Kind: Block} }

func sub(c key.Code) Target { return Target{Kind: Substitute, Code: c} }

func seq(actions ...KeyAction) Target { return Target{Kind: Sequence, Seq: actions} }

func press(c key.Code) KeyAction { return KeyAction{Code: c, State: KeyDown} }

func release(c key.Code) KeyAction { return KeyAction{Code: c, State: KeyUp} }

// chord holds mod while tapping c.
func chord(mod, c key.Code) Target {
	return seq(press(mod), press(c), release(c), release(mod))
}

func ctrlChord(c key.Code) Target { return chord(key.LeftCtrl, c) }

func shiftChord(c key.Code) Target { return chord(key.LeftShift, c) }

func altChord(c key.Code) Target { return chord(key.LeftAlt, c) }

// withoutCtrl taps c with the (substituted) Ctrl released around it.
func withoutCtrl(c key.Code) Target {
	return seq(release(key.LeftCtrl), press(c), release(c), press(key.LeftCtrl))
}

// Equal reports whether t and o describe the same output.
func (t Target) Equal(o Target) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Substitute:
		return t.Code == o.Code
	case Sequence:
		if len(t.Seq) != len(o.Seq) {
			return false
		}
		for i := range t.Seq {
			if t.Seq[i] != o.Seq[i] {
				return false
			}
		}
	}
	return true
}

func (t Target) String() string {
	switch t.Kind {
	case Substitute:
		return fmt.Sprintf("substitute(%s)", t.Code)
	case Sequence:
		steps := make([]string, len(t.Seq))
		for i, a := range t.Seq {
			steps[i] = a.String()
		}
		return "sequence(" + strings.Join(steps, ", ") + ")"
	}
	return t.Kind.String()
}
