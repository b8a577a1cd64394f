package evremap

import "fmt"

// EffectKind tags the variant held by an Effect.
type EffectKind uint8

const (
	// SetModifier sets or clears a modifier of the engine state.
	SetModifier EffectKind = iota
	// Notify shows a desktop notification.
	Notify
	// KillForegroundProcess kills the process owning the focused window.
	KillForegroundProcess
	// LockSession locks the user session.
	LockSession
	// Terminate stops the daemon.
	Terminate
	// ResetLayer runs the host reset hook when Layer1 is released.
	ResetLayer
	// Minimize minimizes the focused window.
	Minimize
)

// Effect describes a side effect produced by the resolver. Effects carry no
// behavior; the engine applies SetModifier and hands the rest to an Executor.
type Effect struct {
	Kind     EffectKind
	Modifier Modifier
	On       bool
	Text     string
}

func setMod(m Modifier, on bool) Effect {
	return Effect{Kind: SetModifier, Modifier: m, On: on}
}

func notify(text string) Effect {
	return Effect{Kind: Notify, Text: text}
}

func (e Effect) String() string {
	switch e.Kind {
	case SetModifier:
		return fmt.Sprintf("set %s=%t", e.Modifier, e.On)
	case Notify:
		return fmt.Sprintf("notify %q", e.Text)
	case KillForegroundProcess:
		return "kill foreground process"
	case LockSession:
		return "lock session"
	case Terminate:
		return "terminate"
	case ResetLayer:
		return "reset layer"
	case Minimize:
		return "minimize"
	}
	return "unknown"
}
