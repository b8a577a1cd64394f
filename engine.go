// Package evremap implements a layered keyboard remapping engine.
//
// An Engine is fed physical key events one at a time. For each event it
// resolves an output decision, writes the resulting key actions to an
// OutputSink and returns the side effects the host has to run. Substitutes
// that are still held when the active layer changes are released again, so
// nothing is left pressed on the output device.
package evremap

import (
	"fmt"
	"log/slog"

	"github.com/holoplot/go-evremap/key"
)

// OutputSink receives the key actions emitted by the engine, in order.
type OutputSink interface {
	Send(code key.Code, st KeyState) error
}

// Executor runs the host side effects. Calls must not block for longer than
// a few milliseconds.
type Executor interface {
	Notify(text string) error
	KillForegroundProcess() error
	LockSession() error
	ResetLayer() error
	Minimize() error
}

// Config holds the construction parameters of an Engine.
type Config struct {
	// AltLayout starts the engine with the alternate base layout enabled.
	AltLayout bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Outcome is the result of processing one event.
type Outcome struct {
	// Handled is false when the host must forward the original event
	// unchanged.
	Handled bool
	// Target is the decision taken for the event.
	Target Target
	// Effects are the host side effects, in resolution order. Modifier
	// changes have already been applied by the engine.
	Effects []Effect
}

// Engine owns the remap state and the held keys of one keyboard. It is not
// safe for concurrent use; events must be processed in arrival order.
type Engine struct {
	sink  OutputSink
	log   *slog.Logger
	state State
	held  *heldKeys
}

// New creates an Engine writing to sink.
func New(sink OutputSink, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		sink: sink,
		log:  logger,
		held: newHeldKeys(),
	}
	e.state.Set(ModAltLayout, cfg.AltLayout)

	return e
}

// State returns the current remap state.
func (e *Engine) State() State {
	return e.state
}

// Held returns the number of physical keys whose emission is still pressed.
func (e *Engine) Held() int {
	return e.held.len()
}

// Process handles one physical key event. An error wraps ErrSink; the engine
// must not be used after that.
func (e *Engine) Process(ev KeyEvent) (Outcome, error) {
	code := ev.Code

	target, effects := Resolve(e.state, ev.State, code)

	// A retracted key stays silent until it is pressed again. Its release
	// still clears the modifiers it drives.
	if e.held.isRetracted(code) {
		switch ev.State {
		case KeyRepeat:
			target, effects = blockTarget(), nil
		case KeyUp:
			target = blockTarget()
		}
	}
	e.held.settle(code, ev.State)

	if prev, ok := e.held.get(code); ok && ev.State != KeyUp && !prev.Equal(target) {
		if err := e.send(emitted(code, prev), KeyUp); err != nil {
			return Outcome{}, err
		}
		e.held.forget(code)
	}

	out := Outcome{Handled: true, Target: target}

	switch target.Kind {
	case Pass:
		out.Handled = false
	case Substitute:
		if err := e.send(target.Code, ev.State); err != nil {
			return Outcome{}, err
		}
	case Sequence:
		for _, a := range target.Seq {
			if err := e.send(a.Code, a.State); err != nil {
				return Outcome{}, err
			}
		}
	}

	if ev.State == KeyUp {
		e.held.forget(code)
	} else {
		e.held.track(code, target)
	}

	e.log.Debug("key",
		"code", code,
		"state", ev.State,
		"target", target,
		"modifiers", e.state)

	before := e.state
	for _, fx := range effects {
		if fx.Kind == SetModifier {
			e.state.Set(fx.Modifier, fx.On)
			continue
		}
		out.Effects = append(out.Effects, fx)
	}

	if e.state != before {
		e.log.Debug("modifiers changed", "from", before, "to", e.state)
		if err := e.reconcile(); err != nil {
			return Outcome{}, err
		}
	}

	return out, nil
}

// reconcile releases every held emission that the current state would no
// longer produce. The new target is not pressed: the key stays silent until
// it is pressed again.
func (e *Engine) reconcile() error {
	for _, code := range e.held.codes() {
		prev, _ := e.held.get(code)

		now, _ := Resolve(e.state, KeyRepeat, code)
		if now.Equal(prev) {
			continue
		}

		if prev.Kind == Sequence {
			continue
		}

		out := emitted(code, prev)
		if err := e.send(out, KeyUp); err != nil {
			return err
		}
		e.held.retract(code)

		e.log.Debug("retracted held key", "code", code, "released", out, "now", now)
	}

	return nil
}

// ReleaseAll releases every held emission. Hosts call it before shutting
// down the output device.
func (e *Engine) ReleaseAll() error {
	for _, code := range e.held.codes() {
		prev, _ := e.held.get(code)
		if err := e.send(emitted(code, prev), KeyUp); err != nil {
			return err
		}
		e.held.retract(code)
	}
	return nil
}

// Execute runs host effects in order. Executor failures are logged and
// skipped. A Terminate effect stops execution and returns ErrTerminated.
func (e *Engine) Execute(x Executor, effects []Effect) error {
	for _, fx := range effects {
		var err error

		switch fx.Kind {
		case Notify:
			err = x.Notify(fx.Text)
		case KillForegroundProcess:
			err = x.KillForegroundProcess()
		case LockSession:
			err = x.LockSession()
		case ResetLayer:
			err = x.ResetLayer()
		case Minimize:
			err = x.Minimize()
		case Terminate:
			return ErrTerminated
		}

		if err != nil {
			e.log.Warn("effect failed", "effect", fx, "error", err)
		}
	}

	return nil
}

func (e *Engine) send(code key.Code, st KeyState) error {
	if err := e.sink.Send(code, st); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrSink, code, st, err)
	}
	return nil
}
