package evremap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holoplot/go-evremap/key"
)

type recordingSink struct {
	actions []KeyAction
	fail    error
}

func (s *recordingSink) Send(code key.Code, st KeyState) error {
	if s.fail != nil {
		return s.fail
	}
	s.actions = append(s.actions, KeyAction{Code: code, State: st})
	return nil
}

func (s *recordingSink) take() []KeyAction {
	a := s.actions
	s.actions = nil
	return a
}

type recordingExecutor struct {
	calls []string
	fail  error
}

func (x *recordingExecutor) record(call string) error {
	x.calls = append(x.calls, call)
	return x.fail
}

func (x *recordingExecutor) Notify(text string) error { return x.record("notify " + text) }

func (x *recordingExecutor) KillForegroundProcess() error { return x.record("kill") }

func (x *recordingExecutor) LockSession() error { return x.record("lock") }

func (x *recordingExecutor) ResetLayer() error { return x.record("reset") }

func (x *recordingExecutor) Minimize() error { return x.record("minimize") }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(altLayout bool) (*Engine, *recordingSink) {
	sink := &recordingSink{}
	return New(sink, Config{AltLayout: altLayout, Logger: quietLogger()}), sink
}

func down(c key.Code) KeyEvent   { return KeyEvent{Code: c, State: KeyDown} }
func repeat(c key.Code) KeyEvent { return KeyEvent{Code: c, State: KeyRepeat} }
func up(c key.Code) KeyEvent     { return KeyEvent{Code: c, State: KeyUp} }

func process(t *testing.T, e *Engine, evs ...KeyEvent) Outcome {
	t.Helper()
	var out Outcome
	for _, ev := range evs {
		var err error
		out, err = e.Process(ev)
		require.NoError(t, err, ev.String())
	}
	return out
}

func TestEngineLayerReleaseRetractsArrow(t *testing.T) {
	e, sink := newTestEngine(false)

	out := process(t, e, down(key.CapsLock))
	assert.True(t, out.Handled)
	assert.Empty(t, sink.take())

	out = process(t, e, down(key.J))
	assert.True(t, out.Handled)
	assert.Equal(t, []KeyAction{press(key.Left)}, sink.take())
	assert.Equal(t, 1, e.Held())

	out = process(t, e, up(key.CapsLock))
	assert.True(t, out.Handled)
	assert.Equal(t, []KeyAction{release(key.Left)}, sink.take())
	assert.Equal(t, []Effect{{Kind: ResetLayer}}, out.Effects)
	assert.Equal(t, 0, e.Held())
	assert.False(t, e.State().Active(ModLayer1))

	// the retracted key stays silent until released
	out = process(t, e, repeat(key.J))
	assert.True(t, out.Handled)
	out = process(t, e, up(key.J))
	assert.True(t, out.Handled)
	assert.Empty(t, sink.take())

	// and behaves normally on the next press
	out = process(t, e, down(key.J))
	assert.False(t, out.Handled)
	assert.Equal(t, 1, e.Held())
}

func TestEngineReconcileSubstitute(t *testing.T) {
	e, sink := newTestEngine(true)

	process(t, e, down(key.J))
	assert.Equal(t, []KeyAction{press(key.N)}, sink.take())

	process(t, e, down(key.CapsLock))
	assert.Equal(t, []KeyAction{release(key.N)}, sink.take())

	process(t, e, repeat(key.J), repeat(key.J))
	assert.Empty(t, sink.take(), "no press of the new target before a new physical press")

	process(t, e, up(key.J), down(key.J))
	assert.Equal(t, []KeyAction{press(key.Left)}, sink.take())

	process(t, e, up(key.J))
	assert.Equal(t, []KeyAction{release(key.Left)}, sink.take())
}

func TestEngineReconcileForwardedKey(t *testing.T) {
	e, sink := newTestEngine(false)

	out := process(t, e, down(key.A))
	assert.False(t, out.Handled)
	assert.Equal(t, 1, e.Held())

	// A is blocked under Layer2, so the forwarded press is released
	process(t, e, down(key.Key102nd))
	assert.Equal(t, []KeyAction{release(key.A)}, sink.take())
	assert.Equal(t, 0, e.Held())
}

func TestEngineUnchangedTargetIsKept(t *testing.T) {
	e, sink := newTestEngine(false)

	process(t, e, down(key.CapsLock), down(key.J))
	sink.take()

	// Layer2 does not change anything while Layer1 is held
	process(t, e, down(key.Key102nd))
	assert.Empty(t, sink.take())
	assert.Equal(t, 1, e.Held())

	process(t, e, up(key.J))
	assert.Equal(t, []KeyAction{release(key.Left)}, sink.take())
}

func TestEngineSubstituteKeepsKeyState(t *testing.T) {
	e, sink := newTestEngine(false)

	process(t, e, down(key.Apostrophe), repeat(key.Apostrophe), up(key.Apostrophe))
	assert.Equal(t, []KeyAction{
		press(key.Esc),
		{Code: key.Esc, State: KeyRepeat},
		release(key.Esc),
	}, sink.take())
}

func TestEngineSequenceIsNotHeld(t *testing.T) {
	e, sink := newTestEngine(false)

	process(t, e, down(key.CapsLock))
	out := process(t, e, down(key.C))
	assert.True(t, out.Handled)
	assert.Equal(t, Sequence, out.Target.Kind)
	assert.Equal(t, ctrlChord(key.C).Seq, sink.take())
	assert.Equal(t, 0, e.Held())

	out = process(t, e, up(key.C))
	assert.True(t, out.Handled)
	assert.Empty(t, sink.take())

	// releasing the layer has nothing to retract
	process(t, e, up(key.CapsLock))
	assert.Empty(t, sink.take())
}

func TestEngineCtrlPageUp(t *testing.T) {
	e, sink := newTestEngine(false)

	process(t, e, down(key.CapsLock), down(key.I))
	assert.Equal(t, []KeyAction{press(key.Up)}, sink.take())

	// holding the Ctrl substitute turns the held arrow into page up
	process(t, e, down(key.F))
	assert.Equal(t, []KeyAction{press(key.LeftCtrl), release(key.Up)}, sink.take())

	process(t, e, repeat(key.I))
	assert.Empty(t, sink.take())

	process(t, e, up(key.I), down(key.I))
	assert.Equal(t, withoutCtrl(key.PageUp).Seq, sink.take())

	process(t, e, up(key.I), up(key.F))
	assert.Equal(t, []KeyAction{release(key.LeftCtrl)}, sink.take())
	assert.False(t, e.State().Active(ModCtrlSub))
}

func TestEngineAdminTerminate(t *testing.T) {
	e, sink := newTestEngine(false)
	x := &recordingExecutor{}

	process(t, e, down(key.CapsLock), down(key.Esc))
	assert.True(t, e.State().Active(ModAdmin))

	out := process(t, e, down(key.Space))
	assert.True(t, out.Handled)
	assert.Empty(t, out.Effects)

	out = process(t, e, up(key.Space))
	assert.True(t, out.Handled)
	assert.Equal(t, Block, out.Target.Kind)
	assert.Equal(t, []Effect{notify("Program terminated"), {Kind: Terminate}}, out.Effects)
	assert.Empty(t, sink.take())

	err := e.Execute(x, out.Effects)
	assert.ErrorIs(t, err, ErrTerminated)
	assert.Equal(t, []string{"notify Program terminated"}, x.calls)
}

func TestEngineAdminLeavesWithEscape(t *testing.T) {
	e, _ := newTestEngine(false)

	process(t, e, down(key.CapsLock), down(key.Esc), up(key.Esc))
	assert.False(t, e.State().Active(ModAdmin))

	out := process(t, e, down(key.Space), up(key.Space))
	assert.Empty(t, out.Effects)
}

func TestEngineLayoutToggleIsIdempotent(t *testing.T) {
	e, sink := newTestEngine(false)
	x := &recordingExecutor{}
	initial := e.State()

	toggle := func() {
		var effects []Effect
		for _, ev := range []KeyEvent{
			down(key.CapsLock), down(key.Esc), down(key.C), up(key.C), up(key.Esc), up(key.CapsLock),
		} {
			out, err := e.Process(ev)
			require.NoError(t, err)
			effects = append(effects, out.Effects...)
		}
		require.NoError(t, e.Execute(x, effects))
	}

	toggle()
	assert.True(t, e.State().Active(ModAltLayout))
	toggle()
	assert.Equal(t, initial, e.State())
	assert.Empty(t, sink.take())
	assert.Equal(t, []string{"notify Colemak", "reset", "notify Qwerty", "reset"}, x.calls)

	for c := key.Code(0); c <= key.Max; c++ {
		for _, ks := range []KeyState{KeyDown, KeyRepeat, KeyUp} {
			want, wantFx := Resolve(initial, ks, c)
			got, gotFx := Resolve(e.State(), ks, c)
			assert.True(t, want.Equal(got), "code %s", c)
			assert.Equal(t, wantFx, gotFx)
		}
	}
}

func TestEngineLockClearsSuper(t *testing.T) {
	e, sink := newTestEngine(false)

	process(t, e, down(key.RightAlt))
	assert.Equal(t, []KeyAction{press(key.LeftMeta)}, sink.take())

	out := process(t, e, down(key.U))
	assert.Equal(t, []Effect{{Kind: LockSession}}, out.Effects)
	assert.False(t, e.State().Active(ModWinSub))
	assert.Empty(t, sink.take())

	// the Super substitute is still held
	process(t, e, up(key.U), up(key.RightAlt))
	assert.Equal(t, []KeyAction{release(key.LeftMeta)}, sink.take())
}

func TestEngineSuperMinimize(t *testing.T) {
	e, sink := newTestEngine(false)
	x := &recordingExecutor{}

	process(t, e, down(key.RightAlt))
	assert.Equal(t, []KeyAction{press(key.LeftMeta)}, sink.take())

	out := process(t, e, down(key.M))
	assert.True(t, out.Handled)
	assert.Equal(t, []Effect{{Kind: Minimize}}, out.Effects)
	assert.Empty(t, sink.take())
	require.NoError(t, e.Execute(x, out.Effects))
	assert.Equal(t, []string{"minimize"}, x.calls)

	// Super stays held
	assert.True(t, e.State().Active(ModWinSub))
	process(t, e, up(key.M), up(key.RightAlt))
	assert.Equal(t, []KeyAction{release(key.LeftMeta)}, sink.take())
	assert.Zero(t, e.Held())
}

func TestEngineKillForeground(t *testing.T) {
	e, _ := newTestEngine(false)

	process(t, e, down(key.LeftCtrl), down(key.LeftAlt))
	out := process(t, e, down(key.Backspace))
	assert.False(t, out.Handled)
	assert.Equal(t, []Effect{{Kind: KillForegroundProcess}}, out.Effects)

	out = process(t, e, repeat(key.Backspace))
	assert.Empty(t, out.Effects)

	process(t, e, up(key.Backspace), up(key.LeftAlt))
	out = process(t, e, down(key.Backspace))
	assert.Empty(t, out.Effects)
}

func TestEngineModifierReleasedWhileRetracted(t *testing.T) {
	e, sink := newTestEngine(false)

	process(t, e, down(key.LeftAlt))
	assert.True(t, e.State().Active(ModLeftAlt))

	// LeftAlt is blocked under Layer2
	process(t, e, down(key.Key102nd))
	assert.Equal(t, []KeyAction{release(key.LeftAlt)}, sink.take())

	process(t, e, up(key.LeftAlt))
	assert.False(t, e.State().Active(ModLeftAlt))
	assert.Empty(t, sink.take())
}

func TestEngineReleaseAll(t *testing.T) {
	e, sink := newTestEngine(false)

	process(t, e, down(key.A), down(key.CapsLock), down(key.J), down(key.D))
	sink.take()
	require.Equal(t, 2, e.Held())

	require.NoError(t, e.ReleaseAll())
	assert.Equal(t, []KeyAction{release(key.LeftShift), release(key.Left)}, sink.take())
	assert.Equal(t, 0, e.Held())

	process(t, e, up(key.J), up(key.D))
	assert.Empty(t, sink.take())
}

func TestEngineSinkFailure(t *testing.T) {
	e, sink := newTestEngine(false)
	boom := errors.New("boom")

	process(t, e, down(key.CapsLock))
	sink.fail = boom

	_, err := e.Process(down(key.J))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSink)
	assert.ErrorIs(t, err, boom)

	// forwarded events do not touch the sink
	_, err = e.Process(down(key.LeftAlt))
	assert.NoError(t, err)
}

func TestEngineExecuteSwallowsFailures(t *testing.T) {
	e, _ := newTestEngine(false)
	x := &recordingExecutor{fail: errors.New("no display")}

	err := e.Execute(x, []Effect{
		notify("hello"),
		{Kind: LockSession},
		{Kind: KillForegroundProcess},
		{Kind: ResetLayer},
		{Kind: Minimize},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"notify hello", "lock", "kill", "reset", "minimize"}, x.calls)
}

func TestEngineExecuteStopsAtTerminate(t *testing.T) {
	e, _ := newTestEngine(false)
	x := &recordingExecutor{}

	err := e.Execute(x, []Effect{notify("bye"), {Kind: Terminate}, {Kind: LockSession}})
	assert.ErrorIs(t, err, ErrTerminated)
	assert.Equal(t, []string{"notify bye"}, x.calls)
}

// virtualKeyboard models the key state the OS sees on the output device.
type virtualKeyboard map[key.Code]bool

func (v virtualKeyboard) apply(code key.Code, st KeyState) {
	switch st {
	case KeyDown:
		v[code] = true
	case KeyUp:
		delete(v, code)
	}
}

func TestEngineNoStuckKeys(t *testing.T) {
	keys := []key.Code{
		key.CapsLock, key.Key102nd, key.J, key.K, key.I, key.F, key.D, key.A,
		key.H, key.Dot, key.C, key.N, key.RightAlt, key.LeftAlt, key.LeftCtrl,
		key.Esc, key.Apostrophe, key.E, key.U,
	}

	for seed := int64(1); seed <= 50; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			sink := &recordingSink{}
			e := New(sink, Config{AltLayout: seed%2 == 0, Logger: quietLogger()})
			vk := virtualKeyboard{}
			physical := map[key.Code]bool{}

			feed := func(ev KeyEvent) {
				out, err := e.Process(ev)
				require.NoError(t, err)
				for _, a := range sink.take() {
					vk.apply(a.Code, a.State)
				}
				if !out.Handled {
					vk.apply(ev.Code, ev.State)
				}
			}

			for i := 0; i < 400; i++ {
				c := keys[rng.Intn(len(keys))]
				switch {
				case !physical[c]:
					physical[c] = true
					feed(down(c))
				case rng.Intn(3) == 0:
					feed(repeat(c))
				default:
					delete(physical, c)
					feed(up(c))
				}
			}

			for _, c := range keys {
				if physical[c] {
					feed(up(c))
				}
			}

			assert.Empty(t, vk, "keys left pressed on the output device")
			assert.Equal(t, 0, e.Held())
		})
	}
}
