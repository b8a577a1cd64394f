package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/holoplot/go-evremap"
	"github.com/holoplot/go-evremap/key"
)

// Recorder is an output sink and effect executor writing trace lines. It
// also tracks which keys are down on the virtual keyboard it stands for.
type Recorder struct {
	lines   []string
	pressed map[key.Code]bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{pressed: make(map[key.Code]bool)}
}

func (r *Recorder) logf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *Recorder) apply(code key.Code, st evremap.KeyState) {
	switch st {
	case evremap.KeyDown:
		r.pressed[code] = true
	case evremap.KeyUp:
		delete(r.pressed, code)
	}
}

// Send implements evremap.OutputSink.
func (r *Recorder) Send(code key.Code, st evremap.KeyState) error {
	r.logf("  emit %s %s", code, st)
	r.apply(code, st)
	return nil
}

// Forward records a physical event passed through unchanged.
func (r *Recorder) Forward(ev evremap.KeyEvent) {
	r.logf("  forward")
	r.apply(ev.Code, ev.State)
}

// Notify implements evremap.Executor.
func (r *Recorder) Notify(text string) error {
	r.logf("  run notify %q", text)
	return nil
}

// KillForegroundProcess implements evremap.Executor.
func (r *Recorder) KillForegroundProcess() error {
	r.logf("  run kill foreground process")
	return nil
}

// LockSession implements evremap.Executor.
func (r *Recorder) LockSession() error {
	r.logf("  run lock session")
	return nil
}

// ResetLayer implements evremap.Executor.
func (r *Recorder) ResetLayer() error {
	r.logf("  run reset layer")
	return nil
}

// Minimize implements evremap.Executor.
func (r *Recorder) Minimize() error {
	r.logf("  run minimize")
	return nil
}

// Pressed lists the keys down on the virtual keyboard, in ascending order.
func (r *Recorder) Pressed() []key.Code {
	codes := make([]key.Code, 0, len(r.pressed))
	for c := range r.pressed {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Result is the outcome of a scenario run.
type Result struct {
	// Trace holds one line per event, emission and effect.
	Trace []string
	// Held is the number of keys the engine still tracks at the end.
	Held int
	// Pressed lists the keys left down on the virtual keyboard.
	Pressed []key.Code
	// Terminated is set when a Terminate effect stopped the run.
	Terminated bool
}

// String renders the trace followed by the summary line.
func (r *Result) String() string {
	var b strings.Builder
	for _, l := range r.Trace {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	names := make([]string, len(r.Pressed))
	for i, c := range r.Pressed {
		names[i] = c.String()
	}
	fmt.Fprintf(&b, "final held=%d pressed=[%s]\n", r.Held, strings.Join(names, " "))

	return b.String()
}

// Run replays the scenario through a fresh engine. A Terminate effect ends
// the run early; later events are not processed.
func Run(s *Scenario) (*Result, error) {
	rec := NewRecorder()
	eng := evremap.New(rec, evremap.Config{
		AltLayout: s.AltLayout,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	result := &Result{}

	for i, line := range s.Events {
		ev, err := ParseEvent(line)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}

		mark := len(rec.lines)
		out, err := eng.Process(ev)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}

		// The decision line goes before the emissions it caused.
		head := fmt.Sprintf("%s %s: %s %s", ev.State, ev.Code, out.Target, eng.State())
		rec.lines = append(rec.lines[:mark], append([]string{head}, rec.lines[mark:]...)...)

		if !out.Handled {
			rec.Forward(ev)
		}

		if err := eng.Execute(rec, out.Effects); err != nil {
			if !errors.Is(err, evremap.ErrTerminated) {
				return nil, err
			}
			rec.logf("  terminated")
			result.Terminated = true
			break
		}
	}

	result.Trace = rec.lines
	result.Held = eng.Held()
	result.Pressed = rec.Pressed()

	return result, nil
}
