package evremap

import "github.com/holoplot/go-evremap/key"

// Layer trigger keys. Both are consumed unconditionally.
const (
	Layer1Key = key.CapsLock
	Layer2Key = key.Key102nd
)

// Notification texts.
const (
	textTerminated = "Program terminated"
	textAltLayout  = "Colemak"
	textBaseLayout = "Qwerty"
)

// layer1Keys holds the plain substitutes of the Layer1 overlay.
var layer1Keys = map[key.Code]key.Code{
	key.D:         key.LeftShift,
	key.J:         key.Left,
	key.L:         key.Right,
	key.U:         key.Home,
	key.O:         key.End,
	key.H:         key.Backspace,
	key.Digit1:    key.F1,
	key.Digit2:    key.F2,
	key.Digit3:    key.F3,
	key.Digit4:    key.F4,
	key.Digit5:    key.F5,
	key.Digit6:    key.F6,
	key.Digit7:    key.F7,
	key.Digit8:    key.F8,
	key.Digit9:    key.F9,
	key.Digit0:    key.F10,
	key.Minus:     key.F11,
	key.Equal:     key.F12,
	key.Semicolon: key.Enter,
	key.P:         key.Delete,
	key.Slash:     key.Backslash,
}

// layer2Keys holds the plain substitutes of the Layer2 overlay.
var layer2Keys = map[key.Code]key.Code{
	key.Space: key.Space,
	key.I:     key.LeftBrace,
	key.O:     key.RightBrace,
	key.Y:     key.Minus,
	key.M:     key.Equal,
}

// layer2Shifted holds the Layer2 keys producing a shifted character.
var layer2Shifted = map[key.Code]key.Code{
	key.H:         key.Minus,      // _
	key.J:         key.Digit9,     // (
	key.K:         key.Digit0,     // )
	key.L:         key.LeftBrace,  // {
	key.Semicolon: key.RightBrace, // }
	key.U:         key.Equal,      // +
}

type resolution struct {
	state   State
	ks      KeyState
	effects []Effect
}

// Resolve decides what to emit for one key event under state s. It never
// fails: codes without an entry in an active overlay resolve to Block.
// Modifier changes are returned as SetModifier effects, collected from every
// stage regardless of which stage decides the target.
func Resolve(s State, ks KeyState, code key.Code) (Target, []Effect) {
	r := &resolution{state: s, ks: ks}

	switch code {
	case Layer1Key:
		r.add(setMod(ModLayer1, r.held()))
		if ks == KeyUp {
			r.add(setMod(ModCtrlSub, false))
			r.add(setMod(ModAdmin, false))
			r.add(Effect{Kind: ResetLayer})
		}
		return blockTarget(), r.effects
	case Layer2Key:
		r.add(setMod(ModLayer2, r.held()))
		return blockTarget(), r.effects
	}

	t := r.override(code, r.base(code))

	switch {
	case s.Active(ModLayer1):
		t = r.layer1(code)
	case s.Active(ModLayer2):
		t = r.layer2(code)
	}

	return t, r.effects
}

func (r *resolution) add(e Effect) {
	r.effects = append(r.effects, e)
}

// pressed is true on the initial Down only.
func (r *resolution) pressed() bool {
	return r.ks == KeyDown
}

// held is true on Down and Repeat.
func (r *resolution) held() bool {
	return r.ks != KeyUp
}

// downOnly emits t on Down and swallows Repeat and Up.
func (r *resolution) downOnly(t Target) Target {
	if r.pressed() {
		return t
	}
	return blockTarget()
}

// downOrHeld emits t on Down and Repeat and swallows Up.
func (r *resolution) downOrHeld(t Target) Target {
	if r.held() {
		return t
	}
	return blockTarget()
}

func (r *resolution) base(code key.Code) Target {
	if !r.state.Active(ModAltLayout) {
		return passTarget()
	}
	if c, ok := colemak[code]; ok {
		return sub(c)
	}
	return passTarget()
}

func (r *resolution) override(code key.Code, base Target) Target {
	winDown := r.state.Active(ModWinSub) && r.pressed()

	switch code {
	case key.Apostrophe:
		return sub(key.Esc)
	case key.Grave:
		return sub(key.Apostrophe)
	case key.RightAlt:
		r.add(setMod(ModWinSub, r.held()))
		return sub(key.LeftMeta)
	case key.LeftAlt:
		r.add(setMod(ModLeftAlt, r.held()))
	case key.LeftCtrl:
		r.add(setMod(ModLeftCtrl, r.held()))
	case key.Backspace:
		if r.pressed() && r.state.Active(ModLeftAlt) && r.state.Active(ModLeftCtrl) {
			r.add(Effect{Kind: KillForegroundProcess})
		}
	case key.RightCtrl:
		return sub(key.Compose)
	case key.U:
		if winDown {
			// The lock screen swallows the release of the Super substitute.
			r.add(setMod(ModWinSub, false))
			r.add(Effect{Kind: LockSession})
			return blockTarget()
		}
	case key.Digit4:
		if winDown {
			return altChord(key.F4)
		}
	case key.M:
		if winDown {
			r.add(Effect{Kind: Minimize})
			return blockTarget()
		}
	}

	return base
}

func (r *resolution) layer1(code key.Code) Target {
	if c, ok := layer1Keys[code]; ok {
		return sub(c)
	}

	admin := r.state.Active(ModAdmin)
	ctrl := r.state.Active(ModCtrlSub)

	switch code {
	case key.Esc:
		r.add(setMod(ModAdmin, r.held()))
		return blockTarget()
	case key.Space:
		if !admin {
			return sub(key.Space)
		}
		if r.ks == KeyUp {
			r.add(notify(textTerminated))
			r.add(Effect{Kind: Terminate})
		}
		return blockTarget()
	case key.F:
		r.add(setMod(ModCtrlSub, r.held()))
		return sub(key.LeftCtrl)
	case key.N:
		return r.downOrHeld(ctrlChord(key.Z))
	case key.M:
		return r.downOrHeld(ctrlChord(key.Y))
	case key.C:
		if !admin {
			return r.downOnly(ctrlChord(key.C))
		}
		if r.pressed() {
			on := !r.state.Active(ModAltLayout)
			r.add(setMod(ModAltLayout, on))
			if on {
				r.add(notify(textAltLayout))
			} else {
				r.add(notify(textBaseLayout))
			}
		}
		return blockTarget()
	case key.X, key.V, key.S:
		return r.downOnly(ctrlChord(code))
	case key.Comma:
		return r.downOnly(shiftChord(key.Digit7))
	case key.Dot:
		return r.downOrHeld(shiftChord(key.Backslash))
	case key.I:
		if ctrl {
			return r.downOrHeld(withoutCtrl(key.PageUp))
		}
		return sub(key.Up)
	case key.K:
		if ctrl {
			return r.downOrHeld(withoutCtrl(key.PageDown))
		}
		return sub(key.Down)
	case key.RightAlt:
		// WinSub is already tracked by the override stage.
		return sub(key.LeftMeta)
	case key.LeftAlt, key.LeftCtrl:
		return passTarget()
	}

	return blockTarget()
}

func (r *resolution) layer2(code key.Code) Target {
	if c, ok := layer2Keys[code]; ok {
		return sub(c)
	}
	if c, ok := layer2Shifted[code]; ok {
		return r.downOrHeld(shiftChord(c))
	}

	switch code {
	case key.Dot:
		// "/*"
		return r.downOnly(seq(
			press(key.Slash), release(key.Slash),
			press(key.LeftShift), press(key.Digit8), release(key.Digit8), release(key.LeftShift),
		))
	case key.Slash:
		// "*/"
		return r.downOnly(seq(
			press(key.LeftShift), press(key.Digit8), release(key.Digit8), release(key.LeftShift),
			press(key.Slash), release(key.Slash),
		))
	}

	return blockTarget()
}
