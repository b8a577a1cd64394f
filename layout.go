package evremap

import "github.com/holoplot/go-evremap/key"

// colemak is the alternate base layout, a one-to-one permutation of the
// letter keys whose QWERTY position differs in Colemak. Keys that are not
// listed keep their code.
var colemak = map[key.Code]key.Code{
	key.E:         key.F,
	key.R:         key.P,
	key.T:         key.G,
	key.Y:         key.J,
	key.U:         key.L,
	key.I:         key.U,
	key.O:         key.Y,
	key.S:         key.R,
	key.G:         key.D,
	key.J:         key.N,
	key.K:         key.E,
	key.L:         key.I,
	key.N:         key.K,
	key.P:         key.Semicolon,
	key.D:         key.S,
	key.F:         key.T,
	key.Semicolon: key.O,
}
