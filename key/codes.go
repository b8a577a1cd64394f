// Package key holds the key code vocabulary the remap engine reasons about.
//
// Codes follow the numbering of the Linux input-event-codes.h header. That
// numbering is used on every host: adapters for other platforms translate
// their native codes into it before handing events to the engine.
package key

// Code identifies a physical key.
type Code uint16

const (
	Reserved Code = 0

	Esc       Code = 1
	Digit1    Code = 2
	Digit2    Code = 3
	Digit3    Code = 4
	Digit4    Code = 5
	Digit5    Code = 6
	Digit6    Code = 7
	Digit7    Code = 8
	Digit8    Code = 9
	Digit9    Code = 10
	Digit0    Code = 11
	Minus     Code = 12
	Equal     Code = 13
	Backspace Code = 14
	Tab       Code = 15

	Q          Code = 16
	W          Code = 17
	E          Code = 18
	R          Code = 19
	T          Code = 20
	Y          Code = 21
	U          Code = 22
	I          Code = 23
	O          Code = 24
	P          Code = 25
	LeftBrace  Code = 26
	RightBrace Code = 27
	Enter      Code = 28
	LeftCtrl   Code = 29

	A          Code = 30
	S          Code = 31
	D          Code = 32
	F          Code = 33
	G          Code = 34
	H          Code = 35
	J          Code = 36
	K          Code = 37
	L          Code = 38
	Semicolon  Code = 39
	Apostrophe Code = 40
	Grave      Code = 41
	LeftShift  Code = 42
	Backslash  Code = 43

	Z          Code = 44
	X          Code = 45
	C          Code = 46
	V          Code = 47
	B          Code = 48
	N          Code = 49
	M          Code = 50
	Comma      Code = 51
	Dot        Code = 52
	Slash      Code = 53
	RightShift Code = 54
	KPAsterisk Code = 55
	LeftAlt    Code = 56
	Space      Code = 57
	CapsLock   Code = 58

	F1  Code = 59
	F2  Code = 60
	F3  Code = 61
	F4  Code = 62
	F5  Code = 63
	F6  Code = 64
	F7  Code = 65
	F8  Code = 66
	F9  Code = 67
	F10 Code = 68

	NumLock    Code = 69
	ScrollLock Code = 70
	KP7        Code = 71
	KP8        Code = 72
	KP9        Code = 73
	KPMinus    Code = 74
	KP4        Code = 75
	KP5        Code = 76
	KP6        Code = 77
	KPPlus     Code = 78
	KP1        Code = 79
	KP2        Code = 80
	KP3        Code = 81
	KP0        Code = 82
	KPDot      Code = 83

	// Key102nd is the extra key between left shift and Z on ISO keyboards.
	Key102nd Code = 86
	F11      Code = 87
	F12      Code = 88

	KPEnter    Code = 96
	RightCtrl  Code = 97
	KPSlash    Code = 98
	SysRq      Code = 99
	RightAlt   Code = 100
	Home       Code = 102
	Up         Code = 103
	PageUp     Code = 104
	Left       Code = 105
	Right      Code = 106
	End        Code = 107
	Down       Code = 108
	PageDown   Code = 109
	Insert     Code = 110
	Delete     Code = 111
	Mute       Code = 113
	VolumeDown Code = 114
	VolumeUp   Code = 115
	Pause      Code = 119
	LeftMeta   Code = 125
	RightMeta  Code = 126
	Compose    Code = 127

	// Max is the highest code a key event can carry.
	Max Code = 0x2ff
)
