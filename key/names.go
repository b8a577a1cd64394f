package key

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/holoplot/go-evdev"
)

const prefix = "KEY_"

// Name returns the name of the given code without its KEY_ prefix, or
// "unknown" if the code has none.
func Name(c Code) string {
	name, ok := evdev.KEYToString[evdev.EvCode(c)]
	if !ok {
		return "unknown"
	}
	return strings.TrimPrefix(name, prefix)
}

func (c Code) String() string {
	if name, ok := evdev.KEYToString[evdev.EvCode(c)]; ok {
		return strings.TrimPrefix(name, prefix)
	}
	return prefix + strconv.Itoa(int(c))
}

// Parse resolves a key name as printed by Code.String. The KEY_ prefix is
// optional and matching ignores case. Single digits name the digit keys, any
// other number is taken as a raw code.
func Parse(s string) (Code, error) {
	name := strings.ToUpper(strings.TrimSpace(s))

	if c, ok := evdev.KEYFromString[name]; ok && Code(c) <= Max {
		return Code(c), nil
	}
	if c, ok := evdev.KEYFromString[prefix+name]; ok && Code(c) <= Max {
		return Code(c), nil
	}

	n, err := strconv.ParseUint(strings.TrimPrefix(name, prefix), 10, 16)
	if err != nil || Code(n) > Max {
		return Reserved, fmt.Errorf("unknown key %q", s)
	}
	return Code(n), nil
}

// All returns every named keyboard key in ascending order. Buttons and the
// KEY_MAX/KEY_CNT bounds are left out.
func All() []Code {
	codes := make([]Code, 0, len(evdev.KEYToString))
	for c, name := range evdev.KEYToString {
		code := Code(c)
		if code == Reserved || code >= Max || !strings.HasPrefix(name, prefix) {
			continue
		}
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
