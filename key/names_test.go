package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Code
	}{
		{name: "plain", in: "J", want: J},
		{name: "lower case", in: "capslock", want: CapsLock},
		{name: "prefixed", in: "KEY_LEFTMETA", want: LeftMeta},
		{name: "digit", in: "7", want: Digit7},
		{name: "iso key", in: "102nd", want: Key102nd},
		{name: "raw code", in: "KEY_200", want: Code(200)},
		{name: "padded", in: " esc ", want: Esc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "NOPE", "KEY_99999", "-1"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, c := range append(All(), Code(84), Code(250)) {
		got, err := Parse(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "PAGEDOWN", Name(PageDown))
	assert.Equal(t, "unknown", Name(Code(84)))
}

func TestAllSorted(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)
	assert.Equal(t, Esc, all[0])
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1], all[i])
	}
	assert.NotContains(t, all, Reserved)
	assert.NotContains(t, all, Max)
	assert.NotContains(t, all, Code(0x110), "BTN_MOUSE is a button")
	assert.Contains(t, all, Key102nd)
	assert.Contains(t, all, Compose)
}

func TestNamesFollowKernelHeader(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{code: CapsLock, want: "CAPSLOCK"},
		{code: Key102nd, want: "102ND"},
		{code: Digit1, want: "1"},
		{code: Compose, want: "COMPOSE"},
		{code: Code(0x110), want: "BTN_MOUSE"},
		{code: Code(84), want: "KEY_84"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.String())
		})
	}

	c, err := Parse("btn_left")
	require.NoError(t, err)
	assert.Equal(t, Code(0x110), c)
}
