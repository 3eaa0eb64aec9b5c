// Package blend implements the W3C Compositing and Blending Level 1 blend
// modes on non-premultiplied colors.
//
// Separable modes apply a function to each channel independently.
// Non-separable modes (hue, saturation, color, luminosity) work on the whole
// RGB triplet through the HSL helpers in hsl.go.
//
// References:
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import (
	"fmt"
	"strings"
)

// Mode selects how a source color is mixed with the backdrop.
type Mode int

// Blend modes.
const (
	Normal Mode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Hue
	Saturation
	Color
	Luminosity

	modeCount
)

var modeNames = [modeCount]string{
	Normal:     "normal",
	Multiply:   "multiply",
	Screen:     "screen",
	Overlay:    "overlay",
	Darken:     "darken",
	Lighten:    "lighten",
	ColorDodge: "color-dodge",
	ColorBurn:  "color-burn",
	HardLight:  "hard-light",
	SoftLight:  "soft-light",
	Difference: "difference",
	Exclusion:  "exclusion",
	Hue:        "hue",
	Saturation: "saturation",
	Color:      "color",
	Luminosity: "luminosity",
}

// String returns the CSS name of the mode.
func (m Mode) String() string {
	if m < 0 || m >= modeCount {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= 0 && m < modeCount
}

// IsSeparable reports whether the mode operates per channel.
func (m Mode) IsSeparable() bool {
	return m < Hue
}

// Modes returns every supported mode in declaration order.
func Modes() []Mode {
	out := make([]Mode, modeCount)
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

// ParseMode parses a CSS mix-blend-mode name. Matching ignores case and
// accepts underscores or no separator in place of hyphens. The empty string
// parses as Normal.
func ParseMode(s string) (Mode, error) {
	key := normalizeName(s)
	if key == "" {
		return Normal, nil
	}
	for i, name := range modeNames {
		if normalizeName(name) == key {
			return Mode(i), nil
		}
	}
	return Normal, fmt.Errorf("blend: unknown mode %q", s)
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("blend: invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
