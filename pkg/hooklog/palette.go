package hooklog

import (
	"fmt"
	"strings"
)

// Color is a 24-bit RGB value as used by chat embeds.
type Color int

func (c Color) String() string { return fmt.Sprintf("#%06X", int(c)) }

const (
	ColorNotSet   Color = 0x95A5A6
	ColorDebug    Color = 0x3498DB
	ColorInfo     Color = 0x2ECC71
	ColorWarning  Color = 0xF1C40F
	ColorError    Color = 0xE74C3C
	ColorCritical Color = 0x8B0000

	// ColorFallback is used for severities the palette does not know.
	ColorFallback Color = 0x7F8C8D
)

// Palette maps severity names to embed colors. The zero value resolves every
// name to ColorFallback. A Palette is never modified after construction.
type Palette struct {
	colors   map[string]Color
	fallback Color
}

// DefaultPalette covers every severity the adapters emit.
func DefaultPalette() Palette {
	return NewPalette(map[string]Color{
		LevelNotSet:   ColorNotSet,
		LevelDebug:    ColorDebug,
		LevelInfo:     ColorInfo,
		"WARN":        ColorWarning,
		LevelWarning:  ColorWarning,
		LevelError:    ColorError,
		LevelCritical: ColorCritical,
	}, ColorFallback)
}

// NewPalette copies colors, so later changes to the map are not observed.
func NewPalette(colors map[string]Color, fallback Color) Palette {
	m := make(map[string]Color, len(colors))
	for k, v := range colors {
		m[normLevel(k)] = v
	}
	return Palette{colors: m, fallback: fallback}
}

// Color returns the color for a severity name, or the fallback.
func (p Palette) Color(level string) Color {
	if c, ok := p.colors[normLevel(level)]; ok {
		return c
	}
	return p.Fallback()
}

// Fallback returns the color used for unrecognized severities.
func (p Palette) Fallback() Color {
	if p.colors == nil && p.fallback == 0 {
		return ColorFallback
	}
	return p.fallback
}

// With returns a copy of p with level mapped to c.
func (p Palette) With(level string, c Color) Palette {
	m := make(map[string]Color, len(p.colors)+1)
	for k, v := range p.colors {
		m[k] = v
	}
	m[normLevel(level)] = c
	return Palette{colors: m, fallback: p.Fallback()}
}

// Len reports the number of explicit entries.
func (p Palette) Len() int { return len(p.colors) }

func normLevel(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
