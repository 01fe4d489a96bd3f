package entities

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// RGBColor is a 24-bit color
type RGBColor struct {
	R, G, B uint8
}

// RGBColorFromString parses a hex color such as "FF0000" or "#00aaff"
func RGBColorFromString(s string) (RGBColor, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) != 6 {
		return RGBColor{}, fmt.Errorf("invalid RGB color %q: expected 6 hex digits", s)
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid RGB color %q: %w", s, err)
	}
	return RGBColor{R: b[0], G: b[1], B: b[2]}, nil
}

// MustRGB parses a hex color and panics on error. Intended for constants.
func MustRGB(s string) RGBColor {
	c, err := RGBColorFromString(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as upper-case "RRGGBB"
func (c RGBColor) Hex() string {
	return strings.ToUpper(hex.EncodeToString([]byte{c.R, c.G, c.B}))
}

func (c RGBColor) String() string {
	return c.Hex()
}

// FillType describes how a shape interior is painted
type FillType string

const (
	// FillNone leaves the shape transparent
	FillNone FillType = "none"
	// FillSolid paints the shape with ForeColor
	FillSolid FillType = "solid"
)

// FillFormat describes the interior of a shape
type FillFormat struct {
	Type      FillType `json:"type"`
	ForeColor RGBColor `json:"fore_color"`
}

// Solid switches the fill to a solid color
func (f *FillFormat) Solid(color RGBColor) {
	f.Type = FillSolid
	f.ForeColor = color
}

// Background makes the fill transparent
func (f *FillFormat) Background() {
	f.Type = FillNone
}

// IsSolid reports whether the fill paints a color
func (f FillFormat) IsSolid() bool {
	return f.Type == FillSolid
}

// LineFormat describes a shape outline. A nil color means no outline.
type LineFormat struct {
	Color *RGBColor `json:"color,omitempty"`
	Width Length    `json:"width"`
}

// DefaultLineWidth is used when an outline has a color but no width
var DefaultLineWidth = Points(1)

// SetColor sets the outline color
func (l *LineFormat) SetColor(c RGBColor) {
	l.Color = &c
}

// Visible reports whether the outline is drawn
func (l LineFormat) Visible() bool {
	return l.Color != nil
}

// EffectiveWidth returns the width, falling back to DefaultLineWidth
func (l LineFormat) EffectiveWidth() Length {
	if l.Width <= 0 {
		return DefaultLineWidth
	}
	return l.Width
}
