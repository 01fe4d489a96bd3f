// Package fonts measures text with real glyph metrics.
package fonts

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// Faces are opened at 72 DPI so one pixel is one point
const dpi = 72

type variant int

const (
	regular variant = iota
	bold
	mono
)

type faceKey struct {
	variant variant
	size    entities.Length
}

// Measurer implements ports.TextMeasurer with OpenType fonts. Faces are
// created lazily per variant and size and cached.
type Measurer struct {
	fonts map[variant]*opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewMeasurer measures with the Go font family
func NewMeasurer() (*Measurer, error) {
	fonts := make(map[variant]*opentype.Font, 3)
	for v, data := range map[variant][]byte{regular: goregular.TTF, bold: gobold.TTF, mono: gomono.TTF} {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing built-in font: %w", err)
		}
		fonts[v] = f
	}
	return &Measurer{fonts: fonts, faces: make(map[faceKey]font.Face)}, nil
}

// LoadMeasurer measures every variant with the font file at path
func LoadMeasurer(path string) (*Measurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	return &Measurer{
		fonts: map[variant]*opentype.Font{regular: f, bold: f, mono: f},
		faces: make(map[faceKey]font.Face),
	}, nil
}

// Width returns the advance width of text
func (m *Measurer) Width(text string, f entities.Font) entities.Length {
	face := m.face(f)
	if face == nil {
		return 0
	}
	return fromFixed(font.MeasureString(face, text))
}

// LineHeight returns the recommended baseline distance of the font
func (m *Measurer) LineHeight(f entities.Font) entities.Length {
	face := m.face(f)
	if face == nil {
		return 0
	}
	return fromFixed(face.Metrics().Height)
}

// Close releases every cached face
func (m *Measurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, face := range m.faces {
		_ = face.Close()
		delete(m.faces, key)
	}
	return nil
}

func (m *Measurer) face(f entities.Font) font.Face {
	if f.Size <= 0 {
		return nil
	}
	key := faceKey{variant: regular, size: f.Size}
	switch {
	case f.Mono:
		key.variant = mono
	case f.Bold:
		key.variant = bold
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if face, ok := m.faces[key]; ok {
		return face
	}
	face, err := opentype.NewFace(m.fonts[key.variant], &opentype.FaceOptions{
		Size:    f.Size.Points(),
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	m.faces[key] = face
	return face
}

// fromFixed converts a 26.6 point value to EMUs
func fromFixed(v fixed.Int26_6) entities.Length {
	return entities.Length(int64(v) * entities.EMUsPerPoint / 64)
}

var _ ports.TextMeasurer = (*Measurer)(nil)
