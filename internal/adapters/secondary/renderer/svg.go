// Package renderer draws built presentations for the browser preview: one SVG
// document per slide and the HTML pages that embed them.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

const (
	defaultFontSize = 18 // points, PowerPoint's default for text boxes
	sansFamily      = "Calibri, Carlito, Arial, sans-serif"
	monoFamily      = "'Courier New', monospace"
	bulletPrefix    = "• "
)

var (
	// PowerPoint's default text insets
	insetX = entities.Inches(0.1)
	insetY = entities.Inches(0.05)
	indent = entities.Inches(0.25)
)

// SVGRenderer draws slides as SVG. Coordinates are in points so that the
// viewBox matches the slide size in PowerPoint's own unit.
type SVGRenderer struct {
	measurer ports.TextMeasurer
	logger   *slog.Logger
}

// NewSVGRenderer creates a renderer. measurer wraps long lines; nil draws one
// line per paragraph.
func NewSVGRenderer(measurer ports.TextMeasurer, logger *slog.Logger) *SVGRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SVGRenderer{measurer: measurer, logger: logger}
}

// RenderSlide returns the slide at index as a standalone SVG document
func (r *SVGRenderer) RenderSlide(ctx context.Context, prs *entities.Presentation, index int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prs == nil {
		return nil, entities.NewPresentationError("presentation is nil", "")
	}
	slide, err := prs.Slides.Get(index)
	if err != nil {
		return nil, err
	}
	width, height, err := prs.SlideSize()
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" font-family="%s">`,
		pt(width), pt(height), pt(width), pt(height), sansFamily)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<title>%s</title>`+"\n", html.EscapeString(slide.ExtractTitle()))
	fmt.Fprintf(&b, `<rect width="%s" height="%s" fill="#FFFFFF"/>`+"\n", pt(width), pt(height))

	for _, shape := range slide.Shapes {
		switch shape.Kind {
		case entities.ShapeTable:
			r.drawTable(&b, shape)
		default:
			r.drawShape(&b, shape)
		}
	}
	b.WriteString("</svg>\n")

	r.logger.Debug("slide rendered",
		slog.Int("slide", index),
		slog.Int("shapes", len(slide.Shapes)),
		slog.Int("bytes", b.Len()))
	return b.Bytes(), nil
}

func (r *SVGRenderer) drawShape(b *bytes.Buffer, shape *entities.Shape) {
	if shape.Fill.IsSolid() || shape.Line.Visible() {
		rect(b, shape.Rect, shape.Fill, shape.Line)
	}
	if shape.TextFrame != nil {
		r.drawText(b, shape.Rect, shape.TextFrame, shape.TextFrame.VerticalAnchor)
	}
}

func (r *SVGRenderer) drawTable(b *bytes.Buffer, shape *entities.Shape) {
	table := shape.Table
	if table == nil || table.Rows == 0 || table.Cols == 0 {
		return
	}
	colW := shape.Rect.Width / entities.Length(table.Cols)
	rowH := shape.Rect.Height / entities.Length(table.Rows)
	border := entities.LineFormat{Width: entities.Points(0.75)}
	border.SetColor(entities.MustRGB("000000"))

	fmt.Fprintf(b, `<g class="table" data-rows="%d" data-cols="%d">`+"\n", table.Rows, table.Cols)
	table.IterCells(func(row, col int, cell *entities.Cell) {
		cellRect := entities.Rect{
			X:      shape.Rect.X + entities.Length(col)*colW,
			Y:      shape.Rect.Y + entities.Length(row)*rowH,
			Width:  colW,
			Height: rowH,
		}
		rect(b, cellRect, cell.Fill, border)
		r.drawText(b, cellRect, cell.TextFrame, cell.VerticalAnchor)
	})
	b.WriteString("</g>\n")
}

func rect(b *bytes.Buffer, box entities.Rect, fill entities.FillFormat, line entities.LineFormat) {
	fillAttr := "none"
	if fill.IsSolid() {
		fillAttr = "#" + fill.ForeColor.Hex()
	}
	stroke := ""
	if line.Visible() {
		stroke = fmt.Sprintf(` stroke="#%s" stroke-width="%s"`, line.Color.Hex(), pt(line.EffectiveWidth()))
	}
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"%s/>`+"\n",
		pt(box.X), pt(box.Y), pt(box.Width), pt(box.Height), fillAttr, stroke)
}

// line is one laid out row of text
type line struct {
	words     []word
	alignment entities.Alignment
	indent    entities.Length
	height    entities.Length
}

type word struct {
	text string
	font entities.Font
}

func (r *SVGRenderer) drawText(b *bytes.Buffer, box entities.Rect, tf *entities.TextFrame, anchor entities.VerticalAnchor) {
	if tf == nil || strings.TrimSpace(tf.Text()) == "" {
		return
	}
	inner := entities.Rect{
		X:      box.X + insetX,
		Y:      box.Y + insetY,
		Width:  box.Width - 2*insetX,
		Height: box.Height - 2*insetY,
	}

	var lines []line
	for _, p := range tf.Paragraphs {
		lines = append(lines, r.layoutParagraph(p, inner.Width, tf.WordWrap)...)
	}

	var total entities.Length
	for _, l := range lines {
		total += l.height
	}
	y := inner.Y
	switch anchor {
	case entities.AnchorMiddle:
		y = inner.Y + (inner.Height-total)/2
	case entities.AnchorBottom:
		y = inner.Y + inner.Height - total
	}

	for _, l := range lines {
		baseline := y + l.height*4/5
		y += l.height
		if len(l.words) == 0 {
			continue
		}

		x, textAnchor := inner.X+l.indent, "start"
		switch l.alignment {
		case entities.AlignCenter:
			x, textAnchor = inner.X+l.indent+(inner.Width-l.indent)/2, "middle"
		case entities.AlignRight:
			x, textAnchor = inner.X+inner.Width, "end"
		}

		fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="%s" xml:space="preserve">`, pt(x), pt(baseline), textAnchor)
		for i, w := range l.words {
			text := w.text
			if i > 0 {
				text = " " + text
			}
			fmt.Fprintf(b, `<tspan%s>%s</tspan>`, fontAttrs(w.font), html.EscapeString(text))
		}
		b.WriteString("</text>\n")
	}
}

// layoutParagraph breaks a paragraph into lines no wider than width
func (r *SVGRenderer) layoutParagraph(p entities.Paragraph, width entities.Length, wrap bool) []line {
	var words []word
	if p.Bullet {
		words = append(words, word{text: strings.TrimSpace(bulletPrefix), font: firstFont(p)})
	}
	for _, run := range p.Runs {
		for _, f := range strings.Fields(run.Text) {
			words = append(words, word{text: f, font: run.Font})
		}
	}

	current := line{alignment: p.Alignment, indent: entities.Length(p.Level) * indent, height: r.lineHeight(firstFont(p))}
	if len(words) == 0 {
		return []line{current}
	}

	var lines []line
	var used entities.Length
	for _, w := range words {
		ww := r.width(w.text, w.font)
		space := r.width(" ", w.font)
		if wrap && r.measurer != nil && len(current.words) > 0 && used+space+ww > width-current.indent {
			lines = append(lines, current)
			current = line{alignment: p.Alignment, indent: current.indent, height: r.lineHeight(w.font)}
			used = 0
		}
		if len(current.words) > 0 {
			used += space
		}
		used += ww
		current.words = append(current.words, w)
		if h := r.lineHeight(w.font); h > current.height {
			current.height = h
		}
	}
	return append(lines, current)
}

func (r *SVGRenderer) width(text string, font entities.Font) entities.Length {
	if r.measurer == nil {
		return 0
	}
	return r.measurer.Width(text, withSize(font))
}

func (r *SVGRenderer) lineHeight(font entities.Font) entities.Length {
	font = withSize(font)
	if r.measurer != nil {
		if h := r.measurer.LineHeight(font); h > 0 {
			return h
		}
	}
	return font.Size * 6 / 5
}

func withSize(font entities.Font) entities.Font {
	if font.Size <= 0 {
		font.Size = entities.Points(defaultFontSize)
	}
	return font
}

func firstFont(p entities.Paragraph) entities.Font {
	if len(p.Runs) == 0 {
		return entities.Font{}
	}
	return p.Runs[0].Font
}

func fontAttrs(font entities.Font) string {
	font = withSize(font)
	var b strings.Builder
	fmt.Fprintf(&b, ` font-size="%s"`, pt(font.Size))
	if font.Bold {
		b.WriteString(` font-weight="bold"`)
	}
	if font.Italic {
		b.WriteString(` font-style="italic"`)
	}
	if font.Mono {
		fmt.Fprintf(&b, ` font-family="%s"`, monoFamily)
	}
	if font.Color != nil {
		fmt.Fprintf(&b, ` fill="#%s"`, font.Color.Hex())
	}
	return b.String()
}

// pt formats an EMU length in points with at most two decimals
func pt(l entities.Length) string {
	s := fmt.Sprintf("%.2f", l.Points())
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

var _ ports.SlideRenderer = (*SVGRenderer)(nil)
