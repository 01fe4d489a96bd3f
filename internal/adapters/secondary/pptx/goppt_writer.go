package pptx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// GoPPTWriter renders presentations through the GoPPT object model.
//
// GoPPT has no table or outline primitive, so tables become a grid of text
// shapes and outlines become four thin filled bars. The slide size is the
// library default; positions are written unscaled.
type GoPPTWriter struct {
	logger *slog.Logger
}

// NewGoPPTWriter creates a writer. A nil logger uses slog.Default().
func NewGoPPTWriter(logger *slog.Logger) *GoPPTWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoPPTWriter{logger: logger.With("engine", string(entities.EngineGoPPT))}
}

// Engine implements ports.PresentationWriter
func (w *GoPPTWriter) Engine() entities.Engine {
	return entities.EngineGoPPT
}

// Write encodes prs into out
func (w *GoPPTWriter) Write(ctx context.Context, prs *entities.Presentation, out io.Writer) error {
	if err := prs.Validate(); err != nil {
		return fmt.Errorf("invalid presentation: %w", err)
	}

	p := ppt.New()
	p.GetDocumentProperties().Title = prs.Title
	p.GetDocumentProperties().Creator = prs.Author

	for i, slide := range prs.Slides {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("writing slide %d: %w", i+1, err)
		}
		var target *ppt.Slide
		if i == 0 {
			target = p.GetActiveSlide()
		} else {
			target = p.CreateSlide()
		}
		shapes := 0
		for _, shape := range slide.Shapes {
			shapes += w.drawShape(target, shape)
		}
		if slide.Notes != "" {
			w.logger.Debug("speaker notes are not supported by this engine", slog.Int("slide", i+1))
		}
		w.logger.Debug("slide encoded", slog.Int("slide", i+1), slog.Int("shapes", shapes))
	}

	writer, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	pw, ok := writer.(*ppt.PPTXWriter)
	if !ok {
		return fmt.Errorf("unexpected writer type %T", writer)
	}

	var buf bytes.Buffer
	if err := pw.WriteTo(&buf); err != nil {
		return fmt.Errorf("encoding package: %w", err)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing package: %w", err)
	}
	return nil
}

// drawShape adds shape to slide and returns the number of GoPPT shapes used
func (w *GoPPTWriter) drawShape(slide *ppt.Slide, shape *entities.Shape) int {
	if shape.Kind == entities.ShapeTable && shape.Table != nil {
		return w.drawTable(slide, shape.Rect, shape.Table)
	}

	box := newTextShape(slide, shape.Rect)
	if shape.Fill.IsSolid() {
		box.SetFill(argbFill(shape.Fill.ForeColor))
	}
	if shape.TextFrame != nil {
		writeText(box, shape.TextFrame)
	}
	n := 1
	if shape.Line.Visible() {
		n += drawOutline(slide, shape.Rect, shape.Line.EffectiveWidth(), *shape.Line.Color)
	}
	return n
}

func (w *GoPPTWriter) drawTable(slide *ppt.Slide, rect entities.Rect, table *entities.Table) int {
	widths := splitEven(int64(rect.Width), table.Cols)
	heights := splitEven(int64(rect.Height), table.Rows)

	y := int64(rect.Y)
	for r, row := range table.Cells {
		x := int64(rect.X)
		for c, cell := range row {
			cellRect := entities.Rect{
				X:      entities.Length(x),
				Y:      entities.Length(y),
				Width:  entities.Length(widths[c]),
				Height: entities.Length(heights[r]),
			}
			box := newTextShape(slide, cellRect)
			if cell.Fill.IsSolid() {
				box.SetFill(argbFill(cell.Fill.ForeColor))
			}
			writeText(box, cell.TextFrame)
			x += widths[c]
		}
		y += heights[r]
	}
	return table.Rows * table.Cols
}

func newTextShape(slide *ppt.Slide, rect entities.Rect) *ppt.RichTextShape {
	box := slide.CreateRichTextShape()
	box.SetOffsetX(int64(rect.X)).SetOffsetY(int64(rect.Y))
	box.SetWidth(int64(rect.Width)).SetHeight(int64(rect.Height))
	return box
}

// drawOutline paints the four edges of rect as filled bars of the line width
func drawOutline(slide *ppt.Slide, rect entities.Rect, width entities.Length, color entities.RGBColor) int {
	edges := []entities.Rect{
		{X: rect.X, Y: rect.Y, Width: rect.Width, Height: width},
		{X: rect.X, Y: rect.Bottom() - width, Width: rect.Width, Height: width},
		{X: rect.X, Y: rect.Y, Width: width, Height: rect.Height},
		{X: rect.Right() - width, Y: rect.Y, Width: width, Height: rect.Height},
	}
	for _, edge := range edges {
		newTextShape(slide, edge).SetFill(argbFill(color))
	}
	return len(edges)
}

func writeText(box *ppt.RichTextShape, tf *entities.TextFrame) {
	if tf == nil {
		return
	}
	for i, para := range tf.Paragraphs {
		if i > 0 {
			box.CreateParagraph()
		}
		prefix := ""
		if para.Bullet {
			prefix = strings.Repeat("  ", para.Level) + bulletChar + " "
		}
		for j, run := range para.Runs {
			text := run.Text
			if j == 0 {
				text = prefix + text
			}
			if text == "" {
				continue
			}
			tr := box.CreateTextRun(text)
			font := tr.GetFont()
			if run.Font.Size > 0 {
				font.SetSize(int(run.Font.Size.Points() + 0.5))
			}
			if run.Font.Bold {
				font.SetBold(true)
			}
			if run.Font.Color != nil {
				font.SetColor(ppt.NewColor(argb(*run.Font.Color)))
			}
		}
		switch para.Alignment {
		case entities.AlignCenter:
			box.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
		case entities.AlignRight:
			box.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight))
		}
	}
}

func argb(c entities.RGBColor) string {
	return "FF" + c.Hex()
}

func argbFill(c entities.RGBColor) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor(argb(c)))
}

var _ ports.PresentationWriter = (*GoPPTWriter)(nil)
