package services

import (
	"fmt"
	"log/slog"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// DefaultLineColor is the outline color used when a style names none
const DefaultLineColor = "FF0000"

// RectStyle describes how DrawRect paints a rectangle
type RectStyle struct {
	// Fill is a hex color; empty leaves the rectangle transparent
	Fill string
	// Line is a hex color; empty means DefaultLineColor
	Line string
	// LineWidth of zero means 1pt
	LineWidth entities.Length
	// NoLine suppresses the outline
	NoLine bool
}

// SlideRoot ties a new blank slide to the root area of its layout tree
type SlideRoot struct {
	prs    *entities.Presentation
	slide  *entities.Slide
	area   *entities.Area
	logger *slog.Logger
}

// NewSlideRoot adds a blank slide to prs and returns a root area spanning it
func NewSlideRoot(prs *entities.Presentation, logger *slog.Logger) (*SlideRoot, error) {
	if prs == nil {
		return nil, entities.NewPresentationError("presentation is nil", "")
	}
	layout, err := prs.SlideLayouts.Blank()
	if err != nil {
		return nil, err
	}
	return NewSlideRootWithLayout(prs, layout, logger)
}

// NewSlideRootWithLayout is NewSlideRoot with an explicit slide layout
func NewSlideRootWithLayout(prs *entities.Presentation, layout *entities.SlideLayout, logger *slog.Logger) (*SlideRoot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	width, height, err := prs.SlideSize()
	if err != nil {
		logger.Error("cannot create slide root", slog.String("error", err.Error()))
		return nil, err
	}

	slide := prs.Slides.AddSlide(layout)
	area := entities.NewRootArea(width, height)
	area.Name = "slide"
	area.SetLogger(logger)

	logger.Debug("slide root created",
		slog.Int("slide", slide.Index),
		slog.String("layout", layout.Name),
		slog.Int64("width", int64(width)),
		slog.Int64("height", int64(height)))

	return &SlideRoot{prs: prs, slide: slide, area: area, logger: logger}, nil
}

// Area returns the root area of the slide
func (r *SlideRoot) Area() *entities.Area {
	return r.area
}

// Slide returns the slide the root draws on
func (r *SlideRoot) Slide() *entities.Slide {
	return r.slide
}

// Resolve lays out the whole area tree
func (r *SlideRoot) Resolve() error {
	if err := r.area.Resolve(); err != nil {
		r.logger.Error("layout resolution failed",
			slog.Int("slide", r.slide.Index),
			slog.String("error", err.Error()))
		return fmt.Errorf("resolving slide %d: %w", r.slide.Index+1, err)
	}
	return nil
}

// DrawRect adds a rectangle shape at rect
func (r *SlideRoot) DrawRect(rect entities.Rect, style RectStyle) (*entities.Shape, error) {
	shape := r.slide.AddShape(rect)
	if err := applyRectStyle(shape, style); err != nil {
		r.slide.Shapes = r.slide.Shapes[:len(r.slide.Shapes)-1]
		return nil, err
	}
	return shape, nil
}

func applyRectStyle(shape *entities.Shape, style RectStyle) error {
	if style.Fill != "" {
		fill, err := entities.RGBColorFromString(style.Fill)
		if err != nil {
			return fmt.Errorf("fill color: %w", err)
		}
		shape.Fill.Solid(fill)
	} else {
		shape.Fill.Background()
	}

	if style.NoLine {
		return nil
	}
	lineHex := style.Line
	if lineHex == "" {
		lineHex = DefaultLineColor
	}
	line, err := entities.RGBColorFromString(lineHex)
	if err != nil {
		return fmt.Errorf("line color: %w", err)
	}
	shape.Line.SetColor(line)
	shape.Line.Width = style.LineWidth
	if shape.Line.Width <= 0 {
		shape.Line.Width = entities.DefaultLineWidth
	}
	return nil
}

// Text adds a text box at rect holding text
func (r *SlideRoot) Text(rect entities.Rect, text string) *entities.Shape {
	shape := r.slide.AddTextbox(rect)
	shape.SetText(text)
	return shape
}

// DebugRect outlines the area and labels it with its position, such as
// "(1, 0) - header".
func (r *SlideRoot) DebugRect(area *entities.Area, label string, style RectStyle) (*entities.Shape, error) {
	rect, err := area.Rect()
	if err != nil {
		return nil, err
	}
	pos, err := area.Pos()
	if err != nil {
		return nil, err
	}

	style.Fill = ""
	if _, err := r.DrawRect(rect, style); err != nil {
		return nil, err
	}

	text := entities.FormatPos(pos)
	if label != "" {
		text += " - " + label
	}
	return r.Text(rect, text), nil
}

// DrawLayout outlines every resolved area of the tree
func (r *SlideRoot) DrawLayout(style RectStyle) error {
	return r.area.Walk(func(a *entities.Area) error {
		rect, err := a.Rect()
		if err != nil {
			return err
		}
		_, err = r.DrawRect(rect, style)
		return err
	})
}

// AddTable fills the area with a table built from df and sizes its font to fit
func (r *SlideRoot) AddTable(area *entities.Area, df *entities.DataFrame, measurer ports.TextMeasurer, style TableStyle) (*TableContent, error) {
	rect, err := area.Rect()
	if err != nil {
		return nil, err
	}
	content, err := NewTableContent(r.slide, rect, df, measurer, style)
	if err != nil {
		return nil, err
	}
	content.AutoFit()

	r.logger.Debug("table added",
		slog.Int("slide", r.slide.Index),
		slog.Int("rows", content.Table.Rows),
		slog.Int("cols", content.Table.Cols),
		slog.Float64("font_pt", content.FontSize.Points()))
	return content, nil
}
