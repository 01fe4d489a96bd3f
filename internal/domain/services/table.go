package services

import (
	"fmt"
	"strings"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// TableStyle controls table formatting and the font size search
type TableStyle struct {
	MaxFontSize entities.Length
	MinFontSize entities.Length
	Step        entities.Length
	CellMargin  entities.Length
	HeaderFill  *entities.RGBColor
	HeaderBold  bool
}

// TableStyleFromConfig converts the [table] configuration section. A
// header_fill that is not a hex color is an error; loaded configs have
// already been rejected by TableConfig.Validate.
func TableStyleFromConfig(cfg entities.TableConfig) (TableStyle, error) {
	style := TableStyle{
		MaxFontSize: cfg.GetMaxFontSize(),
		MinFontSize: cfg.GetMinFontSize(),
		Step:        cfg.GetStep(),
		CellMargin:  cfg.GetCellMargin(),
		HeaderBold:  cfg.HeaderBold,
	}
	if cfg.HeaderFill != "" {
		c, err := entities.RGBColorFromString(cfg.HeaderFill)
		if err != nil {
			return TableStyle{}, fmt.Errorf("header fill: %w", err)
		}
		style.HeaderFill = &c
	}
	return style, nil
}

// DefaultTableStyle searches from 40pt down to 1pt in 1pt steps
func DefaultTableStyle() TableStyle {
	style, _ := TableStyleFromConfig(entities.TableConfig{})
	return style
}

// TableContent is a table shape filled from a data frame
type TableContent struct {
	Shape    *entities.Shape
	Table    *entities.Table
	FontSize entities.Length

	measurer ports.TextMeasurer
	style    TableStyle
}

// NewTableContent adds a (rows+1) x cols table at rect: a header row with the
// column names followed by one row per record. Every cell is anchored in the
// middle with its first paragraph centered.
func NewTableContent(slide *entities.Slide, rect entities.Rect, df *entities.DataFrame, measurer ports.TextMeasurer, style TableStyle) (*TableContent, error) {
	if err := df.Validate(); err != nil {
		return nil, err
	}
	if measurer == nil {
		measurer = approxMeasurer{}
	}
	if style.MaxFontSize <= 0 || style.MinFontSize <= 0 || style.Step <= 0 {
		def := DefaultTableStyle()
		style.MaxFontSize, style.MinFontSize, style.Step = def.MaxFontSize, def.MinFontSize, def.Step
	}

	shape, err := slide.AddTable(df.Height()+1, df.Width(), rect)
	if err != nil {
		return nil, err
	}
	table := shape.Table

	for c, name := range df.Columns {
		table.Cells[0][c].SetText(name)
		if style.HeaderFill != nil {
			table.Cells[0][c].Fill.Solid(*style.HeaderFill)
		}
	}
	for r, row := range df.Rows {
		for c, value := range row {
			table.Cells[r+1][c].SetText(value)
		}
	}

	table.IterCells(func(r, _ int, cell *entities.Cell) {
		cell.VerticalAnchor = entities.AnchorMiddle
		cell.TextFrame.VerticalAnchor = entities.AnchorMiddle
		for i := range cell.TextFrame.Paragraphs {
			cell.TextFrame.Paragraphs[i].Alignment = entities.AlignCenter
			if r == 0 && style.HeaderBold {
				for j := range cell.TextFrame.Paragraphs[i].Runs {
					cell.TextFrame.Paragraphs[i].Runs[j].Font.Bold = true
				}
			}
		}
	})

	return &TableContent{
		Shape:    shape,
		Table:    table,
		FontSize: style.MaxFontSize,
		measurer: measurer,
		style:    style,
	}, nil
}

// FitFontSize returns the largest size, stepping down from MaxFontSize, at
// which every cell's text fits its cell. MinFontSize is returned when nothing
// fits.
func (tc *TableContent) FitFontSize() entities.Length {
	for size := tc.style.MaxFontSize; size >= tc.style.MinFontSize; size -= tc.style.Step {
		if tc.fits(size) {
			return size
		}
	}
	return tc.style.MinFontSize
}

// AutoFit applies FitFontSize to every run of every cell
func (tc *TableContent) AutoFit() entities.Length {
	tc.SetFontSize(tc.FitFontSize())
	return tc.FontSize
}

// SetFontSize applies size to every cell
func (tc *TableContent) SetFontSize(size entities.Length) {
	tc.FontSize = size
	tc.Table.IterCells(func(_, _ int, cell *entities.Cell) {
		cell.TextFrame.SetFontSize(size)
	})
}

// cellBox is the text area of one cell: an equal share of the frame, inset
// by the cell margin.
func (tc *TableContent) cellBox() entities.Rect {
	rect := tc.Shape.Rect
	cell := entities.Rect{
		Width:  rect.Width / entities.Length(tc.Table.Cols),
		Height: rect.Height / entities.Length(tc.Table.Rows),
	}
	return cell.Inset(tc.style.CellMargin)
}

func (tc *TableContent) fits(size entities.Length) bool {
	box := tc.cellBox()
	width, height := box.Width, box.Height
	if width <= 0 || height <= 0 {
		return false
	}

	ok := true
	tc.Table.IterCells(func(r, _ int, cell *entities.Cell) {
		if !ok {
			return
		}
		font := entities.Font{Size: size, Bold: r == 0 && tc.style.HeaderBold}
		lines := wrapLines(tc.measurer, cell.Text(), font, width)
		if lines < 0 || entities.Length(lines)*tc.measurer.LineHeight(font) > height {
			ok = false
		}
	})
	return ok
}

// wrapLines counts the lines text occupies when words are wrapped at width,
// or -1 when a single word is wider than width.
func wrapLines(m ports.TextMeasurer, text string, font entities.Font, width entities.Length) int {
	lines := 0
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines++
			continue
		}
		space := m.Width(" ", font)
		var current entities.Length
		lines++
		for i, word := range words {
			w := m.Width(word, font)
			if w > width {
				return -1
			}
			switch {
			case i == 0:
				current = w
			case current+space+w <= width:
				current += space + w
			default:
				lines++
				current = w
			}
		}
	}
	return lines
}

// approxMeasurer assumes every glyph is half an em wide and lines are 1.2em
type approxMeasurer struct{}

func (approxMeasurer) Width(text string, font entities.Font) entities.Length {
	return entities.Length(len([]rune(text))) * font.Size / 2
}

func (approxMeasurer) LineHeight(font entities.Font) entities.Length {
	return font.Size * 6 / 5
}
