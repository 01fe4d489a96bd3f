package renderer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// runeMeasurer makes every rune 10pt wide and every line 12pt high
type runeMeasurer struct{}

func (runeMeasurer) Width(text string, _ entities.Font) entities.Length {
	return entities.Points(10) * entities.Length(len([]rune(text)))
}

func (runeMeasurer) LineHeight(_ entities.Font) entities.Length {
	return entities.Points(12)
}

func newTestSlide(t *testing.T) (*entities.Presentation, *entities.Slide) {
	t.Helper()
	prs := entities.NewPresentation()
	layout, err := prs.SlideLayouts.Blank()
	require.NoError(t, err)
	return prs, prs.Slides.AddSlide(layout)
}

func inches(x, y, w, h float64) entities.Rect {
	return entities.Rect{
		X:      entities.Inches(x),
		Y:      entities.Inches(y),
		Width:  entities.Inches(w),
		Height: entities.Inches(h),
	}
}

func render(t *testing.T, r *SVGRenderer, prs *entities.Presentation) string {
	t.Helper()
	out, err := r.RenderSlide(context.Background(), prs, 0)
	require.NoError(t, err)
	return string(out)
}

func TestSVGRenderer_RenderSlide(t *testing.T) {
	t.Run("empty slide", func(t *testing.T) {
		prs, _ := newTestSlide(t)
		svg := render(t, NewSVGRenderer(nil, nil), prs)

		assert.True(t, strings.HasPrefix(svg, "<svg "))
		assert.Contains(t, svg, `viewBox="0 0 720 540"`)
		assert.Contains(t, svg, `<rect width="720" height="540" fill="#FFFFFF"/>`)
		assert.Contains(t, svg, "<title>Slide 1</title>")
		assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
	})

	t.Run("rectangle with fill and outline", func(t *testing.T) {
		prs, slide := newTestSlide(t)
		shape := slide.AddShape(inches(1, 1, 2, 1))
		shape.Fill.Solid(entities.MustRGB("FFCC00"))
		shape.Line.SetColor(entities.MustRGB("FF0000"))

		svg := render(t, NewSVGRenderer(nil, nil), prs)
		assert.Contains(t, svg, `<rect x="72" y="72" width="144" height="72" fill="#FFCC00" stroke="#FF0000" stroke-width="1"/>`)
	})

	t.Run("transparent shape without outline draws only text", func(t *testing.T) {
		prs, slide := newTestSlide(t)
		slide.AddTextbox(inches(0, 0, 4, 1)).SetText("hello")

		svg := render(t, NewSVGRenderer(nil, nil), prs)
		assert.Equal(t, 1, strings.Count(svg, "<rect "))
		assert.Contains(t, svg, ">hello</tspan>")
	})

	t.Run("text is escaped", func(t *testing.T) {
		prs, slide := newTestSlide(t)
		slide.AddTextbox(inches(0, 0, 4, 1)).SetText(`<b> & "co"`)

		svg := render(t, NewSVGRenderer(nil, nil), prs)
		assert.NotContains(t, svg, "<b>")
		assert.Contains(t, svg, "&lt;b&gt;")
		assert.Contains(t, svg, "&amp;")
	})

	t.Run("run formatting", func(t *testing.T) {
		prs, slide := newTestSlide(t)
		shape := slide.AddTextbox(inches(0, 0, 4, 1))
		blue := entities.MustRGB("0000FF")
		shape.TextFrame.Paragraphs = []entities.Paragraph{{
			Alignment: entities.AlignCenter,
			Runs: []entities.Run{
				{Text: "bold", Font: entities.Font{Bold: true, Size: entities.Points(24)}},
				{Text: "code", Font: entities.Font{Mono: true, Italic: true, Color: &blue}},
			},
		}}

		svg := render(t, NewSVGRenderer(nil, nil), prs)
		assert.Contains(t, svg, `text-anchor="middle"`)
		assert.Contains(t, svg, `<tspan font-size="24" font-weight="bold">bold</tspan>`)
		assert.Contains(t, svg, `font-style="italic"`)
		assert.Contains(t, svg, `fill="#0000FF"`)
		assert.Contains(t, svg, monoFamily)
	})

	t.Run("bullets", func(t *testing.T) {
		prs, slide := newTestSlide(t)
		shape := slide.AddTextbox(inches(0, 0, 4, 2))
		shape.TextFrame.Paragraphs = []entities.Paragraph{
			{Bullet: true, Runs: []entities.Run{{Text: "first"}}},
			{Bullet: true, Level: 1, Runs: []entities.Run{{Text: "nested"}}},
		}

		svg := render(t, NewSVGRenderer(nil, nil), prs)
		assert.Equal(t, 2, strings.Count(svg, "•"))
		assert.Contains(t, svg, "> first</tspan>")
		assert.Contains(t, svg, `x="25.2"`)
	})

	t.Run("wraps with a measurer", func(t *testing.T) {
		prs, slide := newTestSlide(t)
		slide.AddTextbox(inches(0, 0, 1, 2)).SetText("aaa bbb ccc")

		assert.Equal(t, 1, strings.Count(render(t, NewSVGRenderer(nil, nil), prs), "<text "))
		assert.Equal(t, 3, strings.Count(render(t, NewSVGRenderer(runeMeasurer{}, nil), prs), "<text "))
	})

	t.Run("no wrap when disabled", func(t *testing.T) {
		prs, slide := newTestSlide(t)
		shape := slide.AddTextbox(inches(0, 0, 1, 2))
		shape.SetText("aaa bbb ccc")
		shape.TextFrame.WordWrap = false

		assert.Equal(t, 1, strings.Count(render(t, NewSVGRenderer(runeMeasurer{}, nil), prs), "<text "))
	})

	t.Run("vertical anchor", func(t *testing.T) {
		tests := []struct {
			anchor entities.VerticalAnchor
			y      string
		}{
			// inset 3.6pt, line 12pt, baseline at 4/5 of the line
			{entities.AnchorTop, `y="13.2"`},
			{entities.AnchorMiddle, `y="39.6"`},
			{entities.AnchorBottom, `y="66"`},
		}
		for _, tt := range tests {
			t.Run(string(tt.anchor), func(t *testing.T) {
				prs, slide := newTestSlide(t)
				shape := slide.AddTextbox(inches(0, 0, 4, 1))
				shape.SetText("x")
				shape.TextFrame.VerticalAnchor = tt.anchor

				assert.Contains(t, render(t, NewSVGRenderer(runeMeasurer{}, nil), prs), tt.y)
			})
		}
	})

	t.Run("table", func(t *testing.T) {
		prs, slide := newTestSlide(t)
		shape, err := slide.AddTable(2, 2, inches(0, 0, 4, 2))
		require.NoError(t, err)
		shape.Table.Cells[0][0].SetText("region")
		shape.Table.Cells[0][0].Fill.Solid(entities.MustRGB("DDDDDD"))
		shape.Table.Cells[1][1].SetText("42")

		svg := render(t, NewSVGRenderer(nil, nil), prs)
		assert.Contains(t, svg, `data-rows="2" data-cols="2"`)
		// background plus four cells
		assert.Equal(t, 5, strings.Count(svg, "<rect "))
		assert.Contains(t, svg, `fill="#DDDDDD" stroke="#000000"`)
		assert.Contains(t, svg, `<rect x="144" y="72" width="144" height="72" fill="none"`)
		assert.Contains(t, svg, ">region</tspan>")
		assert.Contains(t, svg, ">42</tspan>")
	})
}

func TestSVGRenderer_Errors(t *testing.T) {
	r := NewSVGRenderer(nil, nil)

	t.Run("index out of range", func(t *testing.T) {
		prs, _ := newTestSlide(t)
		_, err := r.RenderSlide(context.Background(), prs, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrIndex)
	})

	t.Run("nil presentation", func(t *testing.T) {
		_, err := r.RenderSlide(context.Background(), nil, 0)
		assert.ErrorIs(t, err, entities.ErrPresentation)
	})

	t.Run("canceled context", func(t *testing.T) {
		prs, _ := newTestSlide(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.RenderSlide(ctx, prs, 0)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPt(t *testing.T) {
	tests := []struct {
		in   entities.Length
		want string
	}{
		{0, "0"},
		{entities.Inches(1), "72"},
		{entities.Points(10.5), "10.5"},
		{entities.Inches(0.05), "3.6"},
		{entities.Points(-2), "-2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pt(tt.in))
	}
}
