package pptx

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// samplePresentation has two slides: an outlined rectangle, a formatted text
// box, a 2x2 table and notes on the first, escaped text on the second.
func samplePresentation(t *testing.T) *entities.Presentation {
	t.Helper()

	prs := entities.NewPresentation()
	prs.Title = "Quarterly Review"
	prs.Author = "Data Team"
	prs.Company = "Acme"

	layout, err := prs.SlideLayouts.Blank()
	require.NoError(t, err)

	first := prs.Slides.AddSlide(layout)
	outline := first.AddShape(entities.Rect{X: entities.Inches(0.5), Y: entities.Inches(0.5), Width: entities.Inches(9), Height: entities.Inches(6.5)})
	outline.Line.SetColor(entities.MustRGB("FF0000"))

	text := first.AddTextbox(entities.Rect{X: entities.Inches(1), Y: entities.Inches(1), Width: entities.Inches(4), Height: entities.Inches(1)})
	text.SetText("Revenue\nup 12%")
	text.TextFrame.Paragraphs[0].Runs[0].Font = entities.Font{Size: entities.Points(24), Bold: true}
	text.TextFrame.Paragraphs[0].Alignment = entities.AlignCenter

	table, err := first.AddTable(2, 2, entities.Rect{X: entities.Inches(1), Y: entities.Inches(3), Width: entities.Inches(4), Height: entities.Inches(2)})
	require.NoError(t, err)
	for r, row := range [][]string{{"region", "sales"}, {"north", "42"}} {
		for c, v := range row {
			table.Table.Cells[r][c].SetText(v)
		}
	}
	table.Table.Cells[0][0].Fill.Solid(entities.MustRGB("DDDDDD"))
	first.Notes = "Mention the north region"

	second := prs.Slides.AddSlide(layout)
	escaped := second.AddTextbox(entities.Rect{X: entities.Inches(2), Y: entities.Inches(2), Width: entities.Inches(5), Height: entities.Inches(1)})
	escaped.SetText("R&D <budget>")
	escaped.TextFrame.Paragraphs[0].Bullet = true

	return prs
}

func writeFile(t *testing.T, w ports.PresentationWriter, prs *entities.Presentation) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, w.Write(context.Background(), prs, &buf))

	path := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}
