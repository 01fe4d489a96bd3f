package pptx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

func TestInspector_Inspect(t *testing.T) {
	path := writeFile(t, NewOOXMLWriter(nil), samplePresentation(t))

	report, err := NewInspector(nil).Inspect(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, report.Path)
	assert.Equal(t, "Quarterly Review", report.Title)
	assert.Equal(t, "Data Team", report.Author)
	assert.Equal(t, 2, report.SlideCount)
	require.Len(t, report.Slides, 2)

	first := report.Slides[0]
	assert.Equal(t, []string{"Revenue\nup 12%"}, first.Texts())
	assert.Equal(t, entities.Rect{
		X:      entities.Inches(1),
		Y:      entities.Inches(1),
		Width:  entities.Inches(4),
		Height: entities.Inches(1),
	}, first.Blocks[0].Rect)
	require.Len(t, first.Tables, 1)
	assert.Equal(t, [][]string{{"region", "sales"}, {"north", "42"}}, first.Tables[0].Rows)
	assert.Equal(t, "Mention the north region", first.Notes)

	assert.Equal(t, []string{"R&D <budget>"}, report.Slides[1].Texts())
}

func TestInspector_Errors(t *testing.T) {
	t.Run("not a zip file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.pptx")
		require.NoError(t, os.WriteFile(path, []byte("not a presentation"), 0600))

		_, err := NewInspector(nil).Inspect(context.Background(), path)
		assert.ErrorContains(t, err, "opening presentation")
	})

	t.Run("canceled context", func(t *testing.T) {
		path := writeFile(t, NewOOXMLWriter(nil), samplePresentation(t))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewInspector(nil).Inspect(ctx, path)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
