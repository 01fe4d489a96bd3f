package deck

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

const quarterlyDeck = `
title: Quarterly
author: Ops
slide_size: {width: 10in, height: 7.5in}
slides:
  - layout: Blank
    debug: true
    notes: Talk about the north region
    root:
      split: horizontal
      children:
        - length: 0.75in
        - split: vertical
          children:
            - {length: 1in, content: {kind: text, text: "# Title", markdown: true}}
            - {content: {kind: table, source: data.csv, max_rows: 5}}
        - length: 0.75in
`

func writeDeck(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestYAMLRepository_Parse(t *testing.T) {
	repo := NewYAMLRepository(nil)

	deck, err := repo.Parse([]byte(quarterlyDeck))
	require.NoError(t, err)

	assert.Equal(t, "Quarterly", deck.Title)
	assert.Equal(t, "Ops", deck.Author)
	require.NotNil(t, deck.SlideSize)
	assert.Equal(t, "10in", deck.SlideSize.Width)
	require.Len(t, deck.Slides, 1)

	slide := deck.Slides[0]
	assert.Equal(t, "Blank", slide.Layout)
	assert.True(t, slide.Debug)
	assert.Equal(t, "Talk about the north region", slide.Notes)
	assert.Equal(t, "horizontal", slide.Root.Split)
	require.Len(t, slide.Root.Children, 3)

	middle := slide.Root.Children[1]
	require.Len(t, middle.Children, 2)
	require.NotNil(t, middle.Children[0].Content)
	assert.Equal(t, entities.ContentText, middle.Children[0].Content.Kind)
	assert.True(t, middle.Children[0].Content.Markdown)
	assert.Equal(t, "data.csv", middle.Children[1].Content.Source)
	assert.Equal(t, 5, middle.Children[1].Content.MaxRows)
}

func TestYAMLRepository_ParseJSON(t *testing.T) {
	repo := NewYAMLRepository(nil)

	deck, err := repo.Parse([]byte(`{"title": "From JSON", "slides": [{"root": {"content": {"kind": "rect", "fill": "00FF00"}}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "From JSON", deck.Title)
	assert.Equal(t, "00FF00", deck.Slides[0].Root.Content.Fill)
}

func TestYAMLRepository_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "empty", content: "  \n", wantErr: "deck is empty"},
		{name: "no slides", content: "title: x\n", wantErr: "at least one slide"},
		{name: "unknown key", content: "title: x\nslidez: []\n", wantErr: "parsing deck"},
		{name: "malformed", content: "slides: [\n", wantErr: "parsing deck"},
		{
			name:    "bad length",
			content: "slides:\n  - root: {split: h, children: [{name: top, length: 3 furlongs}]}\n",
			wantErr: "area top",
		},
		{
			name:    "split without children",
			content: "slides:\n  - root: {split: vertical}\n",
			wantErr: "without children",
		},
		{
			name:    "unknown content",
			content: "slides:\n  - root: {content: {kind: chart}}\n",
			wantErr: `unknown content kind "chart"`,
		},
		{
			name:    "table without source",
			content: "slides:\n  - root: {content: {kind: table}}\n",
			wantErr: "requires a source",
		},
		{
			name:    "two documents",
			content: "slides:\n  - root: {}\n---\nslides:\n  - root: {}\n",
			wantErr: "single YAML document",
		},
	}

	repo := NewYAMLRepository(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestYAMLRepository_Load(t *testing.T) {
	repo := NewYAMLRepository(nil)
	ctx := context.Background()

	t.Run("valid deck", func(t *testing.T) {
		deck, err := repo.Load(ctx, writeDeck(t, quarterlyDeck))
		require.NoError(t, err)
		assert.Equal(t, "Quarterly", deck.Title)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := repo.Load(ctx, filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deck file not found")
	})

	t.Run("invalid deck names the file", func(t *testing.T) {
		path := writeDeck(t, "title: x\n")
		_, err := repo.Load(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("too large", func(t *testing.T) {
		path := writeDeck(t, "title: "+strings.Repeat("x", MaxDeckSize)+"\n")
		_, err := repo.Load(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "larger than")
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := repo.Load(cctx, writeDeck(t, quarterlyDeck))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
