package pptx

import (
	"context"
	"fmt"
	"log/slog"

	tabula "github.com/tsawler/tabula/pptx"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// Inspector reads back .pptx files with the tabula parser
type Inspector struct {
	logger *slog.Logger
}

// NewInspector creates an inspector. A nil logger uses slog.Default().
func NewInspector(logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{logger: logger}
}

// Inspect lists the positioned text blocks, tables and notes of every slide
func (i *Inspector) Inspect(ctx context.Context, path string) (*entities.InspectReport, error) {
	r, err := tabula.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening presentation: %w", err)
	}
	defer r.Close()

	meta := r.Metadata()
	report := &entities.InspectReport{
		Path:       path,
		Title:      meta.Title,
		Author:     meta.Author,
		SlideCount: r.SlideCount(),
		Slides:     make([]entities.InspectedSlide, 0, r.SlideCount()),
	}

	for n := 0; n < r.SlideCount(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slide, err := r.Slide(n)
		if err != nil {
			return nil, fmt.Errorf("reading slide %d: %w", n+1, err)
		}
		report.Slides = append(report.Slides, inspectSlide(slide))
	}

	i.logger.Debug("presentation inspected",
		slog.String("path", path),
		slog.Int("slides", report.SlideCount))
	return report, nil
}

func inspectSlide(slide *tabula.Slide) entities.InspectedSlide {
	out := entities.InspectedSlide{
		Index:  slide.Index,
		Title:  slide.Title,
		Blocks: make([]entities.InspectedBlock, 0, len(slide.Content)),
		Notes:  slide.Notes,
	}
	for _, block := range slide.Content {
		out.Blocks = append(out.Blocks, entities.InspectedBlock{
			Text: block.Text,
			Rect: entities.Rect{
				X:      entities.Length(block.X),
				Y:      entities.Length(block.Y),
				Width:  entities.Length(block.Width),
				Height: entities.Length(block.Height),
			},
			IsTitle: block.IsTitle,
		})
	}
	for _, table := range slide.Tables {
		rows := make([][]string, len(table.Rows))
		for r, row := range table.Rows {
			rows[r] = make([]string, len(row))
			for c, cell := range row {
				rows[r][c] = cell.Text
			}
		}
		out.Tables = append(out.Tables, entities.InspectedTable{Rows: rows})
	}
	return out
}

var _ ports.PresentationInspector = (*Inspector)(nil)
