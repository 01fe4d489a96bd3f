package ports

import (
	"context"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// TableRequest identifies tabular data to load
type TableRequest struct {
	Path    string
	Sheet   string
	MaxRows int
}

// TableSource loads tabular data into a data frame
type TableSource interface {
	// Supports reports whether the source can read the file at path
	Supports(path string) bool

	// Load reads the table; the first row holds column names
	Load(ctx context.Context, req TableRequest) (*entities.DataFrame, error)
}

// TextMeasurer measures rendered text for a given font
type TextMeasurer interface {
	// Width returns the advance width of a single line of text
	Width(text string, font entities.Font) entities.Length

	// LineHeight returns the distance between two baselines
	LineHeight(font entities.Font) entities.Length
}

// MarkdownConverter turns inline markdown into formatted paragraphs
type MarkdownConverter interface {
	ToParagraphs(source string) ([]entities.Paragraph, error)
}
