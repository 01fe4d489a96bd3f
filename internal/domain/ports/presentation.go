package ports

import (
	"context"
	"io"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// PresentationWriter serializes a presentation as an Office Open XML package
type PresentationWriter interface {
	// Engine returns the engine name the writer is registered under
	Engine() entities.Engine

	// Write encodes the presentation into w
	Write(ctx context.Context, prs *entities.Presentation, w io.Writer) error
}

// PresentationInspector reads back an existing .pptx file
type PresentationInspector interface {
	Inspect(ctx context.Context, path string) (*entities.InspectReport, error)
}
