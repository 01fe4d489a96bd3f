package ports

import (
	"context"
	"io"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// DeckService turns deck definitions into presentations
type DeckService interface {
	// Build lays out and renders every slide of the deck. Relative table
	// sources are resolved against baseDir.
	Build(ctx context.Context, deck *entities.Deck, baseDir string) (*entities.Presentation, error)

	// Demo builds the debug grid presentation: two rows of two boxes inside 0.75in margins
	Demo(ctx context.Context) (*entities.Presentation, error)
}

// PresentationService saves and inspects presentation files
type PresentationService interface {
	Save(ctx context.Context, prs *entities.Presentation, path string) error
	Write(ctx context.Context, prs *entities.Presentation, w io.Writer) error
	Inspect(ctx context.Context, path string) (*entities.InspectReport, error)
}

// ServerService defines the interface for serving deck previews
type ServerService interface {
	// Serve starts the HTTP server for a deck
	Serve(ctx context.Context, path string, port int, host string, openBrowser bool) error

	// Stop gracefully stops the server
	Stop(ctx context.Context) error
}
