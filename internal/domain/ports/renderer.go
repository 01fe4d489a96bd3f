package ports

import (
	"context"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// SlideRenderer draws slides for the browser preview
type SlideRenderer interface {
	// RenderSlide returns the slide at index as an SVG document
	RenderSlide(ctx context.Context, prs *entities.Presentation, index int) ([]byte, error)
}
