package ports

import (
	"context"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// DeckRepository loads deck definitions
type DeckRepository interface {
	// Load reads and validates the deck at path
	Load(ctx context.Context, path string) (*entities.Deck, error)

	// Parse decodes a deck from raw bytes
	Parse(data []byte) (*entities.Deck, error)
}
