// Package deck loads deck definitions from YAML files.
package deck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// MaxDeckSize is the largest deck file Load accepts
const MaxDeckSize = 4 << 20

// YAMLRepository reads decks written in YAML. JSON decks load too, being a
// subset of YAML.
type YAMLRepository struct {
	logger *slog.Logger
}

// NewYAMLRepository creates a deck repository
func NewYAMLRepository(logger *slog.Logger) *YAMLRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &YAMLRepository{logger: logger}
}

// Load reads and validates the deck at path
func (r *YAMLRepository) Load(ctx context.Context, path string) (*entities.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - deck paths come from the command line
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("deck file not found: %s", path)
		}
		return nil, fmt.Errorf("opening deck: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxDeckSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading deck: %w", err)
	}
	if len(data) > MaxDeckSize {
		return nil, fmt.Errorf("deck file %s is larger than %d bytes", path, MaxDeckSize)
	}

	deck, err := r.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r.logger.Debug("deck loaded",
		slog.String("path", path),
		slog.String("title", deck.Title),
		slog.Int("slides", len(deck.Slides)))
	return deck, nil
}

// Parse decodes and validates a deck. Unknown keys are rejected so that a
// misspelled option does not silently fall back to its default.
func (r *YAMLRepository) Parse(data []byte) (*entities.Deck, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("deck is empty")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var deck entities.Deck
	if err := dec.Decode(&deck); err != nil {
		return nil, fmt.Errorf("parsing deck: %w", err)
	}

	var extra interface{}
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("deck must be a single YAML document")
	}

	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deck: %w", err)
	}
	return &deck, nil
}

var _ ports.DeckRepository = (*YAMLRepository)(nil)
