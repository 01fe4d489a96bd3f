package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// SaveErrorType categorizes failures while saving a presentation
type SaveErrorType string

const (
	SaveErrorValidation    SaveErrorType = "validation"
	SaveErrorConfiguration SaveErrorType = "configuration"
	SaveErrorFilesystem    SaveErrorType = "filesystem"
	SaveErrorEncoding      SaveErrorType = "encoding"
)

// SaveError provides detailed error information with categorization
type SaveError struct {
	Type      SaveErrorType `json:"type"`
	Message   string        `json:"message"`
	Details   string        `json:"details,omitempty"`
	Code      string        `json:"code,omitempty"`
	Retryable bool          `json:"retryable"`
	Cause     error         `json:"-"`
}

func (e *SaveError) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.Details != "" {
		msg += " - " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}

// PresentationService validates, writes and inspects .pptx files
type PresentationService struct {
	writers   map[entities.Engine]ports.PresentationWriter
	engine    entities.Engine
	inspector ports.PresentationInspector
	overwrite bool
	logger    *slog.Logger
}

// NewPresentationService creates a presentation service writing with engine
func NewPresentationService(engine entities.Engine, inspector ports.PresentationInspector, logger *slog.Logger, writers ...ports.PresentationWriter) *PresentationService {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == "" {
		engine = entities.EngineOOXML
	}
	s := &PresentationService{
		writers:   make(map[entities.Engine]ports.PresentationWriter),
		engine:    engine,
		inspector: inspector,
		overwrite: true,
		logger:    logger,
	}
	for _, w := range writers {
		s.RegisterWriter(w)
	}
	return s
}

// RegisterWriter registers a writer under its engine name
func (s *PresentationService) RegisterWriter(w ports.PresentationWriter) {
	s.writers[w.Engine()] = w
}

// SetOverwrite controls whether Save may replace an existing file
func (s *PresentationService) SetOverwrite(overwrite bool) {
	s.overwrite = overwrite
}

// Engines returns the registered engine names
func (s *PresentationService) Engines() []entities.Engine {
	engines := make([]entities.Engine, 0, len(s.writers))
	for e := range s.writers {
		engines = append(engines, e)
	}
	sort.Slice(engines, func(i, j int) bool { return engines[i] < engines[j] })
	return engines
}

// Write validates prs and encodes it into w with the configured engine
func (s *PresentationService) Write(ctx context.Context, prs *entities.Presentation, w io.Writer) error {
	if prs == nil {
		return &SaveError{Type: SaveErrorValidation, Message: "presentation cannot be nil"}
	}
	if err := prs.Validate(); err != nil {
		return &SaveError{Type: SaveErrorValidation, Message: "invalid presentation", Cause: err}
	}

	writer, ok := s.writers[s.engine]
	if !ok {
		return &SaveError{
			Type:    SaveErrorConfiguration,
			Message: "unsupported engine",
			Details: string(s.engine),
			Code:    "UNSUPPORTED_ENGINE",
		}
	}

	if err := writer.Write(ctx, prs, w); err != nil {
		return &SaveError{
			Type:      SaveErrorEncoding,
			Message:   "writing presentation",
			Details:   string(s.engine),
			Retryable: errors.Is(err, context.DeadlineExceeded),
			Cause:     err,
		}
	}
	return nil
}

// Save writes prs to path. The file is written to a temporary file in the
// same directory and renamed into place, so readers never see a partial file.
func (s *PresentationService) Save(ctx context.Context, prs *entities.Presentation, path string) (err error) {
	start := time.Now()
	if path == "" {
		return &SaveError{Type: SaveErrorValidation, Message: "output path cannot be empty"}
	}

	if !s.overwrite {
		if _, statErr := os.Stat(path); statErr == nil {
			return &SaveError{
				Type:    SaveErrorFilesystem,
				Message: "output file already exists",
				Details: path,
				Code:    "FILE_EXISTS",
			}
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return &SaveError{Type: SaveErrorFilesystem, Message: "creating output directory", Details: dir, Cause: err}
	}

	tmp, err := os.CreateTemp(dir, ".pptgrid-*.pptx")
	if err != nil {
		return &SaveError{Type: SaveErrorFilesystem, Message: "creating temporary file", Details: dir, Cause: err, Retryable: true}
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = s.Write(ctx, prs, tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return &SaveError{Type: SaveErrorFilesystem, Message: "flushing temporary file", Cause: err}
	}
	if err = tmp.Close(); err != nil {
		return &SaveError{Type: SaveErrorFilesystem, Message: "closing temporary file", Cause: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &SaveError{Type: SaveErrorFilesystem, Message: "moving presentation into place", Details: path, Cause: err}
	}

	s.logger.Info("presentation saved",
		slog.String("path", path),
		slog.String("engine", string(s.engine)),
		slog.Int("slides", prs.SlideCount()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Inspect reads the slides and text blocks of an existing .pptx file
func (s *PresentationService) Inspect(ctx context.Context, path string) (*entities.InspectReport, error) {
	if s.inspector == nil {
		return nil, errors.New("no presentation inspector configured")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("presentation file not found: %s", path)
		}
		return nil, fmt.Errorf("checking presentation file: %w", err)
	}

	report, err := s.inspector.Inspect(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}
	return report, nil
}

var _ ports.PresentationService = (*PresentationService)(nil)
