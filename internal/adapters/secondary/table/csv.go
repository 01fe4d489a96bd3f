package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

const utf8BOM = "\uFEFF"

// CSVSource reads comma or tab separated files
type CSVSource struct{}

// NewCSVSource creates a CSV table source
func NewCSVSource() *CSVSource {
	return &CSVSource{}
}

// Supports reports whether path is a .csv or .tsv file
func (s *CSVSource) Supports(path string) bool {
	return hasExt(path, ".csv", ".tsv")
}

// Load reads the file; the first record holds column names
func (s *CSVSource) Load(ctx context.Context, req ports.TableRequest) (*entities.DataFrame, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if hasExt(req.Path, ".tsv") {
		r.Comma = '\t'
	}

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, entities.NewSpecMismatchError(fmt.Sprintf("table %s is empty", req.Path))
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var records [][]string
	for req.MaxRows <= 0 || len(records) < req.MaxRows {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", req.Path, err)
		}
		records = append(records, rec)
	}
	return newFrame(ctx, header, records, req.MaxRows)
}

var _ ports.TableSource = (*CSVSource)(nil)
