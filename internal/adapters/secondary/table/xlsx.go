package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/tabula/xlsx"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// XLSXSource reads worksheets of Excel workbooks with tabula
type XLSXSource struct{}

// NewXLSXSource creates an Excel table source
func NewXLSXSource() *XLSXSource {
	return &XLSXSource{}
}

// Supports reports whether path is an .xlsx or .xlsm workbook
func (s *XLSXSource) Supports(path string) bool {
	return hasExt(path, ".xlsx", ".xlsm")
}

// Load reads the named sheet, or the first one when Sheet is empty. The
// table spans the non-empty cells of the sheet; its first row holds column
// names.
func (s *XLSXSource) Load(ctx context.Context, req ports.TableRequest) (*entities.DataFrame, error) {
	r, err := xlsx.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer r.Close()

	tables := r.Tables()
	if len(tables) == 0 {
		return nil, entities.NewSpecMismatchError(fmt.Sprintf("workbook %s has no sheets", req.Path))
	}

	parsed := tables[0]
	if req.Sheet != "" {
		found := false
		for _, t := range tables {
			if t.Name == req.Sheet {
				parsed, found = t, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet %q not found, workbook has %s",
				req.Sheet, strings.Join(r.SheetNames(), ", "))
		}
	}
	if len(parsed.Headers) == 0 {
		return nil, entities.NewSpecMismatchError(fmt.Sprintf("sheet %q is empty", parsed.Name))
	}
	return newFrame(ctx, parsed.Headers, parsed.Rows, req.MaxRows)
}

var _ ports.TableSource = (*XLSXSource)(nil)
