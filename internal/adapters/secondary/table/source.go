// Package table loads tabular data for table content from CSV and Excel files.
package table

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// Sources returns every table source, in lookup order
func Sources() []ports.TableSource {
	return []ports.TableSource{NewCSVSource(), NewXLSXSource()}
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// newFrame builds a frame from a header and records, padding or cutting every
// record to the header width. Blank column names become "column N".
func newFrame(ctx context.Context, header []string, records [][]string, maxRows int) (*entities.DataFrame, error) {
	if len(header) == 0 {
		return nil, entities.NewSpecMismatchError("table has no header row")
	}
	df := &entities.DataFrame{Columns: make([]string, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column %d", i+1)
		}
		df.Columns[i] = name
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if maxRows > 0 && len(df.Rows) == maxRows {
			break
		}
		row := make([]string, len(header))
		copy(row, rec)
		df.Rows = append(df.Rows, row)
	}
	return df, nil
}
