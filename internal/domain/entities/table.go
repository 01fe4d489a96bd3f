package entities

import (
	"fmt"
	"strings"
)

// Cell is a table cell
type Cell struct {
	TextFrame      *TextFrame     `json:"text_frame"`
	VerticalAnchor VerticalAnchor `json:"vertical_anchor,omitempty"`
	Fill           FillFormat     `json:"fill"`
}

// Text returns the cell text
func (c *Cell) Text() string {
	return c.TextFrame.Text()
}

// SetText replaces the cell text
func (c *Cell) SetText(text string) {
	c.TextFrame.SetText(text)
}

// Table is a grid of cells placed in a graphic frame
type Table struct {
	Rows  int       `json:"rows"`
	Cols  int       `json:"cols"`
	Cells [][]*Cell `json:"cells"`
}

// NewTable allocates a rows x cols table with empty cells
func NewTable(rows, cols int) (*Table, error) {
	if rows <= 0 || cols <= 0 {
		return nil, NewSpecMismatchError(fmt.Sprintf("table needs at least one row and column, got %dx%d", rows, cols))
	}
	t := &Table{Rows: rows, Cols: cols, Cells: make([][]*Cell, rows)}
	for r := range t.Cells {
		t.Cells[r] = make([]*Cell, cols)
		for c := range t.Cells[r] {
			t.Cells[r][c] = &Cell{TextFrame: NewTextFrame()}
		}
	}
	return t, nil
}

// Cell returns the cell at row r, column c
func (t *Table) Cell(r, c int) (*Cell, error) {
	if r < 0 || r >= t.Rows || c < 0 || c >= t.Cols {
		return nil, newLayoutError(ErrorKindIndex, "cell out of range",
			fmt.Sprintf("cell (%d, %d) in %dx%d table", r, c, t.Rows, t.Cols))
	}
	return t.Cells[r][c], nil
}

// IterCells visits cells row by row
func (t *Table) IterCells(fn func(r, c int, cell *Cell)) {
	for r, row := range t.Cells {
		for c, cell := range row {
			fn(r, c, cell)
		}
	}
}

// DataFrame is a small column-named table of values used as table content
type DataFrame struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Height returns the number of data rows
func (df *DataFrame) Height() int {
	return len(df.Rows)
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.Columns)
}

// Validate ensures every row has one value per column
func (df *DataFrame) Validate() error {
	if len(df.Columns) == 0 {
		return NewSpecMismatchError("data frame has no columns")
	}
	for i, row := range df.Rows {
		if len(row) != len(df.Columns) {
			return NewSpecMismatchError(fmt.Sprintf("row %d has %d values, expected %d", i, len(row), len(df.Columns)))
		}
	}
	return nil
}

// Head returns a frame with at most n rows
func (df *DataFrame) Head(n int) *DataFrame {
	if n < 0 || n >= len(df.Rows) {
		n = len(df.Rows)
	}
	return &DataFrame{Columns: df.Columns, Rows: df.Rows[:n]}
}

func (df *DataFrame) String() string {
	return fmt.Sprintf("DataFrame(%d x %d: %s)", df.Height(), df.Width(), strings.Join(df.Columns, ", "))
}
