package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	table, err := NewTable(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Rows)
	assert.Equal(t, 2, table.Cols)

	var visited [][2]int
	table.IterCells(func(r, c int, cell *Cell) {
		visited = append(visited, [2]int{r, c})
		assert.Equal(t, "", cell.Text())
	})
	assert.Equal(t, [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}, {2, 1}}, visited)

	cell, err := table.Cell(2, 1)
	require.NoError(t, err)
	cell.SetText("42")
	assert.Equal(t, "42", table.Cells[2][1].Text())

	_, err = table.Cell(3, 0)
	assert.ErrorIs(t, err, ErrIndex)
	_, err = table.Cell(0, -1)
	assert.ErrorIs(t, err, ErrIndex)

	_, err = NewTable(1, 0)
	assert.ErrorIs(t, err, ErrSpecMismatch)
}

func TestDataFrame(t *testing.T) {
	df := &DataFrame{
		Columns: []string{"region", "revenue"},
		Rows:    [][]string{{"north", "10"}, {"south", "12"}, {"east", "7"}},
	}

	require.NoError(t, df.Validate())
	assert.Equal(t, 3, df.Height())
	assert.Equal(t, 2, df.Width())
	assert.Equal(t, "DataFrame(3 x 2: region, revenue)", df.String())

	assert.Equal(t, 2, df.Head(2).Height())
	assert.Equal(t, 3, df.Head(10).Height())
	assert.Equal(t, 3, df.Head(-1).Height())

	df.Rows = append(df.Rows, []string{"west"})
	assert.ErrorIs(t, df.Validate(), ErrSpecMismatch)

	assert.ErrorIs(t, (&DataFrame{}).Validate(), ErrSpecMismatch)
}
