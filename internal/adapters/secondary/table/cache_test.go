package table

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

type countingSource struct {
	ports.TableSource
	loads int
}

func (s *countingSource) Load(ctx context.Context, req ports.TableRequest) (*entities.DataFrame, error) {
	s.loads++
	return s.TableSource.Load(ctx, req)
}

func load(t *testing.T, c *Cache, path string) *entities.DataFrame {
	t.Helper()
	df, err := c.Load(context.Background(), ports.TableRequest{Path: path})
	require.NoError(t, err)
	return df
}

func TestCache_Load(t *testing.T) {
	t.Run("unchanged file is read once", func(t *testing.T) {
		csv := &countingSource{TableSource: NewCSVSource()}
		c := NewCache(0, nil, csv)
		path := writeTemp(t, "sales.csv", "region,sales\nnorth,42\n")

		first := load(t, c, path)
		second := load(t, c, path)

		assert.Same(t, first, second)
		assert.Equal(t, 1, csv.loads)
		stats := c.Stats()
		assert.Equal(t, int64(1), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
		assert.Equal(t, 1, stats.Size)
		assert.InDelta(t, 0.5, stats.HitRate, 0.001)
	})

	t.Run("modified file is read again", func(t *testing.T) {
		csv := &countingSource{TableSource: NewCSVSource()}
		c := NewCache(0, nil, csv)
		path := writeTemp(t, "sales.csv", "region,sales\nnorth,42\n")
		load(t, c, path)

		require.NoError(t, os.WriteFile(path, []byte("region,sales\nsouth,17\n"), 0600))
		later := time.Now().Add(time.Minute)
		require.NoError(t, os.Chtimes(path, later, later))

		df := load(t, c, path)
		assert.Equal(t, [][]string{{"south", "17"}}, df.Rows)
		assert.Equal(t, 2, csv.loads)
		assert.Equal(t, 1, c.Stats().Size)
	})

	t.Run("requests differing in rows are cached apart", func(t *testing.T) {
		csv := &countingSource{TableSource: NewCSVSource()}
		c := NewCache(0, nil, csv)
		path := writeTemp(t, "n.csv", "n\n1\n2\n3\n")

		all := load(t, c, path)
		two, err := c.Load(context.Background(), ports.TableRequest{Path: path, MaxRows: 2})
		require.NoError(t, err)

		assert.Equal(t, 3, all.Height())
		assert.Equal(t, 2, two.Height())
		assert.Equal(t, 2, csv.loads)
	})

	t.Run("least recently used frame is evicted", func(t *testing.T) {
		csv := &countingSource{TableSource: NewCSVSource()}
		a := writeTemp(t, "a.csv", "x\n1\n")
		b := writeTemp(t, "b.csv", "x\n2\n")
		d := writeTemp(t, "c.csv", "x\n3\n")
		// room for two single-cell frames
		c := NewCache(2*(2+2*cellOverhead), nil, csv)

		load(t, c, a)
		load(t, c, b)
		load(t, c, a)
		load(t, c, d)

		stats := c.Stats()
		assert.Equal(t, int64(1), stats.Evictions)
		assert.Equal(t, 2, stats.Size)

		load(t, c, a)
		assert.Equal(t, 3, csv.loads)
		load(t, c, b)
		assert.Equal(t, 4, csv.loads)
	})

	t.Run("oversized frame is not cached", func(t *testing.T) {
		csv := &countingSource{TableSource: NewCSVSource()}
		c := NewCache(8, nil, csv)
		path := writeTemp(t, "wide.csv", "region,sales\nnorth,42\n")

		load(t, c, path)
		load(t, c, path)
		assert.Equal(t, 2, csv.loads)
		assert.Equal(t, 0, c.Stats().Size)
	})

	t.Run("clear", func(t *testing.T) {
		csv := &countingSource{TableSource: NewCSVSource()}
		c := NewCache(0, nil, csv)
		path := writeTemp(t, "sales.csv", "region\nnorth\n")

		load(t, c, path)
		c.Clear()
		load(t, c, path)
		assert.Equal(t, 2, csv.loads)
	})
}

func TestCache_Errors(t *testing.T) {
	c := NewCache(0, nil, Sources()...)

	t.Run("missing file", func(t *testing.T) {
		_, err := c.Load(context.Background(), ports.TableRequest{Path: "/does/not/exist.csv"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening table")
	})

	t.Run("unsupported file", func(t *testing.T) {
		path := writeTemp(t, "notes.txt", "hello")
		_, err := c.Load(context.Background(), ports.TableRequest{Path: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no table source supports")
	})

	t.Run("load errors are not cached", func(t *testing.T) {
		path := writeTemp(t, "empty.csv", "")
		_, err := c.Load(context.Background(), ports.TableRequest{Path: path})
		require.Error(t, err)
		assert.Equal(t, 0, c.Stats().Size)
	})
}

func TestCache_Supports(t *testing.T) {
	c := NewCache(0, nil, Sources()...)
	assert.True(t, c.Supports("a.csv"))
	assert.True(t, c.Supports("a.xlsx"))
	assert.False(t, c.Supports("a.txt"))
}
