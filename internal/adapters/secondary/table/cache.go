package table

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
	"github.com/fredcamaral/pptgrid/internal/domain/ports"
)

// DefaultCacheSize is the cell text budget of a cache created with size 0
const DefaultCacheSize = 64 * 1024 * 1024

// per-cell overhead added to the text length when sizing a frame
const cellOverhead = 16

// Cache keeps loaded frames in memory and reads a file again only when its
// size or modification time changes. Once the cached frames exceed maxSize
// the least recently used ones are evicted. Cached frames are shared between
// callers and must not be modified.
type Cache struct {
	sources []ports.TableSource
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[cacheKey]*cacheEntry
	lru     *cacheHeap
	tick    uint64
	maxSize int64
	size    int64
	stats   entities.CacheStats
}

type cacheKey struct {
	path    string
	sheet   string
	maxRows int
}

type cacheEntry struct {
	frame    *entities.DataFrame
	modTime  time.Time
	fileSize int64
	size     int64
	item     *heapEntry
}

// NewCache creates a cache in front of sources
func NewCache(maxSize int64, logger *slog.Logger, sources ...ports.TableSource) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &cacheHeap{}
	heap.Init(h)

	return &Cache{
		sources: sources,
		logger:  logger.With("component", "table_cache"),
		entries: make(map[cacheKey]*cacheEntry),
		lru:     h,
		maxSize: maxSize,
		stats:   entities.CacheStats{MaxSize: int(maxSize)},
	}
}

// Supports reports whether any wrapped source reads path
func (c *Cache) Supports(path string) bool {
	return c.source(path) != nil
}

// Load returns the cached frame when the file is unchanged and loads it
// through the wrapped sources otherwise.
func (c *Cache) Load(ctx context.Context, req ports.TableRequest) (*entities.DataFrame, error) {
	info, err := os.Stat(req.Path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	key := cacheKey{path: req.Path, sheet: req.Sheet, maxRows: req.MaxRows}

	if df, ok := c.get(key, info); ok {
		return df, nil
	}

	source := c.source(req.Path)
	if source == nil {
		return nil, fmt.Errorf("no table source supports %s", req.Path)
	}
	df, err := source.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	c.set(key, info, df)
	return df, nil
}

func (c *Cache) source(path string) ports.TableSource {
	for _, s := range c.sources {
		if s.Supports(path) {
			return s
		}
	}
	return nil
}

func (c *Cache) get(key cacheKey, info os.FileInfo) (*entities.DataFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if !entry.modTime.Equal(info.ModTime()) || entry.fileSize != info.Size() {
		c.remove(key)
		c.stats.Misses++
		c.logger.Debug("table changed on disk", slog.String("path", key.path))
		return nil, false
	}

	c.stats.Hits++
	c.tick++
	entry.item.lastAccess = c.tick
	heap.Fix(c.lru, entry.item.index)
	return entry.frame, true
}

func (c *Cache) set(key cacheKey, info os.FileInfo, df *entities.DataFrame) {
	size := frameSize(df)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	if size > c.maxSize {
		c.logger.Debug("table too large to cache",
			slog.String("path", key.path),
			slog.Int64("size", size))
		return
	}
	c.evict(size)

	c.tick++
	item := &heapEntry{key: key, lastAccess: c.tick}
	heap.Push(c.lru, item)
	c.entries[key] = &cacheEntry{
		frame:    df,
		modTime:  info.ModTime(),
		fileSize: info.Size(),
		size:     size,
		item:     item,
	}
	c.size += size
	c.stats.Size = len(c.entries)
}

// evict drops least recently used frames until needed more bytes fit
func (c *Cache) evict(needed int64) {
	for c.size+needed > c.maxSize && c.lru.Len() > 0 {
		oldest := heap.Pop(c.lru).(*heapEntry)
		if entry, ok := c.entries[oldest.key]; ok {
			delete(c.entries, oldest.key)
			c.size -= entry.size
			c.stats.Evictions++
		}
	}
	c.stats.Size = len(c.entries)
}

func (c *Cache) remove(key cacheKey) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	heap.Remove(c.lru, entry.item.index)
	delete(c.entries, key)
	c.size -= entry.size
	c.stats.Size = len(c.entries)
}

// Clear drops every cached frame
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[cacheKey]*cacheEntry)
	*c.lru = (*c.lru)[:0]
	c.size = 0
	c.stats.Size = 0
}

// Stats returns hit, miss and eviction counts
func (c *Cache) Stats() entities.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func frameSize(df *entities.DataFrame) int64 {
	var size int64
	for _, name := range df.Columns {
		size += int64(len(name)) + cellOverhead
	}
	for _, row := range df.Rows {
		for _, cell := range row {
			size += int64(len(cell)) + cellOverhead
		}
	}
	return size
}

// heapEntry orders cached keys by their last access
type heapEntry struct {
	key        cacheKey
	lastAccess uint64
	index      int
}

type cacheHeap []*heapEntry

func (h cacheHeap) Len() int           { return len(h) }
func (h cacheHeap) Less(i, j int) bool { return h[i].lastAccess < h[j].lastAccess }

func (h cacheHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *cacheHeap) Push(x interface{}) {
	entry := x.(*heapEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *cacheHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[:n-1]
	return entry
}

var _ ports.TableSource = (*Cache)(nil)
