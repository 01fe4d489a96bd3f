package entities

// CacheStats counts how a cache has been used
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`

	// Size is the number of cached items
	Size int `json:"size"`
	// MaxSize is the cache budget in bytes
	MaxSize int `json:"max_size"`

	HitRate float64 `json:"hit_rate"`
}
