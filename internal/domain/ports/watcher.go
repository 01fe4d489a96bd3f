package ports

import (
	"context"
	"time"
)

// FileWatcher reports changes to a deck and the tables it reads
type FileWatcher interface {
	// Watch delivers the debounced events of every path on one channel,
	// closed by Stop.
	Watch(ctx context.Context, paths ...string) (<-chan FileChangeEvent, error)
	// Add extends a running watch. Paths already watched are ignored.
	Add(paths ...string) error
	Stop() error
}

// FileChangeEvent is a change to one watched file
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType says how a watched file changed
type ChangeType int

const (
	Modified ChangeType = iota
	Created
	Deleted
	Renamed
)

var changeTypeNames = [...]string{"modified", "created", "deleted", "renamed"}

func (c ChangeType) String() string {
	if c < 0 || int(c) >= len(changeTypeNames) {
		return "unknown"
	}
	return changeTypeNames[c]
}
