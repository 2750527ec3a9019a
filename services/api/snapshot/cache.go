// Package snapshot keeps the latest occupancy snapshot in memory and
// drives its periodic refresh.
package snapshot

import (
	"sync/atomic"

	"github.com/02loveslollipop/library-occupancy/services/api/occupancy"
)

type cached struct {
	snap   occupancy.Snapshot
	ticket uint64
}

// Cache holds the most recent successfully computed snapshot. The zero value
// is an empty, ready to use cache. It is safe for concurrent use.
type Cache struct {
	current atomic.Pointer[cached]
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Load returns a copy of the cached snapshot. ok is false until the first
// successful Replace.
func (c *Cache) Load() (snap occupancy.Snapshot, ok bool) {
	cur := c.current.Load()
	if cur == nil {
		return occupancy.Snapshot{}, false
	}
	return cur.snap.Clone(), true
}

// Ready reports whether a snapshot has been stored.
func (c *Cache) Ready() bool {
	return c.current.Load() != nil
}

func (c *Cache) ticket() uint64 {
	if cur := c.current.Load(); cur != nil {
		return cur.ticket
	}
	return 0
}

// Replace stores snap if ticket is newer than the ticket of the snapshot
// already held. Tickets are issued when a refresh starts, so a refresh that
// finishes late cannot overwrite a fresher result. It reports whether snap
// was stored.
func (c *Cache) Replace(snap occupancy.Snapshot, ticket uint64) bool {
	next := &cached{snap: snap.Clone(), ticket: ticket}
	for {
		cur := c.current.Load()
		if cur != nil && cur.ticket >= ticket {
			return false
		}
		if c.current.CompareAndSwap(cur, next) {
			return true
		}
	}
}
