package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/library-occupancy/services/api/occupancy"
)

func uniformSnapshot(t *testing.T, value float64, n int) occupancy.Snapshot {
	t.Helper()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := make([]occupancy.Entry, n)
	for i := range entries {
		entries[i] = occupancy.Entry{Value: value, Timestamp: base.Add(-time.Duration(i) * time.Minute)}
	}
	snap, err := occupancy.Build(entries, base)
	require.NoError(t, err)
	return snap
}

func TestCacheStartsUninitialized(t *testing.T) {
	c := NewCache()

	snap, ok := c.Load()
	assert.False(t, ok)
	assert.False(t, c.Ready())
	assert.Nil(t, snap.CurrentPersons)
	assert.Empty(t, snap.History)
}

func TestCacheReplaceAndLoad(t *testing.T) {
	c := NewCache()
	require.True(t, c.Replace(uniformSnapshot(t, 4, 3), 1))

	snap, ok := c.Load()
	require.True(t, ok)
	assert.True(t, c.Ready())
	assert.Equal(t, 4.0, snap.AveragePersons)
	assert.Len(t, snap.History, 3)
}

func TestCacheRejectsOlderTicket(t *testing.T) {
	c := NewCache()
	require.True(t, c.Replace(uniformSnapshot(t, 8, 2), 5))

	assert.False(t, c.Replace(uniformSnapshot(t, 1, 2), 4))
	assert.False(t, c.Replace(uniformSnapshot(t, 1, 2), 5))

	snap, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, 8.0, snap.AveragePersons)

	assert.True(t, c.Replace(uniformSnapshot(t, 2, 2), 6))
	snap, _ = c.Load()
	assert.Equal(t, 2.0, snap.AveragePersons)
}

func TestCacheLoadReturnsCopy(t *testing.T) {
	c := NewCache()
	c.Replace(uniformSnapshot(t, 3, 2), 1)

	snap, _ := c.Load()
	snap.History[0].Value = 100
	*snap.CurrentPersons = 100

	again, _ := c.Load()
	assert.Equal(t, 3.0, again.History[0].Value)
	assert.Equal(t, 3.0, *again.CurrentPersons)
}

func TestCacheReadersNeverSeeMixedSnapshots(t *testing.T) {
	c := NewCache()
	c.Replace(uniformSnapshot(t, 0, 1), 1)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, ok := c.Load()
				if !ok {
					continue
				}
				for _, e := range snap.History {
					if e.Value != snap.AveragePersons || e.Value != *snap.CurrentPersons {
						t.Errorf("mixed snapshot: entry %v average %v", e.Value, snap.AveragePersons)
						return
					}
				}
			}
		}()
	}

	for i := 2; i < 200; i++ {
		c.Replace(uniformSnapshot(t, float64(i), 1+i%7), uint64(i))
	}
	close(stop)
	wg.Wait()
}
