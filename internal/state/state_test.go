package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_Defaults(t *testing.T) {
	snap := NewStore().Snapshot()
	assert.Equal(t, BOOTING, snap.Phase)
	assert.False(t, snap.MenuVisible)
}

func TestStore_SetMenuVisibleReportsChange(t *testing.T) {
	store := NewStore()

	assert.True(t, store.SetMenuVisible(true))
	assert.False(t, store.SetMenuVisible(true))
	assert.True(t, store.SetMenuVisible(false))
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore()
	store.SetSize(800, 600)
	snap := store.Snapshot()

	store.SetSize(1024, 768)

	assert.Equal(t, 800, snap.Width)
	assert.Equal(t, 1024, store.Snapshot().Width)
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.CountRender()
			_ = store.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.Snapshot().Renders)
}
