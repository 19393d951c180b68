package session

import (
	"sync"

	"github.com/mcoot/idlecoins/internal/model"
)

// writeSlots serializes store writes per player. A writer copies the cached
// record only after taking the player's slot, so whichever save lands last
// carries the newest state.
type writeSlots struct {
	mu    sync.Mutex
	slots map[model.PlayerID]*writeSlot
}

type writeSlot struct {
	mu      sync.Mutex
	waiters int
}

func newWriteSlots() *writeSlots {
	return &writeSlots{slots: make(map[model.PlayerID]*writeSlot)}
}

// acquire blocks until id's slot is free and returns its release func
func (w *writeSlots) acquire(id model.PlayerID) func() {
	w.mu.Lock()
	slot, ok := w.slots[id]
	if !ok {
		slot = &writeSlot{}
		w.slots[id] = slot
	}
	slot.waiters++
	w.mu.Unlock()

	slot.mu.Lock()
	return func() {
		slot.mu.Unlock()

		w.mu.Lock()
		slot.waiters--
		if slot.waiters == 0 {
			delete(w.slots, id)
		}
		w.mu.Unlock()
	}
}
