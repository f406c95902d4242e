package terrain

import (
	"fmt"
	"sync"
)

// TextureUnitTracker manages texture image unit allocation for the
// engine. Units marked off-limits are never handed out; reservations
// are named so leaks can be traced. Safe for concurrent use.
type TextureUnitTracker struct {
	mu        sync.RWMutex
	maxUnits  int
	offLimits map[int]bool
	inUse     map[int]string
}

func newTextureUnitTracker(maxUnits int) *TextureUnitTracker {
	return &TextureUnitTracker{
		maxUnits:  maxUnits,
		offLimits: make(map[int]bool),
		inUse:     make(map[int]string),
	}
}

// SetOffLimits marks a unit as unavailable to the engine.
func (t *TextureUnitTracker) SetOffLimits(unit int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offLimits[unit] = true
}

// Reserve allocates the lowest free unit for the named owner.
func (t *TextureUnitTracker) Reserve(owner string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for unit := 0; unit < t.maxUnits; unit++ {
		if t.offLimits[unit] {
			continue
		}
		if _, taken := t.inUse[unit]; taken {
			continue
		}
		t.inUse[unit] = owner
		return unit, nil
	}
	return 0, fmt.Errorf("no free texture image unit for %q", owner)
}

// Release frees a previously reserved unit. Releasing a unit that was
// never reserved is a no-op.
func (t *TextureUnitTracker) Release(unit int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inUse, unit)
}

// Owner returns the name that reserved a unit, or "" if free.
func (t *TextureUnitTracker) Owner(unit int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inUse[unit]
}

// MaxUnits returns the number of addressable units.
func (t *TextureUnitTracker) MaxUnits() int {
	return t.maxUnits
}
