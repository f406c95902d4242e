package terrain

import (
	"sync"

	"github.com/tellus3d/tellus/pkg/geo"
)

// Callback observes the in-memory terrain graph: tiles appearing and
// map-wide elevation invalidation.
type Callback interface {
	// OnTileNodeAdded fires from the host's update phase for every tile
	// node queued since the last update.
	OnTileNodeAdded(key geo.TileKey, node *TileNode)
	// OnMapElevationChanged fires when elevation layers change and
	// downstream consumers must re-fetch elevation.
	OnMapElevationChanged()
}

// Terrain is the utility facade over the engine's live terrain: the
// profile, geocentric-ness, and tile lifecycle subscriptions.
type Terrain struct {
	profile    *geo.Profile
	geocentric bool

	mu        sync.RWMutex
	callbacks []Callback
	pending   []*TileNode
}

func newTerrain(profile *geo.Profile, geocentric bool) *Terrain {
	return &Terrain{profile: profile, geocentric: geocentric}
}

// Profile returns the terrain's profile.
func (t *Terrain) Profile() *geo.Profile { return t.profile }

// IsGeocentric reports whether the terrain drapes over a globe.
func (t *Terrain) IsGeocentric() bool { return t.geocentric }

// AddCallback subscribes to terrain events.
func (t *Terrain) AddCallback(cb Callback) {
	if cb == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callbacks = append(t.callbacks, cb)
}

// RemoveCallback unsubscribes from terrain events.
func (t *Terrain) RemoveCallback(cb Callback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, c := range t.callbacks {
		if c == cb {
			t.callbacks = append(t.callbacks[:i], t.callbacks[i+1:]...)
			return
		}
	}
}

// NotifyMapElevationChanged tells subscribers that elevation data is
// stale. Fire-and-forget, delivered synchronously.
func (t *Terrain) NotifyMapElevationChanged() {
	t.mu.RLock()
	observers := append([]Callback(nil), t.callbacks...)
	t.mu.RUnlock()
	for _, cb := range observers {
		cb.OnMapElevationChanged()
	}
}

// queueTileNode defers a tile-added notification to the next update.
func (t *Terrain) queueTileNode(node *TileNode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, node)
}

// update drains queued tile notifications. Called from the engine's
// update phase.
func (t *Terrain) update() {
	t.mu.Lock()
	nodes := t.pending
	t.pending = nil
	observers := append([]Callback(nil), t.callbacks...)
	t.mu.Unlock()

	for _, n := range nodes {
		for _, cb := range observers {
			cb.OnTileNodeAdded(n.Key, n)
		}
	}
}
