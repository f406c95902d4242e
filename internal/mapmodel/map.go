// Package mapmodel holds the map: an ordered set of image and
// elevation layers over a shared profile, with change notifications
// for engine synchronization and immutable frame snapshots for tile
// construction.
package mapmodel

import (
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/tellus3d/tellus/pkg/geo"
)

// Callback observes map lifecycle events.
type Callback interface {
	// OnMapInfoEstablished fires when the map's spatial context is
	// (re)established.
	OnMapInfoEstablished(info Info)
	// OnMapModelChanged fires after every layer mutation.
	OnMapModelChanged(change ModelChange)
}

// Map is the layer model. All methods are safe for concurrent use;
// change notifications are delivered synchronously on the mutating
// goroutine, outside the map's own lock.
type Map struct {
	profile *geo.Profile

	mu              sync.RWMutex
	imageLayers     []*ImageLayer
	elevationLayers []*ElevationLayer
	callbacks       []Callback
	revision        int64
	closers         []io.Closer
}

// New creates an empty map over the given profile.
func New(profile *geo.Profile) *Map {
	return &Map{profile: profile}
}

// Profile returns the map's profile.
func (m *Map) Profile() *geo.Profile { return m.profile }

// IsGeocentric reports whether the map renders on a globe.
func (m *Map) IsGeocentric() bool { return m.profile.IsGeocentric() }

// Revision returns the current model revision.
func (m *Map) Revision() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// AddCallback subscribes to map lifecycle events.
func (m *Map) AddCallback(cb Callback) {
	if cb == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// RemoveCallback unsubscribes from map lifecycle events.
func (m *Map) RemoveCallback(cb Callback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.callbacks {
		if c == cb {
			m.callbacks = append(m.callbacks[:i], m.callbacks[i+1:]...)
			return
		}
	}
}

// AddImageLayer appends an image layer and notifies observers.
func (m *Map) AddImageLayer(layer *ImageLayer) {
	if layer == nil {
		return
	}
	m.mu.Lock()
	m.imageLayers = append(m.imageLayers, layer)
	m.revision++
	change := ModelChange{Action: ActionAddLayer, Image: layer, Revision: m.revision}
	observers := m.snapshotCallbacksLocked()
	m.mu.Unlock()

	m.notify(observers, change)
}

// RemoveImageLayer removes an image layer and notifies observers.
// Removing a layer not in the map is a no-op.
func (m *Map) RemoveImageLayer(layer *ImageLayer) {
	if layer == nil {
		return
	}
	m.mu.Lock()
	found := false
	for i, l := range m.imageLayers {
		if l == layer {
			m.imageLayers = append(m.imageLayers[:i], m.imageLayers[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		m.mu.Unlock()
		return
	}
	m.revision++
	change := ModelChange{Action: ActionRemoveLayer, Image: layer, Revision: m.revision}
	observers := m.snapshotCallbacksLocked()
	m.mu.Unlock()

	m.notify(observers, change)
}

// MoveImageLayer moves a layer to a new position in draw order and
// notifies observers.
func (m *Map) MoveImageLayer(layer *ImageLayer, index int) {
	if layer == nil {
		return
	}
	m.mu.Lock()
	cur := -1
	for i, l := range m.imageLayers {
		if l == layer {
			cur = i
			break
		}
	}
	if cur < 0 || index < 0 || index >= len(m.imageLayers) || cur == index {
		m.mu.Unlock()
		return
	}
	m.imageLayers = append(m.imageLayers[:cur], m.imageLayers[cur+1:]...)
	m.imageLayers = append(m.imageLayers[:index], append([]*ImageLayer{layer}, m.imageLayers[index:]...)...)
	m.revision++
	change := ModelChange{Action: ActionMoveLayer, Image: layer, Revision: m.revision}
	observers := m.snapshotCallbacksLocked()
	m.mu.Unlock()

	m.notify(observers, change)
}

// AddElevationLayer appends an elevation layer and notifies observers.
func (m *Map) AddElevationLayer(layer *ElevationLayer) {
	if layer == nil {
		return
	}
	m.mu.Lock()
	m.elevationLayers = append(m.elevationLayers, layer)
	m.revision++
	change := ModelChange{Action: ActionAddLayer, Elevation: layer, Revision: m.revision}
	observers := m.snapshotCallbacksLocked()
	m.mu.Unlock()

	m.notify(observers, change)
}

// RemoveElevationLayer removes an elevation layer and notifies
// observers. Removing a layer not in the map is a no-op.
func (m *Map) RemoveElevationLayer(layer *ElevationLayer) {
	if layer == nil {
		return
	}
	m.mu.Lock()
	found := false
	for i, l := range m.elevationLayers {
		if l == layer {
			m.elevationLayers = append(m.elevationLayers[:i], m.elevationLayers[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		m.mu.Unlock()
		return
	}
	m.revision++
	change := ModelChange{Action: ActionRemoveLayer, Elevation: layer, Revision: m.revision}
	observers := m.snapshotCallbacksLocked()
	m.mu.Unlock()

	m.notify(observers, change)
}

// ImageLayers returns a copy of the image layer list in draw order.
func (m *Map) ImageLayers() []*ImageLayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*ImageLayer(nil), m.imageLayers...)
}

// ElevationLayers returns a copy of the elevation layer list.
func (m *Map) ElevationLayers() []*ElevationLayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*ElevationLayer(nil), m.elevationLayers...)
}

// ImageLayerByUID returns the image layer with the given UID, or nil.
func (m *Map) ImageLayerByUID(uid uuid.UUID) *ImageLayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.imageLayers {
		if l.UID() == uid {
			return l
		}
	}
	return nil
}

// Frame returns an immutable point-in-time view of the map, insulating
// tile construction from concurrent layer edits.
func (m *Map) Frame() *Frame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Frame{
		profile:         m.profile,
		revision:        m.revision,
		imageLayers:     append([]*ImageLayer(nil), m.imageLayers...),
		elevationLayers: append([]*ElevationLayer(nil), m.elevationLayers...),
	}
}

// EstablishInfo synchronously delivers the current spatial context to
// all subscribed callbacks.
func (m *Map) EstablishInfo() {
	info := Info{Profile: m.profile, Geocentric: m.profile.IsGeocentric()}
	m.mu.RLock()
	observers := m.snapshotCallbacksLocked()
	m.mu.RUnlock()
	for _, cb := range observers {
		cb.OnMapInfoEstablished(info)
	}
}

// AddCloser registers a resource to release when the map is closed,
// typically the tile stores backing document-loaded layers.
func (m *Map) AddCloser(c io.Closer) {
	if c == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closers = append(m.closers, c)
}

// Close releases all registered resources, collecting every failure.
func (m *Map) Close() error {
	m.mu.Lock()
	closers := m.closers
	m.closers = nil
	m.mu.Unlock()

	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func (m *Map) snapshotCallbacksLocked() []Callback {
	return append([]Callback(nil), m.callbacks...)
}

func (m *Map) notify(observers []Callback, change ModelChange) {
	for _, cb := range observers {
		cb.OnMapModelChanged(change)
	}
}
