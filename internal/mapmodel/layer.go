package mapmodel

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tellus3d/tellus/internal/source"
	"github.com/tellus3d/tellus/pkg/geo"
)

// MaxLevel is the deepest level of detail a layer serves by default.
const MaxLevel = 30

// Layer is the common surface of image and elevation layers.
type Layer interface {
	UID() uuid.UUID
	Name() string
}

// ColorFilter is a named visual adjustment applied to an image layer
// (gamma, brightness, ...). The engine recombines textures whenever a
// layer's filter chain changes.
type ColorFilter struct {
	Name  string
	Value float32
}

// ImageLayerCallback observes per-layer visual property changes.
type ImageLayerCallback interface {
	OnColorFiltersChanged(layer *ImageLayer)
}

// ImageLayer is a map layer serving imagery tiles.
type ImageLayer struct {
	uid    uuid.UUID
	name   string
	source source.ImageSource

	mu           sync.RWMutex
	opacity      float32
	visible      bool
	minLevel     uint32
	maxLevel     uint32
	colorFilters []ColorFilter
	callbacks    []ImageLayerCallback
}

// NewImageLayer creates a visible, fully opaque image layer over the
// given source.
func NewImageLayer(name string, src source.ImageSource) *ImageLayer {
	return &ImageLayer{
		uid:      uuid.New(),
		name:     name,
		source:   src,
		opacity:  1,
		visible:  true,
		maxLevel: MaxLevel,
	}
}

// UID returns the layer's unique identifier.
func (l *ImageLayer) UID() uuid.UUID { return l.uid }

// Name returns the layer's display name.
func (l *ImageLayer) Name() string { return l.name }

// Source returns the layer's tile source.
func (l *ImageLayer) Source() source.ImageSource { return l.source }

// Opacity returns the layer opacity in [0,1].
func (l *ImageLayer) Opacity() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.opacity
}

// SetOpacity sets the layer opacity.
func (l *ImageLayer) SetOpacity(v float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opacity = v
}

// Visible reports whether the layer participates in tile models.
func (l *ImageLayer) Visible() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.visible
}

// SetVisible toggles layer visibility.
func (l *ImageLayer) SetVisible(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible = v
}

// SetLevelRange restricts the layer to keys within [min, max].
func (l *ImageLayer) SetLevelRange(min, max uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel, l.maxLevel = min, max
}

// InLevelRange reports whether a key's level is served by this layer.
func (l *ImageLayer) InLevelRange(key geo.TileKey) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return key.Level >= l.minLevel && key.Level <= l.maxLevel
}

// ColorFilters returns a copy of the layer's filter chain.
func (l *ImageLayer) ColorFilters() []ColorFilter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ColorFilter, len(l.colorFilters))
	copy(out, l.colorFilters)
	return out
}

// SetColorFilters replaces the filter chain and notifies observers.
func (l *ImageLayer) SetColorFilters(filters []ColorFilter) {
	l.mu.Lock()
	l.colorFilters = append([]ColorFilter(nil), filters...)
	observers := append([]ImageLayerCallback(nil), l.callbacks...)
	l.mu.Unlock()

	for _, cb := range observers {
		cb.OnColorFiltersChanged(l)
	}
}

// AddCallback subscribes an observer to this layer.
func (l *ImageLayer) AddCallback(cb ImageLayerCallback) {
	if cb == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks = append(l.callbacks, cb)
}

// RemoveCallback unsubscribes an observer. Removing an observer that
// was never added is a no-op.
func (l *ImageLayer) RemoveCallback(cb ImageLayerCallback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, c := range l.callbacks {
		if c == cb {
			l.callbacks = append(l.callbacks[:i], l.callbacks[i+1:]...)
			return
		}
	}
}

// CallbackCount returns the number of subscribed observers.
func (l *ImageLayer) CallbackCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.callbacks)
}

// ElevationLayer is a map layer serving heightfield tiles.
type ElevationLayer struct {
	uid    uuid.UUID
	name   string
	source source.ElevationSource

	mu             sync.RWMutex
	verticalOffset float32
	minLevel       uint32
	maxLevel       uint32
}

// NewElevationLayer creates an elevation layer over the given source.
func NewElevationLayer(name string, src source.ElevationSource) *ElevationLayer {
	return &ElevationLayer{
		uid:      uuid.New(),
		name:     name,
		source:   src,
		maxLevel: MaxLevel,
	}
}

// UID returns the layer's unique identifier.
func (l *ElevationLayer) UID() uuid.UUID { return l.uid }

// Name returns the layer's display name.
func (l *ElevationLayer) Name() string { return l.name }

// Source returns the layer's elevation source.
func (l *ElevationLayer) Source() source.ElevationSource { return l.source }

// VerticalOffset returns the offset added to every sample.
func (l *ElevationLayer) VerticalOffset() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verticalOffset
}

// SetVerticalOffset sets the offset added to every sample.
func (l *ElevationLayer) SetVerticalOffset(v float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verticalOffset = v
}

// InLevelRange reports whether a key's level is served by this layer.
func (l *ElevationLayer) InLevelRange(key geo.TileKey) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return key.Level >= l.minLevel && key.Level <= l.maxLevel
}
