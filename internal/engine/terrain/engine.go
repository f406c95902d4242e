// Package terrain implements the terrain engine node: it keeps
// render-ready tile data in sync with a map model, owns engine-wide
// state (requirement flags, texture units, effects) and exposes the
// extension points terrain drivers build on.
package terrain

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tellus3d/tellus/internal/logger"
	"github.com/tellus3d/tellus/internal/mapmodel"
	"github.com/tellus3d/tellus/pkg/geo"
	"github.com/tellus3d/tellus/pkg/math"
)

// Sphere is a bounding sphere.
type Sphere struct {
	Center math.Vec3
	Radius float32
}

// boundPadding is added to the ellipsoid radius so high terrain stays
// inside the bound.
const boundPadding = 25000

// Engine is the terrain engine node. It is created unbound (usually
// through CreateEngine) and becomes usable once Setup attaches a map.
// Only one map may ever be bound for the engine's lifetime.
//
// The engine runs on whichever goroutine the host invokes it on; the
// host's event phase calls Event and its update phase calls Update,
// once per frame each.
type Engine struct {
	m         *mapmodel.Map
	terrain   *Terrain
	factory   *TileModelFactory
	resources *TextureUnitTracker

	controller *imageLayerController
	proxy      *mapCallbackProxy
	opts       Options
	ellipsoid  *geo.Ellipsoid
	renderBin  *int

	scaleMu       sync.RWMutex
	verticalScale float32

	requireElevationTextures  atomic.Bool
	requireNormalTextures     atomic.Bool
	requireParentTextures     atomic.Bool
	requireElevationBorder    atomic.Bool
	requireFullDataAtFirstLOD atomic.Bool

	// dirtyCount coalesces redraw requests: only the 0->1 transition
	// propagates outward; the event phase resets it.
	dirtyCount     atomic.Int32
	redrawMu       sync.RWMutex
	redrawHandlers []func()

	recombinations atomic.Int64

	ctmMu                    sync.RWMutex
	createTileModelCallbacks []CreateTileModelCallback

	tileMu             sync.RWMutex
	tileNodeCallbacks  []TileNodeCallback
	tilePatchCallbacks []TilePatchCallback

	effectMu   sync.RWMutex
	effects    []Effect
	decorators []Decorator

	rangeMu      sync.RWMutex
	computeRange ComputeRangeCallback
}

// New returns an unbound engine.
func New() *Engine {
	return &Engine{verticalScale: 1}
}

// Setup binds the engine to a map and makes it ready to serve tile
// model requests. A nil map leaves the engine unusable.
func (e *Engine) Setup(m *mapmodel.Map, opts Options) {
	if m == nil {
		logger.Warn("terrain engine setup skipped: no map")
		return
	}
	if e.m != nil {
		logger.Warn("terrain engine already has a map; rebinding is not supported")
		return
	}

	e.m = m
	e.opts = opts.withDefaults()
	e.scaleMu.Lock()
	e.verticalScale = e.opts.VerticalScale
	e.scaleMu.Unlock()

	// The terrain interface queries the in-memory terrain graph and
	// carries tile/elevation event subscriptions.
	e.terrain = newTerrain(m.Profile(), m.IsGeocentric())

	// Coordinate-system state: a nil ellipsoid represents projected
	// (flat) mode.
	e.applyMapInfo(mapmodel.Info{Profile: m.Profile(), Geocentric: m.IsGeocentric()})

	// Texture unit bookkeeping, seeded with the process-wide
	// off-limits set.
	reg := DefaultRegistry()
	e.resources = newTextureUnitTracker(reg.Capabilities().MaxTextureUnits)
	for _, unit := range reg.OffLimitsTextureUnits() {
		e.resources.SetOffLimits(unit)
	}

	// Further map model changes arrive through a weak proxy so the map
	// never keeps a dead engine alive.
	e.proxy = newMapCallbackProxy(e)
	m.AddCallback(e.proxy)

	if e.opts.BinNumber != nil {
		bin := *e.opts.BinNumber
		e.renderBin = &bin
	}

	e.factory = NewTileModelFactory(e.opts)

	// No change notification fires for data present at construction,
	// so deliver the established info by hand once.
	e.onMapInfoEstablished(mapmodel.Info{Profile: m.Profile(), Geocentric: m.IsGeocentric()})

	// One controller subscription per image layer already in the map.
	e.controller = &imageLayerController{engine: e}
	for _, layer := range m.ImageLayers() {
		layer.AddCallback(e.controller)
	}

	logger.Info("terrain engine ready",
		zap.String("profile", m.Profile().SRS()),
		zap.Bool("geocentric", m.IsGeocentric()),
		zap.Int("image_layers", len(m.ImageLayers())),
		zap.Int("elevation_layers", len(m.ElevationLayers())))
}

// Close removes the engine's subscriptions from the map and its
// layers. The map itself stays open; it belongs to the caller.
func (e *Engine) Close() {
	if e.m == nil {
		return
	}
	if e.controller != nil {
		for _, layer := range e.m.ImageLayers() {
			layer.RemoveCallback(e.controller)
		}
	}
	if e.proxy != nil {
		e.m.RemoveCallback(e.proxy)
	}
}

// Map returns the bound map, or nil before Setup.
func (e *Engine) Map() *mapmodel.Map { return e.m }

// Terrain returns the terrain interface facade, or nil before Setup.
func (e *Engine) Terrain() *Terrain { return e.terrain }

// Resources returns the texture unit tracker, or nil before Setup.
func (e *Engine) Resources() *TextureUnitTracker { return e.resources }

// RenderBin returns the forced render bin number, if any.
func (e *Engine) RenderBin() (int, bool) {
	if e.renderBin == nil {
		return 0, false
	}
	return *e.renderBin, true
}

// onMapInfoEstablished re-derives coordinate-system state from the
// map's profile. Idempotent.
func (e *Engine) onMapInfoEstablished(info mapmodel.Info) {
	e.applyMapInfo(info)
}

func (e *Engine) applyMapInfo(info mapmodel.Info) {
	if info.Geocentric {
		ell := geo.WGS84
		e.ellipsoid = &ell
	} else {
		e.ellipsoid = nil
	}
}

// onMapModelChanged keeps the engine in sync with layer changes. The
// branches are independent: a single change may update controller
// subscriptions, invalidate elevation, and always requests a redraw.
func (e *Engine) onMapModelChanged(change mapmodel.ModelChange) {
	if change.Action == mapmodel.ActionAddLayer && change.Image != nil {
		change.Image.AddCallback(e.controller)
	} else if change.Action == mapmodel.ActionRemoveLayer && change.Image != nil {
		change.Image.RemoveCallback(e.controller)
	}

	if change.Elevation != nil {
		e.terrain.NotifyMapElevationChanged()
	}

	e.RequestRedraw()
}

// CreateTileModel builds the render-ready data bundle for one tile
// under one map frame. A nil model with nil error means the tile has
// no data right now. On success every registered
// CreateTileModelCallback fires in registration order and may augment
// the model in place.
func (e *Engine) CreateTileModel(
	frame *mapmodel.Frame,
	key geo.TileKey,
	filter CreateTileModelFilter,
	progress *Progress,
) (*TerrainTileModel, error) {
	if e.factory == nil {
		return nil, fmt.Errorf("terrain engine not initialized")
	}

	model, err := e.factory.CreateTileModel(frame, key, filter, e, progress)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}

	// Shared lock: tile production is parallelized by the host, and
	// concurrent creations may fire callbacks while registration waits
	// for exclusive access.
	e.ctmMu.RLock()
	defer e.ctmMu.RUnlock()
	for _, cb := range e.createTileModelCallbacks {
		cb.OnCreateTileModel(e, model)
	}

	// Engine vertical scale is applied once the model is final so the
	// factory stays scale-agnostic.
	if scale := e.VerticalScale(); scale != 1 && model.Elevation != nil {
		for i := range model.Elevation.Heightfield.Heights {
			model.Elevation.Heightfield.Heights[i] *= scale
		}
		model.Elevation.MinHeight *= scale
		model.Elevation.MaxHeight *= scale
	}
	return model, nil
}

// AddCreateTileModelCallback registers a post-creation callback.
func (e *Engine) AddCreateTileModelCallback(cb CreateTileModelCallback) {
	if cb == nil {
		return
	}
	e.ctmMu.Lock()
	defer e.ctmMu.Unlock()
	e.createTileModelCallbacks = append(e.createTileModelCallbacks, cb)
}

// RemoveCreateTileModelCallback unregisters a post-creation callback.
func (e *Engine) RemoveCreateTileModelCallback(cb CreateTileModelCallback) {
	e.ctmMu.Lock()
	defer e.ctmMu.Unlock()
	for i, c := range e.createTileModelCallbacks {
		if c == cb {
			e.createTileModelCallbacks = append(e.createTileModelCallbacks[:i], e.createTileModelCallbacks[i+1:]...)
			return
		}
	}
}

// AddEffect installs an engine-wide effect and marks state dirty.
// A nil effect is a no-op.
func (e *Engine) AddEffect(effect Effect) {
	if effect == nil {
		return
	}
	e.effectMu.Lock()
	e.effects = append(e.effects, effect)
	e.effectMu.Unlock()

	effect.OnInstall(e)
	e.dirtyState()
}

// RemoveEffect uninstalls an effect. Unknown and nil effects are
// no-ops: no hook calls, no dirtying.
func (e *Engine) RemoveEffect(effect Effect) {
	if effect == nil {
		return
	}
	e.effectMu.Lock()
	found := false
	for i, ef := range e.effects {
		if ef == effect {
			e.effects = append(e.effects[:i], e.effects[i+1:]...)
			found = true
			break
		}
	}
	e.effectMu.Unlock()

	if !found {
		return
	}
	effect.OnUninstall(e)
	e.dirtyState()
}

// Effects returns the installed effects in composition order.
func (e *Engine) Effects() []Effect {
	e.effectMu.RLock()
	defer e.effectMu.RUnlock()
	return append([]Effect(nil), e.effects...)
}

// AddDecorator installs a tile-node decorator.
func (e *Engine) AddDecorator(d Decorator) {
	if d == nil {
		return
	}
	e.effectMu.Lock()
	e.decorators = append(e.decorators, d)
	e.effectMu.Unlock()

	d.OnInstall(e)
	e.dirtyState()
}

// RemoveDecorator uninstalls a tile-node decorator. Unknown and nil
// decorators are no-ops.
func (e *Engine) RemoveDecorator(d Decorator) {
	if d == nil {
		return
	}
	e.effectMu.Lock()
	found := false
	for i, dec := range e.decorators {
		if dec == d {
			e.decorators = append(e.decorators[:i], e.decorators[i+1:]...)
			found = true
			break
		}
	}
	e.effectMu.Unlock()

	if !found {
		return
	}
	d.OnUninstall(e)
	e.dirtyState()
}

// NotifyTerrainTileNodeCreated runs decorators over a freshly created
// tile node, fans the event out to tile-node callbacks in
// registration order, and queues it for the update-phase terrain
// subscribers.
func (e *Engine) NotifyTerrainTileNodeCreated(key geo.TileKey, node *TileNode) {
	e.effectMu.RLock()
	decorators := append([]Decorator(nil), e.decorators...)
	e.effectMu.RUnlock()
	for _, d := range decorators {
		d.DecorateTileNode(key, node)
	}

	e.tileMu.RLock()
	callbacks := append([]TileNodeCallback(nil), e.tileNodeCallbacks...)
	e.tileMu.RUnlock()
	for _, cb := range callbacks {
		cb.OnTileNodeCreated(key, node)
	}

	if e.terrain != nil {
		e.terrain.queueTileNode(node)
	}
}

// AddTileNodeCallback registers a tile-node creation observer.
func (e *Engine) AddTileNodeCallback(cb TileNodeCallback) {
	if cb == nil {
		return
	}
	e.tileMu.Lock()
	defer e.tileMu.Unlock()
	e.tileNodeCallbacks = append(e.tileNodeCallbacks, cb)
}

// RemoveTileNodeCallback unregisters a tile-node creation observer.
func (e *Engine) RemoveTileNodeCallback(cb TileNodeCallback) {
	e.tileMu.Lock()
	defer e.tileMu.Unlock()
	for i, c := range e.tileNodeCallbacks {
		if c == cb {
			e.tileNodeCallbacks = append(e.tileNodeCallbacks[:i], e.tileNodeCallbacks[i+1:]...)
			return
		}
	}
}

// AddTilePatchCallback registers a per-patch observer for drivers.
func (e *Engine) AddTilePatchCallback(cb TilePatchCallback) {
	if cb == nil {
		return
	}
	e.tileMu.Lock()
	defer e.tileMu.Unlock()
	e.tilePatchCallbacks = append(e.tilePatchCallbacks, cb)
}

// RemoveTilePatchCallback unregisters a per-patch observer.
func (e *Engine) RemoveTilePatchCallback(cb TilePatchCallback) {
	e.tileMu.Lock()
	defer e.tileMu.Unlock()
	for i, c := range e.tilePatchCallbacks {
		if c == cb {
			e.tilePatchCallbacks = append(e.tilePatchCallbacks[:i], e.tilePatchCallbacks[i+1:]...)
			return
		}
	}
}

// TilePatchCallbacks returns the registered patch observers in order.
func (e *Engine) TilePatchCallbacks() []TilePatchCallback {
	e.tileMu.RLock()
	defer e.tileMu.RUnlock()
	return append([]TilePatchCallback(nil), e.tilePatchCallbacks...)
}

// RequireElevationTextures makes the factory produce elevation data.
// One-way: once set it stays set for the engine's lifetime.
func (e *Engine) RequireElevationTextures() {
	e.requireElevationTextures.Store(true)
	e.dirtyTerrain()
}

// RequireNormalTextures makes the factory produce normal data.
func (e *Engine) RequireNormalTextures() {
	e.requireNormalTextures.Store(true)
	e.dirtyTerrain()
}

// RequireParentTextures makes the factory record parent-tile fallback
// keys for layers with missing data.
func (e *Engine) RequireParentTextures() {
	e.requireParentTextures.Store(true)
	e.dirtyTerrain()
}

// RequireElevationBorder makes heightfields carry a one-cell skirt.
func (e *Engine) RequireElevationBorder() {
	e.requireElevationBorder.Store(true)
	e.dirtyTerrain()
}

// RequireFullDataAtFirstLOD makes first-LOD tiles all-or-nothing.
func (e *Engine) RequireFullDataAtFirstLOD() {
	e.requireFullDataAtFirstLOD.Store(true)
	e.dirtyTerrain()
}

// ElevationTexturesRequired implements Requirements.
func (e *Engine) ElevationTexturesRequired() bool { return e.requireElevationTextures.Load() }

// NormalTexturesRequired implements Requirements.
func (e *Engine) NormalTexturesRequired() bool { return e.requireNormalTextures.Load() }

// ParentTexturesRequired implements Requirements.
func (e *Engine) ParentTexturesRequired() bool { return e.requireParentTextures.Load() }

// ElevationBorderRequired implements Requirements.
func (e *Engine) ElevationBorderRequired() bool { return e.requireElevationBorder.Load() }

// FullDataAtFirstLODRequired implements Requirements.
func (e *Engine) FullDataAtFirstLODRequired() bool { return e.requireFullDataAtFirstLOD.Load() }

// SetVerticalScale changes the render-time elevation multiplier.
func (e *Engine) SetVerticalScale(scale float32) {
	e.scaleMu.Lock()
	e.verticalScale = scale
	e.scaleMu.Unlock()
	e.dirtyTerrain()
}

// VerticalScale returns the render-time elevation multiplier.
func (e *Engine) VerticalScale() float32 {
	e.scaleMu.RLock()
	defer e.scaleMu.RUnlock()
	return e.verticalScale
}

// SetComputeRangeCallback overrides tile range computation.
func (e *Engine) SetComputeRangeCallback(cb ComputeRangeCallback) {
	e.rangeMu.Lock()
	defer e.rangeMu.Unlock()
	e.computeRange = cb
}

// ComputeRange returns the range override, or nil.
func (e *Engine) ComputeRange() ComputeRangeCallback {
	e.rangeMu.RLock()
	defer e.rangeMu.RUnlock()
	return e.computeRange
}

// OnRedrawRequested registers a handler for coalesced redraw signals.
func (e *Engine) OnRedrawRequested(h func()) {
	if h == nil {
		return
	}
	e.redrawMu.Lock()
	defer e.redrawMu.Unlock()
	e.redrawHandlers = append(e.redrawHandlers, h)
}

// RequestRedraw signals that the rendered terrain is stale. Bursts of
// requests within one event cycle collapse into a single outward
// signal.
func (e *Engine) RequestRedraw() {
	if e.dirtyCount.Add(1) != 1 {
		return
	}
	e.redrawMu.RLock()
	handlers := append([]func(){}, e.redrawHandlers...)
	e.redrawMu.RUnlock()
	for _, h := range handlers {
		h()
	}
}

// Event is the host's event-phase tick; it opens a new redraw
// coalescing cycle.
func (e *Engine) Event() {
	e.dirtyCount.Store(0)
}

// Update is the host's update-phase tick; it delivers queued terrain
// notifications.
func (e *Engine) Update() {
	if e.terrain != nil {
		e.terrain.update()
	}
}

// TextureRecombinations reports how many times layer visual-property
// changes forced the engine to recombine textures.
func (e *Engine) TextureRecombinations() int64 {
	return e.recombinations.Load()
}

// Bound returns the engine's bounding sphere: the padded ellipsoid in
// geocentric mode, the map extent's sphere in projected mode.
func (e *Engine) Bound() Sphere {
	if e.ellipsoid != nil {
		return Sphere{Radius: float32(e.ellipsoid.MaxRadius() + boundPadding)}
	}
	if e.m == nil {
		return Sphere{}
	}
	ext := e.m.Profile().Extent()
	cx, cy := ext.Center()
	half := math.Vec2{X: float32(ext.Width() / 2), Y: float32(ext.Height() / 2)}
	return Sphere{
		Center: math.Vec3{X: float32(cx), Y: float32(cy)},
		Radius: half.Length(),
	}
}

func (e *Engine) updateTextureCombining() {
	e.recombinations.Add(1)
	e.dirtyState()
}

func (e *Engine) dirtyState() {
	e.RequestRedraw()
}

func (e *Engine) dirtyTerrain() {
	e.RequestRedraw()
}
