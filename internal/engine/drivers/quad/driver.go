// Package quad is the default terrain engine driver: a quadtree
// subdivision engine that builds tile nodes level by level. Importing
// the package registers the driver.
package quad

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tellus3d/tellus/internal/engine/terrain"
	"github.com/tellus3d/tellus/internal/logger"
	"github.com/tellus3d/tellus/internal/mapmodel"
	"github.com/tellus3d/tellus/pkg/geo"
	"github.com/tellus3d/tellus/pkg/math"
)

func init() {
	terrain.DefaultRegistry().RegisterDriver("quad", create)
}

func create(opts terrain.Options) (*terrain.Engine, error) {
	e := terrain.New()
	// Quadtree geometry always carries elevation so skirts and LOD
	// morphing have real heights to work with.
	e.RequireElevationTextures()
	return e, nil
}

// Builder produces tile nodes by quadtree subdivision over a bound
// engine. It is the synchronous core of the driver; hosts run one per
// engine and parallelize across keys as they see fit.
type Builder struct {
	engine *terrain.Engine
}

// NewBuilder wraps a set-up engine. Errors if the engine has no map.
func NewBuilder(e *terrain.Engine) (*Builder, error) {
	if e == nil || e.Map() == nil {
		return nil, fmt.Errorf("quad: engine is not bound to a map")
	}
	return &Builder{engine: e}, nil
}

// BuildTile creates the tile node for one key under a frame and runs
// it through the engine's node-created pipeline. Returns nil when the
// tile has no data.
func (b *Builder) BuildTile(frame *mapmodel.Frame, key geo.TileKey, progress *terrain.Progress) (*terrain.TileNode, error) {
	model, err := b.engine.CreateTileModel(frame, key, terrain.CreateTileModelFilter{}, progress)
	if err != nil {
		return nil, fmt.Errorf("quad: tile %s: %w", key, err)
	}
	if model == nil {
		return nil, nil
	}

	node := &terrain.TileNode{
		Key:   key,
		Model: model,
		Bound: b.tileBound(key, model),
	}
	b.engine.NotifyTerrainTileNodeCreated(key, node)
	return node, nil
}

// BuildLevel builds every valid tile of one level, skipping empty
// tiles. Stops early on cancellation or error.
func (b *Builder) BuildLevel(frame *mapmodel.Frame, level uint32, progress *terrain.Progress) ([]*terrain.TileNode, error) {
	profile := b.engine.Map().Profile()
	wide, high := profile.NumTiles(level)

	var nodes []*terrain.TileNode
	for y := uint32(0); y < high; y++ {
		for x := uint32(0); x < wide; x++ {
			if progress.Canceled() {
				return nodes, nil
			}
			node, err := b.BuildTile(frame, geo.TileKey{Level: level, X: x, Y: y}, progress)
			if err != nil {
				return nodes, err
			}
			if node != nil {
				nodes = append(nodes, node)
			}
		}
	}
	logger.Debug("quad level built",
		zap.Uint32("level", level),
		zap.Int("tiles", len(nodes)))
	return nodes, nil
}

// BuildChildren subdivides a key into its four children and builds
// each, dropping empty quadrants.
func (b *Builder) BuildChildren(frame *mapmodel.Frame, key geo.TileKey, progress *terrain.Progress) ([]*terrain.TileNode, error) {
	profile := b.engine.Map().Profile()

	var nodes []*terrain.TileNode
	for q := uint32(0); q < 4; q++ {
		child := key.Child(q)
		if !profile.KeyValid(child) {
			continue
		}
		node, err := b.BuildTile(frame, child, progress)
		if err != nil {
			return nodes, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// tileBound computes the node's bounding sphere from the key extent,
// inflated vertically by the model's height range.
func (b *Builder) tileBound(key geo.TileKey, model *terrain.TerrainTileModel) terrain.Sphere {
	ext := b.engine.Map().Profile().KeyExtent(key)
	cx, cy := ext.Center()

	half := math.Vec2{X: float32(ext.Width() / 2), Y: float32(ext.Height() / 2)}
	radius := half.Length()
	var cz float32
	if model.Elevation != nil {
		mid := (model.Elevation.MinHeight + model.Elevation.MaxHeight) / 2
		span := (model.Elevation.MaxHeight - model.Elevation.MinHeight) / 2
		cz = mid
		if span > 0 {
			radius = math.Vec2{X: radius, Y: span}.Length()
		}
	}
	return terrain.Sphere{
		Center: math.Vec3{X: float32(cx), Y: float32(cy), Z: cz},
		Radius: radius,
	}
}
