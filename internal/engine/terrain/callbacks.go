package terrain

import "github.com/tellus3d/tellus/pkg/geo"

// TileNode is a terrain tile's presence in the scene: the key it
// covers, the data model it was built from, and its bounding volume.
type TileNode struct {
	Key   geo.TileKey
	Model *TerrainTileModel
	Bound Sphere
}

// CreateTileModelCallback is invoked after every successful tile-model
// creation, in registration order, and may augment the model in place.
type CreateTileModelCallback interface {
	OnCreateTileModel(engine *Engine, model *TerrainTileModel)
}

// TileNodeCallback observes tile-node creation events.
type TileNodeCallback interface {
	OnTileNodeCreated(key geo.TileKey, node *TileNode)
}

// TilePatchCallback observes per-patch events on created tile nodes.
type TilePatchCallback interface {
	OnTilePatch(key geo.TileKey, node *TileNode)
}

// ComputeRangeCallback overrides how a tile node's display range is
// computed.
type ComputeRangeCallback func(node *TileNode) float32
