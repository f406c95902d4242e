package terrain

import (
	"image"

	"github.com/google/uuid"

	"github.com/tellus3d/tellus/pkg/geo"
	"github.com/tellus3d/tellus/pkg/math"
)

// ColorLayerModel is one image layer's contribution to a tile model.
// Image is nil when the layer had no data for the key; in that case
// ParentKey points at the tile whose texture can stand in while the
// real data loads (only set when the engine requires parent textures).
type ColorLayerModel struct {
	LayerUID  uuid.UUID
	LayerName string
	Opacity   float32
	Image     *image.RGBA
	ParentKey *geo.TileKey
}

// ElevationModel is the composited heightfield for a tile. Border is
// the number of extra sample rows/columns on each edge when the engine
// requires an elevation border.
type ElevationModel struct {
	Heightfield *geo.Heightfield
	Border      int
	MinHeight   float32
	MaxHeight   float32
}

// NormalModel holds per-sample surface normals derived from the
// elevation grid.
type NormalModel struct {
	Cols, Rows int
	Normals    []math.Vec3
}

// TerrainTileModel is the render-ready data bundle for one tile under
// one map frame. Ownership transfers to the caller on creation; the
// engine retains no reference.
type TerrainTileModel struct {
	Key         geo.TileKey
	Revision    int64
	ColorLayers []ColorLayerModel
	Elevation   *ElevationModel
	Normals     *NormalModel
}

// Empty reports whether the model carries no data at all.
func (m *TerrainTileModel) Empty() bool {
	return len(m.ColorLayers) == 0 && m.Elevation == nil
}

// CreateTileModelFilter selects which data categories a tile-model
// request should populate. The zero value accepts everything; calling
// any Include method restricts the request to the included items.
type CreateTileModelFilter struct {
	restricted bool
	layers     map[uuid.UUID]struct{}
	elevation  bool
}

// IncludeLayer restricts the filter to the given image layer (plus any
// other included items).
func (f *CreateTileModelFilter) IncludeLayer(uid uuid.UUID) {
	f.restricted = true
	if f.layers == nil {
		f.layers = make(map[uuid.UUID]struct{})
	}
	f.layers[uid] = struct{}{}
}

// IncludeElevation restricts the filter to elevation data (plus any
// other included items).
func (f *CreateTileModelFilter) IncludeElevation() {
	f.restricted = true
	f.elevation = true
}

// AcceptsLayer reports whether the image layer should be populated.
func (f CreateTileModelFilter) AcceptsLayer(uid uuid.UUID) bool {
	if !f.restricted {
		return true
	}
	_, ok := f.layers[uid]
	return ok
}

// AcceptsElevation reports whether elevation should be populated.
func (f CreateTileModelFilter) AcceptsElevation() bool {
	return !f.restricted || f.elevation
}
