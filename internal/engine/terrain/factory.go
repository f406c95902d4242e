package terrain

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/tellus3d/tellus/internal/mapmodel"
	"github.com/tellus3d/tellus/internal/source"
	"github.com/tellus3d/tellus/pkg/geo"
	"github.com/tellus3d/tellus/pkg/math"
)

// errCanceled aborts tile construction internally; callers translate
// it into a nil model, never a caller-visible error.
var errCanceled = errors.New("tile model construction canceled")

// TileModelFactory synthesizes TerrainTileModels from a map frame and
// a tile key, consulting the engine's Requirements for what auxiliary
// data to compute. Stateless apart from options; safe for concurrent
// use across tile workers.
type TileModelFactory struct {
	opts Options
}

// NewTileModelFactory creates a factory with the given options.
func NewTileModelFactory(opts Options) *TileModelFactory {
	return &TileModelFactory{opts: opts.withDefaults()}
}

// CreateTileModel builds the model for one key under one frame. A nil
// model with a nil error means "no data for this tile now" (or a
// cancellation) and is not a failure.
func (f *TileModelFactory) CreateTileModel(
	frame *mapmodel.Frame,
	key geo.TileKey,
	filter CreateTileModelFilter,
	req Requirements,
	progress *Progress,
) (*TerrainTileModel, error) {
	model := &TerrainTileModel{Key: key, Revision: frame.Revision()}

	// At the first LOD the engine may demand every mandatory layer to
	// have produced data before the tile exists at all.
	strict := req.FullDataAtFirstLODRequired() && key.Level == f.opts.FirstLOD

	for _, layer := range frame.ImageLayers() {
		if progress.Canceled() {
			return nil, nil
		}
		if !layer.Visible() || !layer.InLevelRange(key) || !filter.AcceptsLayer(layer.UID()) {
			continue
		}

		img, err := layer.Source().FetchImage(progress.Context(), key)
		switch {
		case errors.Is(err, source.ErrNoData):
			if strict {
				return nil, nil
			}
			if req.ParentTexturesRequired() && key.Level > 0 {
				parent := key.Parent()
				model.ColorLayers = append(model.ColorLayers, ColorLayerModel{
					LayerUID:  layer.UID(),
					LayerName: layer.Name(),
					Opacity:   layer.Opacity(),
					ParentKey: &parent,
				})
			}
		case err != nil:
			if progress.Canceled() {
				return nil, nil
			}
			return nil, fmt.Errorf("image layer %q, tile %s: %w", layer.Name(), key, err)
		default:
			model.ColorLayers = append(model.ColorLayers, ColorLayerModel{
				LayerUID:  layer.UID(),
				LayerName: layer.Name(),
				Opacity:   layer.Opacity(),
				Image:     f.prepareImage(img),
			})
		}
	}

	wantElevation := req.ElevationTexturesRequired() || req.NormalTexturesRequired()
	if wantElevation && filter.AcceptsElevation() && len(frame.ElevationLayers()) > 0 {
		elev, err := f.buildElevation(frame, key, req, progress)
		if errors.Is(err, errCanceled) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if elev == nil && strict {
			return nil, nil
		}
		if elev != nil {
			if req.ElevationTexturesRequired() {
				model.Elevation = elev
			}
			if req.NormalTexturesRequired() {
				model.Normals = buildNormals(elev.Heightfield)
			}
		}
	}

	if model.Empty() && model.Normals == nil {
		return nil, nil
	}
	return model, nil
}

// prepareImage converts source imagery to an RGBA tile of the
// configured size, resampling bilinearly when dimensions differ.
func (f *TileModelFactory) prepareImage(img image.Image) *image.RGBA {
	size := f.opts.TileSize
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if b := img.Bounds(); b.Dx() == size && b.Dy() == size {
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	} else {
		xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}
	return dst
}

// buildElevation composites the frame's elevation layers into one
// heightfield, first layer with data winning per sample. Returns nil
// when no layer has data for the key.
func (f *TileModelFactory) buildElevation(
	frame *mapmodel.Frame,
	key geo.TileKey,
	req Requirements,
	progress *Progress,
) (*ElevationModel, error) {
	size := f.opts.HeightfieldSize
	border := 0
	if req.ElevationBorderRequired() {
		border = 1
	}
	total := size + 2*border

	keyExtent := frame.Profile().KeyExtent(key)
	cellW := keyExtent.Width() / float64(size-1)
	cellH := keyExtent.Height() / float64(size-1)
	extent := geo.Extent{
		XMin: keyExtent.XMin - cellW*float64(border),
		YMin: keyExtent.YMin - cellH*float64(border),
		XMax: keyExtent.XMax + cellW*float64(border),
		YMax: keyExtent.YMax + cellH*float64(border),
	}

	hf := geo.NewHeightfield(total, total, extent)
	set := make([]bool, total*total)
	filled := 0

	for _, layer := range frame.ElevationLayers() {
		if progress.Canceled() {
			return nil, errCanceled
		}
		if !layer.InLevelRange(key) {
			continue
		}

		lhf, err := layer.Source().FetchHeightfield(progress.Context(), key)
		if errors.Is(err, source.ErrNoData) {
			continue
		}
		if err != nil {
			if progress.Canceled() {
				return nil, errCanceled
			}
			return nil, fmt.Errorf("elevation layer %q, tile %s: %w", layer.Name(), key, err)
		}

		offset := layer.VerticalOffset()
		for row := 0; row < total; row++ {
			y := extent.YMax - cellH*float64(row)
			for col := 0; col < total; col++ {
				i := row*total + col
				if set[i] {
					continue
				}
				x := extent.XMin + cellW*float64(col)
				hf.Heights[i] = lhf.HeightAt(x, y) + offset
				set[i] = true
				filled++
			}
		}
		if filled == total*total {
			break
		}
	}

	if filled == 0 {
		return nil, nil
	}

	min, max := hf.Heights[0], hf.Heights[0]
	for _, h := range hf.Heights[1:] {
		if h < min {
			min = h
		}
		if h > max {
			max = h
		}
	}
	return &ElevationModel{Heightfield: hf, Border: border, MinHeight: min, MaxHeight: max}, nil
}

// buildNormals derives per-sample surface normals from the
// heightfield by central differences, one-sided at the edges.
func buildNormals(hf *geo.Heightfield) *NormalModel {
	cols, rows := hf.Cols, hf.Rows
	cellW := float32(hf.Extent.Width() / float64(cols-1))
	cellH := float32(hf.Extent.Height() / float64(rows-1))

	normals := make([]math.Vec3, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			west, east := col-1, col+1
			if west < 0 {
				west = 0
			}
			if east > cols-1 {
				east = cols - 1
			}
			north, south := row-1, row+1
			if north < 0 {
				north = 0
			}
			if south > rows-1 {
				south = rows - 1
			}

			dhdx := (hf.At(east, row) - hf.At(west, row)) / (float32(east-west) * cellW)
			// Row index grows southward, so the north sample has the
			// smaller row.
			dhdy := (hf.At(col, north) - hf.At(col, south)) / (float32(south-north) * cellH)

			normals[row*cols+col] = math.Vec3{X: -dhdx, Y: -dhdy, Z: 1}.Normalize()
		}
	}
	return &NormalModel{Cols: cols, Rows: rows, Normals: normals}
}
