// Package source provides tile data sources for image and elevation
// layers: in-memory sources for tests and procedural data, and a
// SQLite-backed tile store for cached tile pyramids.
package source

import (
	"context"
	"errors"
	"image"

	"github.com/tellus3d/tellus/pkg/geo"
)

// ErrNoData reports that a source has no tile for the requested key.
// It is not a failure: callers treat it as "tile empty here".
var ErrNoData = errors.New("source: no data for tile")

// ImageSource produces imagery for tile keys.
type ImageSource interface {
	// FetchImage returns the image covering the key, or ErrNoData.
	FetchImage(ctx context.Context, key geo.TileKey) (image.Image, error)
}

// ElevationSource produces heightfields for tile keys.
type ElevationSource interface {
	// FetchHeightfield returns the heightfield covering the key, or
	// ErrNoData.
	FetchHeightfield(ctx context.Context, key geo.TileKey) (*geo.Heightfield, error)
}
