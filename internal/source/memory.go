package source

import (
	"context"
	"image"
	"sync"

	"github.com/tellus3d/tellus/pkg/geo"
)

// MemoryImageSource serves images from an in-memory map. Safe for
// concurrent use.
type MemoryImageSource struct {
	mu    sync.RWMutex
	tiles map[geo.TileKey]image.Image
}

// NewMemoryImageSource returns an empty in-memory image source.
func NewMemoryImageSource() *MemoryImageSource {
	return &MemoryImageSource{tiles: make(map[geo.TileKey]image.Image)}
}

// Put stores an image for a key.
func (s *MemoryImageSource) Put(key geo.TileKey, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles[key] = img
}

// FetchImage implements ImageSource.
func (s *MemoryImageSource) FetchImage(ctx context.Context, key geo.TileKey) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.tiles[key]
	if !ok {
		return nil, ErrNoData
	}
	return img, nil
}

// MemoryElevationSource serves heightfields from an in-memory map.
// Safe for concurrent use.
type MemoryElevationSource struct {
	mu    sync.RWMutex
	tiles map[geo.TileKey]*geo.Heightfield
}

// NewMemoryElevationSource returns an empty in-memory elevation source.
func NewMemoryElevationSource() *MemoryElevationSource {
	return &MemoryElevationSource{tiles: make(map[geo.TileKey]*geo.Heightfield)}
}

// Put stores a heightfield for a key.
func (s *MemoryElevationSource) Put(key geo.TileKey, hf *geo.Heightfield) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles[key] = hf
}

// FetchHeightfield implements ElevationSource.
func (s *MemoryElevationSource) FetchHeightfield(ctx context.Context, key geo.TileKey) (*geo.Heightfield, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	hf, ok := s.tiles[key]
	if !ok {
		return nil, ErrNoData
	}
	return hf, nil
}
