package terrain

// Options configures a terrain engine and its tile model factory.
type Options struct {
	// Driver names the engine implementation to instantiate. Empty
	// means the registry default.
	Driver string

	// TileSize is the imagery edge length in pixels per tile.
	TileSize int

	// HeightfieldSize is the elevation grid edge length in samples per
	// tile, excluding any border.
	HeightfieldSize int

	// VerticalScale multiplies elevation values at render time.
	VerticalScale float32

	// FirstLOD is the shallowest level tiles are generated at.
	FirstLOD uint32

	// BinNumber, when set, forces the engine's render bin.
	BinNumber *int
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		TileSize:        256,
		HeightfieldSize: 17,
		VerticalScale:   1,
	}
}

func (o Options) withDefaults() Options {
	if o.TileSize <= 0 {
		o.TileSize = 256
	}
	if o.HeightfieldSize < 2 {
		o.HeightfieldSize = 17
	}
	if o.VerticalScale == 0 {
		o.VerticalScale = 1
	}
	return o
}
