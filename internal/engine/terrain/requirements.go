package terrain

// Requirements exposes the engine-wide one-way switches the tile model
// factory consults to decide what auxiliary data to compute. The
// Engine implements this; drivers and effects flip the switches
// through the engine's Require* setters.
type Requirements interface {
	ElevationTexturesRequired() bool
	NormalTexturesRequired() bool
	ParentTexturesRequired() bool
	ElevationBorderRequired() bool
	FullDataAtFirstLODRequired() bool
}
