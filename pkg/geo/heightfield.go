package geo

// Heightfield is a regular grid of elevation samples covering an
// extent. Samples are stored row-major, row 0 at the northern edge to
// match tile orientation.
type Heightfield struct {
	Cols, Rows int
	Extent     Extent
	Heights    []float32
}

// NewHeightfield allocates a zeroed heightfield of the given size.
func NewHeightfield(cols, rows int, extent Extent) *Heightfield {
	return &Heightfield{
		Cols:    cols,
		Rows:    rows,
		Extent:  extent,
		Heights: make([]float32, cols*rows),
	}
}

// At returns the sample at grid position (col, row).
func (h *Heightfield) At(col, row int) float32 {
	return h.Heights[row*h.Cols+col]
}

// Set stores a sample at grid position (col, row).
func (h *Heightfield) Set(col, row int, v float32) {
	h.Heights[row*h.Cols+col] = v
}

// HeightAt returns the bilinearly interpolated height at a world
// position inside the extent. Positions outside are clamped to the
// border samples.
func (h *Heightfield) HeightAt(x, y float64) float32 {
	if h.Cols < 2 || h.Rows < 2 {
		if len(h.Heights) > 0 {
			return h.Heights[0]
		}
		return 0
	}

	// Convert world coordinates to fractional grid coordinates.
	// Row 0 sits at YMax, so the row axis runs opposite to world Y.
	fx := (x - h.Extent.XMin) / h.Extent.Width() * float64(h.Cols-1)
	fy := (h.Extent.YMax - y) / h.Extent.Height() * float64(h.Rows-1)

	col := int(fx)
	row := int(fy)
	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}
	if col >= h.Cols-1 {
		col = h.Cols - 2
	}
	if row >= h.Rows-1 {
		row = h.Rows - 2
	}

	u := clampf(float32(fx-float64(col)), 0, 1)
	v := clampf(float32(fy-float64(row)), 0, 1)

	// Lerp along the north and south edges of the cell, then between them.
	north := h.At(col, row)*(1-u) + h.At(col+1, row)*u
	south := h.At(col, row+1)*(1-u) + h.At(col+1, row+1)*u
	return north*(1-v) + south*v
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
