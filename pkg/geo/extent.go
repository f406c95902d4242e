// Package geo provides the spatial primitives shared by maps and terrain:
// profiles, quadtree tile keys, extents and heightfields.
package geo

// Extent is an axis-aligned rectangle in profile coordinates.
type Extent struct {
	XMin, YMin, XMax, YMax float64
}

// Width returns the horizontal span of the extent.
func (e Extent) Width() float64 {
	return e.XMax - e.XMin
}

// Height returns the vertical span of the extent.
func (e Extent) Height() float64 {
	return e.YMax - e.YMin
}

// Center returns the midpoint of the extent.
func (e Extent) Center() (x, y float64) {
	return (e.XMin + e.XMax) / 2, (e.YMin + e.YMax) / 2
}

// Contains reports whether the point lies inside or on the extent.
func (e Extent) Contains(x, y float64) bool {
	return x >= e.XMin && x <= e.XMax && y >= e.YMin && y <= e.YMax
}

// Intersects reports whether two extents overlap.
func (e Extent) Intersects(other Extent) bool {
	return e.XMin <= other.XMax && e.XMax >= other.XMin &&
		e.YMin <= other.YMax && e.YMax >= other.YMin
}

// IsValid reports whether the extent has positive area.
func (e Extent) IsValid() bool {
	return e.XMax > e.XMin && e.YMax > e.YMin
}
