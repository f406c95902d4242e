package geo

import "fmt"

// TileKey identifies a quadtree tile by level of detail and grid
// coordinates within a profile. X runs west to east, Y north to south.
// TileKey is an immutable value; the zero key is level 0, tile (0,0).
type TileKey struct {
	Level uint32
	X, Y  uint32
}

// String returns the key in "level/x/y" form.
func (k TileKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Level, k.X, k.Y)
}

// Parent returns the key one level up. The parent of a level-0 key is
// the key itself.
func (k TileKey) Parent() TileKey {
	if k.Level == 0 {
		return k
	}
	return TileKey{Level: k.Level - 1, X: k.X / 2, Y: k.Y / 2}
}

// Child returns one of the four children of this key. Quadrants are
// numbered 0..3 row-major: 0=NW, 1=NE, 2=SW, 3=SE.
func (k TileKey) Child(quadrant uint32) TileKey {
	return TileKey{
		Level: k.Level + 1,
		X:     k.X*2 + quadrant%2,
		Y:     k.Y*2 + quadrant/2,
	}
}

// Quadrant returns which quadrant of its parent this key occupies.
func (k TileKey) Quadrant() uint32 {
	return (k.Y%2)*2 + k.X%2
}
