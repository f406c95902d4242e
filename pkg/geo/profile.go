package geo

import (
	"fmt"
	"math"
)

// Ellipsoid describes the reference ellipsoid used by geocentric
// profiles. Radii are in meters.
type Ellipsoid struct {
	RadiusEquator float64
	RadiusPolar   float64
}

// WGS84 is the default ellipsoid.
var WGS84 = Ellipsoid{RadiusEquator: 6378137.0, RadiusPolar: 6356752.3142}

// MaxRadius returns the larger of the two radii.
func (e Ellipsoid) MaxRadius() float64 {
	return math.Max(e.RadiusEquator, e.RadiusPolar)
}

const (
	// mercatorHalfSpan is half the world span of the spherical-mercator
	// projection, in meters.
	mercatorHalfSpan = 20037508.342789244
)

// Profile defines the spatial reference and tiling scheme shared by a
// map and its terrain: the world extent, the tile grid at level 0, and
// whether the terrain is draped over a globe or a flat plane.
type Profile struct {
	srs        string
	extent     Extent
	geocentric bool

	// Tile grid dimensions at level 0.
	tilesWide0 uint32
	tilesHigh0 uint32
}

// GlobalGeodetic returns the whole-earth lat/lon profile: two tiles
// wide, one high at level 0, geocentric.
func GlobalGeodetic() *Profile {
	return &Profile{
		srs:        "epsg:4326",
		extent:     Extent{XMin: -180, YMin: -90, XMax: 180, YMax: 90},
		geocentric: true,
		tilesWide0: 2,
		tilesHigh0: 1,
	}
}

// SphericalMercator returns the web-mercator profile: one square tile
// at level 0, geocentric.
func SphericalMercator() *Profile {
	return &Profile{
		srs: "epsg:3857",
		extent: Extent{
			XMin: -mercatorHalfSpan, YMin: -mercatorHalfSpan,
			XMax: mercatorHalfSpan, YMax: mercatorHalfSpan,
		},
		geocentric: true,
		tilesWide0: 1,
		tilesHigh0: 1,
	}
}

// Projected returns a flat (non-geocentric) profile over the given
// extent with the given level-0 tile grid.
func Projected(srs string, extent Extent, tilesWide, tilesHigh uint32) (*Profile, error) {
	if !extent.IsValid() {
		return nil, fmt.Errorf("projected profile: invalid extent %+v", extent)
	}
	if tilesWide == 0 || tilesHigh == 0 {
		return nil, fmt.Errorf("projected profile: zero tile grid %dx%d", tilesWide, tilesHigh)
	}
	return &Profile{
		srs:        srs,
		extent:     extent,
		geocentric: false,
		tilesWide0: tilesWide,
		tilesHigh0: tilesHigh,
	}, nil
}

// SRS returns the spatial reference identifier.
func (p *Profile) SRS() string { return p.srs }

// Extent returns the full world extent of the profile.
func (p *Profile) Extent() Extent { return p.extent }

// IsGeocentric reports whether the profile drapes terrain over a globe.
func (p *Profile) IsGeocentric() bool { return p.geocentric }

// NumTiles returns the tile grid dimensions at the given level.
func (p *Profile) NumTiles(level uint32) (wide, high uint32) {
	return p.tilesWide0 << level, p.tilesHigh0 << level
}

// RootKeys returns the keys of the level-0 tiles.
func (p *Profile) RootKeys() []TileKey {
	keys := make([]TileKey, 0, p.tilesWide0*p.tilesHigh0)
	for y := uint32(0); y < p.tilesHigh0; y++ {
		for x := uint32(0); x < p.tilesWide0; x++ {
			keys = append(keys, TileKey{Level: 0, X: x, Y: y})
		}
	}
	return keys
}

// KeyExtent returns the extent covered by the given key. Y=0 is the
// northern row, so the extent walks south as Y grows.
func (p *Profile) KeyExtent(key TileKey) Extent {
	wide, high := p.NumTiles(key.Level)
	tw := p.extent.Width() / float64(wide)
	th := p.extent.Height() / float64(high)
	return Extent{
		XMin: p.extent.XMin + tw*float64(key.X),
		XMax: p.extent.XMin + tw*float64(key.X+1),
		YMax: p.extent.YMax - th*float64(key.Y),
		YMin: p.extent.YMax - th*float64(key.Y+1),
	}
}

// KeyValid reports whether the key addresses a tile inside the grid.
func (p *Profile) KeyValid(key TileKey) bool {
	wide, high := p.NumTiles(key.Level)
	return key.X < wide && key.Y < high
}
