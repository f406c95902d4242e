package geo

import (
	"math"
	"testing"
)

func TestGlobalGeodeticGrid(t *testing.T) {
	p := GlobalGeodetic()

	if !p.IsGeocentric() {
		t.Error("global-geodetic profile should be geocentric")
	}

	wide, high := p.NumTiles(0)
	if wide != 2 || high != 1 {
		t.Errorf("level 0: expected 2x1, got %dx%d", wide, high)
	}
	wide, high = p.NumTiles(3)
	if wide != 16 || high != 8 {
		t.Errorf("level 3: expected 16x8, got %dx%d", wide, high)
	}

	roots := p.RootKeys()
	if len(roots) != 2 {
		t.Fatalf("expected 2 root keys, got %d", len(roots))
	}
}

func TestKeyExtentGeodetic(t *testing.T) {
	p := GlobalGeodetic()

	// Western root tile covers the western hemisphere.
	west := p.KeyExtent(TileKey{Level: 0, X: 0, Y: 0})
	if west.XMin != -180 || west.XMax != 0 || west.YMin != -90 || west.YMax != 90 {
		t.Errorf("unexpected western root extent: %+v", west)
	}

	// Y grows southward: the level-1 row 0 tile should touch the north pole.
	nw := p.KeyExtent(TileKey{Level: 1, X: 0, Y: 0})
	if nw.YMax != 90 || nw.YMin != 0 {
		t.Errorf("expected northern half, got %+v", nw)
	}
	if nw.XMin != -180 || nw.XMax != -90 {
		t.Errorf("expected western quarter, got %+v", nw)
	}
}

func TestKeyExtentTilesTileTheWorld(t *testing.T) {
	p := SphericalMercator()

	wide, high := p.NumTiles(2)
	var area float64
	for y := uint32(0); y < high; y++ {
		for x := uint32(0); x < wide; x++ {
			e := p.KeyExtent(TileKey{Level: 2, X: x, Y: y})
			area += e.Width() * e.Height()
		}
	}

	world := p.Extent()
	want := world.Width() * world.Height()
	if math.Abs(area-want)/want > 1e-9 {
		t.Errorf("tile areas do not sum to world area: %g vs %g", area, want)
	}
}

func TestProjectedValidation(t *testing.T) {
	tests := []struct {
		name   string
		extent Extent
		wide   uint32
		high   uint32
		ok     bool
	}{
		{"valid", Extent{0, 0, 1000, 1000}, 1, 1, true},
		{"empty extent", Extent{0, 0, 0, 0}, 1, 1, false},
		{"inverted extent", Extent{10, 10, 0, 0}, 1, 1, false},
		{"zero grid", Extent{0, 0, 100, 100}, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Projected("local", tt.extent, tt.wide, tt.high)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.ok && p.IsGeocentric() {
				t.Error("projected profile should not be geocentric")
			}
		})
	}
}

func TestKeyValid(t *testing.T) {
	p := GlobalGeodetic()

	if !p.KeyValid(TileKey{Level: 1, X: 3, Y: 1}) {
		t.Error("expected 1/3/1 to be valid")
	}
	if p.KeyValid(TileKey{Level: 1, X: 4, Y: 0}) {
		t.Error("expected 1/4/0 to be out of range")
	}
	if p.KeyValid(TileKey{Level: 0, X: 0, Y: 1}) {
		t.Error("expected 0/0/1 to be out of range")
	}
}
