package mapmodel

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tellus3d/tellus/internal/source"
	"github.com/tellus3d/tellus/pkg/geo"
)

// Document is the YAML description of a map: a profile plus layers.
type Document struct {
	Name    string     `yaml:"name"`
	Profile ProfileDoc `yaml:"profile"`
	Layers  []LayerDoc `yaml:"layers"`
}

// ProfileDoc selects the map profile. Kind is "global-geodetic",
// "spherical-mercator" or "projected"; projected profiles need an
// explicit extent and level-0 grid.
type ProfileDoc struct {
	Kind   string    `yaml:"kind"`
	SRS    string    `yaml:"srs"`
	Extent []float64 `yaml:"extent"` // xmin, ymin, xmax, ymax
	Grid   []uint32  `yaml:"grid"`   // tiles wide, tiles high at level 0
}

// LayerDoc describes one layer entry.
type LayerDoc struct {
	Name           string   `yaml:"name"`
	Type           string   `yaml:"type"`   // image | elevation
	Driver         string   `yaml:"driver"` // sqlite | memory
	Path           string   `yaml:"path"`
	Opacity        *float32 `yaml:"opacity"`
	MinLevel       uint32   `yaml:"min_level"`
	MaxLevel       *uint32  `yaml:"max_level"`
	VerticalOffset float32  `yaml:"vertical_offset"`
}

// LoadDocument reads a YAML map document and builds the map with its
// layers and sources. Relative layer paths resolve against the
// document's directory. The returned map owns the opened tile stores;
// release them with Map.Close.
func LoadDocument(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading map document: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing map document %s: %w", path, err)
	}

	profile, err := doc.Profile.build()
	if err != nil {
		return nil, fmt.Errorf("map document %s: %w", path, err)
	}

	m := New(profile)
	baseDir := filepath.Dir(path)

	for i, ld := range doc.Layers {
		if err := addDocumentLayer(m, ld, baseDir); err != nil {
			m.Close()
			return nil, fmt.Errorf("map document %s, layer %d (%s): %w", path, i, ld.Name, err)
		}
	}
	return m, nil
}

func (p ProfileDoc) build() (*geo.Profile, error) {
	switch p.Kind {
	case "", "global-geodetic":
		return geo.GlobalGeodetic(), nil
	case "spherical-mercator":
		return geo.SphericalMercator(), nil
	case "projected":
		if len(p.Extent) != 4 {
			return nil, fmt.Errorf("projected profile needs a 4-value extent, got %d", len(p.Extent))
		}
		wide, high := uint32(1), uint32(1)
		if len(p.Grid) == 2 {
			wide, high = p.Grid[0], p.Grid[1]
		}
		srs := p.SRS
		if srs == "" {
			srs = "local"
		}
		extent := geo.Extent{XMin: p.Extent[0], YMin: p.Extent[1], XMax: p.Extent[2], YMax: p.Extent[3]}
		return geo.Projected(srs, extent, wide, high)
	default:
		return nil, fmt.Errorf("unknown profile kind %q", p.Kind)
	}
}

func addDocumentLayer(m *Map, ld LayerDoc, baseDir string) error {
	switch ld.Type {
	case "image":
		src, err := buildImageSource(m, ld, baseDir)
		if err != nil {
			return err
		}
		layer := NewImageLayer(ld.Name, src)
		if ld.Opacity != nil {
			layer.SetOpacity(*ld.Opacity)
		}
		if ld.MaxLevel != nil {
			layer.SetLevelRange(ld.MinLevel, *ld.MaxLevel)
		} else if ld.MinLevel > 0 {
			layer.SetLevelRange(ld.MinLevel, MaxLevel)
		}
		m.AddImageLayer(layer)
		return nil

	case "elevation":
		src, err := buildElevationSource(m, ld, baseDir)
		if err != nil {
			return err
		}
		layer := NewElevationLayer(ld.Name, src)
		layer.SetVerticalOffset(ld.VerticalOffset)
		m.AddElevationLayer(layer)
		return nil

	default:
		return fmt.Errorf("unknown layer type %q", ld.Type)
	}
}

func buildImageSource(m *Map, ld LayerDoc, baseDir string) (source.ImageSource, error) {
	switch ld.Driver {
	case "sqlite":
		store, err := openStore(ld, baseDir)
		if err != nil {
			return nil, err
		}
		m.AddCloser(store)
		return source.NewStoreImageSource(store), nil
	case "memory":
		return source.NewMemoryImageSource(), nil
	default:
		return nil, fmt.Errorf("unknown image driver %q", ld.Driver)
	}
}

func buildElevationSource(m *Map, ld LayerDoc, baseDir string) (source.ElevationSource, error) {
	switch ld.Driver {
	case "sqlite":
		store, err := openStore(ld, baseDir)
		if err != nil {
			return nil, err
		}
		m.AddCloser(store)
		return source.NewStoreElevationSource(store), nil
	case "memory":
		return source.NewMemoryElevationSource(), nil
	default:
		return nil, fmt.Errorf("unknown elevation driver %q", ld.Driver)
	}
}

func openStore(ld LayerDoc, baseDir string) (*source.TileStore, error) {
	if ld.Path == "" {
		return nil, fmt.Errorf("sqlite driver needs a path")
	}
	p := ld.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	return source.OpenTileStore(p)
}
