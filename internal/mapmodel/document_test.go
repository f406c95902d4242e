package mapmodel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tellus3d/tellus/internal/source"
)

func writeDoc(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "map.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write map document: %v", err)
	}
	return path
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()

	// Stage a tile store next to the document for the sqlite layer.
	store, err := source.OpenTileStore(filepath.Join(dir, "imagery.db"))
	if err != nil {
		t.Fatalf("staging tile store: %v", err)
	}
	store.Close()

	doc := `
name: world
profile:
  kind: global-geodetic
layers:
  - name: base
    type: image
    driver: sqlite
    path: imagery.db
    opacity: 0.8
    max_level: 12
  - name: overlay
    type: image
    driver: memory
  - name: dem
    type: elevation
    driver: memory
    vertical_offset: -10
`
	m, err := LoadDocument(writeDoc(t, dir, doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer m.Close()

	if !m.IsGeocentric() {
		t.Error("expected geocentric map")
	}

	imgs := m.ImageLayers()
	if len(imgs) != 2 {
		t.Fatalf("expected 2 image layers, got %d", len(imgs))
	}
	if imgs[0].Name() != "base" || imgs[0].Opacity() != 0.8 {
		t.Errorf("unexpected base layer: %s opacity %f", imgs[0].Name(), imgs[0].Opacity())
	}

	elevs := m.ElevationLayers()
	if len(elevs) != 1 {
		t.Fatalf("expected 1 elevation layer, got %d", len(elevs))
	}
	if elevs[0].VerticalOffset() != -10 {
		t.Errorf("expected vertical offset -10, got %f", elevs[0].VerticalOffset())
	}
}

func TestLoadDocumentProjected(t *testing.T) {
	doc := `
profile:
  kind: projected
  srs: local
  extent: [0, 0, 4000, 2000]
  grid: [2, 1]
`
	m, err := LoadDocument(writeDoc(t, t.TempDir(), doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer m.Close()

	if m.IsGeocentric() {
		t.Error("projected map should not be geocentric")
	}
	wide, high := m.Profile().NumTiles(0)
	if wide != 2 || high != 1 {
		t.Errorf("expected 2x1 grid, got %dx%d", wide, high)
	}
}

func TestLoadDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown profile",
			doc:  "profile:\n  kind: cylindrical\n",
			want: "unknown profile kind",
		},
		{
			name: "unknown layer type",
			doc:  "layers:\n  - name: x\n    type: vector\n    driver: memory\n",
			want: "unknown layer type",
		},
		{
			name: "sqlite layer without path",
			doc:  "layers:\n  - name: x\n    type: image\n    driver: sqlite\n",
			want: "needs a path",
		},
		{
			name: "projected without extent",
			doc:  "profile:\n  kind: projected\n",
			want: "extent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDocument(writeDoc(t, t.TempDir(), tt.doc))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
