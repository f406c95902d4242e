package mapmodel

import (
	"testing"

	"github.com/tellus3d/tellus/internal/source"
	"github.com/tellus3d/tellus/pkg/geo"
)

type recordingCallback struct {
	infos   []Info
	changes []ModelChange
}

func (r *recordingCallback) OnMapInfoEstablished(info Info)   { r.infos = append(r.infos, info) }
func (r *recordingCallback) OnMapModelChanged(ch ModelChange) { r.changes = append(r.changes, ch) }

func TestMapAddRemoveImageLayerNotifies(t *testing.T) {
	m := New(geo.GlobalGeodetic())
	cb := &recordingCallback{}
	m.AddCallback(cb)

	layer := NewImageLayer("imagery", source.NewMemoryImageSource())
	m.AddImageLayer(layer)
	m.RemoveImageLayer(layer)

	if len(cb.changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(cb.changes))
	}
	if cb.changes[0].Action != ActionAddLayer || cb.changes[0].Image != layer {
		t.Errorf("unexpected first change: %+v", cb.changes[0])
	}
	if cb.changes[1].Action != ActionRemoveLayer || cb.changes[1].Image != layer {
		t.Errorf("unexpected second change: %+v", cb.changes[1])
	}
	if cb.changes[1].Revision != cb.changes[0].Revision+1 {
		t.Errorf("revision should advance per change: %d then %d",
			cb.changes[0].Revision, cb.changes[1].Revision)
	}
	if len(m.ImageLayers()) != 0 {
		t.Errorf("expected empty layer list, got %d", len(m.ImageLayers()))
	}
}

func TestMapRemoveUnknownLayerIsNoop(t *testing.T) {
	m := New(geo.GlobalGeodetic())
	cb := &recordingCallback{}
	m.AddCallback(cb)

	m.RemoveImageLayer(NewImageLayer("stranger", source.NewMemoryImageSource()))
	m.RemoveImageLayer(nil)
	m.RemoveElevationLayer(nil)

	if len(cb.changes) != 0 {
		t.Errorf("expected no notifications, got %d", len(cb.changes))
	}
	if m.Revision() != 0 {
		t.Errorf("expected revision 0, got %d", m.Revision())
	}
}

func TestMapElevationLayerChangeCarriesLayer(t *testing.T) {
	m := New(geo.GlobalGeodetic())
	cb := &recordingCallback{}
	m.AddCallback(cb)

	layer := NewElevationLayer("dem", source.NewMemoryElevationSource())
	m.AddElevationLayer(layer)

	if len(cb.changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(cb.changes))
	}
	ch := cb.changes[0]
	if ch.Elevation != layer || ch.Image != nil {
		t.Errorf("change should carry the elevation layer only: %+v", ch)
	}
}

func TestMapMoveImageLayer(t *testing.T) {
	m := New(geo.GlobalGeodetic())
	a := NewImageLayer("a", source.NewMemoryImageSource())
	b := NewImageLayer("b", source.NewMemoryImageSource())
	c := NewImageLayer("c", source.NewMemoryImageSource())
	m.AddImageLayer(a)
	m.AddImageLayer(b)
	m.AddImageLayer(c)

	cb := &recordingCallback{}
	m.AddCallback(cb)

	m.MoveImageLayer(c, 0)

	layers := m.ImageLayers()
	if layers[0] != c || layers[1] != a || layers[2] != b {
		t.Errorf("unexpected order: %s %s %s", layers[0].Name(), layers[1].Name(), layers[2].Name())
	}
	if len(cb.changes) != 1 || cb.changes[0].Action != ActionMoveLayer {
		t.Errorf("expected one move notification, got %+v", cb.changes)
	}

	// Moving to the current position notifies nothing.
	m.MoveImageLayer(c, 0)
	if len(cb.changes) != 1 {
		t.Errorf("expected no extra notification, got %d", len(cb.changes))
	}
}

func TestFrameIsStableUnderEdits(t *testing.T) {
	m := New(geo.GlobalGeodetic())
	a := NewImageLayer("a", source.NewMemoryImageSource())
	m.AddImageLayer(a)

	frame := m.Frame()
	m.AddImageLayer(NewImageLayer("b", source.NewMemoryImageSource()))
	m.RemoveImageLayer(a)

	if len(frame.ImageLayers()) != 1 || frame.ImageLayers()[0] != a {
		t.Errorf("frame should keep its snapshot layer list")
	}
	if frame.Revision() == m.Revision() {
		t.Errorf("frame revision should lag the live map")
	}
	if frame.ImageLayerByUID(a.UID()) != a {
		t.Errorf("frame lookup by UID failed")
	}
}

func TestImageLayerColorFilterNotification(t *testing.T) {
	layer := NewImageLayer("imagery", source.NewMemoryImageSource())

	cb := &filterRecorder{}
	layer.AddCallback(cb)

	layer.SetColorFilters([]ColorFilter{{Name: "gamma", Value: 1.2}})
	if cb.count != 1 {
		t.Fatalf("expected 1 notification, got %d", cb.count)
	}
	if cb.last != layer {
		t.Error("callback got wrong layer")
	}

	layer.RemoveCallback(cb)
	layer.SetColorFilters(nil)
	if cb.count != 1 {
		t.Errorf("removed callback should not fire, got %d", cb.count)
	}
}

type filterRecorder struct {
	count int
	last  *ImageLayer
}

func (r *filterRecorder) OnColorFiltersChanged(l *ImageLayer) {
	r.count++
	r.last = l
}

func TestEstablishInfo(t *testing.T) {
	m := New(geo.SphericalMercator())
	cb := &recordingCallback{}
	m.AddCallback(cb)

	m.EstablishInfo()

	if len(cb.infos) != 1 {
		t.Fatalf("expected 1 info, got %d", len(cb.infos))
	}
	if !cb.infos[0].Geocentric {
		t.Error("spherical-mercator map should be geocentric")
	}
}
