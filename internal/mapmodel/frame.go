package mapmodel

import (
	"github.com/google/uuid"

	"github.com/tellus3d/tellus/pkg/geo"
)

// Frame is an immutable point-in-time view over the map's layer lists
// and profile. Layer pointers are shared with the live map; the lists
// themselves never change after the frame is taken.
type Frame struct {
	profile         *geo.Profile
	revision        int64
	imageLayers     []*ImageLayer
	elevationLayers []*ElevationLayer
}

// Profile returns the map profile at snapshot time.
func (f *Frame) Profile() *geo.Profile { return f.profile }

// Revision returns the map revision at snapshot time.
func (f *Frame) Revision() int64 { return f.revision }

// ImageLayers returns the snapshot's image layers in draw order.
func (f *Frame) ImageLayers() []*ImageLayer { return f.imageLayers }

// ElevationLayers returns the snapshot's elevation layers.
func (f *Frame) ElevationLayers() []*ElevationLayer { return f.elevationLayers }

// ImageLayerByUID returns the snapshot image layer with the given UID,
// or nil.
func (f *Frame) ImageLayerByUID(uid uuid.UUID) *ImageLayer {
	for _, l := range f.imageLayers {
		if l.UID() == uid {
			return l
		}
	}
	return nil
}
