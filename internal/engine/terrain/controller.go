package terrain

import "github.com/tellus3d/tellus/internal/mapmodel"

// imageLayerController is the engine's one subscription object for all
// image layers in the map: any layer's color filters changing forces
// an engine-wide texture recombination.
type imageLayerController struct {
	engine *Engine
}

// OnColorFiltersChanged implements mapmodel.ImageLayerCallback.
func (c *imageLayerController) OnColorFiltersChanged(layer *mapmodel.ImageLayer) {
	c.engine.updateTextureCombining()
}
