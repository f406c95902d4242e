package terrain

import (
	"weak"

	"github.com/tellus3d/tellus/internal/mapmodel"
)

// mapCallbackProxy relays map lifecycle events to the engine without
// the map holding the engine alive. The map may well outlive the
// engine; every delivery resolves the weak handle first and silently
// drops the event if the engine is gone.
type mapCallbackProxy struct {
	node weak.Pointer[Engine]
}

func newMapCallbackProxy(e *Engine) *mapCallbackProxy {
	return &mapCallbackProxy{node: weak.Make(e)}
}

// OnMapInfoEstablished implements mapmodel.Callback.
func (p *mapCallbackProxy) OnMapInfoEstablished(info mapmodel.Info) {
	if e := p.node.Value(); e != nil {
		e.onMapInfoEstablished(info)
	}
}

// OnMapModelChanged implements mapmodel.Callback.
func (p *mapCallbackProxy) OnMapModelChanged(change mapmodel.ModelChange) {
	if e := p.node.Value(); e != nil {
		e.onMapModelChanged(change)
	}
}
