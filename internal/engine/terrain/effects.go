package terrain

import "github.com/tellus3d/tellus/pkg/geo"

// Effect is an engine-wide rendering modification. The engine holds an
// ordered list; installation order determines composition order.
// Install/uninstall hooks run synchronously so an effect can attach or
// detach its own state contributions.
type Effect interface {
	OnInstall(engine *Engine)
	OnUninstall(engine *Engine)
}

// Decorator wraps or alters terrain tile nodes as they are created.
// Drivers embed NopDecorator and override only what they need.
type Decorator interface {
	OnInstall(engine *Engine)
	OnUninstall(engine *Engine)
	DecorateTileNode(key geo.TileKey, node *TileNode)
}

// NopDecorator is the no-op Decorator base.
type NopDecorator struct{}

// OnInstall implements Decorator.
func (NopDecorator) OnInstall(*Engine) {}

// OnUninstall implements Decorator.
func (NopDecorator) OnUninstall(*Engine) {}

// DecorateTileNode implements Decorator.
func (NopDecorator) DecorateTileNode(geo.TileKey, *TileNode) {}
