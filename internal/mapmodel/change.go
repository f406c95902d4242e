package mapmodel

import "github.com/tellus3d/tellus/pkg/geo"

// ChangeAction identifies what kind of map model mutation occurred.
type ChangeAction int

const (
	// ActionAddLayer reports a layer joining the map.
	ActionAddLayer ChangeAction = iota
	// ActionRemoveLayer reports a layer leaving the map.
	ActionRemoveLayer
	// ActionMoveLayer reports a layer changing position in draw order.
	ActionMoveLayer
)

// String returns the action name.
func (a ChangeAction) String() string {
	switch a {
	case ActionAddLayer:
		return "add-layer"
	case ActionRemoveLayer:
		return "remove-layer"
	case ActionMoveLayer:
		return "move-layer"
	default:
		return "unknown"
	}
}

// ModelChange describes one map model mutation. Exactly one of Image
// and Elevation is non-nil depending on the layer kind involved.
type ModelChange struct {
	Action    ChangeAction
	Image     *ImageLayer
	Elevation *ElevationLayer
	Revision  int64
}

// Info carries the map's established spatial context.
type Info struct {
	Profile    *geo.Profile
	Geocentric bool
}
