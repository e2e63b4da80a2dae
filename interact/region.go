package interact

import "fmt"

// RegionType identifies what a hit region stands for.
type RegionType string

const (
	RegionCluster       RegionType = "cluster"
	RegionNode          RegionType = "node"
	RegionTimestamp     RegionType = "timestamp"
	RegionWaterfallNode RegionType = "waterfall-node"
	RegionToggle        RegionType = "toggle"
	RegionKnobResize    RegionType = "knob-resize"
	RegionTimeframeKnob RegionType = "timeframeKnob"
	RegionTimeframeArea RegionType = "timeframeArea"
)

// Cursor is a mouse cursor shape, named like the CSS cursor property.
type Cursor string

const (
	CursorDefault   Cursor = "default"
	CursorPointer   Cursor = "pointer"
	CursorText      Cursor = "text"
	CursorGrabbing  Cursor = "grabbing"
	CursorEWResize  Cursor = "ew-resize"
	CursorRowResize Cursor = "row-resize"
)

// CanvasID is the ID of hit regions that belong to the whole canvas instead of a panel.
const CanvasID = -1

// HitRegion is a rectangle registered while rendering, together with what it represents. Hit regions only live
// until their panel is drawn again.
type HitRegion struct {
	Type       RegionType
	Data       any
	X, Y, W, H float64
	// Cursor is shown while the region is hovered. The empty cursor means CursorDefault.
	Cursor Cursor
	// ID is the ID of the panel that registered the region, or CanvasID.
	ID int
}

func (r *HitRegion) String() string {
	return fmt.Sprintf("%s@(%g, %g, %g, %g)#%d", r.Type, r.X, r.Y, r.W, r.H, r.ID)
}

// Contains reports whether (x, y) lies within the region, edges included.
func (r *HitRegion) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}
