package engine

import "math"

// Mode is the globe's rotation mode.
type Mode int

const (
	// ModeAutoRotate spins the globe slowly on its own.
	ModeAutoRotate Mode = iota
	// ModeUserControlled leaves rotation to the pointer.
	ModeUserControlled
)

func (m Mode) String() string {
	switch m {
	case ModeAutoRotate:
		return "auto_rotate"
	case ModeUserControlled:
		return "user_controlled"
	default:
		return "unknown"
	}
}

// Controls is the pointer and rotation-mode state. It holds no callbacks;
// the engine owns the resume timer and drives transitions.
type Controls struct {
	Mode     Mode
	Dragging bool

	StartX, StartY float64
	LastX, LastY   float64

	// DragDistance is how far the pointer travelled since the last press.
	DragDistance float64

	resume Timer
}

// Press starts a drag at (x, y).
func (c *Controls) Press(x, y float64) {
	c.cancelResume()
	c.Dragging = true
	c.Mode = ModeUserControlled
	c.StartX, c.StartY = x, y
	c.LastX, c.LastY = x, y
	c.DragDistance = 0
}

// Move records a pointer move and returns the delta from the previous
// position. ok is false when no drag is in progress.
func (c *Controls) Move(x, y float64) (dx, dy float64, ok bool) {
	if !c.Dragging {
		return 0, 0, false
	}
	dx, dy = x-c.LastX, y-c.LastY
	c.LastX, c.LastY = x, y
	c.DragDistance += math.Hypot(dx, dy)
	return dx, dy, true
}

// Release ends the drag. It reports whether a drag was in progress.
func (c *Controls) Release() bool {
	was := c.Dragging
	c.Dragging = false
	return was
}

// ConsumeClick reports whether a click should be treated as a click rather
// than the tail of a drag, and resets the drag distance.
func (c *Controls) ConsumeClick(tolerance float64) bool {
	moved := c.DragDistance
	c.DragDistance = 0
	return moved <= tolerance
}

// ResumePending reports whether an auto-rotate resume is scheduled.
func (c *Controls) ResumePending() bool { return c.resume != nil }

func (c *Controls) cancelResume() {
	if c.resume != nil {
		c.resume.Stop()
		c.resume = nil
	}
}
