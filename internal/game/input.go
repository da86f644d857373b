package game

// Controls is one player's held-key state for a single tick.
type Controls struct {
	Up, Down, Left, Right bool
	Shoot                 bool
	TurretLeft            bool // manual turret mode only
	TurretRight           bool // manual turret mode only
}

func (c Controls) vertical() bool   { return c.Up || c.Down }
func (c Controls) horizontal() bool { return c.Left || c.Right }

// Moving reports whether any directional key is held.
func (c Controls) Moving() bool { return c.vertical() || c.horizontal() }

// InputSource supplies controls for every roster slot, polled once per tick.
type InputSource interface {
	Poll(tick int) []Controls
}

// InputFunc adapts a function to InputSource.
type InputFunc func(tick int) []Controls

func (f InputFunc) Poll(tick int) []Controls { return f(tick) }
