package game

// Team tags an entity for collision and friendly-fire filtering.
type Team uint8

const (
	TeamNone Team = iota // static geometry
	TeamRed
	TeamBlue
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "none"
	}
}

// teamForSlot alternates red/blue by roster position.
func teamForSlot(slot int) Team {
	if slot%2 == 0 {
		return TeamRed
	}
	return TeamBlue
}

// Entity is the capability set every simulated object provides.
type Entity interface {
	Box() Rect
	Team() Team
	Collidable() bool
	Update(w World)
}

// Drawable entities describe themselves to a Renderer.
type Drawable interface {
	DrawRequest(debug bool) DrawRequest
}

// World is the view of the simulation an entity gets during its update.
// Spawn and Remove are queued and take effect after the update pass.
type World interface {
	// ForEachCollider calls fn for every collidable entity until fn returns false.
	ForEachCollider(fn func(Entity) bool)
	Spawn(e Entity)
	Remove(e Entity)
	// MatchOver signals that t was destroyed.
	MatchOver(t *Tank)
	Emit(ev Event)
	Input(slot int) Controls
	Config() Config
	// Now is the simulated clock in milliseconds.
	Now() int64
	Bounds() Rect
}

// StaticBlock is one wall tile. It never moves and never updates.
type StaticBlock struct {
	box Rect
}

// NewStaticBlock creates a wall block covering box.
func NewStaticBlock(box Rect) *StaticBlock {
	return &StaticBlock{box: box}
}

func (b *StaticBlock) Box() Rect        { return b.box }
func (b *StaticBlock) Team() Team       { return TeamNone }
func (b *StaticBlock) Collidable() bool { return true }
func (b *StaticBlock) Update(World)     {}

func (b *StaticBlock) DrawRequest(debug bool) DrawRequest {
	return DrawRequest{
		Kind:   DrawBlock,
		Box:    b.box,
		Center: b.box.Center(),
		Debug:  debug,
	}
}
