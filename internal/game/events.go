package game

// EventKind identifies a simulation moment the presentation layer may react to.
type EventKind uint8

const (
	EventShot           EventKind = iota // tank fired a shell
	EventBulletExploded                  // shell struck something
	EventTankHit                         // shell damaged a tank
	EventTankDestroyed                   // tank health reached zero
	EventMatchOver                       // end-of-match sequence finished
)

func (k EventKind) String() string {
	switch k {
	case EventShot:
		return "shot"
	case EventBulletExploded:
		return "bullet_exploded"
	case EventTankHit:
		return "tank_hit"
	case EventTankDestroyed:
		return "tank_destroyed"
	case EventMatchOver:
		return "match_over"
	default:
		return "unknown"
	}
}

// Event is emitted during the update pass and delivered to sinks after it.
type Event struct {
	Kind    EventKind
	Tick    int
	Slot    int // subject tank slot, -1 if none
	Shooter int // firing tank slot for shots and hits, -1 if none
	Team    Team
	Pos     Vec
	Amount  int // damage dealt for EventTankHit
}

// EventSink receives events in emission order.
type EventSink interface {
	Handle(ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev Event)

func (f EventSinkFunc) Handle(ev Event) { f(ev) }
