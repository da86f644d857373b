package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Config holds the process-wide toggles the simulation reads.
type Config struct {
	Debug           bool // collision boxes and per-tank stats in draw requests
	Bounce          bool // invert velocity on wall contact instead of stopping
	ManualTurret    bool // turret driven by TurretLeft/TurretRight instead of spinning
	BulletsHitWalls bool // shells explode on wall blocks
	TickRate        int  // ticks per simulated second

	EndMessageTicks int // end-sequence ticks before the end message shows
	EndTicks        int // end-sequence ticks before the match is done
}

// DefaultConfig returns the standard arcade settings.
func DefaultConfig() Config {
	return Config{
		BulletsHitWalls: true,
		TickRate:        60,
		EndMessageTicks: 100,
		EndTicks:        400,
	}
}

// Option customises a Simulation.
type Option func(*Simulation)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithSink registers an event sink. Sinks run in registration order.
func WithSink(sink EventSink) Option {
	return func(s *Simulation) { s.sinks = append(s.sinks, sink) }
}

// WithBackdropSeed seeds the cosmetic randomness of the backdrop.
func WithBackdropSeed(seed int64) Option {
	return func(s *Simulation) { s.seed = seed }
}

// Simulation owns every entity of one match and advances them tick by tick.
type Simulation struct {
	cfg      Config
	tm       *TileMap
	geometry Geometry
	bounds   Rect
	backdrop *Backdrop
	seed     int64

	entities []Entity
	tanks    []*Tank

	pendingSpawn  []Entity
	pendingRemove map[Entity]struct{}
	events        []Event
	sinks         []EventSink

	inputs    []Controls
	tick      int
	endFrame  int
	quit      bool
	overSent  bool
	destroyed []int // slots in order of destruction

	tally   []TankTally
	log     zerolog.Logger
	metrics *simMetrics
}

// NewSimulation sets up a match: one wall block per wall tile, then one
// tank per roster entry at the spawn with the same index. Teams alternate
// red, blue by roster position.
func NewSimulation(tm *TileMap, roster []TankStats, cfg Config, opts ...Option) (*Simulation, error) {
	if tm == nil {
		return nil, fmt.Errorf("new simulation: %w", &MapFormatError{Row: -1, Reason: "no map"})
	}
	if cfg.TickRate <= 0 {
		return nil, fmt.Errorf("new simulation: tick rate must be positive, got %d", cfg.TickRate)
	}
	for i, st := range roster {
		if err := st.Validate(); err != nil {
			return nil, fmt.Errorf("new simulation: tank %d: %w", i, err)
		}
	}

	geom := tm.DeriveGeometry()
	if len(geom.Spawns) < len(roster) {
		return nil, fmt.Errorf("new simulation: %w", &InsufficientSpawnsError{Spawns: len(geom.Spawns), Tanks: len(roster)})
	}

	s := &Simulation{
		cfg:           cfg,
		tm:            tm,
		geometry:      geom,
		bounds:        tm.Bounds(),
		pendingRemove: make(map[Entity]struct{}),
		log:           zerolog.Nop(),
		metrics:       newSimMetrics(),
		tally:         make([]TankTally, len(roster)),
	}
	for _, o := range opts {
		o(s)
	}

	s.backdrop = NewBackdrop(tm, s.seed)
	s.backdrop.Prepare()

	for _, w := range geom.Walls {
		s.entities = append(s.entities, NewStaticBlock(w))
	}
	for i, st := range roster {
		t := NewTank(i, teamForSlot(i), st, geom.Spawns[i])
		s.tanks = append(s.tanks, t)
		s.entities = append(s.entities, t)
	}

	s.log.Info().
		Int("cols", tm.Cols).
		Int("rows", tm.Rows).
		Int("walls", len(geom.Walls)).
		Int("tanks", len(roster)).
		Msg("match set up")
	return s, nil
}

// Step runs one tick: every entity present at the start of the tick is
// updated in list order, then queued removals and spawns are applied, then
// events are delivered. Entities spawned this tick first update next tick.
func (s *Simulation) Step(inputs []Controls) {
	if s.Done() {
		return
	}
	s.tick++
	s.inputs = inputs
	s.metrics.tick()

	w := simWorld{s: s}
	snapshot := s.entities
	for _, e := range snapshot {
		if _, gone := s.pendingRemove[e]; gone {
			continue
		}
		e.Update(w)
	}
	s.applyPending()

	if s.endFrame > 0 {
		s.endFrame++
		if s.endFrame > s.cfg.EndTicks && !s.overSent {
			s.overSent = true
			s.emit(Event{Kind: EventMatchOver, Slot: -1, Shooter: -1})
		}
	}
	s.flushEvents()
}

func (s *Simulation) applyPending() {
	if len(s.pendingRemove) > 0 {
		kept := make([]Entity, 0, len(s.entities))
		for _, e := range s.entities {
			if _, gone := s.pendingRemove[e]; !gone {
				kept = append(kept, e)
			}
		}
		s.entities = kept
		clear(s.pendingRemove)
	}
	if len(s.pendingSpawn) > 0 {
		s.entities = append(s.entities, s.pendingSpawn...)
		s.pendingSpawn = s.pendingSpawn[:0]
	}
}

func (s *Simulation) emit(ev Event) {
	ev.Tick = s.tick
	s.events = append(s.events, ev)
}

func (s *Simulation) flushEvents() {
	for _, ev := range s.events {
		s.record(ev)
		for _, sink := range s.sinks {
			sink.Handle(ev)
		}
	}
	s.events = s.events[:0]
}

// record keeps per-tank tallies, metrics and logs for one event.
func (s *Simulation) record(ev Event) {
	s.metrics.record(ev)
	switch ev.Kind {
	case EventShot:
		s.tallyFor(ev.Shooter).ShotsFired++
		s.log.Debug().Int("tick", ev.Tick).Int("tank", ev.Slot).Str("team", ev.Team.String()).Msg("shot")
	case EventTankHit:
		if t := s.tallyFor(ev.Shooter); t != nil {
			t.Hits++
			t.DamageDealt += ev.Amount
		}
		s.log.Debug().Int("tick", ev.Tick).Int("tank", ev.Slot).Int("shooter", ev.Shooter).Int("damage", ev.Amount).Msg("hit")
	case EventTankDestroyed:
		s.log.Info().Int("tick", ev.Tick).Int("tank", ev.Slot).Str("team", ev.Team.String()).Msg("tank destroyed")
	case EventMatchOver:
		s.log.Info().Int("tick", ev.Tick).Str("outcome", s.Outcome().String()).Msg("match over")
	}
}

func (s *Simulation) tallyFor(slot int) *TankTally {
	if slot < 0 || slot >= len(s.tally) {
		return &TankTally{}
	}
	return &s.tally[slot]
}

// Draw hands the backdrop, every entity in list order, and any overlay to r.
func (s *Simulation) Draw(r Renderer) {
	r.DrawBackdrop(s.backdrop)
	for _, e := range s.entities {
		if d, ok := e.(Drawable); ok {
			r.DrawEntity(d.DrawRequest(s.cfg.Debug))
		}
	}
	if s.ShowEndMessage() {
		r.DrawOverlay(Overlay{Kind: OverlayGameOver, Text: "Game Over"})
	}
}

// Run drives the simulation headlessly until it is done, maxTicks ticks
// have run (0 means no limit) or ctx is cancelled. Cancellation is checked
// once per tick.
func (s *Simulation) Run(ctx context.Context, src InputSource, maxTicks int) (MatchResult, error) {
	for !s.Done() {
		if maxTicks > 0 && s.tick >= maxTicks {
			break
		}
		select {
		case <-ctx.Done():
			s.Quit()
			return s.Result(), ctx.Err()
		default:
		}
		s.Step(src.Poll(s.tick))
	}
	return s.Result(), nil
}

// Quit ends the match at the next tick boundary.
func (s *Simulation) Quit() { s.quit = true }

// Quitting reports whether Quit was called.
func (s *Simulation) Quitting() bool { return s.quit }

// Done reports whether the loop should stop: after Quit, or once the end
// sequence has run its course.
func (s *Simulation) Done() bool {
	return s.quit || s.endFrame > s.cfg.EndTicks
}

// Ended reports whether a tank has been destroyed.
func (s *Simulation) Ended() bool { return s.endFrame > 0 }

// ShowEndMessage reports whether the end-of-match message is visible.
func (s *Simulation) ShowEndMessage() bool { return s.endFrame > s.cfg.EndMessageTicks }

// EndFrame returns the end-sequence counter, 0 while the match is running.
func (s *Simulation) EndFrame() int { return s.endFrame }

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int { return s.tick }

// Config returns the simulation configuration.
func (s *Simulation) Config() Config { return s.cfg }

// Map returns the arena tile map.
func (s *Simulation) Map() *TileMap { return s.tm }

// Geometry returns the derived arena geometry.
func (s *Simulation) Geometry() Geometry { return s.geometry }

// Backdrop returns the prepared arena backdrop.
func (s *Simulation) Backdrop() *Backdrop { return s.backdrop }

// Tanks returns the tanks in roster order.
func (s *Simulation) Tanks() []*Tank { return s.tanks }

// Entities returns a copy of the entity list.
func (s *Simulation) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Bullets returns the shells currently in the entity list.
func (s *Simulation) Bullets() []*Bullet {
	var out []*Bullet
	for _, e := range s.entities {
		if b, ok := e.(*Bullet); ok {
			out = append(out, b)
		}
	}
	return out
}

// simWorld is the World handed to entities. It only queues mutations of
// the entity list.
type simWorld struct {
	s *Simulation
}

func (w simWorld) ForEachCollider(fn func(Entity) bool) {
	for _, e := range w.s.entities {
		if !e.Collidable() {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

func (w simWorld) Spawn(e Entity) {
	w.s.pendingSpawn = append(w.s.pendingSpawn, e)
}

func (w simWorld) Remove(e Entity) {
	w.s.pendingRemove[e] = struct{}{}
}

func (w simWorld) MatchOver(t *Tank) {
	w.s.destroyed = append(w.s.destroyed, t.slot)
	if w.s.endFrame == 0 {
		w.s.endFrame = 1
	}
}

func (w simWorld) Emit(ev Event) { w.s.emit(ev) }

func (w simWorld) Input(slot int) Controls {
	if slot < 0 || slot >= len(w.s.inputs) {
		return Controls{}
	}
	return w.s.inputs[slot]
}

func (w simWorld) Config() Config { return w.s.cfg }

func (w simWorld) Now() int64 {
	return int64(w.s.tick) * 1000 / int64(w.s.cfg.TickRate)
}

func (w simWorld) Bounds() Rect { return w.s.bounds }
