package game

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// TestSim is a headless match harness. It wraps a Simulation built from a
// small programmatic arena, drives every slot from a Script and records
// events into a SimLog. Tests and the headless report use it.
type TestSim struct {
	Cols, Rows int
	Config     Config
	Roster     []TankStats
	SimLog     *SimLog
	Sim        *Simulation

	tiles   map[[2]int]TileKind
	mapText string
	border  bool
	seed    int64
	rng     *rand.Rand
	scripts map[int]Script
}

// Script decides one slot's controls for the coming tick.
type Script func(ts *TestSim, slot, tick int) Controls

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // arena, config, seed, verbose: applied first
	simOptTank                        // roster entries: applied after the arena exists
	simOptScript                      // input scripts: applied after the simulation is built
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithArena sets the grid dimensions of an all-grass arena.
func WithArena(cols, rows int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Cols = cols
		ts.Rows = rows
	}}
}

// WithBorder surrounds the arena with a ring of wall tiles.
func WithBorder() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.border = true }}
}

// WithWall places a wall tile.
func WithWall(col, row int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.tiles[[2]int{col, row}] = TileWall
	}}
}

// WithSpawn places a spawn tile. Tanks take spawns in row-major order, not
// in option order.
func WithSpawn(col, row int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.tiles[[2]int{col, row}] = TileSpawn
	}}
}

// WithMapText uses a map in the on-disk format instead of a built arena.
func WithMapText(text string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.mapText = text }}
}

// WithConfig adjusts the simulation configuration.
func WithConfig(fn func(*Config)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { fn(&ts.Config) }}
}

// WithSeed sets the RNG seed for scripts and the backdrop.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
		ts.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithTank appends a tank archetype to the roster.
func WithTank(stats TankStats) SimOption {
	return SimOption{simOptTank, func(ts *TestSim) {
		ts.Roster = append(ts.Roster, stats)
	}}
}

// WithScript drives slot with s. Slots without a script stay idle.
func WithScript(slot int, s Script) SimOption {
	return SimOption{simOptScript, func(ts *TestSim) {
		ts.scripts[slot] = s
	}}
}

// DefaultTestStats is a plain mid-range archetype for harness runs.
func DefaultTestStats() TankStats {
	return TankStats{
		Health:       100,
		MaxSpeed:     4,
		Acceleration: 0.5,
		TurretSpeed:  2,
		Cooldown:     250,
		BulletSpeed:  8,
		BulletDamage: 25,
		BodyScale:    0.5,
		TurretScale:  0.5,
		Drift:        0.8,
		ReloadSpeed:  30,
		MaxShells:    3,
		Name:         "test",
	}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (arena, config, seed, verbose)
//  2. Roster
//  3. Simulation
//  4. Scripts
func NewTestSim(opts ...SimOption) (*TestSim, error) {
	ts := &TestSim{
		Cols:    20,
		Rows:    10,
		Config:  DefaultConfig(),
		SimLog:  NewSimLog(false),
		tiles:   make(map[[2]int]TileKind),
		scripts: make(map[int]Script),
		seed:    1,
		rng:     rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptTank {
			o.fn(ts)
		}
	}

	tm, err := ts.buildMap()
	if err != nil {
		return nil, err
	}
	ts.Sim, err = NewSimulation(tm, ts.Roster, ts.Config,
		WithSink(ts.SimLog),
		WithBackdropSeed(ts.seed))
	if err != nil {
		return nil, err
	}

	for _, o := range opts {
		if o.kind == simOptScript {
			o.fn(ts)
		}
	}
	return ts, nil
}

func (ts *TestSim) buildMap() (*TileMap, error) {
	if ts.mapText != "" {
		return ParseTileMap(ts.mapText)
	}
	if ts.Cols <= 0 || ts.Rows <= 0 {
		return nil, fmt.Errorf("test sim: %w", &MapFormatError{Row: -1, Reason: "empty arena"})
	}
	tm := &TileMap{Cols: ts.Cols, Rows: ts.Rows, Tiles: make([]TileKind, ts.Cols*ts.Rows)}
	for row := 0; row < ts.Rows; row++ {
		for col := 0; col < ts.Cols; col++ {
			edge := row == 0 || col == 0 || row == ts.Rows-1 || col == ts.Cols-1
			if ts.border && edge {
				tm.Tiles[row*ts.Cols+col] = TileWall
			}
		}
	}
	for pos, kind := range ts.tiles {
		if tm.inBounds(pos[0], pos[1]) {
			tm.Tiles[pos[1]*ts.Cols+pos[0]] = kind
		}
	}
	return tm, nil
}

// Tank returns the tank in slot.
func (ts *TestSim) Tank(slot int) *Tank {
	return ts.Sim.Tanks()[slot]
}

// Poll implements InputSource from the registered scripts.
func (ts *TestSim) Poll(tick int) []Controls {
	out := make([]Controls, len(ts.Roster))
	for slot := range out {
		if s, ok := ts.scripts[slot]; ok {
			out[slot] = s(ts, slot, tick)
		}
	}
	return out
}

// RunTicks advances the simulation n ticks, or fewer if the match ends.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n && !ts.Sim.Done(); i++ {
		ts.runOneTick()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks && !ts.Sim.Done(); i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.Sim.Tick()
		}
	}
	return -1
}

// RunUntilDone runs the match to completion or maxTicks and returns the result.
func (ts *TestSim) RunUntilDone(ctx context.Context, maxTicks int) (MatchResult, error) {
	return ts.Sim.Run(ctx, InputFunc(func(tick int) []Controls {
		in := ts.Poll(tick)
		ts.logVerbose()
		return in
	}), maxTicks)
}

func (ts *TestSim) runOneTick() {
	ts.Sim.Step(ts.Poll(ts.Sim.Tick()))
	ts.logVerbose()
}

func (ts *TestSim) logVerbose() {
	tick := ts.Sim.Tick()
	for _, t := range ts.Sim.Tanks() {
		label := TankLabel(t.slot)
		c := t.box.Center()
		ts.SimLog.AddVerbose(tick, label, t.team.String(), "move", "position",
			fmt.Sprintf("(%.1f,%.1f)", c.X, c.Y), 0)
		ts.SimLog.AddVerbose(tick, label, t.team.String(), "tank", "ammo",
			fmt.Sprintf("%d/%d", t.ammo, t.stats.MaxShells), float64(t.ammo))
	}
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.Sim.Tick()
}

// Rand returns the harness RNG for scripts.
func (ts *TestSim) Rand() *rand.Rand { return ts.rng }

// SimSnapshot captures a lightweight state summary.
type SimSnapshot struct {
	Tick    int
	Tanks   []TankSnapshot
	Bullets int
}

// TankSnapshot is a lightweight copy of a tank's state at a tick.
type TankSnapshot struct {
	Slot      int
	Label     string
	Team      Team
	X, Y      float64
	Health    int
	Ammo      int
	Lifecycle Lifecycle
}

// Snapshot returns the current state of all tanks.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.Sim.Tick(), Bullets: len(ts.Sim.Bullets())}
	for _, t := range ts.Sim.Tanks() {
		snap.Tanks = append(snap.Tanks, TankSnapshot{
			Slot:      t.slot,
			Label:     TankLabel(t.slot),
			Team:      t.team,
			X:         t.box.X,
			Y:         t.box.Y,
			Health:    t.health,
			Ammo:      t.ammo,
			Lifecycle: t.Lifecycle(),
		})
	}
	return snap
}

// Hold is a Script that keeps the same controls every tick.
func Hold(c Controls) Script {
	return func(*TestSim, int, int) Controls { return c }
}

// Wanderer drives in a random direction that changes every period ticks and
// holds the trigger whenever a shell is loaded.
func Wanderer(period int) Script {
	var cur Controls
	return func(ts *TestSim, slot, tick int) Controls {
		if period <= 0 || tick%period == 0 {
			r := ts.Rand().Intn(9)
			cur = Controls{
				Up:    r%3 == 0,
				Down:  r%3 == 1,
				Left:  r/3 == 0,
				Right: r/3 == 1,
			}
		}
		cur.Shoot = ts.Tank(slot).ammo > 0
		return cur
	}
}

// Hunter closes in on target along the longer axis and fires when the
// auto-rotating turret points within tolerance degrees of it.
func Hunter(target int, tolerance float64) Script {
	return func(ts *TestSim, slot, _ int) Controls {
		self, prey := ts.Tank(slot), ts.Tank(target)
		if !prey.Alive() {
			return Controls{}
		}
		d := prey.box.Center().Add(self.box.Center().Scale(-1))
		var c Controls
		if math.Abs(d.X) > math.Abs(d.Y) {
			c.Left, c.Right = d.X < 0, d.X > 0
		} else {
			c.Up, c.Down = d.Y < 0, d.Y > 0
		}
		bearing := math.Atan2(d.X, d.Y) * 180 / math.Pi
		c.Shoot = angleBetween(self.turretAngle, bearing) <= tolerance
		return c
	}
}

// angleBetween returns the absolute difference of two angles in [0, 180].
func angleBetween(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
