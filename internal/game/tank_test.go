package game

import (
	"math"
	"testing"
)

// fakeWorld is a hand-driven World for unit tests of a single entity.
type fakeWorld struct {
	colliders []Entity
	spawned   []Entity
	removed   []Entity
	events    []Event
	over      []*Tank
	input     map[int]Controls
	cfg       Config
	now       int64
	bounds    Rect
}

func newFakeWorld(colliders ...Entity) *fakeWorld {
	return &fakeWorld{
		colliders: colliders,
		input:     make(map[int]Controls),
		cfg:       DefaultConfig(),
		bounds:    Rect{W: 1000, H: 1000},
	}
}

func (w *fakeWorld) ForEachCollider(fn func(Entity) bool) {
	for _, e := range w.colliders {
		if e.Collidable() && !fn(e) {
			return
		}
	}
}
func (w *fakeWorld) Spawn(e Entity)          { w.spawned = append(w.spawned, e) }
func (w *fakeWorld) Remove(e Entity)         { w.removed = append(w.removed, e) }
func (w *fakeWorld) MatchOver(t *Tank)       { w.over = append(w.over, t) }
func (w *fakeWorld) Emit(ev Event)           { w.events = append(w.events, ev) }
func (w *fakeWorld) Input(slot int) Controls { return w.input[slot] }
func (w *fakeWorld) Config() Config          { return w.cfg }
func (w *fakeWorld) Now() int64              { return w.now }
func (w *fakeWorld) Bounds() Rect            { return w.bounds }

func (w *fakeWorld) count(kind EventKind) int {
	n := 0
	for _, ev := range w.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTank_ShootDrainsAmmo(t *testing.T) {
	stats := DefaultTestStats()
	stats.MaxShells = 3
	tank := NewTank(0, TeamRed, stats, Vec{X: 100, Y: 100})
	w := newFakeWorld(tank)

	for i := 0; i < 3; i++ {
		tank.Shoot(w)
	}
	if tank.Ammo() != 0 {
		t.Fatalf("expected 0 ammo after 3 shots, got %d", tank.Ammo())
	}
	if len(w.spawned) != 3 {
		t.Fatalf("expected 3 bullets, got %d", len(w.spawned))
	}

	tank.Shoot(w)
	if tank.Ammo() != 0 || len(w.spawned) != 3 {
		t.Fatalf("4th shot should be a no-op: ammo=%d bullets=%d", tank.Ammo(), len(w.spawned))
	}
	if w.count(EventShot) != 3 {
		t.Fatalf("expected 3 shot events, got %d", w.count(EventShot))
	}
}

func TestTank_ReloadAfterShot(t *testing.T) {
	stats := DefaultTestStats()
	stats.MaxShells = 3
	stats.ReloadSpeed = 30
	tank := NewTank(0, TeamRed, stats, Vec{X: 100, Y: 100})
	w := newFakeWorld(tank)
	for i := 0; i < 3; i++ {
		tank.Shoot(w)
	}
	// The first shell after a shot takes 1.5x the reload time.
	if tank.ReloadCooldown() != 45 {
		t.Fatalf("reload cooldown after a shot = %d, want 45", tank.ReloadCooldown())
	}

	for i := 1; i <= 44; i++ {
		tank.Update(w)
		if tank.Ammo() != 0 {
			t.Fatalf("tick %d: ammo restored early (%d)", i, tank.Ammo())
		}
	}
	tank.Update(w)
	if tank.Ammo() != 1 {
		t.Fatalf("expected 1 shell after 45 ticks, got %d", tank.Ammo())
	}
	for i := 0; i < 30; i++ {
		tank.Update(w)
	}
	if tank.Ammo() != 2 {
		t.Fatalf("expected 2 shells after 30 more ticks, got %d", tank.Ammo())
	}
	for i := 0; i < 200; i++ {
		tank.Update(w)
		if tank.Ammo() > stats.MaxShells {
			t.Fatalf("ammo exceeded max_shells: %d", tank.Ammo())
		}
	}
	if tank.Ammo() != stats.MaxShells {
		t.Fatalf("expected a full magazine, got %d", tank.Ammo())
	}
}

func TestTank_ShotCooldown(t *testing.T) {
	stats := DefaultTestStats()
	stats.Cooldown = 250
	stats.MaxShells = 10
	tank := NewTank(0, TeamRed, stats, Vec{X: 100, Y: 100})
	w := newFakeWorld(tank)
	w.input[0] = Controls{Shoot: true}

	w.now = 0
	tank.Update(w)
	if len(w.spawned) != 1 {
		t.Fatalf("first trigger pull should fire immediately, got %d bullets", len(w.spawned))
	}
	w.now = 250
	tank.Update(w)
	if len(w.spawned) != 1 {
		t.Fatal("shot fired before the cooldown elapsed")
	}
	w.now = 251
	tank.Update(w)
	if len(w.spawned) != 2 {
		t.Fatalf("expected second shot after cooldown, got %d bullets", len(w.spawned))
	}
}

func TestTank_ShotSpawnsBulletAtMuzzle(t *testing.T) {
	stats := DefaultTestStats()
	tank := NewTank(1, TeamBlue, stats, Vec{X: 100, Y: 100})
	w := newFakeWorld(tank)
	spin := tank.turretSpin

	tank.Shoot(w)
	b, ok := w.spawned[0].(*Bullet)
	if !ok {
		t.Fatalf("expected *Bullet, got %T", w.spawned[0])
	}
	c := tank.Box().Center()
	if !approx(b.Box().X, c.X) || !approx(b.Box().Y, c.Y+50) {
		t.Fatalf("bullet at (%.2f,%.2f), want (%.2f,%.2f)", b.Box().X, b.Box().Y, c.X, c.Y+50)
	}
	if b.Team() != TeamBlue || b.Owner() != 1 {
		t.Fatalf("bullet team/owner = %v/%d, want blue/1", b.Team(), b.Owner())
	}
	if tank.turretSpin != -spin {
		t.Fatal("turret auto-rotation should flip direction on every shot")
	}
}

func TestTank_DamageLifecycle(t *testing.T) {
	stats := DefaultTestStats()
	stats.Health = 100
	tank := NewTank(0, TeamRed, stats, Vec{})
	w := newFakeWorld(tank)

	tank.Damage(w, 60)
	if tank.Health() != 40 || tank.Lifecycle() != LifecycleAlive {
		t.Fatalf("after 60 damage: health=%d lifecycle=%s", tank.Health(), tank.Lifecycle())
	}
	tank.Damage(w, 50)
	if tank.Health() != -10 || tank.Lifecycle() != LifecycleExploding {
		t.Fatalf("after 50 more: health=%d lifecycle=%s", tank.Health(), tank.Lifecycle())
	}
	if len(w.over) != 1 || w.count(EventTankDestroyed) != 1 {
		t.Fatalf("death should be signalled once: over=%d events=%d", len(w.over), w.count(EventTankDestroyed))
	}

	tank.Damage(w, 30)
	if tank.Health() != -10 {
		t.Fatalf("damage to a destroyed tank must be ignored, health=%d", tank.Health())
	}
	if len(w.over) != 1 || w.count(EventTankDestroyed) != 1 {
		t.Fatal("death signalled more than once")
	}

	ticks := 0
	for tank.Lifecycle() == LifecycleExploding && ticks < 200 {
		tank.Update(w)
		ticks++
	}
	if tank.Lifecycle() != LifecycleDestroyed {
		t.Fatalf("expected destroyed after explosion, got %s", tank.Lifecycle())
	}
	if ticks < 80 || ticks > 82 {
		t.Fatalf("explosion took %d ticks, want about 81", ticks)
	}
}

func TestTank_DestroyedIsInert(t *testing.T) {
	tank := NewTank(0, TeamRed, DefaultTestStats(), Vec{X: 100, Y: 100})
	w := newFakeWorld(tank)
	tank.Damage(w, 1000)
	w.input[0] = Controls{Right: true, Shoot: true}
	before := tank.Box()
	for i := 0; i < 120; i++ {
		tank.Update(w)
	}
	if tank.Box() != before {
		t.Fatal("destroyed tank moved")
	}
	if len(w.spawned) != 0 {
		t.Fatal("destroyed tank fired")
	}
}

func TestTank_AxisSeparatedCollision_X(t *testing.T) {
	tank := NewTank(0, TeamRed, DefaultTestStats(), Vec{}) // 24x24
	wall := NewStaticBlock(Rect{X: 24, Y: 0, W: 32, H: 200})
	w := newFakeWorld(wall, tank)
	tank.vx, tank.vy = 4, 3
	w.input[0] = Controls{Right: true, Down: true}

	tank.Update(w)
	if tank.Box().X != 0 {
		t.Fatalf("x should be reverted against the wall, got %.2f", tank.Box().X)
	}
	if !approx(tank.Box().Y, 3.5) {
		t.Fatalf("y should move freely, got %.2f", tank.Box().Y)
	}
	if tank.Velocity().X != 4 {
		t.Fatalf("velocity kept while a key is held, got %.2f", tank.Velocity().X)
	}
}

func TestTank_AxisSeparatedCollision_Y(t *testing.T) {
	tank := NewTank(0, TeamRed, DefaultTestStats(), Vec{})
	wall := NewStaticBlock(Rect{X: 0, Y: 24, W: 200, H: 32})
	w := newFakeWorld(wall, tank)
	tank.vx, tank.vy = 3, 4
	w.input[0] = Controls{Right: true, Down: true}

	tank.Update(w)
	if tank.Box().Y != 0 {
		t.Fatalf("y should be reverted against the wall, got %.2f", tank.Box().Y)
	}
	if !approx(tank.Box().X, 3.5) {
		t.Fatalf("x should move freely, got %.2f", tank.Box().X)
	}
}

func TestTank_IdleCollisionStops(t *testing.T) {
	tank := NewTank(0, TeamRed, DefaultTestStats(), Vec{})
	wall := NewStaticBlock(Rect{X: 24, Y: 0, W: 32, H: 200})
	w := newFakeWorld(wall, tank)
	tank.vx = 4

	tank.Update(w)
	if tank.Velocity().X != 0 {
		t.Fatalf("idle tank should stop against a wall, vx=%.2f", tank.Velocity().X)
	}
}

func TestTank_Bounce(t *testing.T) {
	tank := NewTank(0, TeamRed, DefaultTestStats(), Vec{})
	wall := NewStaticBlock(Rect{X: 24, Y: 0, W: 32, H: 200})
	w := newFakeWorld(wall, tank)
	w.cfg.Bounce = true
	tank.vx = 4
	w.input[0] = Controls{Right: true}

	tank.Update(w)
	if tank.Velocity().X != -4 {
		t.Fatalf("bounce should invert vx, got %.2f", tank.Velocity().X)
	}
}

func TestTank_Drift(t *testing.T) {
	stats := DefaultTestStats()
	stats.Drift = 0.8
	tank := NewTank(0, TeamRed, stats, Vec{X: 100, Y: 100})
	w := newFakeWorld(tank)
	tank.vx, tank.vy = 4, 0.11

	tank.Update(w)
	if !approx(tank.Velocity().X, 3.2) {
		t.Fatalf("vx after drift = %.4f, want 3.2", tank.Velocity().X)
	}
	if tank.Velocity().Y != 0 {
		t.Fatalf("vy below epsilon should snap to 0, got %.4f", tank.Velocity().Y)
	}

	// Holding a key on one axis leaves the other drifting.
	tank.vx, tank.vy = 2, 2
	w.input[0] = Controls{Down: true}
	tank.Update(w)
	if !approx(tank.Velocity().X, 1.6) {
		t.Fatalf("vx should drift, got %.4f", tank.Velocity().X)
	}
	if !approx(tank.Velocity().Y, 2.5) {
		t.Fatalf("vy should accelerate without drift, got %.4f", tank.Velocity().Y)
	}
}

func TestTank_SpeedClamped(t *testing.T) {
	stats := DefaultTestStats()
	tank := NewTank(0, TeamRed, stats, Vec{X: 100, Y: 100})
	w := newFakeWorld(tank)
	w.input[0] = Controls{Left: true, Up: true}
	for i := 0; i < 30; i++ {
		tank.Update(w)
	}
	v := tank.Velocity()
	if v.X != -stats.MaxSpeed || v.Y != -stats.MaxSpeed {
		t.Fatalf("velocity = %+v, want clamped to -%.1f", v, stats.MaxSpeed)
	}
}

func TestTank_Facing(t *testing.T) {
	cases := []struct {
		vx, vy float64
		want   float64
	}{
		{1, -1, 135},
		{1, 1, 45},
		{-1, 1, -45},
		{-1, -1, -135},
		{0, -1, 180},
		{0, 1, 0},
		{-1, 0, -90},
		{1, 0, 90},
	}
	for _, tc := range cases {
		tank := NewTank(0, TeamRed, DefaultTestStats(), Vec{})
		tank.vx, tank.vy = tc.vx, tc.vy
		tank.updateFacing()
		if tank.DrawAngle() != tc.want {
			t.Fatalf("v=(%.0f,%.0f): facing %.0f, want %.0f", tc.vx, tc.vy, tank.DrawAngle(), tc.want)
		}
	}

	tank := NewTank(0, TeamRed, DefaultTestStats(), Vec{})
	tank.drawAngle = 135
	tank.updateFacing()
	if tank.DrawAngle() != 135 {
		t.Fatal("stationary tank should keep its facing")
	}
}

func TestTank_TurretPosition(t *testing.T) {
	stats := DefaultTestStats()
	stats.BodyScale = 1
	stats.TurretOffset = [2]float64{0, -4}
	tank := NewTank(0, TeamRed, stats, Vec{}) // centre (24,24)

	p := tank.TurretPosition()
	if !approx(p.X, 24) || !approx(p.Y, 20) {
		t.Fatalf("facing 0: turret at (%.3f,%.3f), want (24,20)", p.X, p.Y)
	}

	tank.drawAngle = 90
	p = tank.TurretPosition()
	if math.Abs(p.X-20) > 1e-9 || math.Abs(p.Y-24) > 1e-9 {
		t.Fatalf("facing 90: turret at (%.3f,%.3f), want (20,24)", p.X, p.Y)
	}
}

func TestTank_TurretModes(t *testing.T) {
	stats := DefaultTestStats()
	stats.TurretSpeed = 3
	tank := NewTank(0, TeamRed, stats, Vec{X: 100, Y: 100})
	w := newFakeWorld(tank)
	tank.Update(w)
	if tank.TurretAngle() != 3 {
		t.Fatalf("auto turret should spin by turret_speed, got %.1f", tank.TurretAngle())
	}

	manual := NewTank(0, TeamRed, stats, Vec{X: 100, Y: 100})
	mw := newFakeWorld(manual)
	mw.cfg.ManualTurret = true
	manual.Update(mw)
	if manual.TurretAngle() != 0 {
		t.Fatal("manual turret should not move without input")
	}
	mw.input[0] = Controls{TurretRight: true}
	manual.Update(mw)
	manual.Update(mw)
	if manual.TurretAngle() != -6 {
		t.Fatalf("manual turret angle = %.1f, want -6", manual.TurretAngle())
	}
}

func TestTank_DamageNeverHeals(t *testing.T) {
	tank := NewTank(0, TeamRed, DefaultTestStats(), Vec{})
	w := newFakeWorld(tank)

	tank.Damage(w, -50)
	if tank.Health() != 100 {
		t.Fatalf("health after negative damage = %d, want 100", tank.Health())
	}
	tank.Damage(w, 0)
	if tank.Health() != 100 || w.count(EventTankDestroyed) != 0 {
		t.Fatalf("zero damage changed the tank: health=%d events=%+v", tank.Health(), w.events)
	}
	tank.Damage(w, 30)
	tank.Damage(w, -30)
	if tank.Health() != 70 {
		t.Fatalf("health rose after a negative amount: %d, want 70", tank.Health())
	}
}
