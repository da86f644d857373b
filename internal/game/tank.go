package game

import (
	"math"
)

const (
	hullBaseSize      = 48.0 // px, hull edge at body_scale 1
	muzzleDistance    = 50.0 // px from hull centre to shell spawn point
	driftEpsilon      = 0.1  // |v| below this snaps to zero while drifting
	explosionFrames   = 8.0  // animation frames in an explosion
	tankExplosionStep = 0.1  // frames per tick for a tank explosion
	reloadPenaltyMul  = 1.5  // reload delay multiplier right after a shot
)

// Lifecycle is a tank's high-level state.
type Lifecycle uint8

const (
	LifecycleAlive     Lifecycle = iota // driving and shooting
	LifecycleExploding                  // destroyed, explosion animation running
	LifecycleDestroyed                  // inert wreck
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleAlive:
		return "alive"
	case LifecycleExploding:
		return "exploding"
	case LifecycleDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Tank is a player-controlled vehicle.
type Tank struct {
	slot  int
	team  Team
	stats TankStats
	box   Rect

	health         int
	ammo           int
	reloadCooldown int // ticks until the next shell is restored

	vx, vy float64

	turretAngle float64 // degrees, unbounded; 0 points down the screen
	turretSpin  float64 // auto-rotation step, flips sign on every shot
	drawAngle   float64 // hull facing, one of 0, ±45, ±90, ±135, 180

	destroyed bool    // set once at death, never cleared
	exploding bool    // explosion animation running
	frame     float64 // explosion animation frame

	lastShot int64 // simulated ms of the last trigger pull
}

// NewTank places a tank with its top-left corner at pos.
func NewTank(slot int, team Team, stats TankStats, pos Vec) *Tank {
	size := stats.HullSize()
	return &Tank{
		slot:           slot,
		team:           team,
		stats:          stats,
		box:            Rect{X: pos.X, Y: pos.Y, W: size, H: size},
		health:         stats.Health,
		ammo:           stats.MaxShells,
		reloadCooldown: stats.ReloadSpeed,
		turretSpin:     stats.TurretSpeed,
		lastShot:       -int64(stats.Cooldown) - 1,
	}
}

func (t *Tank) Box() Rect        { return t.box }
func (t *Tank) Team() Team       { return t.team }
func (t *Tank) Collidable() bool { return true }

// Slot is the tank's roster index.
func (t *Tank) Slot() int { return t.slot }

// Stats returns the tank's private stat copy.
func (t *Tank) Stats() TankStats { return t.stats }

// Health returns current health. It may be negative after the killing blow.
func (t *Tank) Health() int { return t.health }

// Ammo returns the shells currently loaded.
func (t *Tank) Ammo() int { return t.ammo }

// ReloadCooldown returns the ticks until the next shell is restored.
func (t *Tank) ReloadCooldown() int { return t.reloadCooldown }

// Velocity returns the current per-tick displacement.
func (t *Tank) Velocity() Vec { return Vec{X: t.vx, Y: t.vy} }

// TurretAngle returns the turret angle in degrees.
func (t *Tank) TurretAngle() float64 { return t.turretAngle }

// DrawAngle returns the hull facing in degrees.
func (t *Tank) DrawAngle() float64 { return t.drawAngle }

// AnimationFrame returns the explosion frame.
func (t *Tank) AnimationFrame() float64 { return t.frame }

// Alive reports whether the tank can still act and take damage.
func (t *Tank) Alive() bool { return !t.destroyed }

// Lifecycle returns the tank's state machine position.
func (t *Tank) Lifecycle() Lifecycle {
	switch {
	case !t.destroyed:
		return LifecycleAlive
	case t.exploding:
		return LifecycleExploding
	default:
		return LifecycleDestroyed
	}
}

// Update advances the tank by one tick.
func (t *Tank) Update(w World) {
	if t.exploding {
		t.frame += tankExplosionStep
		if t.frame > explosionFrames {
			t.exploding = false
		}
	}
	if t.destroyed {
		return
	}

	t.reload()

	in := w.Input(t.slot)
	cfg := w.Config()
	t.rotateTurret(in, cfg.ManualTurret)
	t.drift(in)
	t.accelerate(in)
	t.move(w, in, cfg.Bounce)
	t.updateFacing()

	if in.Shoot {
		now := w.Now()
		if now-t.lastShot > int64(t.stats.Cooldown) {
			t.lastShot = now
			t.Shoot(w)
		}
	}
}

func (t *Tank) reload() {
	if t.ammo >= t.stats.MaxShells {
		return
	}
	t.reloadCooldown--
	if t.reloadCooldown <= 0 {
		t.reloadCooldown = t.stats.ReloadSpeed
		t.ammo++
	}
}

func (t *Tank) rotateTurret(in Controls, manual bool) {
	if !manual {
		t.turretAngle += t.turretSpin
		return
	}
	if in.TurretLeft {
		t.turretAngle += t.stats.TurretSpeed
	}
	if in.TurretRight {
		t.turretAngle -= t.stats.TurretSpeed
	}
}

// drift decays velocity on every axis with no key held.
func (t *Tank) drift(in Controls) {
	if !in.vertical() {
		t.vy = decay(t.vy, t.stats.Drift)
	}
	if !in.horizontal() {
		t.vx = decay(t.vx, t.stats.Drift)
	}
}

func decay(v, drift float64) float64 {
	v *= drift
	if math.Abs(v) < driftEpsilon {
		return 0
	}
	return v
}

func (t *Tank) accelerate(in Controls) {
	lim := t.stats.MaxSpeed
	acc := t.stats.Acceleration
	if in.Up {
		t.vy = clamp(t.vy-acc, -lim, lim)
	}
	if in.Down {
		t.vy = clamp(t.vy+acc, -lim, lim)
	}
	if in.Left {
		t.vx = clamp(t.vx-acc, -lim, lim)
	}
	if in.Right {
		t.vx = clamp(t.vx+acc, -lim, lim)
	}
}

// move applies the vertical then the horizontal delta, reverting each axis
// on its own when it would overlap another collidable entity. Resolving
// the axes separately lets a tank slide along walls.
func (t *Tank) move(w World, in Controls, bounce bool) {
	idle := !in.Moving()

	t.box.Y += t.vy
	if t.collides(w) {
		t.box.Y -= t.vy
		if bounce {
			t.vy = -t.vy
		} else if idle {
			t.vy = 0
		}
	}

	t.box.X += t.vx
	if t.collides(w) {
		t.box.X -= t.vx
		if bounce {
			t.vx = -t.vx
		} else if idle {
			t.vx = 0
		}
	}
}

func (t *Tank) collides(w World) bool {
	hit := false
	w.ForEachCollider(func(e Entity) bool {
		if e == Entity(t) {
			return true
		}
		if t.box.Overlaps(e.Box()) {
			hit = true
			return false
		}
		return true
	})
	return hit
}

// updateFacing derives the eight-way hull angle from the velocity signs.
// Diagonals win over cardinals; a stationary tank keeps its facing.
func (t *Tank) updateFacing() {
	vx, vy := t.vx, t.vy
	switch {
	case vx > 0 && vy < 0:
		t.drawAngle = 135
	case vx > 0 && vy > 0:
		t.drawAngle = 45
	case vx < 0 && vy > 0:
		t.drawAngle = -45
	case vx < 0 && vy < 0:
		t.drawAngle = -135
	case vy < 0:
		t.drawAngle = 180
	case vy > 0:
		t.drawAngle = 0
	case vx < 0:
		t.drawAngle = -90
	case vx > 0:
		t.drawAngle = 90
	}
}

// Shoot fires one shell along the turret. It is a no-op without ammo.
func (t *Tank) Shoot(w World) {
	if t.destroyed || t.ammo <= 0 {
		return
	}
	t.ammo--
	t.reloadCooldown = int(math.Ceil(float64(t.stats.ReloadSpeed) * reloadPenaltyMul))
	t.turretSpin = -t.turretSpin

	pos := t.box.Center().Add(aimVector(t.turretAngle).Scale(muzzleDistance))
	w.Spawn(NewBullet(t.slot, t.team, pos, t.turretAngle, t.stats.BulletSpeed, t.stats.BulletDamage))
	w.Emit(Event{Kind: EventShot, Slot: t.slot, Shooter: t.slot, Team: t.team, Pos: pos})
}

// aimVector is the unit direction for an angle in the turret convention:
// 0° points down the screen and the x component follows sin.
func aimVector(deg float64) Vec {
	sin, cos := math.Sincos(radians(deg))
	return Vec{X: sin, Y: cos}
}

// Damage subtracts amount from health. Damage to a destroyed tank and
// non-positive amounts are ignored, so health never rises.
func (t *Tank) Damage(w World, amount int) {
	if t.destroyed || amount <= 0 {
		return
	}
	t.health -= amount
	if t.health <= 0 {
		t.die(w)
	}
}

func (t *Tank) die(w World) {
	t.destroyed = true
	t.exploding = true
	t.frame = 0
	w.Emit(Event{Kind: EventTankDestroyed, Slot: t.slot, Shooter: -1, Team: t.team, Pos: t.box.Center()})
	w.MatchOver(t)
}

// TurretPosition returns the turret pivot in arena pixels: the stats offset,
// scaled with the hull and rotated by the negated hull angle (screen Y points
// down), added to the hull centre.
func (t *Tank) TurretPosition() Vec {
	off := Vec{X: t.stats.TurretOffset[0], Y: t.stats.TurretOffset[1]}.Scale(t.stats.BodyScale)
	return t.box.Center().Add(off.Rotate(-t.drawAngle))
}

func (t *Tank) DrawRequest(debug bool) DrawRequest {
	return DrawRequest{
		Kind:        DrawTank,
		Slot:        t.slot,
		Box:         t.box,
		Center:      t.box.Center(),
		Angle:       t.drawAngle,
		Turret:      t.TurretPosition(),
		TurretAngle: t.turretAngle,
		Team:        t.team,
		Color:       t.stats.Color,
		Variant:     t.stats.ImageType,
		BodyScale:   t.stats.BodyScale,
		TurretScale: t.stats.TurretScale,
		Frame:       t.frame,
		Exploding:   t.exploding,
		Destroyed:   t.destroyed,
		Health:      t.health,
		MaxHealth:   t.stats.Health,
		Ammo:        t.ammo,
		MaxAmmo:     t.stats.MaxShells,
		Velocity:    Vec{X: t.vx, Y: t.vy},
		Debug:       debug,
	}
}
