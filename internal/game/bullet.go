package game

const (
	bulletSize          = 20.0 // px, square hit box
	bulletExplosionStep = 0.5  // frames per tick
)

// Bullet is a shell in flight or exploding. It is not collidable itself.
type Bullet struct {
	box    Rect
	owner  int // firing tank slot
	team   Team
	angle  float64 // degrees, fixed at spawn
	speed  float64
	damage int

	exploding bool
	frame     float64
}

// NewBullet creates a shell whose hit box has its top-left corner at pos.
func NewBullet(owner int, team Team, pos Vec, angle, speed float64, damage int) *Bullet {
	return &Bullet{
		box:    Rect{X: pos.X, Y: pos.Y, W: bulletSize, H: bulletSize},
		owner:  owner,
		team:   team,
		angle:  angle,
		speed:  speed,
		damage: damage,
	}
}

func (b *Bullet) Box() Rect        { return b.box }
func (b *Bullet) Team() Team       { return b.team }
func (b *Bullet) Collidable() bool { return false }

// Owner is the roster slot of the tank that fired the shell.
func (b *Bullet) Owner() int { return b.owner }

// Angle returns the flight angle in degrees.
func (b *Bullet) Angle() float64 { return b.angle }

// Exploding reports whether the shell has hit something.
func (b *Bullet) Exploding() bool { return b.exploding }

// AnimationFrame returns the explosion frame.
func (b *Bullet) AnimationFrame() float64 { return b.frame }

// Update moves the shell or resolves at most one hit per lifetime.
func (b *Bullet) Update(w World) {
	if b.exploding {
		b.frame += bulletExplosionStep
		if b.frame > explosionFrames {
			w.Remove(b)
		}
		return
	}

	if b.resolveHit(w) {
		return
	}

	step := aimVector(b.angle).Scale(b.speed)
	b.box.X += step.X
	b.box.Y += step.Y
	if !w.Bounds().Overlaps(b.box) {
		w.Remove(b)
	}
}

// resolveHit explodes the shell on the first overlapping collidable entity
// of another team. Only a living tank takes damage.
func (b *Bullet) resolveHit(w World) bool {
	hitWalls := w.Config().BulletsHitWalls
	var struck Entity
	w.ForEachCollider(func(e Entity) bool {
		if e.Team() == b.team {
			return true
		}
		if e.Team() == TeamNone && !hitWalls {
			return true
		}
		if b.box.Overlaps(e.Box()) {
			struck = e
			return false
		}
		return true
	})
	if struck == nil {
		return false
	}

	b.exploding = true
	w.Emit(Event{Kind: EventBulletExploded, Slot: -1, Shooter: b.owner, Team: b.team, Pos: b.box.Center()})
	if tank, ok := struck.(*Tank); ok && tank.Alive() {
		w.Emit(Event{Kind: EventTankHit, Slot: tank.slot, Shooter: b.owner, Team: tank.team, Pos: b.box.Center(), Amount: b.damage})
		tank.Damage(w, b.damage)
	}
	return true
}

func (b *Bullet) DrawRequest(debug bool) DrawRequest {
	return DrawRequest{
		Kind:      DrawBullet,
		Slot:      b.owner,
		Box:       b.box,
		Center:    b.box.Center(),
		Angle:     b.angle,
		Team:      b.team,
		Frame:     b.frame,
		Exploding: b.exploding,
		Debug:     debug,
	}
}
