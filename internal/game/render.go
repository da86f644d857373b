package game

// DrawKind selects how a DrawRequest is rendered.
type DrawKind uint8

const (
	DrawBlock DrawKind = iota
	DrawTank
	DrawBullet
)

// DrawRequest is everything a renderer needs to draw one entity this frame.
// Angles follow the turret convention: degrees, 0 pointing down the screen,
// positive values rotating counter-clockwise on screen.
type DrawRequest struct {
	Kind   DrawKind
	Slot   int // tank slot, or owner slot for bullets
	Box    Rect
	Center Vec
	Angle  float64

	Turret      Vec
	TurretAngle float64

	Team        Team
	Color       int
	Variant     int
	BodyScale   float64
	TurretScale float64

	Frame     float64 // explosion frame
	Exploding bool
	Destroyed bool

	Health, MaxHealth int
	Ammo, MaxAmmo     int
	Velocity          Vec

	Debug bool
}

// ExplosionFrame returns the integer animation frame to display.
func (r DrawRequest) ExplosionFrame() int {
	f := int(r.Frame)
	if f > int(explosionFrames) {
		f = int(explosionFrames)
	}
	return f
}

// HealthBarLength returns the HUD health bar length in pixels: half the
// remaining health percentage.
func (r DrawRequest) HealthBarLength() float64 {
	if r.MaxHealth <= 0 || r.Health <= 0 {
		return 0
	}
	return float64(r.Health) * 100 / float64(r.MaxHealth) / 2
}

// AmmoPips returns how many shell pips the HUD shows. Magazines above ten
// shells are scaled down to ten pips.
func (r DrawRequest) AmmoPips() int {
	if r.MaxAmmo > 10 {
		return int(float64(r.Ammo*10)/float64(r.MaxAmmo) + 0.5)
	}
	return r.Ammo
}

// OverlayKind identifies a full-screen overlay.
type OverlayKind uint8

const (
	OverlayGameOver OverlayKind = iota
)

// Overlay is drawn above every entity.
type Overlay struct {
	Kind OverlayKind
	Text string
}

// Renderer is the presentation adapter. The simulation calls it once per
// frame, after the update pass, in entity list order.
type Renderer interface {
	DrawBackdrop(b *Backdrop)
	DrawEntity(req DrawRequest)
	DrawOverlay(o Overlay)
}
