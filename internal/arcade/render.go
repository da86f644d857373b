package arcade

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/tankfield/tanks/internal/game"
)

const (
	hudOffset        = 20  // px between the hull box and the health bar
	hudBarHeight     = 4   // px
	pipSize          = 4   // px
	tankExplodeScale = 2.5 // explosion size relative to the hull box
	overlayScale     = 6   // "Game Over" text scale
)

var (
	grassColor     = color.RGBA{74, 112, 52, 255}
	grassStripe    = color.RGBA{66, 102, 46, 255}
	wallColor      = color.RGBA{118, 104, 92, 255}
	wallMortar     = color.RGBA{92, 80, 70, 255}
	spawnColor     = color.RGBA{96, 96, 88, 255}
	bushColor      = color.RGBA{40, 78, 34, 255}
	healthColor    = color.RGBA{60, 200, 80, 255}
	healthBack     = color.RGBA{30, 30, 30, 180}
	pipColor       = color.RGBA{230, 200, 90, 255}
	debugBoxColor  = color.RGBA{255, 0, 255, 255}
	overlayColor   = color.RGBA{240, 236, 220, 255}
	overlayShadow  = color.RGBA{0, 0, 0, 160}
	explosionOuter = color.RGBA{236, 120, 36, 255}
	explosionInner = color.RGBA{252, 220, 96, 255}
)

// screenRenderer draws DrawRequests onto an ebiten screen image. The target
// is set with begin at the top of every Draw.
type screenRenderer struct {
	screen  *ebiten.Image
	sprites *spriteCache
	face    text.Face
	log     zerolog.Logger

	backdrop    *ebiten.Image
	backdropFor *game.Backdrop
}

func newScreenRenderer(log zerolog.Logger) *screenRenderer {
	return &screenRenderer{
		sprites: newSpriteCache(),
		face:    text.NewGoXFace(basicfont.Face7x13),
		log:     log,
	}
}

func (r *screenRenderer) begin(screen *ebiten.Image) { r.screen = screen }

func (r *screenRenderer) release() {
	r.sprites.Release()
	if r.backdrop != nil {
		r.backdrop.Deallocate()
		r.backdrop = nil
		r.backdropFor = nil
	}
}

// DrawBackdrop renders the backdrop plan once into an offscreen image and
// blits it every frame after that.
func (r *screenRenderer) DrawBackdrop(b *game.Backdrop) {
	if b != r.backdropFor {
		img, err := renderBackdrop(b)
		if err != nil {
			r.log.Error().Err(err).Msg("backdrop not rendered")
			r.screen.Fill(grassColor)
			return
		}
		if r.backdrop != nil {
			r.backdrop.Deallocate()
		}
		r.backdrop, r.backdropFor = img, b
	}
	r.screen.DrawImage(r.backdrop, nil)
}

func renderBackdrop(b *game.Backdrop) (*ebiten.Image, error) {
	plan, err := b.Plan()
	if err != nil {
		return nil, fmt.Errorf("backdrop plan: %w", err)
	}
	w, h := b.Map().PixelSize()
	img := ebiten.NewImage(w, h)
	grass := tileImage(grassColor, grassStripe)
	wall := tileImage(wallColor, wallMortar)
	defer grass.Deallocate()
	defer wall.Deallocate()

	const ts = float32(game.TileSize)
	// Ground pass: grass under everything, spawn pads and bushes on top.
	for _, td := range plan {
		x, y := float32(td.Col)*ts, float32(td.Row)*ts
		drawTile(img, grass, td.Col, td.Row, td.Rotation)
		switch td.Kind {
		case game.TileGrass:
			shade(img, x, y, ts, td.Shade)
			switch td.Decoration {
			case game.DecorationBushSmall:
				vector.FillCircle(img, x+ts/2, y+ts/2, ts/5, bushColor, true)
			case game.DecorationBushLarge:
				vector.FillCircle(img, x+ts/2-4, y+ts/2, ts/4, bushColor, true)
				vector.FillCircle(img, x+ts/2+5, y+ts/2-3, ts/5, darken(bushColor, 0.85), true)
			}
		case game.TileSpawn:
			vector.FillRect(img, x+3, y+3, ts-6, ts-6, spawnColor, false)
			vector.StrokeRect(img, x+3, y+3, ts-6, ts-6, 1, darken(spawnColor, 0.7), false)
		}
	}
	alpha, shift := game.WallShadow()
	for _, td := range plan {
		if td.Kind == game.TileWall {
			vector.FillRect(img, float32(td.Col)*ts+float32(shift), float32(td.Row)*ts+float32(shift),
				ts, ts, color.RGBA{0, 0, 0, alpha}, false)
		}
	}
	for _, td := range plan {
		if td.Kind == game.TileWall {
			drawTile(img, wall, td.Col, td.Row, td.Rotation)
			shade(img, float32(td.Col)*ts, float32(td.Row)*ts, ts, td.Shade)
		}
	}
	return img, nil
}

// tileImage builds a striped tile so that the planned rotation shows.
func tileImage(base, stripe color.RGBA) *ebiten.Image {
	img := ebiten.NewImage(game.TileSize, game.TileSize)
	img.Fill(base)
	for y := float32(3); y < game.TileSize; y += 8 {
		vector.StrokeLine(img, 2, y, game.TileSize/2, y, 2, stripe, false)
	}
	return img
}

func drawTile(dst, tile *ebiten.Image, col, row, rotation int) {
	const half = game.TileSize / 2
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-half, -half)
	op.GeoM.Rotate(float64(rotation) * math.Pi / 180)
	op.GeoM.Translate(float64(col*game.TileSize+half), float64(row*game.TileSize+half))
	dst.DrawImage(tile, op)
}

func shade(dst *ebiten.Image, x, y, size float32, alpha uint8) {
	if alpha == 0 {
		return
	}
	vector.FillRect(dst, x, y, size, size, color.RGBA{0, 0, 0, alpha}, false)
}

// DrawEntity draws one entity. Walls are part of the backdrop and only show
// up here as debug boxes.
func (r *screenRenderer) DrawEntity(req game.DrawRequest) {
	switch req.Kind {
	case game.DrawTank:
		r.drawTank(req)
	case game.DrawBullet:
		r.drawBullet(req)
	}
	if req.Debug {
		vector.StrokeRect(r.screen, float32(req.Box.X), float32(req.Box.Y),
			float32(req.Box.W), float32(req.Box.H), 1, debugBoxColor, false)
	}
}

func (r *screenRenderer) drawTank(req game.DrawRequest) {
	clr := bodyColor(req)
	scale := req.Box.W / hullSprite
	drawRotated(r.screen, r.sprites.hull(req.Variant, clr), req.Center, req.Angle, scale)
	drawRotated(r.screen, r.sprites.turret(clr), req.Turret, req.TurretAngle, req.TurretScale)

	if req.Exploding {
		size := math.Max(req.Box.W, req.Box.H) * tankExplodeScale
		drawExplosion(r.screen, req.Center, size, req.ExplosionFrame())
	}
	if !req.Destroyed {
		r.drawHUD(req)
	}
	if req.Debug {
		ebitenutil.DebugPrintAt(r.screen, debugStats(req), int(req.Box.X+req.Box.W)+4, int(req.Box.Y))
	}
}

// debugStats lists health, hull angle, velocity and ammo.
func debugStats(req game.DrawRequest) string {
	return fmt.Sprintf("He: %d\nAn: %.0f\nVe: %.1f,%.1f\nAm: %d",
		req.Health, req.Angle, req.Velocity.X, req.Velocity.Y, req.Ammo)
}

func (r *screenRenderer) drawHUD(req game.DrawRequest) {
	x := float32(req.Box.X)
	y := float32(req.Box.Y+req.Box.H) + hudOffset
	vector.FillRect(r.screen, x, y, 50, hudBarHeight, healthBack, false)
	vector.FillRect(r.screen, x, y, float32(req.HealthBarLength()), hudBarHeight, healthColor, false)
	for i := 0; i < req.AmmoPips(); i++ {
		vector.FillRect(r.screen, x+float32(i*(pipSize+1)), y+hudBarHeight+2, pipSize, pipSize, pipColor, false)
	}
}

func (r *screenRenderer) drawBullet(req game.DrawRequest) {
	if req.Exploding {
		drawExplosion(r.screen, req.Center, req.Box.W, req.ExplosionFrame())
		return
	}
	drawRotated(r.screen, r.sprites.shell(), req.Center, req.Angle, 1)
}

// DrawOverlay draws full-screen text centred on the screen.
func (r *screenRenderer) DrawOverlay(o game.Overlay) {
	b := r.screen.Bounds()
	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2
	for _, pass := range []struct {
		dx, dy float64
		clr    color.Color
	}{{4, 4, overlayShadow}, {0, 0, overlayColor}} {
		op := &text.DrawOptions{}
		op.PrimaryAlign = text.AlignCenter
		op.SecondaryAlign = text.AlignCenter
		op.GeoM.Scale(overlayScale, overlayScale)
		op.GeoM.Translate(cx+pass.dx, cy+pass.dy)
		op.ColorScale.ScaleWithColor(pass.clr)
		text.Draw(r.screen, o.Text, r.face, op)
	}
}

// drawRotated draws img centred on c, scaled, and rotated by the turret-
// convention angle. Screen Y points down, so the angle is negated.
func drawRotated(dst, img *ebiten.Image, c game.Vec, angle, scale float64) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(w)/2, -float64(h)/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Rotate(-angle * math.Pi / 180)
	op.GeoM.Translate(c.X, c.Y)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

// drawExplosion draws frame f of an explosion of the given diameter.
func drawExplosion(dst *ebiten.Image, c game.Vec, size float64, f int) {
	radius, alpha := explosionShape(size, f)
	if alpha == 0 {
		return
	}
	outer, inner := explosionOuter, explosionInner
	outer.A, inner.A = alpha, alpha
	vector.FillCircle(dst, float32(c.X), float32(c.Y), radius, outer, true)
	vector.FillCircle(dst, float32(c.X), float32(c.Y), radius*0.55, inner, true)
}

// explosionShape returns the radius and alpha of frame f: the fireball grows
// over the first half of the animation and fades over the second.
func explosionShape(size float64, f int) (float32, uint8) {
	const frames = 8
	if f < 0 || f > frames {
		return 0, 0
	}
	grow := math.Min(1, float64(f+1)/(frames/2))
	radius := size / 2 * (0.35 + 0.65*grow)
	fade := 1.0
	if f > frames/2 {
		fade = float64(frames-f+1) / (frames/2 + 1)
	}
	return float32(radius), uint8(255 * fade)
}
