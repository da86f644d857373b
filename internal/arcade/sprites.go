package arcade

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/tankfield/tanks/internal/game"
)

const (
	hullSprite   = 48 // px, hull image edge at body scale 1
	turretSprite = 64 // px, turret image edge at turret scale 1
	shellSprite  = 20
)

// Palette entry per tank colour id. Index 0 is unused; team colours stand in.
var tankColors = [game.MaxColor + 1]color.RGBA{
	{0, 0, 0, 0},
	{86, 128, 62, 255},  // green
	{170, 52, 44, 255},  // red
	{52, 92, 168, 255},  // blue
	{196, 164, 84, 255}, // sand
	{120, 120, 128, 255},
}

var (
	wreckColor  = color.RGBA{58, 54, 50, 255}
	trackColor  = color.RGBA{36, 36, 36, 255}
	barrelColor = color.RGBA{44, 44, 40, 255}
	shellColor  = color.RGBA{212, 176, 92, 255}
)

// bodyColor resolves the hull colour for a draw request.
func bodyColor(req game.DrawRequest) color.RGBA {
	if req.Destroyed && !req.Exploding {
		return wreckColor
	}
	if req.Color > 0 && req.Color <= game.MaxColor {
		return tankColors[req.Color]
	}
	switch req.Team {
	case game.TeamRed:
		return tankColors[2]
	case game.TeamBlue:
		return tankColors[3]
	}
	return tankColors[5]
}

// darken scales a colour's RGB channels by f.
func darken(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

// hullShape is the per-variant layout of a hull sprite facing down.
type hullShape struct {
	track     float32 // track width
	bodyInset float32 // vertical inset of the body between the tracks
	plates    bool    // armour plates over the tracks
	nose      bool    // front bar
}

var hullShapes = []hullShape{
	{track: 10, bodyInset: 4},
	{track: 7, bodyInset: 8},
	{track: 12, bodyInset: 2, plates: true},
	{track: 9, bodyInset: 4, nose: true},
}

func shapeFor(variant int) hullShape {
	if variant < 0 || variant >= len(hullShapes) {
		return hullShapes[0]
	}
	return hullShapes[variant]
}

type spriteKey struct {
	part    byte
	variant int
	clr     color.RGBA
}

// spriteCache builds sprites lazily and keeps them for the whole match.
type spriteCache struct {
	images map[spriteKey]*ebiten.Image
}

func newSpriteCache() *spriteCache {
	return &spriteCache{images: make(map[spriteKey]*ebiten.Image)}
}

func (c *spriteCache) get(k spriteKey, build func() *ebiten.Image) *ebiten.Image {
	if img, ok := c.images[k]; ok {
		return img
	}
	img := build()
	c.images[k] = img
	return img
}

func (c *spriteCache) hull(variant int, clr color.RGBA) *ebiten.Image {
	return c.get(spriteKey{'h', variant, clr}, func() *ebiten.Image {
		return buildHull(shapeFor(variant), clr)
	})
}

func (c *spriteCache) turret(clr color.RGBA) *ebiten.Image {
	return c.get(spriteKey{'t', 0, clr}, func() *ebiten.Image {
		return buildTurret(clr)
	})
}

func (c *spriteCache) shell() *ebiten.Image {
	return c.get(spriteKey{'s', 0, shellColor}, buildShell)
}

// Release frees every cached image.
func (c *spriteCache) Release() {
	for k, img := range c.images {
		img.Deallocate()
		delete(c.images, k)
	}
}

func buildHull(s hullShape, clr color.RGBA) *ebiten.Image {
	const n = float32(hullSprite)
	img := ebiten.NewImage(hullSprite, hullSprite)
	vector.FillRect(img, 0, 0, s.track, n, trackColor, false)
	vector.FillRect(img, n-s.track, 0, s.track, n, trackColor, false)
	for y := float32(2); y < n; y += 6 {
		vector.StrokeLine(img, 0, y, s.track, y, 1, darken(trackColor, 0.6), false)
		vector.StrokeLine(img, n-s.track, y, n, y, 1, darken(trackColor, 0.6), false)
	}
	vector.FillRect(img, s.track, s.bodyInset, n-2*s.track, n-2*s.bodyInset, clr, false)
	vector.StrokeRect(img, s.track, s.bodyInset, n-2*s.track, n-2*s.bodyInset, 1, darken(clr, 0.6), false)
	if s.plates {
		vector.FillRect(img, 0, n/4, s.track, n/2, darken(clr, 0.8), false)
		vector.FillRect(img, n-s.track, n/4, s.track, n/2, darken(clr, 0.8), false)
	}
	// Facing marker on the front (bottom) edge.
	front := darken(clr, 0.7)
	if s.nose {
		front = darken(clr, 0.5)
	}
	vector.FillRect(img, s.track+2, n-s.bodyInset-4, n-2*s.track-4, 3, front, false)
	return img
}

func buildTurret(clr color.RGBA) *ebiten.Image {
	const c = float32(turretSprite) / 2
	img := ebiten.NewImage(turretSprite, turretSprite)
	vector.FillRect(img, c-2.5, c, 5, c-2, barrelColor, false)
	vector.FillCircle(img, c, c, 12, darken(clr, 0.85), true)
	vector.StrokeCircle(img, c, c, 12, 1, darken(clr, 0.55), true)
	vector.FillCircle(img, c, c, 4, darken(clr, 0.6), true)
	return img
}

func buildShell() *ebiten.Image {
	const c = float32(shellSprite) / 2
	img := ebiten.NewImage(shellSprite, shellSprite)
	vector.FillRect(img, c-2, c-6, 4, 10, shellColor, false)
	vector.FillCircle(img, c, c+4, 2, darken(shellColor, 0.8), true)
	return img
}
