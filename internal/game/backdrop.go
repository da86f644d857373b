package game

import (
	"math/rand"
)

// Decoration is an optional sprite layered on a grass tile.
type Decoration uint8

const (
	DecorationNone Decoration = iota
	DecorationBushSmall
	DecorationBushLarge
)

const (
	grassShadeMax   = 16  // alpha of the random darkening on grass
	wallShadeMax    = 64  // alpha of the random darkening on walls
	wallShadowAlpha = 128 // drop shadow under each wall
	wallShadowShift = 5   // px offset of the wall drop shadow
)

// WallShadow returns the alpha and pixel offset of a wall's drop shadow.
func WallShadow() (alpha uint8, shift int) {
	return wallShadowAlpha, wallShadowShift
}

// TileDraw is one precomputed backdrop cell.
type TileDraw struct {
	Col, Row   int
	Kind       TileKind
	Rotation   int   // 0, 90, 180 or 270 degrees
	Shade      uint8 // alpha of a black overlay
	Decoration Decoration
}

// Backdrop is the static arena picture, planned once per match. The
// randomness is seeded so a given map and seed always look the same.
type Backdrop struct {
	tm    *TileMap
	seed  int64
	plan  []TileDraw
	ready bool
}

// NewBackdrop creates an unprepared backdrop for tm.
func NewBackdrop(tm *TileMap, seed int64) *Backdrop {
	return &Backdrop{tm: tm, seed: seed}
}

// Prepare computes the tile plan. Calling it again is a no-op.
func (b *Backdrop) Prepare() {
	if b.ready {
		return
	}
	rng := rand.New(rand.NewSource(b.seed)) // #nosec G404 -- cosmetic only
	rotations := [4]int{0, 90, 180, 270}

	b.plan = make([]TileDraw, 0, len(b.tm.Tiles))
	for row := 0; row < b.tm.Rows; row++ {
		for col := 0; col < b.tm.Cols; col++ {
			td := TileDraw{Col: col, Row: row, Kind: b.tm.At(col, row)}
			switch td.Kind {
			case TileGrass:
				td.Rotation = rotations[rng.Intn(4)]
				td.Shade = uint8(rng.Intn(grassShadeMax + 1))
				switch n := rng.Intn(100) + 1; {
				case n <= 3:
					td.Decoration = DecorationBushSmall
				case n <= 6:
					td.Decoration = DecorationBushLarge
				}
			case TileWall:
				td.Rotation = rotations[rng.Intn(4)]
				td.Shade = uint8(rng.Intn(wallShadeMax + 1))
			}
			b.plan = append(b.plan, td)
		}
	}
	b.ready = true
}

// Plan returns the prepared tile plan in row-major order.
func (b *Backdrop) Plan() ([]TileDraw, error) {
	if !b.ready {
		return nil, ErrNotReady
	}
	return b.plan, nil
}

// Seed returns the seed the plan was generated from.
func (b *Backdrop) Seed() int64 { return b.seed }

// Map returns the tile map the backdrop depicts.
func (b *Backdrop) Map() *TileMap { return b.tm }
