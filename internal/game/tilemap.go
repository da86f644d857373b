package game

import (
	"strings"
)

// TileSize is the edge length of one map tile in arena pixels.
const TileSize = 32

// TileKind identifies the contents of one map cell.
type TileKind uint8

const (
	TileGrass     TileKind = iota // Walkable ground ("e")
	TileWall                      // Blocking wall ("w")
	TileSpawn                     // Tank spawn point ("s")
	tileKindCount                 // sentinel
)

// tileSymbols maps each TileKind to its token in the map text format.
var tileSymbols = [tileKindCount]string{
	TileGrass: "e",
	TileWall:  "w",
	TileSpawn: "s",
}

func (k TileKind) String() string {
	switch k {
	case TileGrass:
		return "grass"
	case TileWall:
		return "wall"
	case TileSpawn:
		return "spawn"
	default:
		return "unknown"
	}
}

// Symbol returns the single-character token used in map files.
func (k TileKind) Symbol() string {
	if k >= tileKindCount {
		return "?"
	}
	return tileSymbols[k]
}

func tileKindFromSymbol(tok string) (TileKind, bool) {
	for k, sym := range tileSymbols {
		if sym == tok {
			return TileKind(k), true
		}
	}
	return 0, false
}

// TileMap is the static arena grid. It is never mutated after parsing.
type TileMap struct {
	Cols  int
	Rows  int
	Tiles []TileKind // row-major: index = row*Cols + col
}

// Geometry is the collision and placement data derived from a TileMap.
type Geometry struct {
	Walls  []Rect // one TileSize square per wall tile, row-major order
	Spawns []Vec  // top-left pixel of each spawn tile, row-major order
}

// ParseTileMap reads the map text format: newline-separated rows of
// space-separated tile tokens. Every row must have the same number of tiles.
func ParseTileMap(text string) (*TileMap, error) {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, &MapFormatError{Row: -1, Reason: "empty map"}
	}

	lines := strings.Split(text, "\n")
	tm := &TileMap{Rows: len(lines)}
	for row, line := range lines {
		tokens := strings.Fields(line)
		if row == 0 {
			tm.Cols = len(tokens)
			tm.Tiles = make([]TileKind, 0, tm.Cols*tm.Rows)
		}
		if len(tokens) != tm.Cols {
			return nil, &MapFormatError{Row: row, Want: tm.Cols, Got: len(tokens)}
		}
		for _, tok := range tokens {
			kind, ok := tileKindFromSymbol(tok)
			if !ok {
				return nil, &MapFormatError{Row: row, Token: tok}
			}
			tm.Tiles = append(tm.Tiles, kind)
		}
	}
	if tm.Cols == 0 {
		return nil, &MapFormatError{Row: -1, Reason: "map has no columns"}
	}
	return tm, nil
}

// inBounds returns true if (col, row) is within the tile map.
func (tm *TileMap) inBounds(col, row int) bool {
	return col >= 0 && col < tm.Cols && row >= 0 && row < tm.Rows
}

// At returns the tile at (col, row). Out-of-bounds cells read as walls.
func (tm *TileMap) At(col, row int) TileKind {
	if !tm.inBounds(col, row) {
		return TileWall
	}
	return tm.Tiles[row*tm.Cols+col]
}

// Count returns how many tiles of the given kind the map holds.
func (tm *TileMap) Count(kind TileKind) int {
	n := 0
	for _, k := range tm.Tiles {
		if k == kind {
			n++
		}
	}
	return n
}

// PixelSize returns the arena dimensions in pixels.
func (tm *TileMap) PixelSize() (w, h int) {
	return tm.Cols * TileSize, tm.Rows * TileSize
}

// Bounds returns the arena rectangle.
func (tm *TileMap) Bounds() Rect {
	w, h := tm.PixelSize()
	return Rect{W: float64(w), H: float64(h)}
}

// DeriveGeometry scans the grid row-major and emits one wall box per wall
// tile and one spawn coordinate per spawn tile, in scan order.
func (tm *TileMap) DeriveGeometry() Geometry {
	var g Geometry
	for row := 0; row < tm.Rows; row++ {
		for col := 0; col < tm.Cols; col++ {
			x, y := float64(col*TileSize), float64(row*TileSize)
			switch tm.Tiles[row*tm.Cols+col] {
			case TileWall:
				g.Walls = append(g.Walls, Rect{X: x, Y: y, W: TileSize, H: TileSize})
			case TileSpawn:
				g.Spawns = append(g.Spawns, Vec{X: x, Y: y})
			}
		}
	}
	return g
}

// String serialises the map back to its text format.
func (tm *TileMap) String() string {
	var sb strings.Builder
	for row := 0; row < tm.Rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < tm.Cols; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(tm.Tiles[row*tm.Cols+col].Symbol())
		}
	}
	return sb.String()
}
