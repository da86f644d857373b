package arcade

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/tankfield/tanks/internal/game"
)

// KeyMap binds one player's controls to keyboard keys.
type KeyMap struct {
	Up, Down, Left, Right   ebiten.Key
	Shoot                   ebiten.Key
	TurretLeft, TurretRight ebiten.Key
}

// DefaultKeyMaps returns the bindings for player one (WASD, Space, Y/X) and
// player two (arrows, Enter, Period/Minus).
func DefaultKeyMaps() []KeyMap {
	return []KeyMap{
		{
			Up: ebiten.KeyW, Down: ebiten.KeyS, Left: ebiten.KeyA, Right: ebiten.KeyD,
			Shoot:      ebiten.KeySpace,
			TurretLeft: ebiten.KeyY, TurretRight: ebiten.KeyX,
		},
		{
			Up: ebiten.KeyArrowUp, Down: ebiten.KeyArrowDown, Left: ebiten.KeyArrowLeft, Right: ebiten.KeyArrowRight,
			Shoot:      ebiten.KeyEnter,
			TurretLeft: ebiten.KeyPeriod, TurretRight: ebiten.KeyMinus,
		},
	}
}

// Read samples the map's keys through pressed.
func (k KeyMap) Read(pressed func(ebiten.Key) bool) game.Controls {
	return game.Controls{
		Up:          pressed(k.Up),
		Down:        pressed(k.Down),
		Left:        pressed(k.Left),
		Right:       pressed(k.Right),
		Shoot:       pressed(k.Shoot),
		TurretLeft:  pressed(k.TurretLeft),
		TurretRight: pressed(k.TurretRight),
	}
}

// Keyboard is an InputSource reading one KeyMap per roster slot.
type Keyboard struct {
	Maps    []KeyMap
	pressed func(ebiten.Key) bool
}

// NewKeyboard polls the live keyboard state.
func NewKeyboard(maps []KeyMap) *Keyboard {
	return &Keyboard{Maps: maps, pressed: ebiten.IsKeyPressed}
}

func (k *Keyboard) Poll(int) []game.Controls {
	out := make([]game.Controls, len(k.Maps))
	for i, m := range k.Maps {
		out[i] = m.Read(k.pressed)
	}
	return out
}
