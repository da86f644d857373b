package arcade

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankfield/tanks/internal/game"
)

func pressedSet(keys ...ebiten.Key) func(ebiten.Key) bool {
	set := make(map[ebiten.Key]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return func(k ebiten.Key) bool { return set[k] }
}

func TestKeyMap_Read(t *testing.T) {
	maps := DefaultKeyMaps()
	require.Len(t, maps, 2)

	p1 := maps[0].Read(pressedSet(ebiten.KeyW, ebiten.KeyD, ebiten.KeySpace, ebiten.KeyArrowUp))
	assert.Equal(t, game.Controls{Up: true, Right: true, Shoot: true}, p1)

	p2 := maps[1].Read(pressedSet(ebiten.KeyArrowLeft, ebiten.KeyEnter, ebiten.KeyPeriod))
	assert.Equal(t, game.Controls{Left: true, Shoot: true, TurretLeft: true}, p2)
}

func TestKeyboard_PollOnePerMap(t *testing.T) {
	kb := NewKeyboard(DefaultKeyMaps())
	kb.pressed = pressedSet(ebiten.KeyS, ebiten.KeyArrowDown, ebiten.KeyMinus)

	got := kb.Poll(0)
	require.Len(t, got, 2)
	assert.True(t, got[0].Down)
	assert.False(t, got[0].TurretRight)
	assert.True(t, got[1].Down)
	assert.True(t, got[1].TurretRight)
}

func TestSynthesize(t *testing.T) {
	for kind, tn := range effects {
		samples := synthesize(tn, 7)
		require.Len(t, samples, int(tn.seconds*sampleRate), kind.String())
		for _, s := range samples {
			require.LessOrEqual(t, math.Abs(s), 1.0)
		}
		head, tail := energy(samples[:len(samples)/4]), energy(samples[3*len(samples)/4:])
		assert.Greater(t, head, tail, "%s should decay", kind)
	}
	assert.Equal(t, synthesize(effects[game.EventShot], 3), synthesize(effects[game.EventShot], 3))
}

func energy(s []float64) float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return sum / float64(len(s))
}

func TestEncodeStereo16(t *testing.T) {
	buf := encodeStereo16([]float64{0, 1, -1})
	require.Len(t, buf, 12)
	assert.Equal(t, buf[4:6], buf[6:8], "left and right carry the same sample")
	assert.Equal(t, []byte{0xff, 0x7f}, buf[4:6])
	assert.Equal(t, []byte{0x01, 0x80}, buf[8:10])
}

func TestSounds_SilentWithoutContext(t *testing.T) {
	s := NewSounds(nil, 0.5, false, zerolog.Nop())
	s.Handle(game.Event{Kind: game.EventShot})
	s.SetMuted(true)
	assert.True(t, s.Muted())
	assert.NoError(t, s.Close())
}

func TestExplosionShape(t *testing.T) {
	r0, a0 := explosionShape(100, 0)
	r3, a3 := explosionShape(100, 3)
	r8, a8 := explosionShape(100, 8)
	assert.Less(t, r0, r3)
	assert.LessOrEqual(t, r8, float32(50))
	assert.Equal(t, uint8(255), a0)
	assert.Equal(t, a0, a3)
	assert.Less(t, a8, a3)

	_, gone := explosionShape(100, 9)
	assert.Zero(t, gone)
}

func TestBodyColor(t *testing.T) {
	assert.Equal(t, tankColors[4], bodyColor(game.DrawRequest{Color: 4, Team: game.TeamRed}))
	assert.Equal(t, tankColors[3], bodyColor(game.DrawRequest{Team: game.TeamBlue}))
	assert.Equal(t, wreckColor, bodyColor(game.DrawRequest{Color: 1, Destroyed: true}))
	assert.Equal(t, tankColors[1], bodyColor(game.DrawRequest{Color: 1, Destroyed: true, Exploding: true}),
		"the hull keeps its colour while the explosion plays")
}

func TestShapeFor_FallsBack(t *testing.T) {
	assert.Equal(t, hullShapes[0], shapeFor(-1))
	assert.Equal(t, hullShapes[0], shapeFor(len(hullShapes)))
	assert.Equal(t, hullShapes[2], shapeFor(2))
}

func TestGame_FinishOnce(t *testing.T) {
	ts, err := game.NewTestSim(
		game.WithSpawn(1, 1), game.WithSpawn(15, 1),
		game.WithTank(game.DefaultTestStats()), game.WithTank(game.DefaultTestStats()),
	)
	require.NoError(t, err)

	calls := 0
	g := New(ts.Sim, Options{MapName: "arena", OnFinish: func(game.MatchResult) { calls++ }})
	w, h := g.Layout(1920, 1080)
	assert.Equal(t, 20*game.TileSize, w)
	assert.Equal(t, 10*game.TileSize, h)
	assert.Contains(t, g.Report(), "arena")

	ts.Sim.Quit()
	g.finish()
	g.finish()
	assert.Equal(t, 1, calls)
}

func TestDebugStats_ShowsHullAngle(t *testing.T) {
	got := debugStats(game.DrawRequest{
		Health: 75, Angle: -135, TurretAngle: 42,
		Velocity: game.Vec{X: 1.5, Y: -2}, Ammo: 2,
	})
	assert.Equal(t, "He: 75\nAn: -135\nVe: 1.5,-2.0\nAm: 2", got)
}
