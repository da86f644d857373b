// Package arcade runs a Simulation in an ebiten window: keyboard input,
// sprite rendering, synthesized sound and the window lifecycle.
package arcade

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/tankfield/tanks/internal/game"
)

// Options configures the window front end.
type Options struct {
	MapName  string
	Title    string
	Width    int // initial window size; the arena is scaled to fit
	Height   int
	Keys     []KeyMap
	Sounds   *Sounds
	Logger   zerolog.Logger
	OnFinish func(game.MatchResult)
}

// Game implements ebiten.Game around one match.
type Game struct {
	sim      *game.Simulation
	input    game.InputSource
	renderer *screenRenderer
	sounds   *Sounds
	log      zerolog.Logger
	opts     Options
	finished bool
}

// New wraps sim. Keys default to DefaultKeyMaps.
func New(sim *game.Simulation, opts Options) *Game {
	if len(opts.Keys) == 0 {
		opts.Keys = DefaultKeyMaps()
	}
	if opts.Title == "" {
		opts.Title = "Tanks"
	}
	return &Game{
		sim:      sim,
		input:    NewKeyboard(opts.Keys),
		renderer: newScreenRenderer(opts.Logger),
		sounds:   opts.Sounds,
		log:      opts.Logger,
		opts:     opts,
	}
}

// Run opens the window and blocks until the match is over or the window is
// closed.
func (g *Game) Run() error {
	w, h := g.opts.Width, g.opts.Height
	if w <= 0 || h <= 0 {
		w, h = g.sim.Map().PixelSize()
	}
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(g.sim.Config().TickRate)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	// Termination is swallowed by RunGame; a closed window still needs the
	// result recorded.
	g.finish()
	return nil
}

func (g *Game) Update() error {
	if g.sim.Done() {
		g.finish()
		return ebiten.Termination
	}
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.log.Info().Int("tick", g.sim.Tick()).Msg("quit requested")
		g.sim.Quit()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.copyReport()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) && g.sounds != nil {
		g.sounds.SetMuted(!g.sounds.Muted())
	}
	g.sim.Step(g.input.Poll(g.sim.Tick()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.begin(screen)
	g.sim.Draw(g.renderer)
	if g.sim.Config().Debug {
		ebitenutil.DebugPrintAt(screen,
			fmt.Sprintf("FPS: %0.1f  TPS: %0.1f", ebiten.ActualFPS(), ebiten.ActualTPS()), 4, 4)
	}
}

// Layout keeps the logical screen at the arena's pixel size; ebiten scales
// it into the window.
func (g *Game) Layout(int, int) (int, int) {
	return g.sim.Map().PixelSize()
}

// Report returns the match report for the current state.
func (g *Game) Report() string {
	return game.FormatMatchReport(g.opts.MapName, g.sim.Result())
}

func (g *Game) copyReport() {
	if err := clipboard.WriteAll(g.Report()); err != nil {
		g.log.Warn().Err(err).Msg("copy report to clipboard")
		return
	}
	g.log.Info().Msg("match report copied to clipboard")
}

// finish runs once: hands the result to OnFinish and releases resources.
func (g *Game) finish() {
	if g.finished {
		return
	}
	g.finished = true
	res := g.sim.Result()
	g.log.Info().
		Str("outcome", res.Outcome.String()).
		Int("ticks", res.Ticks).
		Bool("quit", g.sim.Quitting()).
		Msg("match finished")
	if g.opts.OnFinish != nil {
		g.opts.OnFinish(res)
	}
	if g.sounds != nil {
		if err := g.sounds.Close(); err != nil {
			g.log.Warn().Err(err).Msg("close audio players")
		}
	}
	g.renderer.release()
}
