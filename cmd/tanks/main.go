package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/tankfield/tanks/internal/arcade"
	"github.com/tankfield/tanks/internal/assets"
	"github.com/tankfield/tanks/internal/config"
	"github.com/tankfield/tanks/internal/game"
	"github.com/tankfield/tanks/internal/logging"
	"github.com/tankfield/tanks/internal/store"
)

const soundVolume = 0.6

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		zlog.Fatal().Err(err).Msg("tanks")
	}
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("tanks", pflag.ContinueOnError)
	configDir := fs.String("config-dir", ".", "directory holding "+config.FileName)
	history := fs.Int("history", 0, "print the last N recorded matches and exit")
	list := fs.Bool("list", false, "list available maps and tank types and exit")
	if err := config.RegisterFlags(fs); err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := config.Load(*configDir); err != nil {
		return err
	}
	settings, err := config.Current()
	if err != nil {
		return err
	}

	log := logging.New(os.Stderr, settings.LogLevel, true)

	lib, err := assets.Load(settings.MapsDir, settings.TypesDir)
	if err != nil {
		return err
	}
	if *list {
		fmt.Fprintf(stdout, "maps:  %s\n", strings.Join(lib.MapNames(), ", "))
		fmt.Fprintf(stdout, "tanks: %s\n", strings.Join(lib.TankNames(), ", "))
		return nil
	}

	st, err := store.Open(settings.DB.Path, logging.Component(log, "store"))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	if *history > 0 {
		return printHistory(stdout, st, *history)
	}

	return play(settings, lib, st, log)
}

func play(settings config.Settings, lib *assets.Library, st *store.Store, log zerolog.Logger) error {
	tm, err := lib.Map(settings.Map)
	if err != nil {
		return err
	}
	roster, err := lib.Roster(settings.Tanks)
	if err != nil {
		return err
	}

	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	colors := pickColors(rand.New(rand.NewSource(seed)), settings.Colors, len(roster)) // #nosec G404 -- cosmetic
	for i := range roster {
		roster[i] = roster[i].WithColor(colors[i])
	}

	sounds := arcade.NewSounds(audio.NewContext(44100), soundVolume, settings.Mute, logging.Component(log, "audio"))
	sim, err := game.NewSimulation(tm, roster, settings.Game(),
		game.WithLogger(logging.Component(log, "sim")),
		game.WithSink(sounds),
		game.WithBackdropSeed(seed))
	if err != nil {
		return err
	}

	g := arcade.New(sim, arcade.Options{
		MapName: settings.Map,
		Title:   fmt.Sprintf("Tanks - %s vs %s", roster[0].Name, roster[1].Name),
		Width:   settings.Window.Width,
		Height:  settings.Window.Height,
		Sounds:  sounds,
		Logger:  logging.Component(log, "arcade"),
		OnFinish: func(res game.MatchResult) {
			id, err := st.RecordMatch(settings.Map, res, time.Now())
			if err != nil {
				log.Error().Err(err).Msg("record match")
				return
			}
			log.Info().Str("match", id).Str("outcome", res.Outcome.String()).Msg("match recorded")
		},
	})
	return g.Run()
}

// pickColors returns one colour per slot. Zero entries are drawn at random
// from the colours no other slot uses yet.
func pickColors(rng *rand.Rand, configured []int, slots int) []int {
	out := make([]int, slots)
	used := make(map[int]bool)
	for i := range out {
		if i < len(configured) && configured[i] > 0 {
			out[i] = configured[i]
			used[out[i]] = true
		}
	}
	for i := range out {
		if out[i] != 0 {
			continue
		}
		free := make([]int, 0, game.MaxColor)
		for c := 1; c <= game.MaxColor; c++ {
			if !used[c] {
				free = append(free, c)
			}
		}
		if len(free) == 0 {
			out[i] = rng.Intn(game.MaxColor) + 1
			continue
		}
		out[i] = free[rng.Intn(len(free))]
		used[out[i]] = true
	}
	return out
}

func printHistory(w io.Writer, st *store.Store, n int) error {
	matches, err := st.Recent(n)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "=== Last %d matches ===\n", len(matches))
	for _, m := range matches {
		names := make([]string, 0, len(m.Tanks))
		for _, t := range m.Tanks {
			names = append(names, fmt.Sprintf("%s:%s", game.TankLabel(t.Slot), t.Archetype))
		}
		fmt.Fprintf(w, "%s  %-10s %-14s %5d ticks  %s\n",
			m.PlayedAt.Format(time.DateTime), m.MapName, m.Outcome, m.Ticks, strings.Join(names, " vs "))
	}

	stats, err := st.WinsByArchetype()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\n=== Wins by archetype ===")
	for _, a := range stats {
		acc := 0.0
		if a.Shots > 0 {
			acc = float64(a.Hits) / float64(a.Shots) * 100
		}
		fmt.Fprintf(w, "  %-10s played=%-4d wins=%-4d rate=%5.1f%% accuracy=%5.1f%%\n",
			a.Archetype, a.Played, a.Wins, a.WinRate()*100, acc)
	}
	return nil
}
