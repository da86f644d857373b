package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/tankfield/tanks/internal/assets"
	"github.com/tankfield/tanks/internal/game"
	"github.com/tankfield/tanks/internal/logging"
	"github.com/tankfield/tanks/internal/store"
)

// scenarios maps a scenario name to the scripts driving slot 0 and slot 1.
var scenarios = map[string][2]func() game.Script{
	"hunter":   {hunter(1), hunter(0)},
	"wanderer": {wanderer, wanderer},
	"mixed":    {hunter(1), wanderer},
	"target":   {hunter(1), idle},
}

func hunter(target int) func() game.Script {
	return func() game.Script { return game.Hunter(target, 12) }
}

func wanderer() game.Script { return game.Wanderer(40) }

func idle() game.Script { return game.Hold(game.Controls{}) }

type options struct {
	runs     int
	ticks    int
	seedBase int64
	seedStep int64
	scenario string
	mapName  string
	tanks    []string
	copy     bool
	db       string
	verbose  bool
	logLevel string
}

type runStats struct {
	runIndex int
	seed     int64
	result   game.MatchResult

	firstShotTick int
	firstHitTick  int
	firstKillTick int

	shots      int
	hits       int
	explosions int
	damage     map[string]int // by shooter label
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		zlog.Fatal().Err(err).Msg("headless report")
	}
}

func run(args []string, stdout io.Writer) error {
	var o options
	fs := pflag.NewFlagSet("headless-report", pflag.ContinueOnError)
	fs.IntVar(&o.runs, "runs", 5, "number of headless duels")
	fs.IntVar(&o.ticks, "ticks", 3600, "tick cap per duel")
	fs.Int64Var(&o.seedBase, "seed-base", 42, "base RNG seed for run 1")
	fs.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	fs.StringVar(&o.scenario, "scenario", "hunter", "scenario: "+strings.Join(scenarioNames(), ", "))
	fs.StringVar(&o.mapName, "map", "fortress", "arena map name")
	fs.StringSliceVar(&o.tanks, "tanks", []string{"standard", "standard"}, "tank archetypes for slot 0 and 1")
	fs.BoolVar(&o.copy, "copy", false, "copy the report to the clipboard")
	fs.StringVar(&o.db, "db", "", "record every duel into this match history database")
	fs.BoolVar(&o.verbose, "verbose", false, "append the event log around the first kill of each run")
	fs.StringVar(&o.logLevel, "log-level", "warn", "trace, debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := o.validate(); err != nil {
		return err
	}

	log := logging.New(os.Stderr, o.logLevel, true)
	lib, err := assets.Load("", "")
	if err != nil {
		return err
	}
	tm, err := lib.Map(o.mapName)
	if err != nil {
		return err
	}
	roster, err := lib.Roster(o.tanks)
	if err != nil {
		return err
	}

	var st *store.Store
	if o.db != "" {
		if st, err = store.Open(o.db, logging.Component(log, "store")); err != nil {
			return err
		}
		defer st.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Headless Duel Report ===\n")
	fmt.Fprintf(&sb, "scenario=%s map=%s tanks=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		o.scenario, o.mapName, strings.Join(o.tanks, ","), o.runs, o.ticks, o.seedBase, o.seedStep)

	all := make([]runStats, 0, o.runs)
	for i := 0; i < o.runs; i++ {
		seed := o.seedBase + int64(i)*o.seedStep
		rs, ts, err := runDuel(ctx, i+1, seed, tm.String(), roster, o)
		if err != nil {
			return err
		}
		all = append(all, rs)
		printRun(&sb, rs)
		if o.verbose {
			sb.WriteString(verboseLog(ts.SimLog, rs.firstKillTick))
			sb.WriteString("\n")
		}
		if st != nil {
			if _, err := st.RecordMatch(o.mapName, rs.result, time.Now()); err != nil {
				return err
			}
		}
	}
	printAggregate(&sb, all)

	report := sb.String()
	fmt.Fprint(stdout, report)
	if o.copy {
		if err := clipboard.WriteAll(report); err != nil {
			log.Warn().Err(err).Msg("copy report to clipboard")
		} else {
			log.Info().Msg("report copied to clipboard")
		}
	}
	return nil
}

func (o options) validate() error {
	if o.runs <= 0 {
		return errors.New("--runs must be > 0")
	}
	if o.ticks <= 0 {
		return errors.New("--ticks must be > 0")
	}
	if _, ok := scenarios[o.scenario]; !ok {
		return fmt.Errorf("unsupported scenario %q (supported: %s)", o.scenario, strings.Join(scenarioNames(), ", "))
	}
	if len(o.tanks) != 2 {
		return fmt.Errorf("--tanks needs exactly two archetypes, got %d", len(o.tanks))
	}
	return nil
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func runDuel(ctx context.Context, runIndex int, seed int64, mapText string, roster []game.TankStats, o options) (runStats, *game.TestSim, error) {
	scripts := scenarios[o.scenario]
	opts := []game.SimOption{
		game.WithMapText(mapText),
		game.WithSeed(seed),
		game.WithVerbose(o.verbose),
	}
	for slot, stats := range roster {
		opts = append(opts, game.WithTank(stats), game.WithScript(slot, scripts[slot]()))
	}
	ts, err := game.NewTestSim(opts...)
	if err != nil {
		return runStats{}, nil, fmt.Errorf("run %d: %w", runIndex, err)
	}
	res, err := ts.RunUntilDone(ctx, o.ticks)
	if err != nil {
		return runStats{}, nil, fmt.Errorf("run %d: %w", runIndex, err)
	}
	return collectStats(runIndex, seed, res, ts.SimLog.Entries()), ts, nil
}

// killWindow is how many ticks either side of the first kill --verbose prints.
const killWindow = 60

// verboseLog returns the log entries around the first kill, or the whole log
// when nobody was destroyed.
func verboseLog(sl *game.SimLog, firstKill int) string {
	if firstKill < 0 {
		return sl.Format()
	}
	return sl.FormatRange(firstKill-killWindow, firstKill+killWindow)
}

func collectStats(runIndex int, seed int64, res game.MatchResult, entries []game.SimLogEntry) runStats {
	rs := runStats{
		runIndex:      runIndex,
		seed:          seed,
		result:        res,
		firstShotTick: firstTick(entries, "combat", "shot"),
		firstHitTick:  firstTick(entries, "combat", "hit"),
		firstKillTick: firstTick(entries, "tank", "destroyed"),
		damage:        map[string]int{},
	}
	for _, e := range entries {
		switch {
		case e.Category == "combat" && e.Key == "shot":
			rs.shots++
		case e.Category == "combat" && e.Key == "hit":
			rs.hits++
			rs.damage[e.Tank] += int(e.NumVal)
		case e.Category == "combat" && e.Key == "bullet_exploded":
			rs.explosions++
		}
	}
	return rs
}

func firstTick(entries []game.SimLogEntry, category, key string) int {
	for _, e := range entries {
		if e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}

// detectStalemate flags duels that ran to the tick cap without anyone
// landing meaningful damage.
func detectStalemate(rs runStats) (bool, string) {
	res := rs.result
	if res.Outcome != game.OutcomeInconclusive {
		return false, "decided:" + res.Outcome.String()
	}
	total := 0
	for _, d := range rs.damage {
		total += d
	}
	var reasons []string
	if rs.hits == 0 {
		reasons = append(reasons, "no_hits")
	}
	if rs.shots > 0 && float64(rs.hits)/float64(rs.shots) < 0.1 {
		reasons = append(reasons, "low_accuracy")
	}
	if total == 0 {
		reasons = append(reasons, "no_damage")
	}
	if len(reasons) == 0 {
		return false, "inconclusive_with_damage"
	}
	return true, strings.Join(reasons, ",")
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(w, "outcome: %s\n", rs.result)
	fmt.Fprintf(w, "phase_markers: first_shot=%d first_hit=%d first_kill=%d\n",
		rs.firstShotTick, rs.firstHitTick, rs.firstKillTick)
	fmt.Fprintf(w, "event_totals: shots=%d hits=%d explosions=%d\n", rs.shots, rs.hits, rs.explosions)
	for _, t := range rs.result.Tanks {
		fmt.Fprintf(w, "  %-3s %-10s hp=%d/%d acc=%.0f%% dmg=%d destroyed=%v\n",
			game.TankLabel(t.Slot), t.Name, t.Health, t.MaxHealth, t.Accuracy()*100, t.DamageDealt, t.Destroyed)
	}
	if stale, reason := detectStalemate(rs); stale {
		fmt.Fprintf(w, "stalemate: %s\n", reason)
	}
	fmt.Fprintln(w)
}

func printAggregate(w io.Writer, all []runStats) {
	counts := map[game.MatchOutcome]int{}
	stalemates := 0
	totalTicks := 0
	firstHits := make([]int, 0, len(all))
	firstKills := make([]int, 0, len(all))

	type slotAgg struct {
		name        string
		shots, hits int
		damage      int
		survived    int
	}
	slots := map[int]*slotAgg{}

	for _, rs := range all {
		counts[rs.result.Outcome]++
		totalTicks += rs.result.Ticks
		if stale, _ := detectStalemate(rs); stale {
			stalemates++
		}
		if rs.firstHitTick >= 0 {
			firstHits = append(firstHits, rs.firstHitTick)
		}
		if rs.firstKillTick >= 0 {
			firstKills = append(firstKills, rs.firstKillTick)
		}
		for _, t := range rs.result.Tanks {
			ag, ok := slots[t.Slot]
			if !ok {
				ag = &slotAgg{name: t.Name}
				slots[t.Slot] = ag
			}
			ag.shots += t.ShotsFired
			ag.hits += t.Hits
			ag.damage += t.DamageDealt
			if !t.Destroyed {
				ag.survived++
			}
		}
	}

	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d avg_ticks=%.1f stalemates=%d\n", len(all), avg(totalTicks, len(all)), stalemates)
	fmt.Fprintf(w, "outcomes: red=%d blue=%d draw=%d inconclusive=%d\n",
		counts[game.OutcomeRedVictory], counts[game.OutcomeBlueVictory],
		counts[game.OutcomeDraw], counts[game.OutcomeInconclusive])
	fmt.Fprintf(w, "phase_marker_avg_ticks: first_hit=%s first_kill=%s\n",
		avgTickString(firstHits), avgTickString(firstKills))

	keys := make([]int, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		ag := slots[k]
		acc := 0.0
		if ag.shots > 0 {
			acc = float64(ag.hits) / float64(ag.shots) * 100
		}
		fmt.Fprintf(w, "  %-3s %-10s accuracy=%.1f%% avg_damage=%.1f survival=%.0f%%\n",
			game.TankLabel(k), ag.name, acc, avg(ag.damage, len(all)),
			avg(ag.survived*100, len(all)))
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
