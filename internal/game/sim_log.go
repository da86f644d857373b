package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event of a headless match.
type SimLogEntry struct {
	Tick     int
	Tank     string  // label e.g. "R0", "B1", or "--" for global events
	Team     string  // "red", "blue", or "--"
	Category string  // combat, tank, match, move
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] R0   combat    hit              B1 took 50
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Tank, e.Category, e.Key, e.Value)
}

// SimLog collects structured events of a headless match. It is an
// EventSink; register it with WithSink.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position and
// ammo entries added with AddVerbose are kept too.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// TankLabel is the short log label of a slot: team initial plus slot.
func TankLabel(slot int) string {
	if slot < 0 {
		return "--"
	}
	if teamForSlot(slot) == TeamRed {
		return fmt.Sprintf("R%d", slot)
	}
	return fmt.Sprintf("B%d", slot)
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, tank, team, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Tank:     tank,
		Team:     team,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, tank, team, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, tank, team, category, key, value, numVal)
}

// Handle implements EventSink.
func (sl *SimLog) Handle(ev Event) {
	switch ev.Kind {
	case EventShot:
		sl.Add(ev.Tick, TankLabel(ev.Shooter), ev.Team.String(), "combat", "shot",
			fmt.Sprintf("fired from (%.0f,%.0f)", ev.Pos.X, ev.Pos.Y), 0)
	case EventBulletExploded:
		sl.Add(ev.Tick, TankLabel(ev.Shooter), ev.Team.String(), "combat", "bullet_exploded",
			fmt.Sprintf("at (%.0f,%.0f)", ev.Pos.X, ev.Pos.Y), 0)
	case EventTankHit:
		sl.Add(ev.Tick, TankLabel(ev.Shooter), teamForSlot(ev.Shooter).String(), "combat", "hit",
			fmt.Sprintf("%s took %d", TankLabel(ev.Slot), ev.Amount), float64(ev.Amount))
	case EventTankDestroyed:
		sl.Add(ev.Tick, TankLabel(ev.Slot), ev.Team.String(), "tank", "destroyed",
			fmt.Sprintf("at (%.0f,%.0f)", ev.Pos.X, ev.Pos.Y), 0)
	case EventMatchOver:
		sl.Add(ev.Tick, "--", "--", "match", "over", "end sequence finished", 0)
	}
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterTank returns entries for a specific tank label.
func (sl *SimLog) FilterTank(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tank == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the tanks at tick.
func (sl *SimLog) Summary(tick int, tanks []*Tank) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)
	for _, t := range tanks {
		c := t.box.Center()
		fmt.Fprintf(&sb, "%-3s %-8s hp=%d/%d ammo=%d/%d at (%.0f,%.0f) %s\n",
			TankLabel(t.slot), t.stats.Name, t.health, t.stats.Health,
			t.ammo, t.stats.MaxShells, c.X, c.Y, t.Lifecycle())
	}
	fmt.Fprintf(&sb, "Shots: %d  Hits: %d  Destroyed: %d\n",
		sl.CountCategory("combat", "shot"),
		sl.CountCategory("combat", "hit"),
		sl.CountCategory("tank", "destroyed"))
	return sb.String()
}
