package game

import (
	"fmt"
	"strings"
)

// FormatMatchReport renders a finished match as plain text for the console
// and the clipboard.
func FormatMatchReport(mapName string, res MatchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Match Report: %s ===\n", mapName)
	fmt.Fprintf(&sb, "outcome=%s ticks=%d reason=%s\n", res.Outcome, res.Ticks, res.Description)
	if w, ok := res.Winner(); ok {
		fmt.Fprintf(&sb, "winner=%s (%s)\n", TankLabel(w.Slot), w.Name)
	}
	if len(res.Destroyed) > 0 {
		labels := make([]string, len(res.Destroyed))
		for i, slot := range res.Destroyed {
			labels[i] = TankLabel(slot)
		}
		fmt.Fprintf(&sb, "destroyed_order=%s\n", strings.Join(labels, ","))
	}
	for _, t := range res.Tanks {
		state := "standing"
		if t.Destroyed {
			state = "destroyed"
		}
		fmt.Fprintf(&sb, "  %-3s %-10s hp=%4d/%-4d shots=%-3d hits=%-3d acc=%5.1f%% dmg=%-4d %s\n",
			TankLabel(t.Slot), t.Name, t.Health, t.MaxHealth,
			t.ShotsFired, t.Hits, t.Accuracy()*100, t.DamageDealt, state)
	}
	return sb.String()
}
