package game

import "fmt"

type MatchOutcome int

const (
	OutcomeInconclusive MatchOutcome = iota
	OutcomeRedVictory
	OutcomeBlueVictory
	OutcomeDraw
)

func (o MatchOutcome) String() string {
	switch o {
	case OutcomeRedVictory:
		return "red_victory"
	case OutcomeBlueVictory:
		return "blue_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// TankTally accumulates what one tank did during a match.
type TankTally struct {
	ShotsFired  int
	Hits        int
	DamageDealt int
}

// Accuracy returns hits per shot, 0 when nothing was fired.
func (t TankTally) Accuracy() float64 {
	if t.ShotsFired == 0 {
		return 0
	}
	return float64(t.Hits) / float64(t.ShotsFired)
}

type TankResult struct {
	Slot      int
	Team      Team
	Name      string
	Health    int
	MaxHealth int
	Destroyed bool
	TankTally
}

type MatchResult struct {
	Outcome     MatchOutcome
	Ticks       int
	Tanks       []TankResult
	Description string
	Destroyed   []int // slots in the order their tanks were destroyed
}

// Winner returns the result of the first surviving tank on the winning
// team, or false for a draw or an unfinished match.
func (r MatchResult) Winner() (TankResult, bool) {
	var team Team
	switch r.Outcome {
	case OutcomeRedVictory:
		team = TeamRed
	case OutcomeBlueVictory:
		team = TeamBlue
	default:
		return TankResult{}, false
	}
	for _, t := range r.Tanks {
		if t.Team == team && !t.Destroyed {
			return t, true
		}
	}
	return TankResult{}, false
}

func (r MatchResult) String() string {
	return fmt.Sprintf("%s after %d ticks (%s)", r.Outcome, r.Ticks, r.Description)
}

// DetermineMatchOutcome classifies a match from the final tank states.
// Elimination decides it outright; a match cut short is only called when
// one side holds a clear health advantage.
func DetermineMatchOutcome(tanks []TankResult) (MatchOutcome, string) {
	var redTotal, blueTotal, redAlive, blueAlive int
	var redHealth, blueHealth float64
	for _, t := range tanks {
		frac := 0.0
		if !t.Destroyed && t.MaxHealth > 0 {
			frac = float64(t.Health) / float64(t.MaxHealth)
		}
		switch t.Team {
		case TeamRed:
			redTotal++
			redHealth += frac
			if !t.Destroyed {
				redAlive++
			}
		case TeamBlue:
			blueTotal++
			blueHealth += frac
			if !t.Destroyed {
				blueAlive++
			}
		}
	}

	switch {
	case redTotal == 0 || blueTotal == 0:
		return OutcomeInconclusive, "inconclusive_single_team"
	case redAlive == 0 && blueAlive == 0:
		return OutcomeDraw, "mutual_destruction"
	case redAlive == 0:
		return OutcomeBlueVictory, "decisive_blue_victory_red_destroyed"
	case blueAlive == 0:
		return OutcomeRedVictory, "decisive_red_victory_blue_destroyed"
	}

	diff := redHealth/float64(redTotal) - blueHealth/float64(blueTotal)
	switch {
	case diff > 0.30:
		return OutcomeRedVictory, "marginal_red_victory_health_advantage"
	case diff < -0.30:
		return OutcomeBlueVictory, "marginal_blue_victory_health_advantage"
	}
	return OutcomeInconclusive, "inconclusive_both_standing"
}

// Outcome classifies the match as it stands now.
func (s *Simulation) Outcome() MatchOutcome {
	o, _ := DetermineMatchOutcome(s.tankResults())
	return o
}

// Result summarises the match as it stands now.
func (s *Simulation) Result() MatchResult {
	tanks := s.tankResults()
	o, desc := DetermineMatchOutcome(tanks)
	return MatchResult{
		Outcome:     o,
		Ticks:       s.tick,
		Tanks:       tanks,
		Description: desc,
		Destroyed:   append([]int(nil), s.destroyed...),
	}
}

func (s *Simulation) tankResults() []TankResult {
	out := make([]TankResult, 0, len(s.tanks))
	for _, t := range s.tanks {
		out = append(out, TankResult{
			Slot:      t.slot,
			Team:      t.team,
			Name:      t.stats.Name,
			Health:    t.health,
			MaxHealth: t.stats.Health,
			Destroyed: t.destroyed,
			TankTally: s.tally[t.slot],
		})
	}
	return out
}
