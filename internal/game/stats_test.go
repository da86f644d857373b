package game

import (
	"errors"
	"testing"
)

const speedyJSON = `{
	"health": 80, "max_speed": 6, "acceleration": 0.6, "turret_speed": 3,
	"cooldown": 300, "bullet_speed": 10, "bullet_damage": 20, "image_type": 1,
	"body_scale": 0.8, "turret_offset": [0, -4], "turret_scale": 0.8,
	"drift": 0.9, "reload_speed": 40, "max_shells": 4, "name": "speedy"
}`

func TestParseTankStats(t *testing.T) {
	s, err := ParseTankStats([]byte(speedyJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Name != "speedy" || s.MaxShells != 4 || s.TurretOffset != [2]float64{0, -4} {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.Color != 0 {
		t.Fatalf("color should default to 0, got %d", s.Color)
	}
	if got := s.HullSize(); got != 48*0.8 {
		t.Fatalf("hull size = %.2f, want %.2f", got, 48*0.8)
	}
}

func TestParseTankStats_UnknownField(t *testing.T) {
	_, err := ParseTankStats([]byte(`{"name":"x","helth":10}`))
	if !errors.Is(err, ErrInvalidStats) {
		t.Fatalf("expected ErrInvalidStats, got %v", err)
	}
}

func TestTankStats_Validate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*TankStats)
	}{
		{"no name", func(s *TankStats) { s.Name = "" }},
		{"zero health", func(s *TankStats) { s.Health = 0 }},
		{"zero speed", func(s *TankStats) { s.MaxSpeed = 0 }},
		{"drift of one", func(s *TankStats) { s.Drift = 1 }},
		{"no shells", func(s *TankStats) { s.MaxShells = 0 }},
		{"zero reload", func(s *TankStats) { s.ReloadSpeed = 0 }},
		{"color too high", func(s *TankStats) { s.Color = MaxColor + 1 }},
	}
	for _, tc := range cases {
		s := DefaultTestStats()
		tc.mut(&s)
		if err := s.Validate(); !errors.Is(err, ErrInvalidStats) {
			t.Fatalf("%s: expected ErrInvalidStats, got %v", tc.name, err)
		}
	}
	if err := DefaultTestStats().Validate(); err != nil {
		t.Fatalf("default test stats should validate: %v", err)
	}
}

func TestTankStats_WithColorCopies(t *testing.T) {
	base := DefaultTestStats()
	colored := base.WithColor(3)
	if colored.Color != 3 {
		t.Fatalf("expected color 3, got %d", colored.Color)
	}
	if base.Color != 0 {
		t.Fatal("WithColor must not mutate the receiver")
	}
}
