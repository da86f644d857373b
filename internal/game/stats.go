package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TankStats is the immutable record describing one tank archetype.
// The JSON field names are the on-disk stat file format.
type TankStats struct {
	Health       int        `json:"health"`
	MaxSpeed     float64    `json:"max_speed"`
	Acceleration float64    `json:"acceleration"`
	TurretSpeed  float64    `json:"turret_speed"` // degrees per tick
	Cooldown     int        `json:"cooldown"`     // milliseconds between shots
	BulletSpeed  float64    `json:"bullet_speed"`
	BulletDamage int        `json:"bullet_damage"`
	ImageType    int        `json:"image_type"`
	BodyScale    float64    `json:"body_scale"`
	TurretOffset [2]float64 `json:"turret_offset"`
	TurretScale  float64    `json:"turret_scale"`
	Drift        float64    `json:"drift"`
	ReloadSpeed  int        `json:"reload_speed"` // ticks per restored shell
	MaxShells    int        `json:"max_shells"`
	Name         string     `json:"name"`
	Color        int        `json:"color,omitempty"`
}

// MaxColor is the highest tank colour id.
const MaxColor = 5

// ParseTankStats decodes and validates one stat record.
// Unknown fields are rejected so typos in stat files fail at load time.
func ParseTankStats(data []byte) (TankStats, error) {
	var s TankStats
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return TankStats{}, fmt.Errorf("%w: %v", ErrInvalidStats, err)
	}
	if err := s.Validate(); err != nil {
		return TankStats{}, err
	}
	return s, nil
}

// Validate checks that every gameplay-relevant field is usable.
func (s TankStats) Validate() error {
	var problem string
	switch {
	case s.Name == "":
		problem = "name is required"
	case s.Health <= 0:
		problem = "health must be positive"
	case s.MaxSpeed <= 0:
		problem = "max_speed must be positive"
	case s.Acceleration <= 0:
		problem = "acceleration must be positive"
	case s.TurretSpeed < 0:
		problem = "turret_speed must not be negative"
	case s.Cooldown < 0:
		problem = "cooldown must not be negative"
	case s.BulletSpeed <= 0:
		problem = "bullet_speed must be positive"
	case s.BulletDamage < 0:
		problem = "bullet_damage must not be negative"
	case s.BodyScale <= 0:
		problem = "body_scale must be positive"
	case s.Drift < 0 || s.Drift >= 1:
		problem = "drift must be in [0, 1)"
	case s.ReloadSpeed <= 0:
		problem = "reload_speed must be positive"
	case s.MaxShells <= 0:
		problem = "max_shells must be positive"
	case s.Color < 0 || s.Color > MaxColor:
		problem = fmt.Sprintf("color must be in [0, %d]", MaxColor)
	default:
		return nil
	}
	if s.Name != "" {
		return fmt.Errorf("%w: %s: %s", ErrInvalidStats, s.Name, problem)
	}
	return fmt.Errorf("%w: %s", ErrInvalidStats, problem)
}

// WithColor returns a copy of the record carrying the given colour id.
func (s TankStats) WithColor(color int) TankStats {
	s.Color = color
	return s
}

// HullSize returns the edge length of the tank's square bounding box.
func (s TankStats) HullSize() float64 {
	return hullBaseSize * s.BodyScale
}
