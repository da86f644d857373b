package game

import (
	"errors"
	"fmt"
)

var (
	// ErrMapFormat classifies every map parse failure.
	ErrMapFormat = errors.New("malformed map")
	// ErrInsufficientSpawns is returned when a map has fewer spawn tiles than tanks.
	ErrInsufficientSpawns = errors.New("insufficient spawn points")
	// ErrNotReady is returned when a derived artefact is requested before it was built.
	ErrNotReady = errors.New("not ready")
	// ErrInvalidStats classifies tank stat records that fail to decode or validate.
	ErrInvalidStats = errors.New("invalid tank stats")
)

// MapFormatError describes where a map failed to parse.
type MapFormatError struct {
	Row    int // zero-based row, -1 when the whole map is at fault
	Want   int // expected token count
	Got    int // actual token count
	Token  string
	Reason string
}

func (e *MapFormatError) Error() string {
	switch {
	case e.Token != "":
		return fmt.Sprintf("malformed map: row %d: unknown tile %q", e.Row, e.Token)
	case e.Row >= 0:
		return fmt.Sprintf("malformed map: row %d has %d tiles, want %d", e.Row, e.Got, e.Want)
	default:
		return "malformed map: " + e.Reason
	}
}

func (e *MapFormatError) Unwrap() error { return ErrMapFormat }

// InsufficientSpawnsError reports how many spawns were available for how many tanks.
type InsufficientSpawnsError struct {
	Spawns int
	Tanks  int
}

func (e *InsufficientSpawnsError) Error() string {
	return fmt.Sprintf("insufficient spawn points: map has %d, match needs %d", e.Spawns, e.Tanks)
}

func (e *InsufficientSpawnsError) Unwrap() error { return ErrInsufficientSpawns }
