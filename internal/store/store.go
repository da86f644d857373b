// Package store keeps the local match history in SQLite through GORM.
package store

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tankfield/tanks/internal/game"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("store closed")

// Match is one finished match.
type Match struct {
	ID          string    `gorm:"primaryKey;size:36"`
	PlayedAt    time.Time `gorm:"index"`
	MapName     string    `gorm:"size:64"`
	Outcome     string    `gorm:"size:32"`
	Description string    `gorm:"size:128"`
	Ticks       int
	Tanks       []TankRecord `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
}

// TankRecord is one tank's line in a match.
type TankRecord struct {
	ID          uint   `gorm:"primaryKey"`
	MatchID     string `gorm:"index;size:36"`
	Slot        int
	Team        string `gorm:"size:8"`
	Archetype   string `gorm:"index;size:64"`
	Health      int
	MaxHealth   int
	ShotsFired  int
	Hits        int
	DamageDealt int
	Destroyed   bool
	Won         bool
}

// Models lists every table the store migrates.
var Models = []interface{}{
	&Match{},
	&TankRecord{},
}

// Store wraps the history database.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens or creates the database at path and migrates it. An empty
// path or ":memory:" opens a private in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history db %q: %w", path, err)
	}

	// In-memory SQLite databases are per connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql interface: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		return nil, closeOnError(sqlDB, fmt.Errorf("error setting PRAGMA: %w", err))
	}
	if err := db.AutoMigrate(Models...); err != nil {
		return nil, closeOnError(sqlDB, fmt.Errorf("migrate history db: %w", err))
	}

	log.Debug().Str("path", dsn).Msg("Opened match history")
	return &Store{db: db, log: log}, nil
}

// closeOnError closes a half-opened database and returns err, joined with
// any close failure.
func closeOnError(c io.Closer, err error) error {
	if cerr := c.Close(); cerr != nil {
		return errors.Join(err, fmt.Errorf("close history db: %w", cerr))
	}
	return err
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}

// RecordMatch stores a finished match and returns its generated ID.
func (s *Store) RecordMatch(mapName string, res game.MatchResult, playedAt time.Time) (string, error) {
	if s.db == nil {
		return "", ErrClosed
	}
	winner, hasWinner := res.Winner()

	m := Match{
		ID:          uuid.NewString(),
		PlayedAt:    playedAt.UTC(),
		MapName:     mapName,
		Outcome:     res.Outcome.String(),
		Description: res.Description,
		Ticks:       res.Ticks,
	}
	for _, t := range res.Tanks {
		m.Tanks = append(m.Tanks, TankRecord{
			Slot:        t.Slot,
			Team:        t.Team.String(),
			Archetype:   t.Name,
			Health:      t.Health,
			MaxHealth:   t.MaxHealth,
			ShotsFired:  t.ShotsFired,
			Hits:        t.Hits,
			DamageDealt: t.DamageDealt,
			Destroyed:   t.Destroyed,
			Won:         hasWinner && t.Team == winner.Team,
		})
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&m).Error
	}); err != nil {
		return "", fmt.Errorf("record match: %w", err)
	}
	s.log.Info().
		Str("match", m.ID).
		Str("map", mapName).
		Str("outcome", m.Outcome).
		Int("ticks", m.Ticks).
		Msg("Recorded match")
	return m.ID, nil
}

// Recent returns up to limit matches, newest first, with their tanks.
func (s *Store) Recent(limit int) ([]Match, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	var out []Match
	err := s.db.
		Preload("Tanks", func(db *gorm.DB) *gorm.DB { return db.Order("slot") }).
		Order("played_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("recent matches: %w", err)
	}
	return out, nil
}

// Get returns one match by ID.
func (s *Store) Get(id string) (Match, error) {
	if s.db == nil {
		return Match{}, ErrClosed
	}
	var m Match
	err := s.db.Preload("Tanks").First(&m, "id = ?", id).Error
	if err != nil {
		return Match{}, fmt.Errorf("get match %s: %w", id, err)
	}
	return m, nil
}

// ArchetypeStats aggregates the history of one tank archetype.
type ArchetypeStats struct {
	Archetype string
	Played    int
	Wins      int
	Shots     int
	Hits      int
}

// WinRate returns wins per match played.
func (a ArchetypeStats) WinRate() float64 {
	if a.Played == 0 {
		return 0
	}
	return float64(a.Wins) / float64(a.Played)
}

// WinsByArchetype aggregates every recorded tank line by archetype,
// most wins first.
func (s *Store) WinsByArchetype() ([]ArchetypeStats, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	var out []ArchetypeStats
	err := s.db.Model(&TankRecord{}).
		Select("archetype, COUNT(*) AS played, " +
			"SUM(CASE WHEN won THEN 1 ELSE 0 END) AS wins, " +
			"SUM(shots_fired) AS shots, SUM(hits) AS hits").
		Group("archetype").
		Order("wins DESC, archetype").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("wins by archetype: %w", err)
	}
	return out, nil
}
