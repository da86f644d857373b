// Package config loads arcade settings from defaults, an optional JSON
// config file, TANKS_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tankfield/tanks/internal/game"
)

// FileName is the config file looked up in the config directory.
const FileName = "tanks.cfg.json"

// EnvPrefix prefixes every environment override, e.g. TANKS_TICKRATE.
const EnvPrefix = "TANKS"

// Settings is the resolved configuration of one process.
type Settings struct {
	Debug           bool     `mapstructure:"debug"`
	Bounce          bool     `mapstructure:"bounce"`
	ManualTurret    bool     `mapstructure:"manualTurret"`
	BulletsHitWalls bool     `mapstructure:"bulletsHitWalls"`
	TickRate        int      `mapstructure:"tickRate"`
	LogLevel        string   `mapstructure:"logLevel"`
	Map             string   `mapstructure:"map"`
	Tanks           []string `mapstructure:"tanks"`
	Colors          []int    `mapstructure:"colors"`
	Seed            int64    `mapstructure:"seed"`
	MapsDir         string   `mapstructure:"mapsDir"`
	TypesDir        string   `mapstructure:"typesDir"`
	Mute            bool     `mapstructure:"mute"`

	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`

	Window struct {
		Width  int `mapstructure:"width"`
		Height int `mapstructure:"height"`
	} `mapstructure:"window"`
}

func setDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("bounce", false)
	viper.SetDefault("manualTurret", false)
	viper.SetDefault("bulletsHitWalls", true)
	viper.SetDefault("tickRate", 60)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("map", "gras1")
	viper.SetDefault("tanks", []string{"speedy", "minigun"})
	viper.SetDefault("colors", []int{0, 0})
	viper.SetDefault("seed", 0)
	viper.SetDefault("mapsDir", "")
	viper.SetDefault("typesDir", "")
	viper.SetDefault("mute", false)

	viper.SetDefault("db.path", "tanks.db")

	viper.SetDefault("window.width", 1600)
	viper.SetDefault("window.height", 800)
}

// Load sets defaults, enables environment overrides and reads FileName from
// configDir if present. A missing file is not an error; a broken one is.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configDir == "" {
		return nil
	}
	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"debug":         "debug",
	"bounce":        "bounce",
	"manual-turret": "manualTurret",
	"tick-rate":     "tickRate",
	"log-level":     "logLevel",
	"map":           "map",
	"tanks":         "tanks",
	"colors":        "colors",
	"seed":          "seed",
	"maps-dir":      "mapsDir",
	"types-dir":     "typesDir",
	"db":            "db.path",
	"mute":          "mute",
}

// RegisterFlags defines the gameplay flags on fs and binds them so a flag
// set on the command line wins over every other source.
func RegisterFlags(fs *pflag.FlagSet) error {
	fs.Bool("debug", false, "draw collision boxes and tank stats")
	fs.Bool("bounce", false, "tanks bounce off walls")
	fs.Bool("manual-turret", false, "steer turrets with keys instead of auto-rotation")
	fs.Int("tick-rate", 60, "simulation ticks per second")
	fs.String("log-level", "info", "trace, debug, info, warn or error")
	fs.String("map", "gras1", "arena map name")
	fs.StringSlice("tanks", []string{"speedy", "minigun"}, "tank archetypes, one per player")
	fs.IntSlice("colors", []int{0, 0}, "tank colours 1-5 per player, 0 picks at random")
	fs.Int64("seed", 0, "random seed for colours and backdrop, 0 uses the clock")
	fs.String("maps-dir", "", "directory with extra .txt maps")
	fs.String("types-dir", "", "directory with extra .json tank types")
	fs.String("db", "tanks.db", "match history database path")
	fs.Bool("mute", false, "disable sound")

	for flag, key := range flagKeys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Current resolves and validates the loaded configuration.
func Current() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the values the arcade cannot run without.
func (s Settings) Validate() error {
	if s.TickRate < 1 || s.TickRate > 240 {
		return fmt.Errorf("tickRate must be in 1..240, got %d", s.TickRate)
	}
	if len(s.Tanks) != 2 {
		return fmt.Errorf("exactly two tanks are required, got %d", len(s.Tanks))
	}
	for i, c := range s.Colors {
		if c < 0 || c > game.MaxColor {
			return fmt.Errorf("colour %d for tank %d out of range 0..%d", c, i, game.MaxColor)
		}
	}
	if s.Map == "" {
		return errors.New("map must not be empty")
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d is not positive", s.Window.Width, s.Window.Height)
	}
	return nil
}

// Game returns the simulation toggles.
func (s Settings) Game() game.Config {
	cfg := game.DefaultConfig()
	cfg.Debug = s.Debug
	cfg.Bounce = s.Bounce
	cfg.ManualTurret = s.ManualTurret
	cfg.BulletsHitWalls = s.BulletsHitWalls
	cfg.TickRate = s.TickRate
	return cfg
}

// Color returns the configured colour for slot, 0 when unset.
func (s Settings) Color(slot int) int {
	if slot < 0 || slot >= len(s.Colors) {
		return 0
	}
	return s.Colors[slot]
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
