// Package assets holds the built-in arena maps and tank archetypes and
// loads extra ones from disk.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/tankfield/tanks/internal/game"
)

//go:embed maps/*.txt types/*.json
var builtin embed.FS

// Library is a set of named maps and tank archetypes.
type Library struct {
	maps  map[string]*game.TileMap
	tanks map[string]game.TankStats
}

// Load returns the built-in assets, extended (or overridden by name) with
// any *.txt maps in mapsDir and *.json tank types in typesDir. Empty
// directories are skipped. Every file is parsed and validated up front.
func Load(mapsDir, typesDir string) (*Library, error) {
	lib := &Library{
		maps:  make(map[string]*game.TileMap),
		tanks: make(map[string]game.TankStats),
	}
	if err := lib.addMaps(builtin, "maps"); err != nil {
		return nil, err
	}
	if err := lib.addTanks(builtin, "types"); err != nil {
		return nil, err
	}
	if mapsDir != "" {
		if err := lib.addMaps(os.DirFS(mapsDir), "."); err != nil {
			return nil, err
		}
	}
	if typesDir != "" {
		if err := lib.addTanks(os.DirFS(typesDir), "."); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func (l *Library) addMaps(fsys fs.FS, dir string) error {
	return eachFile(fsys, dir, ".txt", func(name string, data []byte) error {
		tm, err := game.ParseTileMap(string(data))
		if err != nil {
			return fmt.Errorf("map %s: %w", name, err)
		}
		l.maps[name] = tm
		return nil
	})
}

func (l *Library) addTanks(fsys fs.FS, dir string) error {
	return eachFile(fsys, dir, ".json", func(name string, data []byte) error {
		st, err := game.ParseTankStats(data)
		if err != nil {
			return fmt.Errorf("tank type %s: %w", name, err)
		}
		l.tanks[name] = st
		return nil
	})
}

// eachFile calls fn with the base name (extension stripped) and contents
// of every file in dir with the given extension.
func eachFile(fsys fs.FS, dir, ext string, fn func(name string, data []byte) error) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read asset dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ext {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("read asset %s: %w", e.Name(), err)
		}
		if err := fn(strings.TrimSuffix(e.Name(), ext), data); err != nil {
			return err
		}
	}
	return nil
}

// Map returns the named map.
func (l *Library) Map(name string) (*game.TileMap, error) {
	tm, ok := l.maps[name]
	if !ok {
		return nil, fmt.Errorf("unknown map %q (have %s)", name, strings.Join(l.MapNames(), ", "))
	}
	return tm, nil
}

// Tank returns the named archetype.
func (l *Library) Tank(name string) (game.TankStats, error) {
	st, ok := l.tanks[name]
	if !ok {
		return game.TankStats{}, fmt.Errorf("unknown tank type %q (have %s)", name, strings.Join(l.TankNames(), ", "))
	}
	return st, nil
}

// Roster resolves archetype names into stats, one per player slot.
func (l *Library) Roster(names []string) ([]game.TankStats, error) {
	out := make([]game.TankStats, 0, len(names))
	for _, n := range names {
		st, err := l.Tank(n)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// MapNames returns the map names in sorted order.
func (l *Library) MapNames() []string {
	return sortedKeys(l.maps)
}

// TankNames returns the archetype names in sorted order.
func (l *Library) TankNames() []string {
	return sortedKeys(l.tanks)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
