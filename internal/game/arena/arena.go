// Package arena defines battlefield geometry: bounds, range bands, and the
// duel positions used when a target lock pulls both fighters toward center.
package arena

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Arena is one battlefield definition loaded from YAML.
//
// Invariant: 0 < CloseRange < MediumRange < LongRange.
type Arena struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// CloseRange is the distance at or inside which Defensive opponents attack.
	CloseRange float64 `yaml:"close_range"`
	// MediumRange bounds the Defensive approach band: opponents hold position
	// at or beyond it and creep forward inside it.
	MediumRange float64 `yaml:"medium_range"`
	// LongRange is the maximum travel distance of ranged attacks; projectiles
	// are discarded past it.
	LongRange float64 `yaml:"long_range"`
	// LockOffset is the horizontal distance from center at which the player and
	// the locked opponent are placed when a target lock begins.
	LockOffset float64 `yaml:"lock_offset"`
}

// Validate checks all geometric invariants.
//
// Postcondition: nil return guarantees positive dimensions, strictly ordered
// range bands, and a LockOffset that fits inside the arena.
func (a *Arena) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("arena: id must not be empty")
	}
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("arena %q: width and height must be > 0", a.ID)
	}
	if a.CloseRange <= 0 {
		return fmt.Errorf("arena %q: close_range must be > 0", a.ID)
	}
	if a.MediumRange <= a.CloseRange {
		return fmt.Errorf("arena %q: medium_range must exceed close_range", a.ID)
	}
	if a.LongRange <= a.MediumRange {
		return fmt.Errorf("arena %q: long_range must exceed medium_range", a.ID)
	}
	if a.LockOffset <= 0 || a.LockOffset*2 >= a.Width {
		return fmt.Errorf("arena %q: lock_offset must be > 0 and fit inside the arena width", a.ID)
	}
	return nil
}

// Center returns the arena's center point.
func (a *Arena) Center() Vec2 {
	return Vec2{X: a.Width / 2, Y: a.Height / 2}
}

// LockPositions returns the duel positions for a target lock: the player's
// spot left of center and the locked opponent's spot right of center.
func (a *Arena) LockPositions() (player, opponent Vec2) {
	c := a.Center()
	return Vec2{X: c.X - a.LockOffset, Y: c.Y}, Vec2{X: c.X + a.LockOffset, Y: c.Y}
}

// Clamp returns p constrained to the arena bounds.
//
// Postcondition: 0 <= result.X <= Width and 0 <= result.Y <= Height.
func (a *Arena) Clamp(p Vec2) Vec2 {
	if p.X < 0 {
		p.X = 0
	}
	if p.X > a.Width {
		p.X = a.Width
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y > a.Height {
		p.Y = a.Height
	}
	return p
}

// yamlArenaFile wraps the YAML top-level key.
type yamlArenaFile struct {
	Arena *Arena `yaml:"arena"`
}

// LoadArenas reads all *.yaml files from dir and returns parsed Arenas.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
func LoadArenas(dir string) ([]*Arena, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("arena.LoadArenas: reading %q: %w", dir, err)
	}
	var arenas []*Arena
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("arena.LoadArenas: reading %s: %w", e.Name(), err)
		}
		var f yamlArenaFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("arena.LoadArenas: parsing %s: %w", e.Name(), err)
		}
		if f.Arena == nil {
			return nil, fmt.Errorf("arena.LoadArenas: %s missing top-level 'arena' key", e.Name())
		}
		if err := f.Arena.Validate(); err != nil {
			return nil, err
		}
		arenas = append(arenas, f.Arena)
	}
	return arenas, nil
}

// Default returns the built-in arena used when no content directory is
// configured: a 960x540 field with range bands tuned for the default
// behavior profiles.
func Default() *Arena {
	return &Arena{
		ID:          "default",
		Name:        "Open Ground",
		Width:       960,
		Height:      540,
		CloseRange:  48,
		MediumRange: 160,
		LongRange:   320,
		LockOffset:  96,
	}
}
