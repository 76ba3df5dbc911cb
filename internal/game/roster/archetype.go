package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Archetype defines a broad opponent class: the reward base paid out per
// defeat and the fixed action policy used during the legacy enemy-turn mode.
type Archetype struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// RewardBase is the per-defeat reward before level scaling.
	RewardBase int `yaml:"reward_base"`
	// TurnAction is the action kind this archetype always takes on its enemy
	// turn: "melee", "ranged", or "advance".
	TurnAction string `yaml:"turn_action"`
}

// validTurnActions enumerates the action kinds an archetype may declare.
var validTurnActions = map[string]bool{"melee": true, "ranged": true, "advance": true}

// Validate checks all required fields.
//
// Postcondition: nil return guarantees non-empty ID and Name, RewardBase >= 1,
// and a recognized TurnAction.
func (a *Archetype) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("archetype: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("archetype %q: name must not be empty", a.ID)
	}
	if a.RewardBase < 1 {
		return fmt.Errorf("archetype %q: reward_base must be >= 1", a.ID)
	}
	if !validTurnActions[a.TurnAction] {
		return fmt.Errorf("archetype %q: turn_action must be one of [melee, ranged, advance], got %q", a.ID, a.TurnAction)
	}
	return nil
}

// LoadArchetypes reads all *.yaml files in dir and parses each as an Archetype.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed archetypes or a non-nil error on the first
// parse or validate failure.
func LoadArchetypes(dir string) ([]*Archetype, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading archetype dir %q: %w", dir, err)
	}
	var archetypes []*Archetype
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var a Archetype
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("parsing archetype file %s: %w", path, err)
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		archetypes = append(archetypes, &a)
	}
	return archetypes, nil
}

// ArchetypeSet indexes archetypes by ID.
type ArchetypeSet map[string]*Archetype

// NewArchetypeSet builds an ArchetypeSet, rejecting duplicate IDs.
func NewArchetypeSet(archetypes []*Archetype) (ArchetypeSet, error) {
	set := make(ArchetypeSet, len(archetypes))
	for _, a := range archetypes {
		if _, dup := set[a.ID]; dup {
			return nil, fmt.Errorf("duplicate archetype ID %q", a.ID)
		}
		set[a.ID] = a
	}
	return set, nil
}

// DefaultArchetypes returns the built-in catalog used when no content
// directory is configured.
func DefaultArchetypes() ArchetypeSet {
	return ArchetypeSet{
		"bruiser":    {ID: "bruiser", Name: "Bruiser", RewardBase: 12, TurnAction: "melee"},
		"skirmisher": {ID: "skirmisher", Name: "Skirmisher", RewardBase: 10, TurnAction: "ranged"},
		"lurker":     {ID: "lurker", Name: "Lurker", RewardBase: 8, TurnAction: "advance"},
	}
}
