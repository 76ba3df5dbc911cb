package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template defines a reusable opponent stat block loaded from YAML.
type Template struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Level scales reward and recruitment rolls against the party leader.
	Level int `yaml:"level"`
	MaxHP int `yaml:"max_hp"`
	// Attack is the flat damage stat used by strike resolution.
	Attack int `yaml:"attack"`
	// Archetype references an Archetype ID; it selects the reward base and
	// the enemy-turn action policy.
	Archetype string `yaml:"archetype"`
	// Profile references a behavior profile ID for real-time movement tuning.
	Profile string `yaml:"profile"`
	// Recruitable marks opponents the player may attempt to recruit.
	Recruitable bool `yaml:"recruitable"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID, Name, Archetype, and Profile are
// non-empty, Level >= 1, MaxHP >= 1, and Attack >= 1; returns an error on the
// first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("opponent template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("opponent template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("opponent template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("opponent template %q: max_hp must be >= 1", t.ID)
	}
	if t.Attack < 1 {
		return fmt.Errorf("opponent template %q: attack must be >= 1", t.ID)
	}
	if t.Archetype == "" {
		return fmt.Errorf("opponent template %q: archetype must not be empty", t.ID)
	}
	if t.Profile == "" {
		return fmt.Errorf("opponent template %q: profile must not be empty", t.ID)
	}
	return nil
}

// DefaultTemplates returns the opponents used when no content directory
// supplies any. IDs reference the default archetypes and profiles.
func DefaultTemplates() []*Template {
	return []*Template{
		{ID: "thicket-boar", Name: "Thicket Boar", Level: 2, MaxHP: 28, Attack: 5, Archetype: "bruiser", Profile: "grunt", Recruitable: true},
		{ID: "moss-slinger", Name: "Moss Slinger", Level: 3, MaxHP: 22, Attack: 6, Archetype: "skirmisher", Profile: "stalker", Recruitable: true},
		{ID: "dusk-brute", Name: "Dusk Brute", Level: 4, MaxHP: 40, Attack: 8, Archetype: "bruiser", Profile: "heavy"},
	}
}

// LoadTemplateFromBytes parses a single opponent template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading opponent dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
