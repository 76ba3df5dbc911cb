package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MemberDef is one party member's stat block in a party definition file.
type MemberDef struct {
	Name   string `yaml:"name"`
	Level  int    `yaml:"level"`
	MaxHP  int    `yaml:"max_hp"`
	Attack int    `yaml:"attack"`
}

// Validate checks one member's stats.
func (m *MemberDef) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("party member: name must not be empty")
	}
	if m.Level < 1 {
		return fmt.Errorf("party member %q: level must be >= 1", m.Name)
	}
	if m.MaxHP < 1 {
		return fmt.Errorf("party member %q: max_hp must be >= 1", m.Name)
	}
	if m.Attack < 1 {
		return fmt.Errorf("party member %q: attack must be >= 1", m.Name)
	}
	return nil
}

// PartyDef is the externally supplied party roster an encounter starts from:
// one leader plus zero or more followers.
type PartyDef struct {
	Leader    MemberDef   `yaml:"leader"`
	Followers []MemberDef `yaml:"followers"`
}

// Validate checks the leader and every follower.
//
// Postcondition: nil return guarantees a valid leader and all-valid followers.
func (p *PartyDef) Validate() error {
	if err := p.Leader.Validate(); err != nil {
		return fmt.Errorf("party leader: %w", err)
	}
	for i := range p.Followers {
		if err := p.Followers[i].Validate(); err != nil {
			return fmt.Errorf("party follower %d: %w", i, err)
		}
	}
	return nil
}

// DefaultParty returns the party used when no definition file is supplied:
// one leader and one follower, tuned for the default opponents.
func DefaultParty() *PartyDef {
	return &PartyDef{
		Leader:    MemberDef{Name: "Wren", Level: 3, MaxHP: 60, Attack: 8},
		Followers: []MemberDef{{Name: "Sable", Level: 2, MaxHP: 45, Attack: 6}},
	}
}

// yamlPartyFile wraps the YAML top-level key.
type yamlPartyFile struct {
	Party *PartyDef `yaml:"party"`
}

// LoadParty reads a single party definition file.
//
// Precondition: path must be a readable YAML file.
// Postcondition: Returns a validated *PartyDef, or an error.
func LoadParty(path string) (*PartyDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster.LoadParty: reading %q: %w", path, err)
	}
	var f yamlPartyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("roster.LoadParty: parsing %q: %w", path, err)
	}
	if f.Party == nil {
		return nil, fmt.Errorf("roster.LoadParty: %q missing top-level 'party' key", path)
	}
	if err := f.Party.Validate(); err != nil {
		return nil, err
	}
	return f.Party, nil
}
