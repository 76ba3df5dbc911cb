// Package behavior implements per-opponent combat AI: a three-state machine
// (Idle, Combat, Defensive) driving movement and attack intent each tick,
// gated by a single "opponents may act now" predicate supplied by the
// encounter.
package behavior

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefensiveThreshold is the health fraction at or below which every opponent
// turns Defensive, permanently.
const DefensiveThreshold = 0.5

// Profile is per-opponent-kind movement and attack tuning loaded from YAML.
type Profile struct {
	ID string `yaml:"id"`
	// Aggressiveness scales movement speed, in (0, 1].
	Aggressiveness float64 `yaml:"aggressiveness"`
	// MoveSpeed is the base movement speed in units per second.
	MoveSpeed float64 `yaml:"move_speed"`
	// AttackRange is the distance within which Idle and Combat opponents strike.
	AttackRange float64 `yaml:"attack_range"`
	// AttackCooldown is the minimum duration between attacks, e.g. "1200ms".
	AttackCooldown string `yaml:"attack_cooldown"`
	// AttackDamage is the flat damage dealt per landed attack.
	AttackDamage int `yaml:"attack_damage"`
	// Knockback is the displacement magnitude applied to the struck target.
	Knockback float64 `yaml:"knockback"`
	// VulnerabilityBoost multiplies speed while the act window is open, >= 1.
	VulnerabilityBoost float64 `yaml:"vulnerability_boost"`
	// IdleSpeedFactor scales drift speed in the Idle state, in (0, 1].
	IdleSpeedFactor float64 `yaml:"idle_speed_factor"`
	// DefensiveSpeedFactor scales approach speed in the Defensive state, in (0, 1].
	DefensiveSpeedFactor float64 `yaml:"defensive_speed_factor"`
}

// Validate checks all tuning invariants.
//
// Postcondition: nil return guarantees a non-empty ID, Aggressiveness in
// (0, 1], positive speed and range, a parseable positive AttackCooldown,
// AttackDamage >= 1, Knockback >= 0, VulnerabilityBoost >= 1, and both speed
// factors in (0, 1].
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("behavior profile: id must not be empty")
	}
	if p.Aggressiveness <= 0 || p.Aggressiveness > 1 {
		return fmt.Errorf("behavior profile %q: aggressiveness must be in (0, 1], got %v", p.ID, p.Aggressiveness)
	}
	if p.MoveSpeed <= 0 {
		return fmt.Errorf("behavior profile %q: move_speed must be > 0, got %v", p.ID, p.MoveSpeed)
	}
	if p.AttackRange <= 0 {
		return fmt.Errorf("behavior profile %q: attack_range must be > 0, got %v", p.ID, p.AttackRange)
	}
	d, err := time.ParseDuration(p.AttackCooldown)
	if err != nil {
		return fmt.Errorf("behavior profile %q: attack_cooldown %q is not a valid duration: %w", p.ID, p.AttackCooldown, err)
	}
	if d <= 0 {
		return fmt.Errorf("behavior profile %q: attack_cooldown must be > 0, got %v", p.ID, d)
	}
	if p.AttackDamage < 1 {
		return fmt.Errorf("behavior profile %q: attack_damage must be >= 1, got %d", p.ID, p.AttackDamage)
	}
	if p.Knockback < 0 {
		return fmt.Errorf("behavior profile %q: knockback must be >= 0, got %v", p.ID, p.Knockback)
	}
	if p.VulnerabilityBoost < 1 {
		return fmt.Errorf("behavior profile %q: vulnerability_boost must be >= 1, got %v", p.ID, p.VulnerabilityBoost)
	}
	if p.IdleSpeedFactor <= 0 || p.IdleSpeedFactor > 1 {
		return fmt.Errorf("behavior profile %q: idle_speed_factor must be in (0, 1], got %v", p.ID, p.IdleSpeedFactor)
	}
	if p.DefensiveSpeedFactor <= 0 || p.DefensiveSpeedFactor > 1 {
		return fmt.Errorf("behavior profile %q: defensive_speed_factor must be in (0, 1], got %v", p.ID, p.DefensiveSpeedFactor)
	}
	return nil
}

// CooldownDuration returns the parsed AttackCooldown.
//
// Precondition: p must have passed Validate.
func (p *Profile) CooldownDuration() time.Duration {
	d, _ := time.ParseDuration(p.AttackCooldown)
	return d
}

// yamlProfileFile wraps the YAML top-level key.
type yamlProfileFile struct {
	Profile *Profile `yaml:"profile"`
}

// LoadProfiles reads all *.yaml files from dir and returns parsed Profiles.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
func LoadProfiles(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("behavior.LoadProfiles: reading %q: %w", dir, err)
	}
	var profiles []*Profile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("behavior.LoadProfiles: reading %s: %w", e.Name(), err)
		}
		var f yamlProfileFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("behavior.LoadProfiles: parsing %s: %w", e.Name(), err)
		}
		if f.Profile == nil {
			return nil, fmt.Errorf("behavior.LoadProfiles: %s missing top-level 'profile' key", e.Name())
		}
		if err := f.Profile.Validate(); err != nil {
			return nil, err
		}
		profiles = append(profiles, f.Profile)
	}
	return profiles, nil
}

// Registry indexes behavior profiles by ID.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*Profile)}
}

// Register adds a validated profile, rejecting duplicate IDs.
//
// Precondition: p must be non-nil and validated.
func (r *Registry) Register(p *Profile) error {
	if p == nil {
		return fmt.Errorf("behavior.Registry.Register: profile must not be nil")
	}
	if _, dup := r.profiles[p.ID]; dup {
		return fmt.Errorf("behavior.Registry.Register: duplicate profile ID %q", p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// Get returns the profile with the given ID.
//
// Postcondition: Returns (p, true) if found, (nil, false) otherwise.
func (r *Registry) Get(id string) (*Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// DefaultProfiles returns the built-in profile set used when no content
// directory is configured.
func DefaultProfiles() *Registry {
	r := NewRegistry()
	for _, p := range []*Profile{
		{ID: "grunt", Aggressiveness: 0.6, MoveSpeed: 90, AttackRange: 48, AttackCooldown: "1200ms",
			AttackDamage: 6, Knockback: 32, VulnerabilityBoost: 1.5, IdleSpeedFactor: 0.4, DefensiveSpeedFactor: 0.35},
		{ID: "stalker", Aggressiveness: 0.85, MoveSpeed: 120, AttackRange: 40, AttackCooldown: "900ms",
			AttackDamage: 4, Knockback: 24, VulnerabilityBoost: 1.8, IdleSpeedFactor: 0.5, DefensiveSpeedFactor: 0.4},
		{ID: "heavy", Aggressiveness: 0.45, MoveSpeed: 60, AttackRange: 56, AttackCooldown: "1800ms",
			AttackDamage: 10, Knockback: 56, VulnerabilityBoost: 1.3, IdleSpeedFactor: 0.3, DefensiveSpeedFactor: 0.25},
	} {
		// Built-in profiles are constructed valid; Register only rejects dups.
		_ = r.Register(p)
	}
	return r
}
