// Package battleserver serves combat encounters over WebSocket: one
// encounter per connected session, all encounters advanced by a shared tick
// loop, every mutation serialized behind a per-encounter mutex.
package battleserver

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kverkest/fray/internal/game/arena"
	"github.com/kverkest/fray/internal/game/behavior"
	"github.com/kverkest/fray/internal/game/roster"
)

// Content is everything loaded from the content tree: battlefields, opponent
// stat blocks, behavior profiles, archetypes, and the player party.
type Content struct {
	Arenas     []*arena.Arena
	Templates  []*roster.Template
	Profiles   *behavior.Registry
	Archetypes roster.ArchetypeSet
	Party      *roster.PartyDef

	templatesByID map[string]*roster.Template
}

// LoadContent reads the content tree under dir:
//
//	dir/arenas/*.yaml      battlefields
//	dir/opponents/*.yaml   opponent templates
//	dir/profiles/*.yaml    behavior profiles
//	dir/archetypes/*.yaml  combat archetypes
//	dir/parties/default.yaml  the player party
//
// Missing pieces fall back to built-in defaults so a bare checkout still
// runs; malformed files fail the load.
//
// Postcondition: Returns cross-reference-validated content or an error.
func LoadContent(dir string, logger *zap.Logger) (*Content, error) {
	c := &Content{}

	arenasDir := filepath.Join(dir, "arenas")
	if dirExists(arenasDir) {
		arenas, err := arena.LoadArenas(arenasDir)
		if err != nil {
			return nil, fmt.Errorf("battleserver: %w", err)
		}
		c.Arenas = arenas
	}
	if len(c.Arenas) == 0 {
		logger.Info("no arenas in content tree, using default", zap.String("dir", arenasDir))
		c.Arenas = []*arena.Arena{arena.Default()}
	}

	profilesDir := filepath.Join(dir, "profiles")
	if dirExists(profilesDir) {
		profiles, err := behavior.LoadProfiles(profilesDir)
		if err != nil {
			return nil, fmt.Errorf("battleserver: %w", err)
		}
		reg := behavior.NewRegistry()
		for _, p := range profiles {
			if err := reg.Register(p); err != nil {
				return nil, fmt.Errorf("battleserver: %w", err)
			}
		}
		c.Profiles = reg
	} else {
		logger.Info("no behavior profiles in content tree, using defaults", zap.String("dir", profilesDir))
		c.Profiles = behavior.DefaultProfiles()
	}

	archetypesDir := filepath.Join(dir, "archetypes")
	if dirExists(archetypesDir) {
		archetypes, err := roster.LoadArchetypes(archetypesDir)
		if err != nil {
			return nil, fmt.Errorf("battleserver: %w", err)
		}
		set, err := roster.NewArchetypeSet(archetypes)
		if err != nil {
			return nil, fmt.Errorf("battleserver: %w", err)
		}
		c.Archetypes = set
	} else {
		logger.Info("no archetypes in content tree, using defaults", zap.String("dir", archetypesDir))
		c.Archetypes = roster.DefaultArchetypes()
	}

	opponentsDir := filepath.Join(dir, "opponents")
	if dirExists(opponentsDir) {
		templates, err := roster.LoadTemplates(opponentsDir)
		if err != nil {
			return nil, fmt.Errorf("battleserver: %w", err)
		}
		c.Templates = templates
	}
	if len(c.Templates) == 0 {
		logger.Info("no opponent templates in content tree, using defaults", zap.String("dir", opponentsDir))
		c.Templates = roster.DefaultTemplates()
	}

	partyPath := filepath.Join(dir, "parties", "default.yaml")
	if _, err := os.Stat(partyPath); err == nil {
		party, err := roster.LoadParty(partyPath)
		if err != nil {
			return nil, fmt.Errorf("battleserver: %w", err)
		}
		c.Party = party
	} else {
		logger.Info("no party definition in content tree, using default", zap.String("path", partyPath))
		c.Party = roster.DefaultParty()
	}

	c.templatesByID = make(map[string]*roster.Template, len(c.Templates))
	for _, tmpl := range c.Templates {
		if _, dup := c.templatesByID[tmpl.ID]; dup {
			return nil, fmt.Errorf("battleserver: duplicate opponent template id %q", tmpl.ID)
		}
		c.templatesByID[tmpl.ID] = tmpl
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks cross-references: every opponent template must resolve its
// archetype and behavior profile.
func (c *Content) Validate() error {
	for _, tmpl := range c.Templates {
		if _, ok := c.Archetypes[tmpl.Archetype]; !ok {
			return fmt.Errorf("battleserver: opponent %q references unknown archetype %q", tmpl.ID, tmpl.Archetype)
		}
		if _, ok := c.Profiles.Get(tmpl.Profile); !ok {
			return fmt.Errorf("battleserver: opponent %q references unknown profile %q", tmpl.ID, tmpl.Profile)
		}
	}
	return nil
}

// Template returns the opponent template with the given id.
func (c *Content) Template(id string) (*roster.Template, bool) {
	t, ok := c.templatesByID[id]
	return t, ok
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
