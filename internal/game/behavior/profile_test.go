package behavior_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kverkest/fray/internal/game/behavior"
)

func validProfile() *behavior.Profile {
	return &behavior.Profile{
		ID: "fang", Aggressiveness: 0.5, MoveSpeed: 200, AttackRange: 40,
		AttackCooldown: "1s", AttackDamage: 7, Knockback: 30,
		VulnerabilityBoost: 1, IdleSpeedFactor: 0.5, DefensiveSpeedFactor: 0.25,
	}
}

func TestProfile_Validate_OK(t *testing.T) {
	assert.NoError(t, validProfile().Validate())
}

func TestProfile_Validate_Violations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*behavior.Profile)
	}{
		{"empty id", func(p *behavior.Profile) { p.ID = "" }},
		{"aggressiveness zero", func(p *behavior.Profile) { p.Aggressiveness = 0 }},
		{"aggressiveness above one", func(p *behavior.Profile) { p.Aggressiveness = 1.1 }},
		{"move speed zero", func(p *behavior.Profile) { p.MoveSpeed = 0 }},
		{"attack range zero", func(p *behavior.Profile) { p.AttackRange = 0 }},
		{"cooldown unparseable", func(p *behavior.Profile) { p.AttackCooldown = "soon" }},
		{"cooldown zero", func(p *behavior.Profile) { p.AttackCooldown = "0s" }},
		{"damage zero", func(p *behavior.Profile) { p.AttackDamage = 0 }},
		{"negative knockback", func(p *behavior.Profile) { p.Knockback = -1 }},
		{"boost below one", func(p *behavior.Profile) { p.VulnerabilityBoost = 0.9 }},
		{"idle factor zero", func(p *behavior.Profile) { p.IdleSpeedFactor = 0 }},
		{"defensive factor above one", func(p *behavior.Profile) { p.DefensiveSpeedFactor = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProfile()
			tc.mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestProfile_CooldownDuration(t *testing.T) {
	p := validProfile()
	p.AttackCooldown = "1200ms"
	require.NoError(t, p.Validate())
	assert.Equal(t, 1200*time.Millisecond, p.CooldownDuration())
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := behavior.NewRegistry()
	require.NoError(t, reg.Register(validProfile()))

	p, ok := reg.Get("fang")
	require.True(t, ok)
	assert.Equal(t, "fang", p.ID)

	_, ok = reg.Get("ghost")
	assert.False(t, ok)
}

func TestRegistry_Register_RejectsDuplicate(t *testing.T) {
	reg := behavior.NewRegistry()
	require.NoError(t, reg.Register(validProfile()))
	assert.Error(t, reg.Register(validProfile()))
}

func TestRegistry_Register_RejectsNil(t *testing.T) {
	assert.Error(t, behavior.NewRegistry().Register(nil))
}

func TestDefaultProfiles_ContainsBuiltins(t *testing.T) {
	reg := behavior.DefaultProfiles()
	for _, id := range []string{"grunt", "stalker", "heavy"} {
		p, ok := reg.Get(id)
		require.True(t, ok, "missing builtin profile %q", id)
		assert.NoError(t, p.Validate())
	}
}

func TestLoadProfiles_ReadsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fang.yaml", `
profile:
  id: fang
  aggressiveness: 0.5
  move_speed: 200
  attack_range: 40
  attack_cooldown: 1s
  attack_damage: 7
  knockback: 30
  vulnerability_boost: 1.2
  idle_speed_factor: 0.5
  defensive_speed_factor: 0.25
`)
	writeFile(t, dir, "notes.txt", "ignored")

	profiles, err := behavior.LoadProfiles(dir)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "fang", profiles[0].ID)
	assert.Equal(t, 1.2, profiles[0].VulnerabilityBoost)
}

func TestLoadProfiles_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "profile: [not a map")
	_, err := behavior.LoadProfiles(dir)
	assert.Error(t, err)
}

func TestLoadProfiles_RejectsMissingTopLevelKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "id: fang\n")
	_, err := behavior.LoadProfiles(dir)
	assert.Error(t, err)
}

func TestLoadProfiles_RejectsInvalidProfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", `
profile:
  id: fang
  aggressiveness: 2.0
  move_speed: 200
  attack_range: 40
  attack_cooldown: 1s
  attack_damage: 7
  vulnerability_boost: 1
  idle_speed_factor: 0.5
  defensive_speed_factor: 0.25
`)
	_, err := behavior.LoadProfiles(dir)
	assert.Error(t, err)
}

func TestLoadProfiles_MissingDir(t *testing.T) {
	_, err := behavior.LoadProfiles(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
