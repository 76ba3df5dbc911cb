// Package config provides Viper-based configuration loading for the battle
// server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the WebSocket listener settings.
type ServerConfig struct {
	// Host is the bind address for the WebSocket listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the WebSocket listener.
	Port int `mapstructure:"port"`
	// TickInterval is the simulation step driving every encounter.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BattleConfig holds the encounter tuning. The server maps it onto the
// encounter rules at startup.
type BattleConfig struct {
	// Mode is the opponent-action strategy: "realtime" or "turns".
	Mode string `mapstructure:"mode"`

	// APMax is the leader's action-point pool capacity.
	APMax float64 `mapstructure:"ap_max"`
	// APMoveDrainPerSec is drained each second while moving.
	APMoveDrainPerSec float64 `mapstructure:"ap_move_drain_per_sec"`
	// APDashDrainPerSec is drained each second while dashing.
	APDashDrainPerSec float64 `mapstructure:"ap_dash_drain_per_sec"`
	// APRegenPerSec is restored each second while charging.
	APRegenPerSec float64 `mapstructure:"ap_regen_per_sec"`
	// APGrantOnHit is granted when an opponent lands a hit on the leader.
	APGrantOnHit float64 `mapstructure:"ap_grant_on_hit"`
	// StrikeCost is the AP cost of one strike.
	StrikeCost float64 `mapstructure:"strike_cost"`
	// DashCost is the AP cost of starting a dash burst.
	DashCost float64 `mapstructure:"dash_cost"`
	// DashDuration is how long one dash burst lasts.
	DashDuration time.Duration `mapstructure:"dash_duration"`

	// ComboWindow is the maximum gap between hits that still chains them.
	ComboWindow time.Duration `mapstructure:"combo_window"`
	// ComboCooldown is the minimum gap between successive strikes.
	ComboCooldown time.Duration `mapstructure:"combo_cooldown"`
	// ComboPerHitBonus scales damage per chained hit.
	ComboPerHitBonus float64 `mapstructure:"combo_per_hit_bonus"`
	// KnockbackBase and KnockbackPerHit tune strike knockback magnitude.
	KnockbackBase   float64 `mapstructure:"knockback_base"`
	KnockbackPerHit float64 `mapstructure:"knockback_per_hit"`

	// PlayerSpeed and DashSpeed are leader movement rates in units/sec.
	PlayerSpeed float64 `mapstructure:"player_speed"`
	DashSpeed   float64 `mapstructure:"dash_speed"`
	// PlayerReach is the melee reach of an unlocked strike.
	PlayerReach float64 `mapstructure:"player_reach"`

	// TurnMinDelay and TurnMaxDelay bound the randomized pre-delay of each
	// dispatched enemy action; TurnTimeout force-completes a stuck turn.
	TurnMinDelay time.Duration `mapstructure:"turn_min_delay"`
	TurnMaxDelay time.Duration `mapstructure:"turn_max_delay"`
	TurnTimeout  time.Duration `mapstructure:"turn_timeout"`
	// TurnStride is how far an advance action moves an opponent in turn mode.
	TurnStride float64 `mapstructure:"turn_stride"`
	// ProjectileSpeed is ranged attack travel speed in units/sec.
	ProjectileSpeed float64 `mapstructure:"projectile_speed"`

	// HitboxLifetime is how long a melee hitbox stays live for presentation.
	HitboxLifetime time.Duration `mapstructure:"hitbox_lifetime"`
	// KnockbackClearAfter zeroes residual knockback this long after a hit.
	KnockbackClearAfter time.Duration `mapstructure:"knockback_clear_after"`
	// KnockbackDecayPerSec is the linear decay rate of knockback velocity.
	KnockbackDecayPerSec float64 `mapstructure:"knockback_decay_per_sec"`
	// FleeWindow is the vulnerability window a flee attempt opens.
	FleeWindow time.Duration `mapstructure:"flee_window"`
}

// ContentConfig holds the content and script directories.
type ContentConfig struct {
	// Dir is the root content directory (arenas, opponents, profiles,
	// archetypes, parties as YAML).
	Dir string `mapstructure:"dir"`
	// ScriptDir holds the Lua policy scripts; empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit caps Lua opcodes per hook call; 0 uses the
	// scripting package default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Battle  BattleConfig  `mapstructure:"battle"`
	Content ContentConfig `mapstructure:"content"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("server.tick_interval must be positive, got %s", s.TickInterval))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	validModes := map[string]bool{"realtime": true, "turns": true}
	if !validModes[b.Mode] {
		errs = append(errs, fmt.Sprintf("battle.mode must be one of [realtime, turns], got %q", b.Mode))
	}
	if b.APMax <= 0 {
		errs = append(errs, fmt.Sprintf("battle.ap_max must be > 0, got %g", b.APMax))
	}
	if b.APMoveDrainPerSec < 0 {
		errs = append(errs, "battle.ap_move_drain_per_sec must not be negative")
	}
	if b.APDashDrainPerSec <= b.APMoveDrainPerSec {
		errs = append(errs, fmt.Sprintf("battle.ap_dash_drain_per_sec (%g) must exceed battle.ap_move_drain_per_sec (%g)", b.APDashDrainPerSec, b.APMoveDrainPerSec))
	}
	if b.APRegenPerSec < 0 {
		errs = append(errs, "battle.ap_regen_per_sec must not be negative")
	}
	if b.APGrantOnHit < 0 {
		errs = append(errs, "battle.ap_grant_on_hit must not be negative")
	}
	if b.StrikeCost < 0 || b.DashCost < 0 {
		errs = append(errs, "battle.strike_cost and battle.dash_cost must not be negative")
	}
	if b.DashDuration <= 0 {
		errs = append(errs, fmt.Sprintf("battle.dash_duration must be positive, got %s", b.DashDuration))
	}
	if b.ComboWindow <= 0 {
		errs = append(errs, fmt.Sprintf("battle.combo_window must be positive, got %s", b.ComboWindow))
	}
	if b.ComboCooldown < 0 || b.ComboCooldown >= b.ComboWindow {
		errs = append(errs, fmt.Sprintf("battle.combo_cooldown (%s) must be non-negative and shorter than battle.combo_window (%s)", b.ComboCooldown, b.ComboWindow))
	}
	if b.ComboPerHitBonus < 0 {
		errs = append(errs, "battle.combo_per_hit_bonus must not be negative")
	}
	if b.PlayerSpeed <= 0 || b.DashSpeed <= 0 {
		errs = append(errs, "battle.player_speed and battle.dash_speed must be positive")
	}
	if b.PlayerReach <= 0 {
		errs = append(errs, "battle.player_reach must be positive")
	}
	if b.TurnMinDelay <= 0 || b.TurnMaxDelay <= b.TurnMinDelay {
		errs = append(errs, fmt.Sprintf("battle.turn_min_delay (%s) must be positive and less than battle.turn_max_delay (%s)", b.TurnMinDelay, b.TurnMaxDelay))
	}
	if b.TurnTimeout <= b.TurnMaxDelay {
		errs = append(errs, fmt.Sprintf("battle.turn_timeout (%s) must exceed battle.turn_max_delay (%s)", b.TurnTimeout, b.TurnMaxDelay))
	}
	if b.TurnStride <= 0 {
		errs = append(errs, "battle.turn_stride must be positive")
	}
	if b.ProjectileSpeed <= 0 {
		errs = append(errs, "battle.projectile_speed must be positive")
	}
	if b.HitboxLifetime <= 0 {
		errs = append(errs, "battle.hitbox_lifetime must be positive")
	}
	if b.KnockbackClearAfter <= 0 {
		errs = append(errs, "battle.knockback_clear_after must be positive")
	}
	if b.KnockbackDecayPerSec < 0 {
		errs = append(errs, "battle.knockback_decay_per_sec must not be negative")
	}
	if b.FleeWindow <= 0 {
		errs = append(errs, "battle.flee_window must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with FRAY_ prefix
	v.SetEnvPrefix("FRAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.tick_interval", "50ms")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("battle.mode", "realtime")
	v.SetDefault("battle.ap_max", 20)
	v.SetDefault("battle.ap_move_drain_per_sec", 2)
	v.SetDefault("battle.ap_dash_drain_per_sec", 6)
	v.SetDefault("battle.ap_regen_per_sec", 2)
	v.SetDefault("battle.ap_grant_on_hit", 2)
	v.SetDefault("battle.strike_cost", 3)
	v.SetDefault("battle.dash_cost", 2)
	v.SetDefault("battle.dash_duration", "250ms")
	v.SetDefault("battle.combo_window", "600ms")
	v.SetDefault("battle.combo_cooldown", "150ms")
	v.SetDefault("battle.combo_per_hit_bonus", 0.25)
	v.SetDefault("battle.knockback_base", 120)
	v.SetDefault("battle.knockback_per_hit", 40)
	v.SetDefault("battle.player_speed", 180)
	v.SetDefault("battle.dash_speed", 420)
	v.SetDefault("battle.player_reach", 56)
	v.SetDefault("battle.turn_min_delay", "500ms")
	v.SetDefault("battle.turn_max_delay", "1s")
	v.SetDefault("battle.turn_timeout", "5s")
	v.SetDefault("battle.turn_stride", 64)
	v.SetDefault("battle.projectile_speed", 520)
	v.SetDefault("battle.hitbox_lifetime", "180ms")
	v.SetDefault("battle.knockback_clear_after", "400ms")
	v.SetDefault("battle.knockback_decay_per_sec", 4)
	v.SetDefault("battle.flee_window", "1500ms")

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.script_dir", "")
	v.SetDefault("content.script_instruction_limit", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
