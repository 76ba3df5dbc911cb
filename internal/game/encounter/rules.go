package encounter

import (
	"fmt"
	"time"

	"github.com/kverkest/fray/internal/game/combo"
	"github.com/kverkest/fray/internal/game/dispatch"
	"github.com/kverkest/fray/internal/game/resource"
)

// Rules is the numeric tuning an encounter runs on. The server assembles it
// from configuration; tests and the simulator build it directly.
type Rules struct {
	// Resource tunes the leader's action point pool.
	Resource resource.Config

	// ComboWindow is the maximum gap between hits that still chains them.
	ComboWindow time.Duration
	// ComboCooldown is the minimum gap between successive strikes.
	ComboCooldown time.Duration
	// Strike tunes combo damage scaling and knockback.
	Strike combo.ResolverConfig
	// StrikeCost is the action point cost of one player strike.
	StrikeCost float64
	// DashCost is the action point cost of starting a dash burst.
	DashCost float64
	// DashDuration is how long one dash burst lasts.
	DashDuration time.Duration
	// GrantOnHit is the action point grant when the leader is struck.
	GrantOnHit float64

	// PlayerSpeed and DashSpeed are leader movement rates in units/sec.
	PlayerSpeed float64
	DashSpeed   float64
	// PlayerReach is the melee reach of an unlocked player strike.
	PlayerReach float64

	// Dispatch tunes the enemy-turn queue used in turn mode.
	Dispatch dispatch.Config
	// TurnStride is how far an advance action moves an opponent in turn mode.
	TurnStride float64
	// ProjectileSpeed is ranged attack travel speed in units/sec.
	ProjectileSpeed float64

	// HitboxLifetime is how long a melee hitbox stays live for presentation.
	HitboxLifetime time.Duration
	// KnockbackClearAfter zeroes residual knockback this long after the hit.
	KnockbackClearAfter time.Duration
	// KnockbackDecayPerSec is the linear decay rate of knockback velocity.
	KnockbackDecayPerSec float64

	// FleeWindow is the vulnerability window a flee attempt opens.
	FleeWindow time.Duration
}

// DefaultRules returns the tuning used when configuration does not override.
func DefaultRules() Rules {
	return Rules{
		Resource: resource.Config{
			Max:             20,
			MoveDrainPerSec: 2,
			DashDrainPerSec: 6,
			RegenPerSec:     2,
		},
		ComboWindow:   600 * time.Millisecond,
		ComboCooldown: 150 * time.Millisecond,
		Strike: combo.ResolverConfig{
			PerHitBonus:     0.25,
			KnockbackBase:   120,
			KnockbackPerHit: 40,
		},
		StrikeCost:   3,
		DashCost:     2,
		DashDuration: 250 * time.Millisecond,
		GrantOnHit:   2,
		PlayerSpeed:  180,
		DashSpeed:    420,
		PlayerReach:  56,
		Dispatch: dispatch.Config{
			MinDelay: 500 * time.Millisecond,
			MaxDelay: time.Second,
			Timeout:  5 * time.Second,
		},
		TurnStride:           64,
		ProjectileSpeed:      520,
		HitboxLifetime:       180 * time.Millisecond,
		KnockbackClearAfter:  400 * time.Millisecond,
		KnockbackDecayPerSec: 4,
		FleeWindow:           1500 * time.Millisecond,
	}
}

// Validate reports the first problem with r.
func (r Rules) Validate() error {
	if err := r.Resource.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if r.ComboWindow <= 0 {
		return fmt.Errorf("rules: combo window must be positive, got %s", r.ComboWindow)
	}
	if r.ComboCooldown < 0 || r.ComboCooldown >= r.ComboWindow {
		return fmt.Errorf("rules: combo cooldown %s must be non-negative and shorter than window %s", r.ComboCooldown, r.ComboWindow)
	}
	if r.Strike.PerHitBonus < 0 {
		return fmt.Errorf("rules: per-hit bonus must be non-negative, got %g", r.Strike.PerHitBonus)
	}
	if r.StrikeCost < 0 {
		return fmt.Errorf("rules: strike cost must be non-negative, got %g", r.StrikeCost)
	}
	if r.DashCost < 0 {
		return fmt.Errorf("rules: dash cost must be non-negative, got %g", r.DashCost)
	}
	if r.DashDuration <= 0 {
		return fmt.Errorf("rules: dash duration must be positive, got %s", r.DashDuration)
	}
	if r.GrantOnHit < 0 {
		return fmt.Errorf("rules: grant on hit must be non-negative, got %g", r.GrantOnHit)
	}
	if r.PlayerSpeed <= 0 || r.DashSpeed <= 0 {
		return fmt.Errorf("rules: movement speeds must be positive, got move %g dash %g", r.PlayerSpeed, r.DashSpeed)
	}
	if r.PlayerReach <= 0 {
		return fmt.Errorf("rules: player reach must be positive, got %g", r.PlayerReach)
	}
	if err := r.Dispatch.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if r.TurnStride <= 0 {
		return fmt.Errorf("rules: turn stride must be positive, got %g", r.TurnStride)
	}
	if r.ProjectileSpeed <= 0 {
		return fmt.Errorf("rules: projectile speed must be positive, got %g", r.ProjectileSpeed)
	}
	if r.HitboxLifetime <= 0 {
		return fmt.Errorf("rules: hitbox lifetime must be positive, got %s", r.HitboxLifetime)
	}
	if r.KnockbackClearAfter <= 0 {
		return fmt.Errorf("rules: knockback clear must be positive, got %s", r.KnockbackClearAfter)
	}
	if r.KnockbackDecayPerSec < 0 {
		return fmt.Errorf("rules: knockback decay must be non-negative, got %g", r.KnockbackDecayPerSec)
	}
	if r.FleeWindow <= 0 {
		return fmt.Errorf("rules: flee window must be positive, got %s", r.FleeWindow)
	}
	return nil
}
