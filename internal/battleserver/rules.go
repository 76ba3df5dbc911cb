package battleserver

import (
	"fmt"

	"github.com/kverkest/fray/internal/config"
	"github.com/kverkest/fray/internal/game/combo"
	"github.com/kverkest/fray/internal/game/dispatch"
	"github.com/kverkest/fray/internal/game/encounter"
	"github.com/kverkest/fray/internal/game/resource"
)

// rulesFromConfig maps the flat battle tuning block onto the engine rule set.
// Config validation has already checked the value invariants; encounter
// construction re-validates the assembled rules.
func rulesFromConfig(bc config.BattleConfig) encounter.Rules {
	return encounter.Rules{
		Resource: resource.Config{
			Max:             bc.APMax,
			MoveDrainPerSec: bc.APMoveDrainPerSec,
			DashDrainPerSec: bc.APDashDrainPerSec,
			RegenPerSec:     bc.APRegenPerSec,
		},
		ComboWindow:   bc.ComboWindow,
		ComboCooldown: bc.ComboCooldown,
		Strike: combo.ResolverConfig{
			PerHitBonus:     bc.ComboPerHitBonus,
			KnockbackBase:   bc.KnockbackBase,
			KnockbackPerHit: bc.KnockbackPerHit,
		},
		StrikeCost:   bc.StrikeCost,
		DashCost:     bc.DashCost,
		DashDuration: bc.DashDuration,
		GrantOnHit:   bc.APGrantOnHit,
		PlayerSpeed:  bc.PlayerSpeed,
		DashSpeed:    bc.DashSpeed,
		PlayerReach:  bc.PlayerReach,
		Dispatch: dispatch.Config{
			MinDelay: bc.TurnMinDelay,
			MaxDelay: bc.TurnMaxDelay,
			Timeout:  bc.TurnTimeout,
		},
		TurnStride:           bc.TurnStride,
		ProjectileSpeed:      bc.ProjectileSpeed,
		HitboxLifetime:       bc.HitboxLifetime,
		KnockbackClearAfter:  bc.KnockbackClearAfter,
		KnockbackDecayPerSec: bc.KnockbackDecayPerSec,
		FleeWindow:           bc.FleeWindow,
	}
}

// modeFromConfig maps the configured mode string onto the engine mode.
func modeFromConfig(mode string) (encounter.Mode, error) {
	switch mode {
	case "realtime":
		return encounter.ModeRealtime, nil
	case "turns":
		return encounter.ModeTurns, nil
	default:
		return 0, fmt.Errorf("battleserver: unknown battle mode %q", mode)
	}
}
