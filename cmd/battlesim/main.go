// Package main provides a headless encounter simulator: a scripted leader
// fights a full encounter against a seeded random source, printing every
// event as it fires. Useful for tuning battle rules without a client; the
// same seed replays the same fight.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kverkest/fray/internal/battleserver"
	"github.com/kverkest/fray/internal/game/arena"
	"github.com/kverkest/fray/internal/game/behavior"
	"github.com/kverkest/fray/internal/game/encounter"
	"github.com/kverkest/fray/internal/game/rng"
	"github.com/kverkest/fray/internal/game/roster"
	"github.com/kverkest/fray/internal/game/targeting"
)

func main() {
	mode := flag.String("mode", "realtime", "opponent action mode: realtime or turns")
	seed := flag.Int64("seed", 1, "random seed")
	contentDir := flag.String("content", "", "content directory (empty uses built-in content)")
	opponentList := flag.String("opponents", "", "comma-separated opponent template ids")
	maxDur := flag.Duration("max", 2*time.Minute, "maximum simulated time")
	tick := flag.Duration("tick", 50*time.Millisecond, "simulation step")
	flag.Parse()

	if err := run(*mode, *seed, *contentDir, *opponentList, *maxDur, *tick); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(modeName string, seed int64, contentDir, opponentList string, maxDur, tick time.Duration) error {
	var mode encounter.Mode
	switch modeName {
	case "realtime":
		mode = encounter.ModeRealtime
	case "turns":
		mode = encounter.ModeTurns
	default:
		return fmt.Errorf("unknown mode %q (supported: realtime, turns)", modeName)
	}

	var content *battleserver.Content
	if contentDir != "" {
		c, err := battleserver.LoadContent(contentDir, zap.NewNop())
		if err != nil {
			return err
		}
		content = c
	} else {
		content = &battleserver.Content{
			Arenas:     []*arena.Arena{arena.Default()},
			Templates:  roster.DefaultTemplates(),
			Profiles:   behavior.DefaultProfiles(),
			Archetypes: roster.DefaultArchetypes(),
			Party:      roster.DefaultParty(),
		}
	}

	spawn, err := pickOpponents(content.Templates, opponentList)
	if err != nil {
		return err
	}

	rules := encounter.DefaultRules()
	base := time.Unix(0, 0).UTC()

	enc, err := encounter.New(encounter.Config{
		Mode:          mode,
		Arena:         content.Arenas[0],
		Party:         *content.Party,
		Opponents:     spawn,
		Profiles:      content.Profiles,
		Archetypes:    content.Archetypes,
		Rules:         rules,
		ReturnContext: "sim",
		Rng:           rng.NewSeededSource(seed),
	}, base)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(spawn))
	for _, tmpl := range spawn {
		names = append(names, tmpl.ID)
	}
	fmt.Printf("%s leads the party against %s (%s mode, seed %d)\n\n",
		content.Party.Leader.Name, strings.Join(names, ", "), modeName, seed)

	var elapsed time.Duration
	for elapsed = 0; elapsed <= maxDur; elapsed += tick {
		now := base.Add(elapsed)
		enc.Tick(now)
		drive(enc, rules)
		for _, ev := range enc.DrainEvents() {
			fmt.Printf("[%7.2fs] %s\n", elapsed.Seconds(), formatEvent(ev))
		}
		if enc.Terminal() != nil {
			break
		}
	}

	snap := enc.Snapshot()
	if snap.Outcome == nil {
		fmt.Printf("\nno resolution after %s\n", maxDur)
		return nil
	}
	p := snap.Outcome
	fmt.Printf("\n%s after %s: reward %d, %d defeated, %d recruited\n",
		p.Kind, elapsed.Round(time.Millisecond), p.Reward, len(p.DefeatedIDs), len(p.RecruitedIDs))
	for _, m := range p.Party {
		status := fmt.Sprintf("%d/%d HP", m.CurrentHP, m.MaxHP)
		if m.Downed {
			status = "downed"
		}
		fmt.Printf("  %-12s %s\n", m.Name, status)
	}
	return nil
}

// pickOpponents resolves the -opponents flag against the loaded templates;
// an empty flag spawns the first templates, capped at three.
func pickOpponents(templates []*roster.Template, list string) ([]*roster.Template, error) {
	if list == "" {
		n := len(templates)
		if n > 3 {
			n = 3
		}
		return templates[:n], nil
	}
	var spawn []*roster.Template
	for _, id := range strings.Split(list, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		found := false
		for _, tmpl := range templates {
			if tmpl.ID == id {
				spawn = append(spawn, tmpl)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown opponent template %q", id)
		}
	}
	if len(spawn) == 0 {
		return nil, fmt.Errorf("no opponents selected")
	}
	return spawn, nil
}

// drive is the scripted leader: lock the first living opponent, strike
// whenever the pool covers the cost, recharge when it does not.
func drive(enc *encounter.Encounter, rules encounter.Rules) {
	if enc.Terminal() != nil {
		return
	}
	snap := enc.Snapshot()
	if snap.Targeting.LockedID < 0 {
		enc.RequestBeginSelect()
		enc.RequestConfirmTarget()
	}
	if snap.AP < rules.StrikeCost {
		enc.RequestChargeStart()
		return
	}
	enc.RequestChargeStop()
	enc.RequestStrike()
}

func formatEvent(ev encounter.Event) string {
	switch ev.Kind {
	case encounter.EventStrike:
		return fmt.Sprintf("strike           slot %d for %d damage (%s)", ev.TargetID, ev.Damage, ev.Tier)
	case encounter.EventOpponentHit:
		return fmt.Sprintf("hit taken        slot %d struck slot %d for %d", ev.ActorID, ev.TargetID, ev.Damage)
	case encounter.EventNoResource:
		return "refused          not enough action points"
	case encounter.EventOpponentDown:
		return fmt.Sprintf("opponent down    slot %d", ev.TargetID)
	case encounter.EventPartyMemberDown:
		return fmt.Sprintf("party down       slot %d", ev.TargetID)
	case encounter.EventBehaviorChanged:
		return fmt.Sprintf("behavior         slot %d %s -> %s", ev.ActorID, ev.From, ev.To)
	case encounter.EventTargetingChanged:
		if ev.Mode == targeting.ModeLocked {
			return fmt.Sprintf("targeting        locked on slot %d", ev.TargetID)
		}
		return fmt.Sprintf("targeting        %s", ev.Mode)
	case encounter.EventTurnStarted:
		return "enemy turn       begins"
	case encounter.EventTurnEnded:
		return "enemy turn       ends"
	case encounter.EventFleeFailed:
		return "flee failed"
	case encounter.EventRecruitFailed:
		return fmt.Sprintf("recruit failed   slot %d", ev.TargetID)
	case encounter.EventRecruited:
		return fmt.Sprintf("recruited        slot %d", ev.TargetID)
	case encounter.EventOutcome:
		return fmt.Sprintf("outcome          %s", ev.Outcome.Kind)
	default:
		return ev.Kind.String()
	}
}
