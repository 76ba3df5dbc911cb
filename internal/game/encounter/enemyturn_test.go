package encounter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kverkest/fray/internal/game/arena"
	"github.com/kverkest/fray/internal/game/encounter"
	"github.com/kverkest/fray/internal/game/outcome"
	"github.com/kverkest/fray/internal/game/roster"
)

func lurkerTemplate() *roster.Template {
	return &roster.Template{
		ID: "pit-lurker", Name: "Pit Lurker", Level: 2, MaxHP: 26, Attack: 4,
		Archetype: "lurker", Profile: "grunt",
	}
}

func TestTurnMode_StrikeProvokesDispatchedTurn(t *testing.T) {
	enc := newEncounter(t, encounter.ModeTurns, boarTemplate())
	leader := enc.Roster().Leader()
	boar := lockFirstLiving(t, enc)
	enc.DrainEvents()

	var events []encounter.Event
	drain := func() { events = append(events, enc.DrainEvents()...) }

	enc.RequestStrike()
	drain()
	assert.Equal(t, encounter.PhaseEnemyTurn, enc.Phase())
	assert.Equal(t, 1, countKind(events, encounter.EventTurnStarted))

	// The enemy delay is at least 500ms; nothing lands this early.
	enc.Tick(epoch.Add(200 * time.Millisecond))
	drain()
	assert.Equal(t, 0, countKind(events, encounter.EventOpponentHit))

	// A second strike inside the running turn does not restart it.
	enc.RequestStrike()
	drain()
	assert.Equal(t, 1, countKind(events, encounter.EventTurnStarted))
	assert.Equal(t, 10, boar.CurrentHP)

	// Past the maximum delay the queued melee lands and the turn closes.
	enc.Tick(epoch.Add(1200 * time.Millisecond))
	drain()
	assert.Equal(t, encounter.PhaseRoam, enc.Phase())
	assert.Equal(t, 1, countKind(events, encounter.EventTurnEnded))
	require.Equal(t, 1, countKind(events, encounter.EventOpponentHit))
	for _, ev := range events {
		if ev.Kind == encounter.EventOpponentHit {
			assert.Equal(t, 6, ev.Damage)
			assert.Equal(t, leader.ID, ev.TargetID)
		}
	}
	assert.Equal(t, 54, leader.CurrentHP)
	assert.InDelta(t, 16, enc.Snapshot().AP, 1e-9, "two strikes paid, one comeback grant")
}

func TestTurnMode_OpponentsHoldWithoutProvocation(t *testing.T) {
	enc := newEncounter(t, encounter.ModeTurns, boarTemplate())
	leader := enc.Roster().Leader()
	boar := enc.Roster().Opponents()[0]
	boar.Pos = leader.Pos.Add(arena.Vec2{X: 40})

	// Moving exposes a real-time leader; in turn mode it provokes nothing.
	enc.RequestMove(arena.Vec2{X: 1})
	enc.DrainEvents()
	for i := 1; i <= 3; i++ {
		enc.Tick(epoch.Add(time.Duration(i) * 100 * time.Millisecond))
	}

	assert.Empty(t, enc.DrainEvents())
	assert.Equal(t, 60, leader.CurrentHP)
	assert.Equal(t, encounter.PhaseRoam, enc.Phase())
	assert.InDelta(t, 19.4, enc.Snapshot().AP, 1e-9, "the pool still drains while moving")
}

func TestTurnMode_RangedActionFliesAsProjectile(t *testing.T) {
	enc := newEncounter(t, encounter.ModeTurns, slingerTemplate())
	leader := enc.Roster().Leader()
	slinger := lockFirstLiving(t, enc)
	enc.DrainEvents()

	enc.RequestStrike()
	enc.Tick(epoch.Add(1100 * time.Millisecond))

	// The turn is over but the shot is still in the air.
	assert.Equal(t, encounter.PhaseRoam, enc.Phase())
	snap := enc.Snapshot()
	require.Len(t, snap.Projectiles, 1)
	assert.Equal(t, slinger.ID, snap.Projectiles[0].SourceID)
	assert.Equal(t, leader.ID, snap.Projectiles[0].TargetID)
	assert.Equal(t, 60, leader.CurrentHP)
	enc.DrainEvents()

	// 192 units at 520 units/sec lands just under 370ms after release.
	enc.Tick(epoch.Add(1500 * time.Millisecond))
	events := enc.DrainEvents()
	require.Equal(t, 1, countKind(events, encounter.EventOpponentHit))
	for _, ev := range events {
		if ev.Kind == encounter.EventOpponentHit {
			assert.Equal(t, 4, ev.Damage)
		}
	}
	assert.Equal(t, 56, leader.CurrentHP)
	assert.InDelta(t, 19, enc.Snapshot().AP, 1e-9)
	assert.Empty(t, enc.Snapshot().Projectiles)
}

func TestTurnMode_AdvanceClosesDistance(t *testing.T) {
	enc := newEncounter(t, encounter.ModeTurns, lurkerTemplate())
	lurker := lockFirstLiving(t, enc)
	enc.DrainEvents()

	enc.RequestStrike()
	enc.Tick(epoch.Add(1100 * time.Millisecond))

	events := enc.DrainEvents()
	assert.Equal(t, 0, countKind(events, encounter.EventOpponentHit))
	assert.Equal(t, 1, countKind(events, encounter.EventTurnEnded))
	assert.InDelta(t, 512, lurker.Pos.X, 1e-9, "one stride toward the leader")
	assert.InDelta(t, 270, lurker.Pos.Y, 1e-9)
}

func TestTurnMode_TurnTimesOut(t *testing.T) {
	enc := newEncounter(t, encounter.ModeTurns, boarTemplate())
	leader := enc.Roster().Leader()
	lockFirstLiving(t, enc)
	enc.DrainEvents()

	enc.RequestStrike()
	require.Equal(t, encounter.PhaseEnemyTurn, enc.Phase())
	enc.DrainEvents()

	// No intermediate ticks: the first tick past the deadline abandons the
	// queue instead of releasing it.
	enc.Tick(epoch.Add(5 * time.Second))

	events := enc.DrainEvents()
	assert.Equal(t, 1, countKind(events, encounter.EventTurnEnded))
	assert.Equal(t, 0, countKind(events, encounter.EventOpponentHit))
	assert.Equal(t, encounter.PhaseRoam, enc.Phase())
	assert.Equal(t, 60, leader.CurrentHP)
}

func TestTurnMode_FailedFleeProvokes(t *testing.T) {
	cfg := testConfig(encounter.ModeTurns, boarTemplate())
	cfg.Flee = func(outcome.FleeInput) bool { return false }
	enc, err := encounter.New(cfg, epoch)
	require.NoError(t, err)
	enc.DrainEvents()

	enc.RequestFlee()

	events := enc.DrainEvents()
	assert.Equal(t, 1, countKind(events, encounter.EventFleeFailed))
	assert.Equal(t, 1, countKind(events, encounter.EventTurnStarted))
	assert.Equal(t, encounter.PhaseEnemyTurn, enc.Phase())
	assert.Nil(t, enc.Terminal())
}

func TestTurnMode_FailedRecruitProvokes(t *testing.T) {
	cfg := testConfig(encounter.ModeTurns, boarTemplate())
	cfg.Recruit = func(outcome.RecruitInput) bool { return false }
	enc, err := encounter.New(cfg, epoch)
	require.NoError(t, err)
	boar := lockFirstLiving(t, enc)
	enc.DrainEvents()

	enc.RequestRecruit()

	events := enc.DrainEvents()
	assert.Equal(t, 1, countKind(events, encounter.EventRecruitFailed))
	assert.Equal(t, 1, countKind(events, encounter.EventTurnStarted))
	assert.Equal(t, encounter.PhaseEnemyTurn, enc.Phase())
	assert.False(t, boar.IsDefeated())
	assert.Len(t, enc.Roster().Opponents(), 1)
}

func TestEncounter_FleeSuccessDisengages(t *testing.T) {
	var got outcome.FleeInput
	cfg := testConfig(encounter.ModeRealtime, boarTemplate(), slingerTemplate())
	cfg.Flee = func(in outcome.FleeInput) bool {
		got = in
		return true
	}
	enc, err := encounter.New(cfg, epoch)
	require.NoError(t, err)
	enc.DrainEvents()

	enc.RequestFlee()

	assert.Equal(t, outcome.FleeInput{LeaderLevel: 3, HighestOpponentLevel: 3}, got)

	p := enc.Terminal()
	require.NotNil(t, p)
	assert.Equal(t, outcome.KindDisengage, p.Kind)
	assert.Equal(t, 0, p.Reward)
	assert.Empty(t, p.DefeatedIDs)
	assert.Equal(t, "meadow-7", p.ReturnContext)
	assert.Equal(t, encounter.PhaseResolved, enc.Phase())
	assert.Equal(t, 1, countKind(enc.DrainEvents(), encounter.EventOutcome))
	assert.Len(t, enc.Roster().Opponents(), 2, "fleeing defeats nobody")
}

func TestEncounter_FleeFailureOpensVulnerabilityWindow(t *testing.T) {
	cfg := testConfig(encounter.ModeRealtime, boarTemplate())
	cfg.Flee = func(outcome.FleeInput) bool { return false }
	enc, err := encounter.New(cfg, epoch)
	require.NoError(t, err)
	leader := enc.Roster().Leader()
	boar := enc.Roster().Opponents()[0]
	boar.Pos = leader.Pos.Add(arena.Vec2{X: 40})
	enc.DrainEvents()

	enc.RequestFlee()

	events := enc.DrainEvents()
	assert.Equal(t, 1, countKind(events, encounter.EventFleeFailed))
	assert.Nil(t, enc.Terminal())
	assert.True(t, enc.Snapshot().Vulnerable, "a botched escape leaves the party exposed")

	// Inside the window the boar gets its swing in.
	enc.Tick(epoch.Add(100 * time.Millisecond))
	assert.Equal(t, 54, leader.CurrentHP)

	// Once the window closes the freeze is back on.
	enc.Tick(epoch.Add(1600 * time.Millisecond))
	assert.Equal(t, 54, leader.CurrentHP)
	assert.False(t, enc.Snapshot().Vulnerable)
}

func TestEncounter_RecruitRequiresLock(t *testing.T) {
	cfg := testConfig(encounter.ModeRealtime, boarTemplate())
	cfg.Recruit = func(outcome.RecruitInput) bool { return true }
	enc, err := encounter.New(cfg, epoch)
	require.NoError(t, err)
	enc.DrainEvents()

	enc.RequestRecruit()

	assert.Empty(t, enc.DrainEvents())
	assert.Len(t, enc.Roster().Opponents(), 1)
	assert.Nil(t, enc.Terminal())
}

func TestEncounter_RecruitChainEndsInVictory(t *testing.T) {
	var seen []outcome.RecruitInput
	cfg := testConfig(encounter.ModeRealtime, boarTemplate(), boarTemplate())
	cfg.Recruit = func(in outcome.RecruitInput) bool {
		seen = append(seen, in)
		return true
	}
	enc, err := encounter.New(cfg, epoch)
	require.NoError(t, err)
	opponents := enc.Roster().Opponents()

	var events []encounter.Event
	drain := func() { events = append(events, enc.DrainEvents()...) }

	first := lockFirstLiving(t, enc)
	require.Equal(t, opponents[0].ID, first.ID)
	enc.RequestRecruit()
	drain()

	assert.Equal(t, 1, countKind(events, encounter.EventRecruited))
	assert.Equal(t, "selecting", enc.Snapshot().Targeting.Mode, "losing the subject reopens selection")
	assert.Len(t, enc.Roster().Opponents(), 1)
	assert.Nil(t, enc.Terminal())

	enc.RequestConfirmTarget()
	enc.RequestRecruit()
	drain()

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Recruitable)
	assert.InDelta(t, 1.0, seen[0].HealthFraction, 1e-9)
	assert.Equal(t, 2, seen[0].OpponentLevel)
	assert.Equal(t, 3, seen[0].PlayerLevel)

	assert.Equal(t, 2, countKind(events, encounter.EventRecruited))
	assert.Equal(t, 1, countKind(events, encounter.EventOutcome))

	p := enc.Terminal()
	require.NotNil(t, p)
	assert.Equal(t, outcome.KindVictory, p.Kind)
	assert.Equal(t, 0, p.Reward, "recruits pay nothing")
	assert.Empty(t, p.DefeatedIDs)
	assert.Equal(t, []int{opponents[0].ID, opponents[1].ID}, p.RecruitedIDs)
}
