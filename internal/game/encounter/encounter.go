// Package encounter assembles the combat core. One Encounter owns the
// roster, the leader's action-point pool, the combo tracker, the behavior
// engine, the targeting coordinator, the enemy-turn dispatcher, the outcome
// resolver, and a timer list of delayed actions. All mutation happens inside
// Tick and the Request methods; the encounter runs no goroutines and holds
// no timers of its own, so the caller's tick loop is the only writer.
package encounter

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kverkest/fray/internal/game/arena"
	"github.com/kverkest/fray/internal/game/behavior"
	"github.com/kverkest/fray/internal/game/combo"
	"github.com/kverkest/fray/internal/game/dispatch"
	"github.com/kverkest/fray/internal/game/outcome"
	"github.com/kverkest/fray/internal/game/resource"
	"github.com/kverkest/fray/internal/game/rng"
	"github.com/kverkest/fray/internal/game/roster"
	"github.com/kverkest/fray/internal/game/targeting"
)

// Mode selects the opponent-action strategy for one encounter.
type Mode int

const (
	// ModeRealtime gates opponents on the player's vulnerability window.
	ModeRealtime Mode = iota
	// ModeTurns runs dispatched enemy turns after each provoking player
	// action. Preserved as an interchangeable strategy behind the same
	// "opponents may act" predicate the real-time mode uses.
	ModeTurns
)

// String returns the configuration name of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeRealtime:
		return "realtime"
	case ModeTurns:
		return "turns"
	default:
		return "unknown"
	}
}

// Phase is the coarse encounter phase.
type Phase int

const (
	// PhaseRoam is normal play: the player moves and acts freely.
	PhaseRoam Phase = iota
	// PhaseEnemyTurn is a dispatched enemy turn in ModeTurns.
	PhaseEnemyTurn
	// PhaseResolved is terminal; the encounter ignores further input.
	PhaseResolved
)

// String returns the human-readable name of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseRoam:
		return "roam"
	case PhaseEnemyTurn:
		return "enemy_turn"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Config describes one encounter to start. Zero-value policies and sources
// fall back to the package defaults.
type Config struct {
	Mode Mode
	// Arena is the battlefield; nil selects arena.Default().
	Arena *arena.Arena
	// Party is the player party entering the encounter.
	Party roster.PartyDef
	// Opponents are the templates to spawn, in slot order.
	Opponents []*roster.Template
	// Profiles resolves each opponent's behavior profile.
	Profiles *behavior.Registry
	// Archetypes resolves each opponent's combat archetype.
	Archetypes roster.ArchetypeSet
	Rules      Rules
	// ReturnContext identifies where the party came from; it is echoed in
	// the outcome payload so the caller can restore the prior scene.
	ReturnContext string
	// Rng drives every random decision; nil selects the crypto source.
	// Tests and the simulator pass a seeded source.
	Rng rng.Source
	// Reward, Recruit, and Flee override the default outcome policies.
	// Script-provided policies plug in here.
	Reward  outcome.RewardPolicy
	Recruit outcome.RecruitPolicy
	Flee    outcome.FleePolicy
}

// Encounter is one live combat encounter.
//
// Concurrency: Encounter is not safe for concurrent use. The server
// serializes every Tick and Request call per encounter.
type Encounter struct {
	id    uuid.UUID
	mode  Mode
	arena *arena.Arena
	rules Rules

	ros      *roster.Roster
	pool     *resource.Pool
	tracker  *combo.Tracker
	resolver *combo.Resolver
	engine   *behavior.Engine
	coord    *targeting.Coordinator
	disp     *dispatch.Dispatcher
	out      *outcome.Resolver
	sched    *Scheduler

	recruit outcome.RecruitPolicy
	flee    outcome.FleePolicy

	phase        Phase
	dialogueOpen bool
	activity     resource.Activity
	moveDir      arena.Vec2
	fleeingUntil time.Time
	hitboxes     int
	lastDamage   int
	defeatedIDs  []int
	recruitedIDs []int
	events       []Event
	terminal     *outcome.Payload
	now          time.Time
}

// New builds an encounter from cfg, spawning the party on the left of the
// arena and the opposition on the right. now anchors the encounter clock;
// every later Tick and Request is interpreted against it.
func New(cfg Config, now time.Time) (*Encounter, error) {
	a := cfg.Arena
	if a == nil {
		a = arena.Default()
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("encounter.New: %w", err)
	}
	if err := cfg.Party.Validate(); err != nil {
		return nil, fmt.Errorf("encounter.New: %w", err)
	}
	if len(cfg.Opponents) == 0 {
		return nil, fmt.Errorf("encounter.New: at least one opponent template required")
	}
	if cfg.Profiles == nil {
		return nil, fmt.Errorf("encounter.New: profile registry must not be nil")
	}
	if len(cfg.Archetypes) == 0 {
		return nil, fmt.Errorf("encounter.New: archetype set must not be empty")
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("encounter.New: %w", err)
	}

	src := cfg.Rng
	if src == nil {
		src = rng.NewCryptoSource()
	}
	reward := cfg.Reward
	if reward == nil {
		reward = outcome.DefaultRewardPolicy()
	}
	recruit := cfg.Recruit
	if recruit == nil {
		recruit = outcome.DefaultRecruitPolicy(src)
	}
	flee := cfg.Flee
	if flee == nil {
		flee = outcome.DefaultFleePolicy(src)
	}

	tracker, err := combo.NewTracker(cfg.Rules.ComboWindow, cfg.Rules.ComboCooldown)
	if err != nil {
		return nil, fmt.Errorf("encounter.New: %w", err)
	}
	disp, err := dispatch.NewDispatcher(cfg.Rules.Dispatch, cfg.Archetypes, src)
	if err != nil {
		return nil, fmt.Errorf("encounter.New: %w", err)
	}

	id := uuid.New()
	e := &Encounter{
		id:       id,
		mode:     cfg.Mode,
		arena:    a,
		rules:    cfg.Rules,
		ros:      roster.NewRoster(),
		pool:     resource.NewPool(cfg.Rules.Resource),
		tracker:  tracker,
		resolver: combo.NewResolver(cfg.Rules.Strike),
		engine:   behavior.NewEngine(cfg.Profiles),
		coord:    targeting.NewCoordinator(),
		disp:     disp,
		out:      outcome.NewResolver(id, cfg.ReturnContext, reward, cfg.Archetypes),
		sched:    NewScheduler(),
		recruit:  recruit,
		flee:     flee,
		phase:    PhaseRoam,
		now:      now,
	}

	partyAnchor, oppAnchor := a.LockPositions()
	e.ros.AddPartyMember(cfg.Party.Leader, roster.RankLeader, partyAnchor)
	for i, def := range cfg.Party.Followers {
		e.ros.AddPartyMember(def, roster.RankFollower, a.Clamp(partyAnchor.Add(formationOffset(i, -1))))
	}
	for i, tmpl := range cfg.Opponents {
		c, err := e.ros.SpawnOpponent(tmpl, a.Clamp(oppAnchor.Add(formationOffset(i, 1))))
		if err != nil {
			return nil, fmt.Errorf("encounter.New: %w", err)
		}
		if err := e.engine.Attach(c); err != nil {
			return nil, fmt.Errorf("encounter.New: %w", err)
		}
	}
	return e, nil
}

// formationOffset staggers combatant i away from its side's anchor: sign -1
// spreads the party leftward, +1 spreads the opposition rightward.
func formationOffset(i int, sign float64) arena.Vec2 {
	row := float64(i/2 + 1)
	dy := 42 * row
	if i%2 == 1 {
		dy = -dy
	}
	return arena.Vec2{X: sign * 28 * row, Y: dy}
}

// ID returns the encounter's unique identifier.
func (e *Encounter) ID() uuid.UUID { return e.id }

// Mode returns the opponent-action strategy this encounter runs.
func (e *Encounter) Mode() Mode { return e.mode }

// Phase returns the coarse encounter phase.
func (e *Encounter) Phase() Phase { return e.phase }

// Terminal returns the outcome payload once the encounter has resolved, nil
// before that.
func (e *Encounter) Terminal() *outcome.Payload { return e.terminal }

// Roster exposes the combatant roster for inspection.
func (e *Encounter) Roster() *roster.Roster { return e.ros }

// Tick advances the encounter to now: due timers fire, the action-point pool
// drains or regenerates, the leader moves, knockback integrates, and
// opponents act through whichever strategy the mode selects. A resolved
// encounter only advances its clock.
func (e *Encounter) Tick(now time.Time) {
	if e.terminal != nil {
		e.now = now
		return
	}
	delta := now.Sub(e.now)
	if delta < 0 {
		delta = 0
	}
	e.now = now

	e.fireDue(now)
	if e.terminal != nil {
		return
	}
	e.tickResource(delta)
	e.tickLeader(delta)
	e.tickKnockback(delta)
	e.tickOpponents(now, delta)
}

func (e *Encounter) fireDue(now time.Time) {
	for _, ev := range e.sched.Due(now) {
		if e.terminal != nil {
			return
		}
		switch ev.Kind {
		case KindDashEnd:
			e.activity.Dashing = false
		case KindHitboxExpire:
			if e.hitboxes > 0 {
				e.hitboxes--
			}
		case KindKnockbackClear:
			if c, ok := e.ros.Get(ev.TargetID); ok {
				c.Knockback = arena.Vec2{}
			}
		case KindProjectileImpact:
			e.landProjectile(ev)
		case KindFleeWindowClose:
			// The vulnerability predicate compares against fleeingUntil
			// directly; the entry exists so teardown can cancel it.
		}
	}
}

func (e *Encounter) landProjectile(ev ScheduledEvent) {
	target, ok := e.ros.Get(ev.TargetID)
	if !ok || !target.Targetable() {
		return
	}
	e.applyOpponentHit(ev.SourceID, target, ev.Damage, ev.Knockback)
}

func (e *Encounter) tickResource(delta time.Duration) {
	act := e.activity
	leader := e.ros.Leader()
	if e.dialogueOpen || leader == nil || !leader.Targetable() {
		act = resource.Activity{}
	}
	e.pool.Tick(delta, act)
}

func (e *Encounter) tickLeader(delta time.Duration) {
	if e.dialogueOpen {
		return
	}
	leader := e.ros.Leader()
	if leader == nil || !leader.Targetable() {
		return
	}
	if !e.activity.Draining() || e.moveDir == (arena.Vec2{}) {
		return
	}
	speed := e.rules.PlayerSpeed
	if e.activity.Dashing {
		speed = e.rules.DashSpeed
	}
	step := e.moveDir.Normalized().Scale(speed * delta.Seconds())
	leader.Pos = e.arena.Clamp(leader.Pos.Add(step))
}

func (e *Encounter) tickKnockback(delta time.Duration) {
	dt := delta.Seconds()
	decay := 1 - e.rules.KnockbackDecayPerSec*dt
	if decay < 0 {
		decay = 0
	}
	for _, c := range e.ros.All() {
		if c.Knockback == (arena.Vec2{}) || !c.Targetable() {
			continue
		}
		c.Pos = e.arena.Clamp(c.Pos.Add(c.Knockback.Scale(dt)))
		c.Knockback = c.Knockback.Scale(decay)
	}
}

func (e *Encounter) tickOpponents(now time.Time, delta time.Duration) {
	env := behavior.Env{MayAct: e.opponentsMayAct(), Arena: e.arena}
	switch e.mode {
	case ModeRealtime:
		before := e.engine.States()
		intents := e.engine.UpdateAll(now, delta, e.ros, env)
		e.emitBehaviorDiff(before)
		for _, intent := range intents {
			target, ok := e.ros.Get(intent.TargetID)
			if !ok || !target.Targetable() {
				continue
			}
			e.applyOpponentHit(intent.OpponentID, target, intent.Damage, intent.Knockback)
			if e.terminal != nil {
				return
			}
		}
	case ModeTurns:
		before := e.engine.States()
		e.engine.ObserveAll(e.ros)
		e.emitBehaviorDiff(before)
		if !env.MayAct {
			return
		}
		released, done := e.disp.Tick(now, func(id int) bool {
			c, ok := e.ros.Get(id)
			return ok && c.Targetable()
		})
		for _, entry := range released {
			e.executeTurnAction(entry)
			if e.terminal != nil {
				return
			}
		}
		if done {
			e.phase = PhaseRoam
			e.emit(Event{Kind: EventTurnEnded})
		}
	}
}

// executeTurnAction resolves one dispatched entry. The dispatcher already
// skipped invalid opponents, but an earlier entry in the same tick may have
// changed the roster, so liveness is re-checked.
func (e *Encounter) executeTurnAction(entry dispatch.Entry) {
	opp, ok := e.ros.Get(entry.OpponentID)
	if !ok || !opp.Targetable() {
		return
	}
	rec, ok := e.engine.Record(opp.ID)
	if !ok {
		return
	}
	p := rec.Profile()
	target := e.ros.NearestPartyTarget(opp.Pos)
	if target == nil {
		return
	}
	dir := target.Pos.Sub(opp.Pos).Normalized()

	switch entry.Kind {
	case dispatch.KindMelee:
		rec.LastAttack = e.now
		e.applyOpponentHit(opp.ID, target, p.AttackDamage, dir.Scale(p.Knockback))
	case dispatch.KindRanged:
		dist := opp.Pos.DistanceTo(target.Pos)
		if dist > e.arena.LongRange {
			// Out of projectile travel; the action is spent regardless.
			return
		}
		rec.LastAttack = e.now
		travel := time.Duration(dist / e.rules.ProjectileSpeed * float64(time.Second))
		e.sched.Schedule(ScheduledEvent{
			FireAt:    e.now.Add(travel),
			Kind:      KindProjectileImpact,
			SourceID:  opp.ID,
			TargetID:  target.ID,
			Damage:    p.AttackDamage,
			Knockback: dir.Scale(p.Knockback),
		})
	case dispatch.KindAdvance:
		opp.Pos = e.arena.Clamp(opp.Pos.MoveToward(target.Pos, e.rules.TurnStride))
	}
}

// applyOpponentHit lands one opponent attack on a party member: damage, a
// knockback impulse with a scheduled clear, the leader's comeback AP grant,
// and the events that follow.
func (e *Encounter) applyOpponentHit(attackerID int, target *roster.Combatant, damage int, knockback arena.Vec2) {
	target.ApplyDamage(damage)
	if knockback != (arena.Vec2{}) {
		target.Knockback = target.Knockback.Add(knockback)
		e.sched.Schedule(ScheduledEvent{
			FireAt:   e.now.Add(e.rules.KnockbackClearAfter),
			Kind:     KindKnockbackClear,
			TargetID: target.ID,
		})
	}
	if target.IsLeader() {
		e.pool.Grant(e.rules.GrantOnHit)
	}
	e.emit(Event{Kind: EventOpponentHit, ActorID: attackerID, TargetID: target.ID, Damage: damage})
	if target.IsDefeated() {
		e.emit(Event{Kind: EventPartyMemberDown, TargetID: target.ID})
	}
	e.checkOutcome()
}

func (e *Encounter) emitBehaviorDiff(before map[int]behavior.State) {
	after := e.engine.States()
	ids := make([]int, 0, len(after))
	for id := range after {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		prev, ok := before[id]
		if !ok || prev == after[id] {
			continue
		}
		e.emit(Event{Kind: EventBehaviorChanged, ActorID: id, From: prev, To: after[id]})
	}
}

// opponentsMayAct is the single gate both opponent strategies consult. Any
// non-acting phase (resolved, dialogue up, selection browsing) closes it; in
// turn mode it is the dispatched enemy turn, in real-time mode the player's
// vulnerability.
func (e *Encounter) opponentsMayAct() bool {
	if e.terminal != nil || e.dialogueOpen {
		return false
	}
	if e.coord.Mode() == targeting.ModeSelecting {
		return false
	}
	if e.mode == ModeTurns {
		return e.disp.InProgress()
	}
	return e.playerVulnerable()
}

// playerVulnerable reports whether the leader is exposed: moving, dashing,
// charging, or inside the window a flee attempt opened.
func (e *Encounter) playerVulnerable() bool {
	if e.activity.Draining() || e.activity.Charging {
		return true
	}
	return e.now.Before(e.fleeingUntil)
}

func (e *Encounter) acceptingInput() bool {
	return e.terminal == nil && !e.dialogueOpen
}

// RequestMove points the leader's movement at dir; a zero vector stops.
func (e *Encounter) RequestMove(dir arena.Vec2) {
	if !e.acceptingInput() {
		return
	}
	e.moveDir = dir
	e.activity.Moving = dir != (arena.Vec2{})
}

// RequestDash starts a dash burst along the current movement direction. The
// burst costs AP up front and drains at the dash rate until it ends; when
// the pool cannot cover the cost the dash is refused outright.
func (e *Encounter) RequestDash() {
	if !e.acceptingInput() {
		return
	}
	leader := e.ros.Leader()
	if leader == nil || !leader.Targetable() {
		return
	}
	if e.activity.Dashing || e.moveDir == (arena.Vec2{}) {
		return
	}
	if !e.pool.Consume(e.rules.DashCost) {
		e.emit(Event{Kind: EventNoResource})
		return
	}
	e.activity.Dashing = true
	e.sched.Schedule(ScheduledEvent{FireAt: e.now.Add(e.rules.DashDuration), Kind: KindDashEnd})
}

// RequestChargeStart begins charging: AP regenerates while the leader stands
// exposed.
func (e *Encounter) RequestChargeStart() {
	if !e.acceptingInput() {
		return
	}
	e.activity.Charging = true
}

// RequestChargeStop ends charging.
func (e *Encounter) RequestChargeStop() {
	if !e.acceptingInput() {
		return
	}
	e.activity.Charging = false
}

// RequestStrike lands one leader strike on the locked opponent, or on the
// nearest opponent in reach when unlocked. The strike is silently refused
// while the combo cooldown holds and aborts entirely when the pool cannot
// cover its cost.
func (e *Encounter) RequestStrike() {
	if !e.acceptingInput() {
		return
	}
	leader := e.ros.Leader()
	if leader == nil || !leader.Targetable() {
		return
	}
	target := e.strikeTarget(leader)
	if target == nil {
		return
	}
	if !e.tracker.Ready(e.now) {
		return
	}
	if !e.pool.Consume(e.rules.StrikeCost) {
		e.emit(Event{Kind: EventNoResource})
		return
	}

	hitIndex := e.tracker.Advance(e.now)
	res := e.resolver.Strike(leader, target, hitIndex)
	e.lastDamage = res.DamageDealt
	if res.Knockback != (arena.Vec2{}) {
		target.Knockback = target.Knockback.Add(res.Knockback)
		e.sched.Schedule(ScheduledEvent{
			FireAt:   e.now.Add(e.rules.KnockbackClearAfter),
			Kind:     KindKnockbackClear,
			TargetID: target.ID,
		})
	}
	e.hitboxes++
	e.sched.Schedule(ScheduledEvent{FireAt: e.now.Add(e.rules.HitboxLifetime), Kind: KindHitboxExpire})
	e.noteAttacked(target.ID)
	e.emit(Event{Kind: EventStrike, ActorID: leader.ID, TargetID: target.ID, Damage: res.DamageDealt, Tier: res.Tier})

	if res.TargetDefeated {
		e.opponentDefeated(target)
		if e.terminal != nil {
			return
		}
	}
	e.beginEnemyTurn()
}

// strikeTarget resolves which opponent a strike hits. A locked strike always
// reaches its subject; an unlocked strike needs an opponent inside melee
// reach. Browsing the selection overlay suspends striking.
func (e *Encounter) strikeTarget(leader *roster.Combatant) *roster.Combatant {
	switch e.coord.Mode() {
	case targeting.ModeLocked:
		id, _ := e.coord.LockedID()
		c, ok := e.ros.Get(id)
		if !ok || !c.Targetable() {
			// Removal normally breaks the lock synchronously; a stale lock
			// resolves to no target rather than panicking.
			e.rosterChanged()
			return nil
		}
		return c
	case targeting.ModeSelecting:
		return nil
	}
	var nearest *roster.Combatant
	best := 0.0
	for _, opp := range e.ros.LivingOpponents() {
		d := leader.Pos.DistanceTo(opp.Pos)
		if d > e.rules.PlayerReach {
			continue
		}
		if nearest == nil || d < best {
			nearest, best = opp, d
		}
	}
	return nearest
}

// noteAttacked forwards a landed strike to the behavior record and emits the
// transition it may cause.
func (e *Encounter) noteAttacked(opponentID int) {
	rec, ok := e.engine.Record(opponentID)
	if !ok {
		return
	}
	before := rec.State
	rec.NoteAttacked()
	if rec.State != before {
		e.emit(Event{Kind: EventBehaviorChanged, ActorID: opponentID, From: before, To: rec.State})
	}
}

// opponentDefeated removes a defeated opponent and reconciles everything
// that referenced it.
func (e *Encounter) opponentDefeated(c *roster.Combatant) {
	e.defeatedIDs = append(e.defeatedIDs, c.ID)
	_ = e.ros.RemoveOpponent(c.ID)
	e.engine.Detach(c.ID)
	e.emit(Event{Kind: EventOpponentDown, TargetID: c.ID})
	e.rosterChanged()
	e.checkOutcome()
}

// rosterChanged reconciles targeting with the live roster after a removal.
func (e *Encounter) rosterChanged() {
	switch e.coord.NoteRosterChanged(e.ros.LivingOpponents()) {
	case targeting.LockToSelecting:
		e.clearSuppression()
		e.emit(Event{Kind: EventTargetingChanged, Mode: targeting.ModeSelecting})
	case targeting.LockRosterEmpty:
		e.clearSuppression()
		e.emit(Event{Kind: EventTargetingChanged, Mode: targeting.ModeFree})
	}
}

// RequestBeginSelect opens the target-selection overlay.
func (e *Encounter) RequestBeginSelect() {
	if !e.acceptingInput() {
		return
	}
	if e.coord.BeginSelect() {
		e.emit(Event{Kind: EventTargetingChanged, Mode: targeting.ModeSelecting})
	}
}

// RequestSelectNext moves the selection highlight forward, wrapping past the
// end of the live roster.
func (e *Encounter) RequestSelectNext() {
	if !e.acceptingInput() || e.coord.Mode() != targeting.ModeSelecting {
		return
	}
	n := len(e.ros.LivingOpponents())
	if n == 0 {
		return
	}
	e.coord.SelectNext(n)
	e.emit(Event{Kind: EventTargetingChanged, Mode: targeting.ModeSelecting})
}

// RequestSelectPrevious moves the selection highlight backward, wrapping
// before the start of the live roster.
func (e *Encounter) RequestSelectPrevious() {
	if !e.acceptingInput() || e.coord.Mode() != targeting.ModeSelecting {
		return
	}
	n := len(e.ros.LivingOpponents())
	if n == 0 {
		return
	}
	e.coord.SelectPrevious(n)
	e.emit(Event{Kind: EventTargetingChanged, Mode: targeting.ModeSelecting})
}

// RequestConfirmTarget locks the highlighted opponent and arranges the duel:
// leader and subject snap to the lock anchors and everyone else is
// suppressed. Confirming over an empty roster changes nothing.
func (e *Encounter) RequestConfirmTarget() {
	if !e.acceptingInput() {
		return
	}
	subject, ok := e.coord.Confirm(e.ros.LivingOpponents())
	if !ok {
		return
	}
	leaderPos, subjectPos := e.arena.LockPositions()
	if leader := e.ros.Leader(); leader != nil {
		leader.Pos = leaderPos
	}
	subject.Pos = subjectPos
	for _, c := range e.ros.All() {
		c.Suppressed = !c.IsLeader() && c.ID != subject.ID
	}
	e.emit(Event{Kind: EventTargetingChanged, Mode: targeting.ModeLocked, TargetID: subject.ID})
}

// RequestCancelSelect abandons selection and returns to free play.
func (e *Encounter) RequestCancelSelect() {
	if !e.acceptingInput() {
		return
	}
	if e.coord.Cancel() {
		e.emit(Event{Kind: EventTargetingChanged, Mode: targeting.ModeFree})
	}
}

// RequestDisengage breaks an active lock without leaving the encounter.
func (e *Encounter) RequestDisengage() {
	if !e.acceptingInput() {
		return
	}
	if e.coord.Disengage() {
		e.clearSuppression()
		e.emit(Event{Kind: EventTargetingChanged, Mode: targeting.ModeFree})
	}
}

// RequestFlee attempts to leave the encounter. The attempt itself opens a
// vulnerability window; only a successful roll resolves the encounter as a
// disengage.
func (e *Encounter) RequestFlee() {
	if !e.acceptingInput() {
		return
	}
	leader := e.ros.Leader()
	if leader == nil || !leader.Targetable() {
		return
	}
	e.fleeingUntil = e.now.Add(e.rules.FleeWindow)
	e.sched.Schedule(ScheduledEvent{FireAt: e.fleeingUntil, Kind: KindFleeWindowClose})

	highest := 0
	for _, opp := range e.ros.LivingOpponents() {
		if opp.Level > highest {
			highest = opp.Level
		}
	}
	if e.flee(outcome.FleeInput{LeaderLevel: leader.Level, HighestOpponentLevel: highest}) {
		if p := e.out.Disengage(e.now, e.ros, e.defeatedIDs, e.recruitedIDs); p != nil {
			e.finish(p)
		}
		return
	}
	e.emit(Event{Kind: EventFleeFailed})
	e.beginEnemyTurn()
}

// RequestRecruit attempts to recruit the locked opponent. Recruitment is a
// negotiation inside an active lock; outside one it does nothing. A failed
// attempt provokes.
func (e *Encounter) RequestRecruit() {
	if !e.acceptingInput() {
		return
	}
	id, ok := e.coord.LockedID()
	if !ok {
		return
	}
	subject, found := e.ros.Get(id)
	if !found || !subject.Targetable() {
		e.rosterChanged()
		return
	}
	leader := e.ros.Leader()
	if leader == nil {
		return
	}
	in := outcome.RecruitInput{
		Recruitable:    subject.Recruitable,
		HealthFraction: subject.HealthFraction(),
		OpponentLevel:  subject.Level,
		PlayerLevel:    leader.Level,
	}
	if !e.recruit(in) {
		e.emit(Event{Kind: EventRecruitFailed, TargetID: subject.ID})
		e.beginEnemyTurn()
		return
	}
	e.recruitedIDs = append(e.recruitedIDs, subject.ID)
	_ = e.ros.RemoveOpponent(subject.ID)
	e.engine.Detach(subject.ID)
	e.emit(Event{Kind: EventRecruited, TargetID: subject.ID})
	e.rosterChanged()
	e.checkOutcome()
}

// SetDialogueOpen tracks whether presentation has a dialogue overlay up.
// While open, opponents freeze and player requests are ignored.
func (e *Encounter) SetDialogueOpen(open bool) {
	if e.terminal != nil {
		return
	}
	e.dialogueOpen = open
}

// beginEnemyTurn starts a dispatched enemy turn after a provoking player
// action. Real-time encounters never dispatch; a turn already in progress
// refuses re-entry inside the dispatcher and is left alone.
func (e *Encounter) beginEnemyTurn() {
	if e.mode != ModeTurns || e.terminal != nil {
		return
	}
	if err := e.disp.Begin(e.now, e.ros.LivingOpponents()); err != nil {
		return
	}
	if e.disp.InProgress() {
		e.phase = PhaseEnemyTurn
		e.emit(Event{Kind: EventTurnStarted})
	}
}

func (e *Encounter) checkOutcome() {
	if e.terminal != nil {
		return
	}
	leaderLevel := 1
	if leader := e.ros.Leader(); leader != nil {
		leaderLevel = leader.Level
	}
	if p := e.out.Check(e.now, e.ros, leaderLevel, e.defeatedIDs, e.recruitedIDs); p != nil {
		e.finish(p)
	}
}

// finish tears the encounter down. Pending delayed actions and queued enemy
// actions are cleared synchronously so nothing can mutate a resolved
// encounter afterwards.
func (e *Encounter) finish(p *outcome.Payload) {
	e.terminal = p
	e.phase = PhaseResolved
	e.sched.Clear()
	e.disp.Abort()
	e.coord.Reset()
	e.clearSuppression()
	e.activity = resource.Activity{}
	e.moveDir = arena.Vec2{}
	e.hitboxes = 0
	e.emit(Event{Kind: EventOutcome, Outcome: p})
}

func (e *Encounter) clearSuppression() {
	for _, c := range e.ros.All() {
		c.Suppressed = false
	}
}
