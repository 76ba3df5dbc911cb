package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/kverkest/fray/internal/game/outcome"
)

// Hook names a policy script may define. Each receives a single table
// argument and overrides the matching Go default when it returns a value of
// the right type; otherwise the fallback decides.
const (
	HookReward  = "reward_for"
	HookRecruit = "recruit_roll"
	HookFlee    = "flee_roll"
)

// RewardPolicy adapts the reward_for hook into an outcome.RewardPolicy.
//
// Precondition: fallback must be non-nil.
func (m *Manager) RewardPolicy(fallback outcome.RewardPolicy) outcome.RewardPolicy {
	return func(in outcome.RewardInput) int {
		tbl := m.newTable(func(L *lua.LState, t *lua.LTable) {
			L.SetField(t, "archetype", lua.LString(in.ArchetypeID))
			L.SetField(t, "reward_base", lua.LNumber(in.RewardBase))
			L.SetField(t, "opponent_level", lua.LNumber(in.OpponentLevel))
			L.SetField(t, "player_level", lua.LNumber(in.PlayerLevel))
		})
		if tbl == nil {
			return fallback(in)
		}
		ret, _ := m.CallHook(HookReward, tbl)
		if n, ok := ret.(lua.LNumber); ok {
			reward := int(n)
			if reward < 0 {
				reward = 0
			}
			return reward
		}
		return fallback(in)
	}
}

// RecruitPolicy adapts the recruit_roll hook into an outcome.RecruitPolicy.
//
// Precondition: fallback must be non-nil.
func (m *Manager) RecruitPolicy(fallback outcome.RecruitPolicy) outcome.RecruitPolicy {
	return func(in outcome.RecruitInput) bool {
		tbl := m.newTable(func(L *lua.LState, t *lua.LTable) {
			L.SetField(t, "recruitable", lua.LBool(in.Recruitable))
			L.SetField(t, "health_fraction", lua.LNumber(in.HealthFraction))
			L.SetField(t, "opponent_level", lua.LNumber(in.OpponentLevel))
			L.SetField(t, "player_level", lua.LNumber(in.PlayerLevel))
		})
		if tbl == nil {
			return fallback(in)
		}
		ret, _ := m.CallHook(HookRecruit, tbl)
		if b, ok := ret.(lua.LBool); ok {
			return bool(b)
		}
		return fallback(in)
	}
}

// FleePolicy adapts the flee_roll hook into an outcome.FleePolicy.
//
// Precondition: fallback must be non-nil.
func (m *Manager) FleePolicy(fallback outcome.FleePolicy) outcome.FleePolicy {
	return func(in outcome.FleeInput) bool {
		tbl := m.newTable(func(L *lua.LState, t *lua.LTable) {
			L.SetField(t, "leader_level", lua.LNumber(in.LeaderLevel))
			L.SetField(t, "highest_opponent_level", lua.LNumber(in.HighestOpponentLevel))
		})
		if tbl == nil {
			return fallback(in)
		}
		ret, _ := m.CallHook(HookFlee, tbl)
		if b, ok := ret.(lua.LBool); ok {
			return bool(b)
		}
		return fallback(in)
	}
}

// newTable builds an argument table inside the policy VM, or nil when no VM
// is loaded. Building the table in the same LState as the call keeps
// GopherLua's single-state value ownership intact.
func (m *Manager) newTable(fill func(*lua.LState, *lua.LTable)) *lua.LTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil
	}
	t := m.state.NewTable()
	fill(m.state, t)
	return t
}
