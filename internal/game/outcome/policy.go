package outcome

import "github.com/kverkest/fray/internal/game/rng"

// RewardInput describes one defeated opponent for reward computation.
type RewardInput struct {
	OpponentLevel int
	PlayerLevel   int
	ArchetypeID   string
	// RewardBase is the archetype's configured per-defeat base.
	RewardBase int
}

// RewardPolicy computes the reward for one defeated opponent.
//
// Postcondition: implementations must return >= 0.
type RewardPolicy func(in RewardInput) int

// RecruitInput describes a recruitment attempt against the locked opponent.
type RecruitInput struct {
	Recruitable    bool
	HealthFraction float64
	OpponentLevel  int
	PlayerLevel    int
}

// RecruitPolicy decides whether a recruitment attempt succeeds.
type RecruitPolicy func(in RecruitInput) bool

// FleeInput describes a flee attempt by the party.
type FleeInput struct {
	LeaderLevel          int
	HighestOpponentLevel int
}

// FleePolicy decides whether a flee attempt succeeds.
type FleePolicy func(in FleeInput) bool

// DefaultRewardPolicy scales the archetype base by the opponent:player level
// ratio, never paying less than 1 per defeat.
func DefaultRewardPolicy() RewardPolicy {
	return func(in RewardInput) int {
		playerLevel := in.PlayerLevel
		if playerLevel < 1 {
			playerLevel = 1
		}
		reward := in.RewardBase * in.OpponentLevel / playerLevel
		if reward < 1 {
			reward = 1
		}
		return reward
	}
}

// DefaultRecruitPolicy requires a recruitable opponent softened to half
// health, then rolls against a level-adjusted chance clamped to [0.05, 0.95].
func DefaultRecruitPolicy(src rng.Source) RecruitPolicy {
	return func(in RecruitInput) bool {
		if !in.Recruitable || in.HealthFraction > 0.5 {
			return false
		}
		chance := 0.35 + 0.05*float64(in.PlayerLevel-in.OpponentLevel)
		if chance < 0.05 {
			chance = 0.05
		}
		if chance > 0.95 {
			chance = 0.95
		}
		return src.Float64() < chance
	}
}

// DefaultFleePolicy resolves an opposed roll: leader's d20 + level against
// the strongest opponent's d20 + level, ties favoring the fleeing party.
func DefaultFleePolicy(src rng.Source) FleePolicy {
	return func(in FleeInput) bool {
		leader := src.Intn(20) + 1 + in.LeaderLevel
		opponent := src.Intn(20) + 1 + in.HighestOpponentLevel
		return leader >= opponent
	}
}
