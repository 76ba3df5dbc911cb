package outcome_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/kverkest/fray/internal/game/outcome"
)

// seqSource replays scripted rolls; the last value repeats when exhausted.
type seqSource struct {
	ints   []int
	floats []float64
}

func (s *seqSource) Intn(n int) int {
	v := s.ints[0]
	if len(s.ints) > 1 {
		s.ints = s.ints[1:]
	}
	return v % n
}

func (s *seqSource) Float64() float64 {
	v := s.floats[0]
	if len(s.floats) > 1 {
		s.floats = s.floats[1:]
	}
	return v
}

func TestDefaultRewardPolicy_ScalesByLevelRatio(t *testing.T) {
	p := outcome.DefaultRewardPolicy()
	assert.Equal(t, 8, p(outcome.RewardInput{RewardBase: 12, OpponentLevel: 2, PlayerLevel: 3}))
	assert.Equal(t, 2, p(outcome.RewardInput{RewardBase: 12, OpponentLevel: 1, PlayerLevel: 5}))
	assert.Equal(t, 24, p(outcome.RewardInput{RewardBase: 12, OpponentLevel: 4, PlayerLevel: 2}))
}

func TestDefaultRewardPolicy_NeverBelowOne(t *testing.T) {
	p := outcome.DefaultRewardPolicy()
	assert.Equal(t, 1, p(outcome.RewardInput{RewardBase: 1, OpponentLevel: 1, PlayerLevel: 5}))
}

func TestDefaultRewardPolicy_GuardsZeroPlayerLevel(t *testing.T) {
	p := outcome.DefaultRewardPolicy()
	assert.Equal(t, 24, p(outcome.RewardInput{RewardBase: 12, OpponentLevel: 2, PlayerLevel: 0}))
}

func TestDefaultRewardPolicy_Property_AlwaysPositive(t *testing.T) {
	p := outcome.DefaultRewardPolicy()
	rapid.Check(t, func(rt *rapid.T) {
		in := outcome.RewardInput{
			RewardBase:    rapid.IntRange(1, 100).Draw(rt, "base"),
			OpponentLevel: rapid.IntRange(1, 20).Draw(rt, "opp"),
			PlayerLevel:   rapid.IntRange(0, 20).Draw(rt, "player"),
		}
		if got := p(in); got < 1 {
			rt.Fatalf("reward %d for %+v", got, in)
		}
	})
}

func TestDefaultRecruitPolicy_RequiresRecruitableFlag(t *testing.T) {
	p := outcome.DefaultRecruitPolicy(&seqSource{floats: []float64{0}})
	assert.False(t, p(outcome.RecruitInput{Recruitable: false, HealthFraction: 0.1, OpponentLevel: 2, PlayerLevel: 3}))
}

func TestDefaultRecruitPolicy_RequiresSoftenedTarget(t *testing.T) {
	p := outcome.DefaultRecruitPolicy(&seqSource{floats: []float64{0}})
	assert.False(t, p(outcome.RecruitInput{Recruitable: true, HealthFraction: 0.51, OpponentLevel: 2, PlayerLevel: 3}))
	assert.True(t, p(outcome.RecruitInput{Recruitable: true, HealthFraction: 0.5, OpponentLevel: 2, PlayerLevel: 3}),
		"half health is eligible")
}

func TestDefaultRecruitPolicy_RollsAgainstLevelAdjustedChance(t *testing.T) {
	// Player 3 vs opponent 2: chance 0.40.
	in := outcome.RecruitInput{Recruitable: true, HealthFraction: 0.3, OpponentLevel: 2, PlayerLevel: 3}

	assert.True(t, outcome.DefaultRecruitPolicy(&seqSource{floats: []float64{0.35}})(in))
	assert.False(t, outcome.DefaultRecruitPolicy(&seqSource{floats: []float64{0.45}})(in))
}

func TestDefaultRecruitPolicy_ChanceClamps(t *testing.T) {
	over := outcome.RecruitInput{Recruitable: true, HealthFraction: 0.3, OpponentLevel: 1, PlayerLevel: 20}
	assert.True(t, outcome.DefaultRecruitPolicy(&seqSource{floats: []float64{0.949}})(over))
	assert.False(t, outcome.DefaultRecruitPolicy(&seqSource{floats: []float64{0.95}})(over),
		"chance caps at 0.95 no matter the level gap")

	under := outcome.RecruitInput{Recruitable: true, HealthFraction: 0.3, OpponentLevel: 20, PlayerLevel: 1}
	assert.True(t, outcome.DefaultRecruitPolicy(&seqSource{floats: []float64{0.049}})(under))
	assert.False(t, outcome.DefaultRecruitPolicy(&seqSource{floats: []float64{0.05}})(under),
		"chance floors at 0.05 no matter the level gap")
}

func TestDefaultFleePolicy_TieFavorsParty(t *testing.T) {
	p := outcome.DefaultFleePolicy(&seqSource{ints: []int{10, 10}})
	assert.True(t, p(outcome.FleeInput{LeaderLevel: 3, HighestOpponentLevel: 3}))
}

func TestDefaultFleePolicy_OutrolledLeaderFails(t *testing.T) {
	p := outcome.DefaultFleePolicy(&seqSource{ints: []int{1, 19}})
	assert.False(t, p(outcome.FleeInput{LeaderLevel: 3, HighestOpponentLevel: 3}))
}

func TestDefaultFleePolicy_LevelGapCompensates(t *testing.T) {
	p := outcome.DefaultFleePolicy(&seqSource{ints: []int{1, 2}})
	assert.True(t, p(outcome.FleeInput{LeaderLevel: 6, HighestOpponentLevel: 3}),
		"leader 2+6 beats opponent 3+3 despite the worse roll")
}
