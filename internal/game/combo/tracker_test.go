package combo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kverkest/fray/internal/game/combo"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// newTracker builds the standard test tracker: 600ms window, 150ms cooldown.
func newTracker() *combo.Tracker {
	tr, err := combo.NewTracker(600*time.Millisecond, 150*time.Millisecond)
	if err != nil {
		panic(err)
	}
	return tr
}

func TestNewTracker_RejectsZeroWindow(t *testing.T) {
	_, err := combo.NewTracker(0, 0)
	assert.Error(t, err)
}

func TestNewTracker_RejectsCooldownAtWindow(t *testing.T) {
	_, err := combo.NewTracker(600*time.Millisecond, 600*time.Millisecond)
	assert.Error(t, err)
}

func TestTracker_FirstStrikeAlwaysReady(t *testing.T) {
	assert.True(t, newTracker().Ready(epoch))
}

func TestTracker_ChainWithinWindow(t *testing.T) {
	tr := newTracker()
	assert.Equal(t, 1, tr.Advance(epoch))
	assert.Equal(t, 2, tr.Advance(epoch.Add(300*time.Millisecond)))
	assert.Equal(t, 3, tr.Advance(epoch.Add(600*time.Millisecond)))
}

func TestTracker_GapBeyondWindowResets(t *testing.T) {
	tr := newTracker()
	tr.Advance(epoch)
	tr.Advance(epoch.Add(300 * time.Millisecond))
	// 900ms after the second hit: the window has lapsed.
	assert.Equal(t, 1, tr.Advance(epoch.Add(1200*time.Millisecond)))
}

func TestTracker_WiderWindowSameGapStillLapses(t *testing.T) {
	tr, err := combo.NewTracker(800*time.Millisecond, 150*time.Millisecond)
	require.NoError(t, err)
	tr.Advance(epoch)
	tr.Advance(epoch.Add(300 * time.Millisecond))
	assert.Equal(t, 1, tr.Advance(epoch.Add(1200*time.Millisecond)))
}

func TestTracker_ExactWindowBoundaryContinues(t *testing.T) {
	tr := newTracker()
	tr.Advance(epoch)
	assert.Equal(t, 2, tr.Advance(epoch.Add(600*time.Millisecond)))
}

func TestTracker_CooldownGatesReady(t *testing.T) {
	tr := newTracker()
	tr.Advance(epoch)
	assert.False(t, tr.Ready(epoch.Add(100*time.Millisecond)))
	assert.True(t, tr.Ready(epoch.Add(150*time.Millisecond)))
}

func TestTracker_Count_ZeroAfterWindowLapses(t *testing.T) {
	tr := newTracker()
	tr.Advance(epoch)
	tr.Advance(epoch.Add(200 * time.Millisecond))
	assert.Equal(t, 2, tr.Count(epoch.Add(500*time.Millisecond)))
	assert.Equal(t, 0, tr.Count(epoch.Add(2*time.Second)))
}

func TestTracker_Count_ZeroBeforeFirstHit(t *testing.T) {
	assert.Equal(t, 0, newTracker().Count(epoch))
}

func TestTracker_Reset_AbandonsChain(t *testing.T) {
	tr := newTracker()
	tr.Advance(epoch)
	tr.Advance(epoch.Add(200 * time.Millisecond))
	tr.Reset()
	assert.Equal(t, 0, tr.Count(epoch.Add(250*time.Millisecond)))
	assert.Equal(t, 1, tr.Advance(epoch.Add(300*time.Millisecond)),
		"a reset chain restarts at index 1")
}

func TestPropertyTracker_IndexGrowsByOneWithinWindow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := newTracker()
		now := epoch
		prev := tr.Advance(now)
		hits := rapid.IntRange(1, 10).Draw(t, "hits")
		for i := 0; i < hits; i++ {
			gap := rapid.IntRange(150, 600).Draw(t, "gap_ms")
			now = now.Add(time.Duration(gap) * time.Millisecond)
			require.True(t, tr.Ready(now))
			idx := tr.Advance(now)
			assert.Equal(t, prev+1, idx, "gaps inside the window extend the chain by one")
			prev = idx
		}
	})
}

func TestPropertyTracker_LapsedWindowAlwaysRestartsAtOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := newTracker()
		now := epoch
		for i := rapid.IntRange(1, 5).Draw(t, "warmup"); i > 0; i-- {
			tr.Advance(now)
			now = now.Add(200 * time.Millisecond)
		}
		gap := rapid.IntRange(601, 10_000).Draw(t, "gap_ms")
		now = now.Add(time.Duration(gap) * time.Millisecond)
		assert.Equal(t, 1, tr.Advance(now))
	})
}
