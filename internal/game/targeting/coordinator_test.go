package targeting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kverkest/fray/internal/game/roster"
	"github.com/kverkest/fray/internal/game/targeting"
)

// live builds n opponent combatants with slot IDs 0..n-1.
func live(n int) []*roster.Combatant {
	out := make([]*roster.Combatant, n)
	for i := range out {
		out[i] = &roster.Combatant{ID: i, Team: roster.TeamOpposition, MaxHP: 10, CurrentHP: 10}
	}
	return out
}

func TestCoordinator_StartsFree(t *testing.T) {
	c := targeting.NewCoordinator()
	assert.Equal(t, targeting.ModeFree, c.Mode())
	_, locked := c.LockedID()
	assert.False(t, locked)
}

func TestCoordinator_BeginSelect(t *testing.T) {
	c := targeting.NewCoordinator()
	assert.True(t, c.BeginSelect())
	assert.Equal(t, targeting.ModeSelecting, c.Mode())
	assert.Equal(t, 0, c.HighlightIndex())

	// Re-entry is refused.
	assert.False(t, c.BeginSelect())
}

func TestCoordinator_SelectNext_WrapsForward(t *testing.T) {
	c := targeting.NewCoordinator()
	require.True(t, c.BeginSelect())

	c.SelectNext(3)
	assert.Equal(t, 1, c.HighlightIndex())
	c.SelectNext(3)
	assert.Equal(t, 2, c.HighlightIndex())
	c.SelectNext(3)
	assert.Equal(t, 0, c.HighlightIndex(), "advancing past the last wraps to the first")
}

func TestCoordinator_SelectPrevious_WrapsBackward(t *testing.T) {
	c := targeting.NewCoordinator()
	require.True(t, c.BeginSelect())

	// Index 0 with three live opponents steps back to index 2.
	c.SelectPrevious(3)
	assert.Equal(t, 2, c.HighlightIndex())
}

func TestCoordinator_Select_NoOpWithEmptyRoster(t *testing.T) {
	c := targeting.NewCoordinator()
	require.True(t, c.BeginSelect())

	c.SelectNext(0)
	c.SelectPrevious(0)
	assert.Equal(t, 0, c.HighlightIndex())
	assert.Equal(t, targeting.ModeSelecting, c.Mode())
}

func TestCoordinator_Select_NoOpOutsideSelecting(t *testing.T) {
	c := targeting.NewCoordinator()
	c.SelectNext(3)
	c.SelectPrevious(3)
	assert.Equal(t, targeting.ModeFree, c.Mode())
	assert.Equal(t, 0, c.HighlightIndex())
}

func TestCoordinator_Confirm_LocksHighlighted(t *testing.T) {
	c := targeting.NewCoordinator()
	opponents := live(3)
	require.True(t, c.BeginSelect())
	c.SelectNext(3)

	subject, ok := c.Confirm(opponents)
	require.True(t, ok)
	assert.Equal(t, opponents[1], subject)
	assert.Equal(t, targeting.ModeLocked, c.Mode())

	id, locked := c.LockedID()
	require.True(t, locked)
	assert.Equal(t, 1, id)
}

func TestCoordinator_Confirm_EmptyRosterIsNoOp(t *testing.T) {
	c := targeting.NewCoordinator()
	require.True(t, c.BeginSelect())

	subject, ok := c.Confirm(nil)
	assert.False(t, ok)
	assert.Nil(t, subject)
	assert.Equal(t, targeting.ModeSelecting, c.Mode(), "confirming over an empty roster changes nothing")
}

func TestCoordinator_Confirm_NoOpOutsideSelecting(t *testing.T) {
	c := targeting.NewCoordinator()
	_, ok := c.Confirm(live(2))
	assert.False(t, ok)
	assert.Equal(t, targeting.ModeFree, c.Mode())
}

func TestCoordinator_Confirm_HighlightPastShrunkRoster(t *testing.T) {
	c := targeting.NewCoordinator()
	require.True(t, c.BeginSelect())
	c.SelectNext(3)
	c.SelectNext(3) // highlight 2

	// Two opponents fell since the highlight was set; the stale index folds
	// back onto the remaining roster instead of panicking.
	subject, ok := c.Confirm(live(2))
	require.True(t, ok)
	assert.Equal(t, 0, subject.ID)
}

func TestCoordinator_Cancel(t *testing.T) {
	c := targeting.NewCoordinator()
	require.True(t, c.BeginSelect())
	assert.True(t, c.Cancel())
	assert.Equal(t, targeting.ModeFree, c.Mode())

	assert.False(t, c.Cancel(), "cancel outside selecting is a no-op")
}

func TestCoordinator_Disengage(t *testing.T) {
	c := targeting.NewCoordinator()
	require.True(t, c.BeginSelect())
	_, ok := c.Confirm(live(2))
	require.True(t, ok)

	assert.True(t, c.Disengage())
	assert.Equal(t, targeting.ModeFree, c.Mode())
	_, locked := c.LockedID()
	assert.False(t, locked)
}

func TestCoordinator_Disengage_NoOpUnlessLocked(t *testing.T) {
	c := targeting.NewCoordinator()
	assert.False(t, c.Disengage())
	c.BeginSelect()
	assert.False(t, c.Disengage())
}

func TestCoordinator_NoteRosterChanged_LockIntact(t *testing.T) {
	c := targeting.NewCoordinator()
	opponents := live(3)
	require.True(t, c.BeginSelect())
	_, ok := c.Confirm(opponents)
	require.True(t, ok)

	// A different opponent fell; the lock subject (ID 0) survives.
	assert.Equal(t, targeting.LockIntact, c.NoteRosterChanged(opponents[:2]))
	assert.Equal(t, targeting.ModeLocked, c.Mode())
}

func TestCoordinator_NoteRosterChanged_FallsBackToSelecting(t *testing.T) {
	c := targeting.NewCoordinator()
	opponents := live(3)
	require.True(t, c.BeginSelect())
	c.SelectNext(3)
	_, ok := c.Confirm(opponents) // locks ID 1
	require.True(t, ok)

	remaining := []*roster.Combatant{opponents[0], opponents[2]}
	assert.Equal(t, targeting.LockToSelecting, c.NoteRosterChanged(remaining))
	assert.Equal(t, targeting.ModeSelecting, c.Mode())
	assert.Equal(t, 0, c.HighlightIndex(), "fallback selection restarts at the first live opponent")
}

func TestCoordinator_NoteRosterChanged_RosterEmptied(t *testing.T) {
	c := targeting.NewCoordinator()
	require.True(t, c.BeginSelect())
	_, ok := c.Confirm(live(1))
	require.True(t, ok)

	assert.Equal(t, targeting.LockRosterEmpty, c.NoteRosterChanged(nil))
	assert.Equal(t, targeting.ModeFree, c.Mode())
}

func TestCoordinator_NoteRosterChanged_NoOpWhenNotLocked(t *testing.T) {
	c := targeting.NewCoordinator()
	assert.Equal(t, targeting.LockIntact, c.NoteRosterChanged(nil))

	require.True(t, c.BeginSelect())
	assert.Equal(t, targeting.LockIntact, c.NoteRosterChanged(nil))
	assert.Equal(t, targeting.ModeSelecting, c.Mode())
}

func TestCoordinator_Reset(t *testing.T) {
	c := targeting.NewCoordinator()
	require.True(t, c.BeginSelect())
	c.SelectNext(3)
	c.Reset()
	assert.Equal(t, targeting.ModeFree, c.Mode())
	assert.Equal(t, 0, c.HighlightIndex())
}

func TestCoordinator_Property_HighlightStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "live")
		steps := rapid.SliceOfN(rapid.Bool(), 1, 40).Draw(rt, "steps")

		c := targeting.NewCoordinator()
		c.BeginSelect()
		for _, forward := range steps {
			if forward {
				c.SelectNext(n)
			} else {
				c.SelectPrevious(n)
			}
			if h := c.HighlightIndex(); h < 0 || h >= n {
				rt.Fatalf("highlight %d out of bounds for %d live opponents", h, n)
			}
		}
	})
}
