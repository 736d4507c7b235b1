package constellation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/starweave/internal/cycle"
	"github.com/talgya/starweave/internal/network"
)

func ring(conns []network.ConnectionID, stars ...network.StarID) cycle.Cycle {
	return cycle.Cycle{Stars: stars, Connections: conns}
}

func TestTryRegister(t *testing.T) {
	r := NewRegistry()

	id, err := r.TryRegister(ring([]network.ConnectionID{0, 1, 2}, 0, 1, 2), 7)
	require.NoError(t, err)
	assert.Equal(t, ID(0), id)
	assert.Equal(t, 1, r.Len())

	c, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, []network.StarID{0, 1, 2}, c.Members)
	assert.Equal(t, uint64(7), c.FormedAt)
	assert.Equal(t, ColorFor(0), c.Color)

	for _, s := range []network.StarID{0, 1, 2} {
		got, ok := r.MemberOf(s)
		assert.True(t, ok)
		assert.Equal(t, id, got)
		assert.Equal(t, MemberBonus, r.BonusFor(s))
	}
	assert.Equal(t, NonMemberBonus, r.BonusFor(3))
	_, ok = r.MemberOf(3)
	assert.False(t, ok)
}

func TestTryRegister_TooSmall(t *testing.T) {
	r := NewRegistry()
	_, err := r.TryRegister(ring([]network.ConnectionID{0, 1}, 0, 1), 0)
	assert.ErrorIs(t, err, ErrCycleTooSmall)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, NonMemberBonus, r.BonusFor(0))
}

func TestTryRegister_ClaimedLeavesNoPartialState(t *testing.T) {
	r := NewRegistry()
	_, err := r.TryRegister(ring([]network.ConnectionID{0, 1, 2}, 0, 1, 2), 1)
	require.NoError(t, err)

	// 5 and 6 are free but 2 is not.
	_, err = r.TryRegister(ring([]network.ConnectionID{3, 4, 5, 6}, 5, 6, 2, 7), 2)
	assert.ErrorIs(t, err, ErrNodeAlreadyClaimed)

	assert.Equal(t, 1, r.Len())
	for _, s := range []network.StarID{5, 6, 7} {
		_, ok := r.MemberOf(s)
		assert.False(t, ok, "star %d", s)
	}
	assert.False(t, r.Locks(3))
	assert.False(t, r.Locks(6))
}

func TestMembershipIsDisjoint(t *testing.T) {
	r := NewRegistry()
	_, err := r.TryRegister(ring([]network.ConnectionID{0, 1, 2}, 0, 1, 2), 0)
	require.NoError(t, err)
	_, err = r.TryRegister(ring([]network.ConnectionID{3, 4, 5}, 3, 4, 5), 0)
	require.NoError(t, err)

	seen := map[network.StarID]ID{}
	for _, c := range r.All() {
		for _, m := range c.Members {
			_, dup := seen[m]
			assert.False(t, dup, "star %d claimed twice", m)
			seen[m] = c.ID
		}
	}
	assert.Len(t, seen, 6)
}

func TestLocks(t *testing.T) {
	r := NewRegistry()
	_, err := r.TryRegister(ring([]network.ConnectionID{10, 11, 12}, 0, 1, 2), 0)
	require.NoError(t, err)

	var guard network.Guard = r
	assert.True(t, guard.Locks(10))
	assert.True(t, guard.Locks(12))
	assert.False(t, guard.Locks(13))
}

func TestAllReturnsCopies(t *testing.T) {
	r := NewRegistry()
	_, err := r.TryRegister(ring([]network.ConnectionID{0, 1, 2}, 0, 1, 2), 0)
	require.NoError(t, err)

	all := r.All()
	all[0].Members[0] = 99
	c, _ := r.Get(0)
	assert.Equal(t, network.StarID(0), c.Members[0])

	_, ok := r.Get(5)
	assert.False(t, ok)
}

func TestBonusStableAcrossFurtherRegistrations(t *testing.T) {
	r := NewRegistry()
	_, err := r.TryRegister(ring([]network.ConnectionID{0, 1, 2}, 0, 1, 2), 0)
	require.NoError(t, err)
	for i := 1; i < 5; i++ {
		base := network.StarID(i * 10)
		_, err := r.TryRegister(ring(nil, base, base+1, base+2), uint64(i))
		require.NoError(t, err)
		assert.Equal(t, MemberBonus, r.BonusFor(1))
	}
	assert.Equal(t, 5, r.Len())
}

func TestColors(t *testing.T) {
	first := ColorFor(0)
	assert.Equal(t, 0.0, first.Hue)
	assert.Equal(t, Saturation, first.Saturation)
	assert.Equal(t, Lightness, first.Lightness)
	assert.Equal(t, Alpha, first.Alpha)
	assert.Equal(t, "#e05252", first.Hex())
	assert.Equal(t, uint8(64), first.RGBA().A)

	second := ColorFor(1)
	assert.InDelta(t, 137.50776, second.Hue, 1e-9)
	assert.Equal(t, "#52e07b", second.Hex())

	assert.InDelta(t, 275.01552, ColorFor(2).Hue, 1e-9)
	assert.InDelta(t, 52.52328, ColorFor(3).Hue, 1e-9)
	assert.Equal(t, "hsla(0.0, 70%, 60%, 0.25)", first.String())
}
