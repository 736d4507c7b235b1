package specialization

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/starweave/internal/resource"
)

func TestBuildDurations(t *testing.T) {
	want := map[Kind]float64{
		None: 5, Storage: 10, Military: 20, Mining: 15,
		Agriculture: 12, Research: 25, Medical: 15, Industrial: 18,
	}
	for k, d := range want {
		assert.Equal(t, d, BuildDuration(k), k.String())
	}
}

func TestUpgradeDuration_MilitaryLevelThree(t *testing.T) {
	assert.Equal(t, 90.0, UpgradeDuration(Military, 3))
}

func TestCostFactor(t *testing.T) {
	assert.Equal(t, 1.0, CostFactor(1))
	assert.Equal(t, 0.5, CostFactor(6))
	assert.Equal(t, 1.0, CostFactor(0), "levels below one clamp to one")

	cost := ProductionCost(Military, 6)
	require.Len(t, cost, 3)
	assert.Equal(t, resource.Quantity{Kind: resource.Iron, Amount: 10}, cost[0])
	assert.Equal(t, resource.Quantity{Kind: resource.Uranium, Amount: 5}, cost[1])
	assert.Equal(t, resource.Quantity{Kind: resource.Silicon, Amount: 7.5}, cost[2])

	base := ProductionCost(Mining, 1)
	assert.Equal(t, BaseCost(Mining), base)
}

func TestUnitCounts(t *testing.T) {
	cases := []struct {
		kind  Kind
		unit  UnitKind
		level int
		count int
	}{
		{Military, Warship, 1, 1},
		{Mining, MiningShip, 2, 4},
		{Agriculture, Farmer, 3, 9},
		{Research, Scientist, 4, 4},
		{Medical, Doctor, 1, 2},
		{Industrial, Builder, 5, 10},
		{Storage, StorageModule, 2, 2},
	}
	for _, tc := range cases {
		u, _, ok := Unit(tc.kind)
		require.True(t, ok, tc.kind.String())
		assert.Equal(t, tc.unit, u)
		assert.Equal(t, tc.count, UnitCount(tc.kind, tc.level), tc.kind.String())
	}
	_, _, ok := Unit(None)
	assert.False(t, ok)
	assert.Equal(t, 0, UnitCount(None, 3))
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind("  Mining ")
	require.NoError(t, err)
	assert.Equal(t, Mining, got)

	_, err = ParseKind("piracy")
	assert.Error(t, err)
}

func TestProducer(t *testing.T) {
	assert.False(t, None.Producer())
	assert.False(t, Storage.Producer())
	for _, k := range []Kind{Military, Mining, Agriculture, Research, Medical, Industrial} {
		assert.True(t, k.Producer(), k.String())
	}
}

func TestState_BuildLifecycle(t *testing.T) {
	s := NewState(None)
	require.NoError(t, s.StartBuild(Mining))
	assert.Equal(t, Building, s.Phase)
	assert.Equal(t, 15.0, s.Total)

	assert.Equal(t, NothingCompleted, s.Advance(10))
	assert.Equal(t, None, s.Kind, "kind is committed only on completion")
	assert.InDelta(t, 10.0/15.0, s.Progress(), 1e-9)
	assert.Equal(t, 5.0, s.Remaining())

	assert.Equal(t, BuildCompleted, s.Advance(6))
	assert.Equal(t, Ready, s.Phase)
	assert.Equal(t, Mining, s.Kind)
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, 0.0, s.Progress())
}

func TestState_UpgradeLifecycle(t *testing.T) {
	s := NewState(Military)
	s.Level = 3
	require.NoError(t, s.StartUpgrade())
	assert.Equal(t, 90.0, s.Total)

	assert.Equal(t, NothingCompleted, s.Advance(89.5))
	assert.Equal(t, UpgradeCompleted, s.Advance(0.5))
	assert.Equal(t, 4, s.Level)
	assert.Equal(t, Ready, s.Phase)
}

func TestState_TenthSecondStepsFinishOnTime(t *testing.T) {
	s := NewState(None)
	require.NoError(t, s.StartBuild(Storage))
	require.Equal(t, 10.0, s.Total)

	for i := 1; i < 100; i++ {
		require.Equal(t, NothingCompleted, s.Advance(0.1), "step %d", i)
	}
	assert.Equal(t, BuildCompleted, s.Advance(0.1), "100 steps of 0.1s make 10s")
	assert.Equal(t, Storage, s.Kind)
}

func TestState_InvalidTransitions(t *testing.T) {
	s := NewState(None)

	err := s.StartBuild(None)
	assert.True(t, errors.Is(err, ErrInvalidTransition), "same kind")

	require.NoError(t, s.StartBuild(Research))
	assert.True(t, errors.Is(s.StartBuild(Medical), ErrInvalidTransition), "build while building")
	assert.True(t, errors.Is(s.StartUpgrade(), ErrInvalidTransition), "upgrade while building")

	s.Advance(25)
	require.NoError(t, s.StartUpgrade())
	assert.True(t, errors.Is(s.StartBuild(Mining), ErrInvalidTransition), "build while upgrading")
	assert.True(t, errors.Is(s.StartUpgrade(), ErrInvalidTransition), "upgrade while upgrading")

	assert.True(t, errors.Is(s.StartBuild(Kind(99)), ErrInvalidTransition), "undefined kind")
}

func TestState_AdvanceIgnoresReadyAndNonPositive(t *testing.T) {
	s := NewState(None)
	assert.Equal(t, NothingCompleted, s.Advance(100))

	require.NoError(t, s.StartBuild(Storage))
	assert.Equal(t, NothingCompleted, s.Advance(0))
	assert.Equal(t, NothingCompleted, s.Advance(-4))
	assert.Equal(t, 0.0, s.Elapsed)
}

func TestUnitKinds(t *testing.T) {
	units := UnitKinds()
	require.Len(t, units, 7)
	assert.Equal(t, Warship, units[0])
	assert.Equal(t, StorageModule, units[6])
	for _, u := range units {
		assert.NotEqual(t, "Unknown", u.String())
	}
}
