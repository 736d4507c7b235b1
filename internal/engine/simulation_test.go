package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/resource"
	"github.com/talgya/starweave/internal/routing"
	"github.com/talgya/starweave/internal/specialization"
)

// newTestSim builds n stars with star 0 as the hub. Every non-hub star holds
// capacity for 100 Water and produces at rate 1.
func newTestSim(t *testing.T, n int, stock map[resource.Kind]float64) *Simulation {
	t.Helper()
	g := network.NewGraph()
	for i := 0; i < n; i++ {
		s := network.NewStar(network.StarID(i), fmt.Sprintf("S%d", i))
		if i > 0 {
			s.Ledger.SetCapacity(resource.Water, 100)
			s.BaseRate = 1
		}
		g.AddStar(s)
	}
	if stock == nil {
		stock = map[resource.Kind]float64{}
	}
	sim, err := NewSimulation(g, 0, Options{PlayerStock: stock})
	require.NoError(t, err)
	return sim
}

func water(t *testing.T, sim *Simulation, id network.StarID) float64 {
	t.Helper()
	return sim.Graph().Star(id).Ledger.Amount(resource.Water)
}

func TestNewSimulation_UnknownHub(t *testing.T) {
	_, err := NewSimulation(network.NewGraph(), 3, Options{})
	assert.ErrorIs(t, err, network.ErrUnknownStar)
}

func TestNewSimulation_Defaults(t *testing.T) {
	g := network.NewGraph()
	g.AddStar(network.NewStar(0, "Sol System"))
	sim, err := NewSimulation(g, 0, Options{})
	require.NoError(t, err)

	p := sim.Player()
	assert.Equal(t, 50.0, p.Amount(resource.Water))
	assert.Equal(t, 1.0, p.Amount(resource.EnergyCrystal))
	assert.Equal(t, DefaultPlayerCapacity, p.Capacity(resource.Iron))

	hub, err := sim.QueryNode(0)
	require.NoError(t, err)
	assert.True(t, hub.Hub)
	assert.True(t, hub.Colonized)
	assert.Equal(t, uint32(0), hub.Distance)
	assert.Equal(t, 1.0, hub.Efficiency)
}

func TestConstellationDoublesProduction(t *testing.T) {
	sim := newTestSim(t, 3, nil)
	const hub, a, b = network.StarID(0), network.StarID(1), network.StarID(2)

	_, err := sim.RequestConnection(a, b)
	require.NoError(t, err)
	_, err = sim.RequestConnection(b, hub)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), sim.Distance(a))

	sim.Tick(1)
	assert.InDelta(t, 0.75, water(t, sim, a), 1e-9, "distance 2 at no bonus")
	assert.Empty(t, sim.QueryAllConstellations())

	_, err = sim.RequestConnection(hub, a)
	require.NoError(t, err)

	cons := sim.QueryAllConstellations()
	require.Len(t, cons, 1)
	assert.Equal(t, []network.StarID{a, b, hub}, cons[0].Members)
	assert.Len(t, cons[0].Connections, 3)
	assert.Equal(t, "#e05252", cons[0].Hex)

	for _, id := range []network.StarID{hub, a, b} {
		node, err := sim.QueryNode(id)
		require.NoError(t, err)
		assert.Equal(t, 2.0, node.Bonus)
		require.NotNil(t, node.Constellation)
	}

	before := water(t, sim, a)
	sim.Tick(1)
	assert.InDelta(t, 1.5, water(t, sim, a)-before, 1e-9, "production doubles on the next tick")
}

func TestHubTriangleClosesOnThirdEdge(t *testing.T) {
	sim := newTestSim(t, 3, nil)
	const hub, a, b = network.StarID(0), network.StarID(1), network.StarID(2)

	for _, e := range [][2]network.StarID{{hub, a}, {a, b}} {
		_, err := sim.RequestConnection(e[0], e[1])
		require.NoError(t, err)
	}
	assert.Empty(t, sim.QueryAllConstellations())

	_, err := sim.RequestConnection(b, hub)
	require.NoError(t, err)
	cons := sim.QueryAllConstellations()
	require.Len(t, cons, 1)
	assert.ElementsMatch(t, []network.StarID{hub, a, b}, cons[0].Members)
	assert.Len(t, cons[0].Connections, 3)

	for _, id := range []network.StarID{hub, a, b} {
		node, err := sim.QueryNode(id)
		require.NoError(t, err)
		assert.Equal(t, 2.0, node.Bonus)
	}

	beforeA, beforeB := water(t, sim, a), water(t, sim, b)
	sim.Tick(1)
	assert.InDelta(t, 2*0.75, water(t, sim, a)-beforeA, 1e-9, "distance 2, doubled")
	assert.InDelta(t, 2*0.90, water(t, sim, b)-beforeB, 1e-9, "distance 1, doubled")
}

func TestDisjointCycleFormsBesideConstellation(t *testing.T) {
	sim := newTestSim(t, 7, nil)
	for id := network.StarID(1); id <= 6; id++ {
		sim.Graph().Star(id).Spec.Level = 4
	}
	for _, e := range [][2]network.StarID{{1, 2}, {2, 3}, {3, 1}, {4, 2}, {2, 5}, {4, 6}, {6, 5}, {5, 4}} {
		_, err := sim.RequestConnection(e[0], e[1])
		require.NoError(t, err)
	}

	cons := sim.QueryAllConstellations()
	require.Len(t, cons, 2)
	assert.ElementsMatch(t, []network.StarID{1, 2, 3}, cons[0].Members)
	assert.ElementsMatch(t, []network.StarID{4, 5, 6}, cons[1].Members)

	node, err := sim.QueryNode(6)
	require.NoError(t, err)
	assert.Equal(t, 2.0, node.Bonus)
}

func TestConstellationConnectionsAreLocked(t *testing.T) {
	sim := newTestSim(t, 4, nil)
	ab, err := sim.RequestConnection(1, 2)
	require.NoError(t, err)
	_, err = sim.RequestConnection(2, 3)
	require.NoError(t, err)
	_, err = sim.RequestConnection(3, 1)
	require.NoError(t, err)
	require.Len(t, sim.QueryAllConstellations(), 1)

	err = sim.RequestDisconnection(ab)
	assert.ErrorIs(t, err, network.ErrConnectionLocked)
	assert.NotNil(t, sim.Graph().Connection(ab))

	err = sim.RequestDisconnection(99)
	assert.ErrorIs(t, err, network.ErrUnknownConnection)
}

func TestClaimedStarsDoNotFormSecondConstellation(t *testing.T) {
	sim := newTestSim(t, 6, nil)
	for _, id := range []network.StarID{1, 2} {
		sim.Graph().Star(id).Spec.Level = 3
	}
	// 1 -> 2 -> 3 -> 1 forms a constellation.
	for _, e := range [][2]network.StarID{{1, 2}, {2, 3}, {3, 1}} {
		_, err := sim.RequestConnection(e[0], e[1])
		require.NoError(t, err)
	}
	// 1 -> 4 -> 5 -> 2 closes a loop through claimed stars: the edge is kept
	// but nothing registers.
	for _, e := range [][2]network.StarID{{1, 4}, {4, 5}, {5, 2}} {
		_, err := sim.RequestConnection(e[0], e[1])
		require.NoError(t, err)
	}
	assert.Len(t, sim.QueryAllConstellations(), 1)
	assert.Equal(t, 6, sim.Graph().ConnectionCount())

	node, err := sim.QueryNode(4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, node.Bonus)
	assert.Nil(t, node.Constellation)
}

func TestFanOutScenario(t *testing.T) {
	sim := newTestSim(t, 3, nil)

	_, err := sim.RequestConnection(1, 0)
	require.NoError(t, err)
	_, err = sim.RequestConnection(1, 2)
	require.ErrorIs(t, err, network.ErrFanOutExceeded)

	// Level 2 still allows one; level 3 allows two.
	require.NoError(t, sim.RequestUpgrade(1))
	for i := 0; i < 8; i++ {
		sim.Tick(1)
	}
	node, err := sim.QueryNode(1)
	require.NoError(t, err)
	require.Equal(t, 2, node.Level)
	_, err = sim.RequestConnection(1, 2)
	require.ErrorIs(t, err, network.ErrFanOutExceeded)

	require.NoError(t, sim.RequestUpgrade(1))
	for i := 0; i < 15; i++ {
		sim.Tick(1)
	}
	node, err = sim.QueryNode(1)
	require.NoError(t, err)
	require.Equal(t, 3, node.Level)
	require.Equal(t, uint64(2), node.FanOutLimit)

	_, err = sim.RequestConnection(1, 2)
	require.NoError(t, err)
	assert.Len(t, sim.Graph().Star(1).Outgoing(), 2)
}

func TestEnqueuedRequestsApplyAtNextTick(t *testing.T) {
	sim := newTestSim(t, 2, nil)
	sim.Enqueue(Connect(1, 0))
	assert.Equal(t, 1, sim.Pending())
	assert.Equal(t, 0, sim.Graph().ConnectionCount(), "nothing changes before the tick")

	sim.Tick(1)
	assert.Equal(t, 0, sim.Pending())
	assert.Equal(t, 1, sim.Graph().ConnectionCount())
	assert.InDelta(t, 0.9, water(t, sim, 1), 1e-9, "the new route counts in the same tick")
}

func TestRejectedRequestsAreRecorded(t *testing.T) {
	sim := newTestSim(t, 2, nil)
	sim.Enqueue(Connect(1, 1))
	sim.Enqueue(Specialize(7, specialization.Mining))
	sim.Enqueue(Connect(1, 0))
	sim.Tick(1)

	assert.Equal(t, 2, sim.Stats().RequestErrors)
	assert.Equal(t, 1, sim.Graph().ConnectionCount(), "a failing request does not block the rest")

	var kinds []any
	for _, e := range sim.DrainEvents() {
		if e.Category == CategoryRequest {
			kinds = append(kinds, e.Meta["error"])
		}
	}
	assert.Equal(t, []any{"self_loop", "unknown_star"}, kinds)
	assert.Empty(t, sim.DrainEvents())
}

func TestUnknownIDs(t *testing.T) {
	sim := newTestSim(t, 1, nil)
	_, err := sim.QueryNode(5)
	assert.ErrorIs(t, err, network.ErrUnknownStar)
	assert.ErrorIs(t, sim.RequestUpgrade(5), network.ErrUnknownStar)
	assert.ErrorIs(t, sim.RequestSpecialization(5, specialization.Storage), network.ErrUnknownStar)
	_, err = sim.RequestConnection(0, 5)
	assert.ErrorIs(t, err, network.ErrUnknownStar)
	assert.ErrorIs(t, sim.Apply(Request{}), ErrUnknownRequest)
}

func TestUnreachableStarProducesAtFloor(t *testing.T) {
	sim := newTestSim(t, 2, nil)
	sim.Tick(1)
	assert.InDelta(t, 0.1, water(t, sim, 1), 1e-9)

	node, err := sim.QueryNode(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(routing.NoRoute), node.Distance)
	assert.False(t, node.Reachable)
}

func TestDisconnectionRefreshesRoutes(t *testing.T) {
	sim := newTestSim(t, 2, nil)
	id, err := sim.RequestConnection(1, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), sim.Distance(1))

	require.NoError(t, sim.RequestDisconnection(id))
	assert.Equal(t, uint32(routing.NoRoute), sim.Distance(1))
}

func TestStatsCountsState(t *testing.T) {
	sim := newTestSim(t, 3, nil)
	_, err := sim.RequestConnection(1, 0)
	require.NoError(t, err)
	sim.Tick(0.5)

	st := sim.Stats()
	assert.Equal(t, uint64(1), st.Tick)
	assert.Equal(t, 0.5, st.SimSeconds)
	assert.Equal(t, 3, st.Stars)
	assert.Equal(t, 1, st.Connections)
	assert.Equal(t, 2, st.Colonized)
	assert.Equal(t, 2, st.Reachable)
}

func TestErrorKind(t *testing.T) {
	_, err := newTestSim(t, 1, nil).RequestConnection(0, 0)
	assert.Equal(t, "self_loop", ErrorKind(err))
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "invalid_transition", ErrorKind(fmt.Errorf("x: %w", specialization.ErrInvalidTransition)))
}
