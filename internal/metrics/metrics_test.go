package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/specialization"
)

func newCollector(t *testing.T) *Collector {
	t.Helper()
	c := NewCollector()
	require.NoError(t, c.Register())
	return c
}

func TestRegisterTwiceFails(t *testing.T) {
	c := newCollector(t)
	err := c.Register()
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}

func TestRecordTick(t *testing.T) {
	c := newCollector(t)
	c.RecordTick(2 * time.Millisecond)
	c.RecordTick(3 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ticks))
	assert.Equal(t, 1, testutil.CollectAndCount(c.tickDuration))
}

func TestRecordEvents(t *testing.T) {
	c := newCollector(t)
	c.RecordEvents([]engine.Event{
		{Category: engine.CategoryNetwork},
		{Category: engine.CategoryNetwork},
		{Category: engine.CategoryRequest, Meta: map[string]any{"error": "self_loop"}},
		{Category: engine.CategoryRequest, Meta: map[string]any{"error": "self_loop"}},
		{Category: engine.CategoryRequest},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("network")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.events.WithLabelValues("request")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.requestErrors.WithLabelValues("self_loop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestErrors.WithLabelValues("other")))
}

func TestObserveSimulation(t *testing.T) {
	g := network.NewGraph()
	for i := 0; i < 3; i++ {
		g.AddStar(network.NewStar(network.StarID(i), "s"))
	}
	sim, err := engine.NewSimulation(g, 0, engine.Options{})
	require.NoError(t, err)
	_, err = sim.RequestConnection(1, 0)
	require.NoError(t, err)

	c := newCollector(t)
	c.Observe(sim)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.stars))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.connections))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.reachable))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.constellation))
	assert.Equal(t, 50.0, testutil.ToFloat64(c.playerStock.WithLabelValues("Water")))
	assert.Equal(t, len(specialization.UnitKinds()), testutil.CollectAndCount(c.units))
}

func TestHandler(t *testing.T) {
	c := newCollector(t)
	c.RecordTick(time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), "starweave_sim_ticks_total 1"))
}
