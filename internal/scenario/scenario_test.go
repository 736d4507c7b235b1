package scenario

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/specialization"
)

const triangle = `
duration = 20

action "connect" {
  at     = 0
  source = 1
  target = 2
}

action "connect" {
  at     = 0
  source = 2
  target = 0
}

action "specialize" {
  at   = 4
  star = 2
  kind = "Storage"
}

action "connect" {
  at     = 1.5
  source = 0
  target = 1
}

action "upgrade" {
  at   = 10
  star = 1
}

action "disconnect" {
  at         = 12
  connection = 0
}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(triangle), "triangle.hcl")
	require.NoError(t, err)

	assert.Equal(t, "triangle.hcl", s.Name)
	assert.Equal(t, 20.0, s.Duration)
	require.Len(t, s.Actions, 6)

	var times []float64
	for _, a := range s.Actions {
		times = append(times, a.At)
	}
	assert.Equal(t, []float64{0, 0, 1.5, 4, 10, 12}, times)

	assert.Equal(t, engine.Connect(1, 2), s.Actions[0].Request(), "ties keep file order")
	assert.Equal(t, engine.Connect(2, 0), s.Actions[1].Request())
	assert.Equal(t, engine.Connect(0, 1), s.Actions[2].Request())
	assert.Equal(t, engine.Specialize(2, specialization.Storage), s.Actions[3].Request())
	assert.Equal(t, engine.Upgrade(1), s.Actions[4].Request())
	assert.Equal(t, engine.Disconnect(0), s.Actions[5].Request())
}

func TestDue(t *testing.T) {
	s, err := Parse([]byte(triangle), "triangle.hcl")
	require.NoError(t, err)

	assert.Len(t, s.Due(0), 2)
	assert.Empty(t, s.Due(1))
	assert.Len(t, s.Due(5), 2)
	assert.False(t, s.Done())
	assert.Len(t, s.Due(100), 2)
	assert.True(t, s.Done())
	assert.Empty(t, s.Due(200))

	s.Reset()
	assert.False(t, s.Done())
	assert.Len(t, s.Due(100), 6)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown type": `
action "teleport" {
  at   = 1
  star = 1
}`,
		"missing target": `
action "connect" {
  at     = 1
  source = 1
}`,
		"missing star": `
action "upgrade" {
  at = 1
}`,
		"unknown kind": `
action "specialize" {
  at   = 1
  star = 1
  kind = "piracy"
}`,
		"missing kind": `
action "specialize" {
  at   = 1
  star = 1
}`,
		"negative id": `
action "disconnect" {
  at         = 1
  connection = -3
}`,
		"star id out of range": `
action "upgrade" {
  at   = 1
  star = 4294967296
}`,
		"negative time": `
action "upgrade" {
  at   = -1
  star = 1
}`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), "bad.hcl")
			assert.ErrorIs(t, err, ErrInvalidAction)
		})
	}
}

func TestBuildFromJSON(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"type":"upgrade","star":4}`), &a))
	req, err := a.Build()
	require.NoError(t, err)
	assert.Equal(t, engine.Upgrade(4), req)
	assert.Equal(t, req, a.Request())

	for _, body := range []string{
		`{"type":"upgrade","star":4294967296}`,
		`{"type":"connect","source":1,"target":4294967297}`,
		`{"type":"disconnect","connection":-1}`,
	} {
		var bad Action
		require.NoError(t, json.Unmarshal([]byte(body), &bad))
		_, err := bad.Build()
		assert.ErrorIs(t, err, ErrInvalidAction, body)
	}
}

func TestParseRejectsMalformedHCL(t *testing.T) {
	_, err := Parse([]byte(`action "connect" {`), "broken.hcl")
	assert.Error(t, err)

	_, err = Parse([]byte(`
action "upgrade" {
  at    = 1
  star  = 1
  speed = 3
}`), "extra.hcl")
	assert.Error(t, err, "unknown arguments are rejected")

	_, err = Parse([]byte(`
action "upgrade" {
  star = 1
}`), "noat.hcl")
	assert.Error(t, err, "at is required")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triangle.hcl")
	require.NoError(t, os.WriteFile(path, []byte(triangle), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Actions, 6)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}

func TestFeedDrivesSimulation(t *testing.T) {
	g := network.NewGraph()
	for i := 0; i < 3; i++ {
		g.AddStar(network.NewStar(network.StarID(i), "s"))
	}
	sim, err := engine.NewSimulation(g, 0, engine.Options{})
	require.NoError(t, err)

	s, err := Parse([]byte(triangle), "triangle.hcl")
	require.NoError(t, err)

	e := engine.NewEngine()
	e.Step = 0.5
	e.OnTick = func(_ uint64, dt float64) {
		s.Feed(sim, e.Elapsed())
		sim.Tick(dt)
	}
	e.AdvanceFor(s.Duration)

	assert.True(t, s.Done())
	cons := sim.QueryAllConstellations()
	require.Len(t, cons, 1)
	assert.Equal(t, []network.StarID{1, 2, 0}, cons[0].Members)
	assert.Equal(t, 3, sim.Graph().ConnectionCount(), "locked connection survives the disconnect")
	assert.Equal(t, 1, sim.Stats().RequestErrors)
}
