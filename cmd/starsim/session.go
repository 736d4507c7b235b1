package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/starweave/internal/api"
	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/journal"
	"github.com/talgya/starweave/internal/metrics"
	"github.com/talgya/starweave/internal/scenario"
	"github.com/talgya/starweave/internal/world"
)

// session wires a simulation to the engine loop and its optional outputs:
// scenario script, metrics, journal and status API.
type session struct {
	gal    *world.Galaxy
	sim    *engine.Simulation
	eng    *engine.Engine
	script *scenario.Script
	units  *engine.UnitTally

	collector *metrics.Collector
	server    *api.Server

	journal  *journal.Journal
	run      uuid.UUID
	pending  []engine.Event
	recorded int // constellations already journaled
}

func newSession() (*session, error) {
	s := &session{units: engine.NewUnitTally()}

	var err error
	s.gal, s.sim, err = newWorld(cfg, s.units)
	if err != nil {
		return nil, err
	}

	if cfg.Simulation.Scenario != "" {
		s.script, err = scenario.Load(cfg.Simulation.Scenario)
		if err != nil {
			return nil, err
		}
		slog.Info("scenario loaded", "path", cfg.Simulation.Scenario, "actions", len(s.script.Actions))
	}

	s.collector = metrics.NewCollector()
	if err := s.collector.Register(); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	if cfg.Journal.Enabled {
		s.journal, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		s.run, err = s.journal.BeginRun(s.gal.Seed, s.gal.StarCount())
		if err != nil {
			s.journal.Close()
			return nil, err
		}
		slog.Info("journal opened", "path", cfg.Journal.Path, "run", s.run)
	}

	s.eng = engine.NewEngine()
	s.eng.Step = cfg.Simulation.Step
	s.eng.Interval = cfg.Simulation.Interval
	s.eng.Speed = cfg.Simulation.Speed
	s.eng.ReportEvery = cfg.Simulation.ReportEvery
	s.eng.OnTick = s.onTick
	s.eng.OnReport = s.onReport

	if cfg.Metrics.Enabled {
		s.server = &api.Server{
			Addr:        cfg.Metrics.Address(),
			Queue:       s.sim,
			Engine:      s.eng,
			Metrics:     s.collector.Handler(),
			MetricsPath: cfg.Metrics.Path,
			AdminKey:    os.Getenv("STARSIM_ADMIN_KEY"),
		}
	}
	return s, nil
}

func (s *session) onTick(_ uint64, dt float64) {
	if s.script != nil {
		s.script.Feed(s.sim, s.eng.Elapsed())
	}

	start := time.Now()
	s.sim.Tick(dt)
	s.collector.RecordTick(time.Since(start))

	events := s.sim.DrainEvents()
	s.collector.RecordEvents(events)
	for _, e := range events {
		if e.Category == engine.CategoryConstellation {
			slog.Info("constellation", "tick", e.Tick, "desc", e.Description)
		}
	}
	if s.journal != nil {
		s.pending = append(s.pending, events...)
	}
	if s.server != nil {
		s.server.Publish(s.sim.Snapshot(), events)
	}
}

func (s *session) onReport(tick uint64) {
	s.flush()
	st := s.sim.Stats()
	slog.Info("simulation report",
		"tick", tick,
		"sim_time", engine.SimTime(st.SimSeconds),
		"reachable", fmt.Sprintf("%d/%d", st.Reachable, st.Stars),
		"connections", st.Connections,
		"constellations", st.Constellations,
		"units", st.UnitsProduced,
		"hauled", fmt.Sprintf("%.1f", st.Hauled),
	)
}

// flush updates the gauges and writes buffered history to the journal.
func (s *session) flush() {
	s.collector.Observe(s.sim)
	if s.journal == nil {
		return
	}

	if err := s.journal.RecordEvents(s.run, s.pending); err != nil {
		slog.Error("journal events failed", "error", err)
	}
	s.pending = s.pending[:0]

	all := s.sim.QueryAllConstellations()
	for _, c := range all[s.recorded:] {
		if err := s.journal.RecordConstellation(s.run, c); err != nil {
			slog.Error("journal constellation failed", "constellation", c.ID, "error", err)
		}
	}
	s.recorded = len(all)
}

// close flushes outstanding history and finishes the journal run.
func (s *session) close() error {
	s.flush()
	if s.journal == nil {
		return nil
	}
	defer s.journal.Close()
	if err := s.journal.FinishRun(s.run, s.sim.Stats()); err != nil {
		return fmt.Errorf("finish journal run: %w", err)
	}
	return nil
}
