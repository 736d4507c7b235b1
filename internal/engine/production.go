// Per-tick production: construction progress, resource accumulation, unit
// production cycles and hauling into the player's stock.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/resource"
	"github.com/talgya/starweave/internal/specialization"
)

// produce runs one production step for every star in id order.
func (s *Simulation) produce(dt float64) {
	for _, st := range s.graph.Stars() {
		if st.Spec.Phase != specialization.Ready {
			s.advanceConstruction(st, dt)
			continue
		}
		switch kind := st.Spec.Kind; {
		case kind == specialization.None:
			s.accumulate(st, dt)
		case kind == specialization.Storage:
			// Storage only widens capacity and acts as a sink.
		default:
			s.runCycle(st, dt)
		}
	}
}

// accumulate adds BaseRate · efficiency · bonus · dt of every held kind.
func (s *Simulation) accumulate(st *network.Star, dt float64) {
	rate := st.BaseRate * s.routes.Efficiency(st.ID) * s.registry.BonusFor(st.ID)
	if rate <= 0 {
		return
	}
	for _, k := range st.Ledger.Kinds() {
		st.Ledger.Add(k, rate*dt)
	}
}

// advanceConstruction moves a build or upgrade forward and applies its effects
// when it completes. Time left over after completion is dropped.
func (s *Simulation) advanceConstruction(st *network.Star, dt float64) {
	before := st.Spec.Kind
	switch st.Spec.Advance(dt) {
	case specialization.BuildCompleted:
		after := st.Spec.Kind
		switch {
		case after == specialization.Storage:
			st.Ledger.ScaleCapacity(specialization.StorageCapacityFactor)
		case before == specialization.Storage:
			st.Ledger.ScaleCapacity(1.0 / specialization.StorageCapacityFactor)
		}
		delete(s.cycleElapsed, st.ID)
		s.EmitEvent(Event{
			Tick:        s.LastTick,
			Description: fmt.Sprintf("%s completed %s construction", st.Name, after),
			Category:    CategoryConstruction,
			Meta:        map[string]any{"star": st.ID, "kind": after.String()},
		})
		slog.Info("construction complete", "tick", s.LastTick, "star", st.Name, "kind", after.String())
	case specialization.UpgradeCompleted:
		s.EmitEvent(Event{
			Tick:        s.LastTick,
			Description: fmt.Sprintf("%s reached level %d", st.Name, st.Spec.Level),
			Category:    CategoryConstruction,
			Meta:        map[string]any{"star": st.ID, "level": st.Spec.Level},
		})
		slog.Info("upgrade complete", "tick", s.LastTick, "star", st.Name, "level", st.Spec.Level)
	default:
		return
	}
	if before == specialization.Storage || st.Spec.Kind == specialization.Storage {
		s.routesDirty = true
	}
}

// runCycle accumulates time on a producer and, once per collection interval,
// spends the production cost from the player's stock and delivers units.
// A cycle the player cannot afford is skipped and retried next interval.
func (s *Simulation) runCycle(st *network.Star, dt float64) {
	elapsed := s.cycleElapsed[st.ID] + dt
	for elapsed+specialization.Epsilon >= s.collection {
		elapsed -= s.collection

		kind, level := st.Spec.Kind, st.Spec.Level
		cost := specialization.ProductionCost(kind, level)
		if err := s.player.Spend(cost); err != nil {
			if !errors.Is(err, resource.ErrInsufficientResources) {
				slog.Error("production spend failed", "star", st.Name, "error", err)
			}
			s.stats.SkippedCycles++
			s.EmitEvent(Event{
				Tick:        s.LastTick,
				Description: fmt.Sprintf("%s idle: insufficient resources for %s", st.Name, kind),
				Category:    CategoryProduction,
				Meta:        map[string]any{"star": st.ID, "skipped": true},
			})
			continue
		}

		unit, _, _ := specialization.Unit(kind)
		count := specialization.UnitCount(kind, level)
		s.deliver(st.ID, unit, count)
		s.EmitEvent(Event{
			Tick:        s.LastTick,
			Description: fmt.Sprintf("%s produced %d %s", st.Name, count, unit),
			Category:    CategoryProduction,
			Meta:        map[string]any{"star": st.ID, "unit": unit.String(), "count": count},
		})
	}
	s.cycleElapsed[st.ID] = elapsed
}

func (s *Simulation) deliver(star network.StarID, unit specialization.UnitKind, count int) {
	s.units.Deliver(star, unit, count)
	if s.sink != nil {
		s.sink.Deliver(star, unit, count)
	}
	s.stats.UnitsProduced += count
}

// haul moves stock from every Ready, unspecialized star with a route into the
// player's stock once per collection interval, bounded by the player's free
// capacity.
func (s *Simulation) haul(dt float64) {
	s.haulElapsed += dt
	if s.haulElapsed+specialization.Epsilon < s.collection {
		return
	}
	s.haulElapsed -= s.collection

	total := 0.0
	for _, st := range s.graph.Stars() {
		if st.Spec.Phase != specialization.Ready || st.Spec.Kind != specialization.None {
			continue
		}
		if !s.routes.Reachable(st.ID) {
			continue
		}
		for _, k := range st.Ledger.Kinds() {
			want := st.Ledger.Amount(k)
			if free := s.player.Free(k); want > free {
				want = free
			}
			moved := s.player.Add(k, st.Ledger.Take(k, want))
			total += moved
		}
	}
	s.stats.Hauled += total
	if total > 0 {
		slog.Debug("haul", "tick", s.LastTick, "amount", total)
	}
}
