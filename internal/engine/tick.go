// Package engine provides the fixed-step simulation loop and the simulation
// state it advances.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Default loop settings.
const (
	DefaultStep     = 0.1 // Simulated seconds per tick
	DefaultInterval = 100 * time.Millisecond
)

// Engine drives a simulation forward in fixed steps.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Step     float64       // Simulated seconds advanced per tick
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Wall-clock time per tick at speed 1

	// Called once per tick with the tick number and step.
	OnTick func(tick uint64, dt float64)

	// Called every ReportEvery ticks, after OnTick.
	OnReport    func(tick uint64)
	ReportEvery uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Step:     DefaultStep,
		Speed:    1.0,
		Interval: DefaultInterval,
	}
}

// Run steps the simulation paced to wall-clock time. Blocks until ctx is done
// or Stop is called.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()
	defer cancel()

	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.CurrentSpeed(), "step", e.Step)
	defer func() { slog.Info("simulation engine stopped", "tick", e.Tick) }()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		wait := 100 * time.Millisecond
		if speed := e.CurrentSpeed(); speed > 0 {
			start := time.Now()
			e.step()
			wait = time.Duration(float64(e.Interval)/speed) - time.Since(start)
		}
		if wait <= 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Stop halts a running loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// SetSpeed changes the pace of a running loop. Negative speeds pause.
func (e *Engine) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	e.mu.Lock()
	e.Speed = speed
	e.mu.Unlock()
}

// CurrentSpeed returns the speed multiplier.
func (e *Engine) CurrentSpeed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Speed
}

// Advance runs n ticks back to back without pacing.
func (e *Engine) Advance(n int) {
	for i := 0; i < n; i++ {
		e.step()
	}
}

// AdvanceFor runs enough ticks to cover d simulated seconds.
// Returns the number of ticks run.
func (e *Engine) AdvanceFor(d float64) int {
	if e.Step <= 0 || d <= 0 {
		return 0
	}
	n := int(d/e.Step + 0.5)
	e.Advance(n)
	return n
}

// Elapsed returns the simulated seconds covered so far.
func (e *Engine) Elapsed() float64 {
	return float64(e.Tick) * e.Step
}

func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick, e.Step)
	}
	if e.ReportEvery > 0 && e.Tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(e.Tick)
	}
}

// SimTime formats simulated seconds as a clock reading. Truncates to whole
// seconds after absorbing the rounding error of summed fractional steps.
func SimTime(seconds float64) string {
	total := int64(seconds + 1e-6)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	return fmt.Sprintf("T+%d:%02d:%02d", h, m, s)
}
