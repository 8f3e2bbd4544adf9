// Package engine drives the simulation: the tick loop, the activation order,
// and the per-tick wealth-exchange step.
package engine

import (
	"log/slog"
	"time"
)

// Engine runs the tick loop. One tick fully completes before the next
// begins; pausing takes effect only between ticks.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	Running  bool
	MaxTicks uint64 // Stop after this many ticks; 0 = run until stopped

	// OnTick is invoked once per tick after the counter advances.
	OnTick func(tick uint64)
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: 100 * time.Millisecond,
	}
}

// Run starts the tick loop. Blocks until Stop() is called or MaxTicks is
// reached.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("engine started", "tick", e.Tick, "speed", e.Speed, "interval", e.Interval)

	for e.Running {
		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			break
		}
		if e.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	e.Running = false
	slog.Info("engine stopped", "tick", e.Tick)
}

// RunFor advances exactly n ticks back-to-back with no pacing. Used for
// headless batch runs and by the admin step endpoint while paused.
func (e *Engine) RunFor(n uint64) {
	for i := uint64(0); i < n; i++ {
		e.step()
	}
}

// Stop halts the tick loop.
func (e *Engine) Stop() {
	e.Running = false
}

func (e *Engine) step() {
	e.Tick++
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
}
