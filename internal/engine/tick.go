// Package engine provides the tick-based simulation loop and the
// Simulation that wires the crowd subsystems together.
package engine

import (
	"fmt"
	"log/slog"
	"time"
)

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	MaxTicks uint64        // Stop after this many ticks; 0 = unbounded
	Running  bool

	// OnTick runs every logic frame.
	OnTick func(tick uint64)
}

// NewEngine creates a simulation engine with the given tick interval.
func NewEngine(interval time.Duration) *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: interval,
	}
}

// Run starts the simulation loop. Blocks until Stop() is called or
// MaxTicks is reached.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "interval", e.Interval, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Tick++
		if e.OnTick != nil {
			e.OnTick(e.Tick)
		}

		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			e.Running = false
			break
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.Running = false
}

// SessionClock returns a human-readable mm:ss string for a session
// position given the tick interval.
func SessionClock(tick uint64, interval time.Duration) string {
	total := int(float64(tick) * interval.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
