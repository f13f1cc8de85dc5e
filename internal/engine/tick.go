// Package engine provides the tick-based simulation loop and the per-tick
// orchestration of staging, conflict resolution, and grid commits.
package engine

import (
	"log/slog"
	"time"
)

// Engine drives the simulation forward at a fixed tick interval.
type Engine struct {
	Tick     uint64        // current tick counter (monotonic)
	Speed    float64       // multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // base tick interval
	Running  bool

	// MaxTicks stops the loop after that many ticks; 0 means run until
	// Stop is called.
	MaxTicks uint64

	// OnTick runs every tick with the new tick number.
	OnTick func(tick uint64)
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run starts the simulation loop. Blocks until Stop is called or MaxTicks
// is reached.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed, "interval", e.Interval)

	for e.Running {
		if e.Speed <= 0 {
			// Paused; check again shortly.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			e.Running = false
			break
		}

		// Sleep out the remainder of the tick interval, adjusted for speed.
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

func (e *Engine) step() {
	e.Tick++
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
}
