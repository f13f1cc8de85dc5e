// Update handlers: per-kind behavior run on every matching organism each
// tick. Animals re-derive their position; plants hold their ground by
// explicitly re-claiming their own cell, so movers collide with them
// instead of silently taking the cell.
package engine

import (
	"log/slog"

	"github.com/huokedu/ecosystem/internal/organism"
)

// Handler runs on a filtered subset of organisms every tick.
type Handler interface {
	Name() string
	Matches(o *organism.Organism) bool
	Run(s *Simulation, o *organism.Organism, tick uint64)
}

// DefaultHandlers returns the built-in animal and plant handlers.
func DefaultHandlers() []Handler {
	return []Handler{AnimalHandler{}, PlantHandler{}}
}

// AnimalHandler moves animals and charges their metabolism for the trip.
type AnimalHandler struct{}

func (AnimalHandler) Name() string { return "animal" }

func (AnimalHandler) Matches(o *organism.Organism) bool {
	return o.Kind == organism.KindAnimal
}

func (AnimalHandler) Run(s *Simulation, o *organism.Organism, tick uint64) {
	oldX, oldY := o.Position()

	// A rejected staging means a conflict was recorded; the simulation's
	// resolution pass deals with it after every organism has proposed.
	if !o.UpdatePosition() {
		slog.Debug("staging rejected", "organism", name(o), "tick", tick)
	}

	newX, newY := o.Position()
	o.Metabolism.Tick()
	o.Metabolism.Move(oldX, oldY, newX, newY)

	if newX != oldX || newY != oldY {
		s.record(tick, name(o)+" moved", "movement")
	}
}

// PlantHandler keeps plants rooted via a stasis request and runs their
// metabolism.
type PlantHandler struct{}

func (PlantHandler) Name() string { return "plant" }

func (PlantHandler) Matches(o *organism.Organism) bool {
	return o.Kind == organism.KindPlant
}

func (PlantHandler) Run(s *Simulation, o *organism.Organism, tick uint64) {
	if !o.RequestStasis() {
		slog.Debug("stasis request rejected", "organism", name(o), "tick", tick)
	}
	o.Metabolism.Tick()
}
