// Package organism provides the entity layer on top of the grid: a
// positioned object plus a movement decision driven by attraction and
// repulsion factors, a metabolism budget, and the default policy for
// resolving staging conflicts between two organisms.
package organism

import (
	"math/rand"

	"github.com/huokedu/ecosystem/internal/grid"
)

// Kind classifies an organism for handler dispatch.
type Kind uint8

const (
	KindPlant  Kind = iota // sessile; re-claims its own cell each tick
	KindAnimal             // mobile; re-derives its position each tick
)

// KindName returns a human-readable kind label.
func KindName(k Kind) string {
	switch k {
	case KindPlant:
		return "plant"
	case KindAnimal:
		return "animal"
	default:
		return "unknown"
	}
}

// Organism is a grid object with movement behavior. Factors, Speed, and
// Vision are the hooks the grid's movement machinery consumes; the rng
// decides conflict coin flips and is injected so tests can force outcomes.
type Organism struct {
	*grid.Object

	Name    string
	Kind    Kind
	Species string

	// Movement inputs, supplied to the grid each time a new position is
	// derived.
	Factors []grid.MovementFactor
	Speed   int // neighborhood levels reachable in one step
	Vision  int // distance bound on factor visibility, <=0 unlimited

	Metabolism Metabolism
	Alive      bool
	BornTick   uint64

	rng *rand.Rand
}

// New creates a detached organism on the given grid. The index identifies
// the organism to the simulation's registry.
func New(g *grid.Grid, index int, rng *rand.Rand) *Organism {
	return &Organism{
		Object: grid.NewObject(g, index),
		Alive:  true,
		rng:    rng,
	}
}

// UpdatePosition derives a destination from the organism's factor set,
// speed, and vision, and stages a move there. Returns false when the grid
// rejects either the derivation or the staging; a staging rejection leaves
// the organism recorded as the conflicting claimant of the contested cell.
func (o *Organism) UpdatePosition() bool {
	x, y := o.Position()
	newX, newY, ok := o.Grid().MoveObject(x, y, o.Factors, o.Speed, o.Vision)
	if !ok {
		return false
	}
	return o.SetPosition(newX, newY)
}

// RequestStasis re-claims the organism's current cell so another organism
// staging into it this tick conflicts instead of displacing it silently.
func (o *Organism) RequestStasis() bool {
	x, y := o.Position()
	return o.SetPosition(x, y)
}

// DefaultConflictHandler resolves a staging conflict between two organisms:
// pick one side with equal probability, blacklist its current cell so
// nothing claims the vacancy mid-resolution, and force it to re-derive its
// move. The blacklist is cleared once the re-move succeeds; on failure it
// is left in place for the caller to retry (the next commit resets it
// regardless). Fails only when the forced re-move itself fails.
func (o *Organism) DefaultConflictHandler(a, b *Organism) bool {
	toMove := a
	if a == nil || (b != nil && o.rng.Intn(2) == 0) {
		toMove = b
	}
	if toMove == nil {
		return false
	}

	x, y := toMove.Position()
	g := toMove.Grid()
	g.SetBlacklisted(x, y, true)
	if !toMove.UpdatePosition() {
		return false
	}
	g.SetBlacklisted(x, y, false)
	return true
}

// Die marks the organism dead and releases every grid reference to it.
func (o *Organism) Die() {
	o.Alive = false
	o.RemoveFromGrid()
}
