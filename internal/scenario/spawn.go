package scenario

import (
	"fmt"
	"math/rand"

	"github.com/huokedu/ecosystem/internal/entropy"
	"github.com/huokedu/ecosystem/internal/grid"
	"github.com/huokedu/ecosystem/internal/organism"
)

// Seed offsets keep the independent randomness streams of one scenario
// seed from overlapping.
const (
	seedOffsetGrid  = 100
	seedOffsetSpawn = 200
	seedOffsetOrg   = 300
)

// Build creates the grid and spawns every species onto it. The initial
// placements are staged and committed before Build returns, so the world
// starts from a clean committed state. A zero scenario seed is replaced by
// a fresh one; the seed actually used is returned for reproducibility.
func Build(sc *Scenario) (*grid.Grid, []*organism.Organism, int64, error) {
	seed := sc.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}

	g := grid.New(sc.Width, sc.Height, entropy.Derive(seed, seedOffsetGrid))
	fields := sc.FieldFactors(seed)
	spawnRNG := entropy.Derive(seed, seedOffsetSpawn)

	var orgs []*organism.Organism
	nextIndex := 0
	for _, sp := range sc.Species {
		factors := sc.FactorsFor(sp, fields)
		for i := 0; i < sp.Count; i++ {
			o := organism.New(g, nextIndex, entropy.Derive(seed, seedOffsetOrg+int64(nextIndex)))
			o.Name = fmt.Sprintf("%s-%d", sp.Name, i)
			o.Species = sp.Name
			o.Kind = kindOf(sp.Kind)
			o.Factors = factors
			o.Speed = sp.Speed
			o.Vision = sp.Vision
			o.Metabolism = sp.Metabolism

			if !placeOnFreeCell(g, o, spawnRNG) {
				return nil, nil, 0, fmt.Errorf("no free cell for %s", o.Name)
			}
			orgs = append(orgs, o)
			nextIndex++
		}
	}

	if !g.Update() {
		// Placement only stages onto vacant cells, so the initial commit
		// cannot be blocked by a conflict.
		panic("scenario: initial commit blocked")
	}
	return g, orgs, seed, nil
}

// placeOnFreeCell stages the organism onto a random unclaimed cell. Random
// probing is cheap while the grid is sparse; a bounded number of misses
// falls back to a linear scan so dense grids still fill up.
func placeOnFreeCell(g *grid.Grid, o *organism.Organism, rng *rand.Rand) bool {
	for tries := 0; tries < 4*g.XSize()*g.YSize(); tries++ {
		x := rng.Intn(g.XSize())
		y := rng.Intn(g.YSize())
		if g.GetPending(x, y) == nil && o.Initialize(x, y) {
			return true
		}
	}
	for x := 0; x < g.XSize(); x++ {
		for y := 0; y < g.YSize(); y++ {
			if g.GetPending(x, y) == nil && o.Initialize(x, y) {
				return true
			}
		}
	}
	return false
}

func kindOf(kind string) organism.Kind {
	if kind == "plant" {
		return organism.KindPlant
	}
	return organism.KindAnimal
}
