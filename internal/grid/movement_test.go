package grid

import (
	"math"
	"math/rand"
	"testing"
)

func TestCalculateProbabilitiesUniform(t *testing.T) {
	g := newTestGrid(t, 9, 9)
	locations := []Coord{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

	for name, factors := range map[string][]MovementFactor{
		"no factors": nil,
		"zero sum": {
			{X: 0, Y: 0, Strength: 5},
			{X: 8, Y: 8, Strength: -5},
		},
	} {
		probs := g.CalculateProbabilities(factors, locations)
		for i, p := range probs {
			if p != 0.25 {
				t.Fatalf("%s: probability[%d] = %v, want 0.25", name, i, p)
			}
		}
	}
}

func TestCalculateProbabilitiesAttraction(t *testing.T) {
	g := newTestGrid(t, 9, 9)
	factors := []MovementFactor{{X: 0, Y: 0, Strength: 10}}
	locations := []Coord{{0, 0}, {0, 1}, {0, 4}, {8, 8}}

	probs := g.CalculateProbabilities(factors, locations)

	total := 0.0
	for _, p := range probs {
		if p < 0 {
			t.Fatalf("negative probability %v", p)
		}
		total += p
	}
	if math.Abs(total-1) > 1e-12 {
		t.Fatalf("probabilities sum to %v, want 1", total)
	}
	// Mass decreases monotonically with distance from the factor, and the
	// co-located cell dominates everything else.
	for i := 1; i < len(probs); i++ {
		if probs[i] >= probs[i-1] {
			t.Fatalf("probabilities not decreasing with distance: %v", probs)
		}
	}
	if probs[0] < 0.9 {
		t.Fatalf("co-located cell got %v of the mass, want nearly all of it", probs[0])
	}
}

func TestCalculateProbabilitiesRepulsion(t *testing.T) {
	g := newTestGrid(t, 9, 9)
	factors := []MovementFactor{{X: 0, Y: 0, Strength: -10}}
	locations := []Coord{{0, 1}, {4, 4}}

	probs := g.CalculateProbabilities(factors, locations)
	// The cell next to the repulsor carries the minimum and is shifted to
	// zero; the distant cell takes the remaining mass.
	if probs[0] != 0 {
		t.Fatalf("cell beside the repulsor got %v, want 0", probs[0])
	}
	if math.Abs(probs[1]-1) > 1e-12 {
		t.Fatalf("distant cell got %v, want 1", probs[1])
	}
}

func TestCalculateProbabilitiesDegenerateShift(t *testing.T) {
	g := newTestGrid(t, 9, 9)
	// A lone negative factor against a single equidistant pair shifts
	// every value to the same point; the result must still be a valid
	// distribution.
	factors := []MovementFactor{{X: 4, Y: 4, Strength: -10}}
	locations := []Coord{{4, 3}, {4, 5}}

	probs := g.CalculateProbabilities(factors, locations)
	for i, p := range probs {
		if p != 0.5 {
			t.Fatalf("probability[%d] = %v, want 0.5", i, p)
		}
	}
}

func TestDoMovementSampling(t *testing.T) {
	g := New(9, 9, rand.New(rand.NewSource(7)))
	locations := []Coord{{0, 0}, {1, 1}}

	// All mass on the second candidate: the draw can never stop early.
	for i := 0; i < 100; i++ {
		if got := g.DoMovement([]float64{0, 1}, locations); got != locations[1] {
			t.Fatalf("sampled %v from a point mass on %v", got, locations[1])
		}
	}

	// A degenerate zero vector still terminates via the last-candidate
	// fallback.
	if got := g.DoMovement([]float64{0, 0}, locations); got != locations[1] {
		t.Fatalf("fallback returned %v, want the last candidate", got)
	}
}

func TestRemoveInvisible(t *testing.T) {
	g := newTestGrid(t, 20, 20)
	factors := []MovementFactor{
		{X: 0, Y: 0, Strength: 1, Visibility: 2},  // too far for its own range
		{X: 0, Y: 0, Strength: 2, Visibility: 0},  // unlimited range
		{X: 9, Y: 10, Strength: 3, Visibility: 5}, // adjacent
		{X: 0, Y: 10, Strength: 4, Visibility: 0}, // cut by the vision bound
	}

	visible := g.RemoveInvisible(10, 10, append([]MovementFactor(nil), factors...), 0)
	if len(visible) != 3 {
		t.Fatalf("unbounded vision kept %d factors, want 3", len(visible))
	}

	visible = g.RemoveInvisible(10, 10, append([]MovementFactor(nil), factors...), 5)
	if len(visible) != 1 || visible[0].Strength != 3 {
		t.Fatalf("vision 5 kept %v, want only the adjacent factor", visible)
	}
}

func TestMoveObjectFollowsAttraction(t *testing.T) {
	g := New(9, 9, rand.New(rand.NewSource(3)))
	factors := []MovementFactor{{X: 0, Y: 4, Strength: 100}}

	// With an attractor due west the sampled destinations should lean
	// heavily westward. The pull is probabilistic, so count over many
	// draws instead of asserting any single one.
	west, east := 0, 0
	for i := 0; i < 300; i++ {
		x, _, ok := g.MoveObject(4, 4, factors, 1, 0)
		if !ok {
			t.Fatal("MoveObject failed")
		}
		switch {
		case x < 4:
			west++
		case x > 4:
			east++
		}
	}
	if west < 3*east || west < 150 {
		t.Fatalf("west/east moves = %d/%d, want a strong westward bias", west, east)
	}
}
