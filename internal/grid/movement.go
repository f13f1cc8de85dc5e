package grid

import "math"

// MovementFactor is a point source of attraction (positive strength) or
// repulsion (negative strength) that shapes movement probabilities. A
// visibility of zero or less means unlimited range.
type MovementFactor struct {
	X          int `json:"x" yaml:"x"`
	Y          int `json:"y" yaml:"y"`
	Strength   int `json:"strength" yaml:"strength"`
	Visibility int `json:"visibility" yaml:"visibility"`
}

// Distance returns the Euclidean distance from the factor to (x, y).
func (f MovementFactor) Distance(x, y int) float64 {
	dx := float64(f.X - x)
	dy := float64(f.Y - y)
	return math.Sqrt(dx*dx + dy*dy)
}

// CalculateProbabilities produces one probability per candidate location.
//
// With no factors, or factors whose strengths sum to zero, every location
// gets the same probability. Otherwise each factor contributes
// strength/distance^5 to each location (10×strength when co-located), the
// contributions are averaged over the factors, shifted non-negative, and
// normalized to sum to 1. The fifth-power falloff means only nearby factors
// matter materially.
func (g *Grid) CalculateProbabilities(factors []MovementFactor, locations []Coord) []float64 {
	probabilities := make([]float64, len(locations))
	if len(locations) == 0 {
		return probabilities
	}

	totalStrength := 0
	for _, f := range factors {
		totalStrength += f.Strength
	}
	if len(factors) == 0 || totalStrength == 0 {
		for i := range probabilities {
			probabilities[i] = 1.0 / float64(len(locations))
		}
		return probabilities
	}

	for _, f := range factors {
		for i, loc := range locations {
			radius := f.Distance(loc.X, loc.Y)
			if radius != 0 {
				probabilities[i] += float64(f.Strength) / math.Pow(radius, 5)
			} else {
				// The factor sits exactly on this location.
				probabilities[i] += 10 * float64(f.Strength)
			}
		}
	}

	// Average over the factors and find the minimum, clamped at zero so an
	// all-positive field is left where it is.
	min := 0.0
	for i := range probabilities {
		probabilities[i] /= float64(len(factors))
		if probabilities[i] < min {
			min = probabilities[i]
		}
	}

	// Shift non-negative and normalize.
	total := 0.0
	for i := range probabilities {
		probabilities[i] -= min
		total += probabilities[i]
	}
	if total == 0 {
		// Every location ended up with identical weight; fall back to a
		// uniform distribution rather than dividing by zero.
		for i := range probabilities {
			probabilities[i] = 1.0 / float64(len(locations))
		}
		return probabilities
	}
	for i := range probabilities {
		probabilities[i] /= total
	}
	return probabilities
}

// DoMovement samples one candidate location by inverse CDF: draw a uniform
// value in [0, 1) and return the first location at which the running
// probability mass reaches it. Floating-point shortfall falls through to
// the last candidate.
func (g *Grid) DoMovement(probabilities []float64, locations []Coord) Coord {
	draw := g.rng.Float64()

	runningTotal := 0.0
	for i, loc := range locations {
		runningTotal += probabilities[i]
		if runningTotal >= draw {
			return loc
		}
	}
	return locations[len(locations)-1]
}

// RemoveInvisible drops factors farther from (x, y) than their own
// visibility, or than the given vision bound. A non-positive bound disables
// that check.
func (g *Grid) RemoveInvisible(x, y int, factors []MovementFactor, vision int) []MovementFactor {
	visible := factors[:0]
	for _, f := range factors {
		radius := f.Distance(x, y)
		if f.Visibility > 0 && radius > float64(f.Visibility) {
			continue
		}
		if vision > 0 && radius > float64(vision) {
			continue
		}
		visible = append(visible, f)
	}
	return visible
}

// MoveObject picks a destination for an entity at (x, y): filter the
// factors by visibility, enumerate the neighborhood plus the origin itself
// as a "stay" candidate, drop unusable cells, compute probabilities, and
// sample. Fails only when the origin is off the grid. If every candidate is
// unusable the entity stays where it is.
func (g *Grid) MoveObject(x, y int, factors []MovementFactor, levels, vision int) (newX, newY int, ok bool) {
	visible := g.RemoveInvisible(x, y, append([]MovementFactor(nil), factors...), vision)

	locations, ok := g.GetNeighborhoodLocations(x, y, levels)
	if !ok {
		return 0, 0, false
	}
	locations = append(locations, Coord{X: x, Y: y})
	locations = g.RemoveUnusable(locations)
	if len(locations) == 0 {
		return x, y, true
	}

	probabilities := g.CalculateProbabilities(visible, locations)
	target := g.DoMovement(probabilities, locations)
	return target.X, target.Y, true
}
