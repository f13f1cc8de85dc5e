package scenario

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/huokedu/ecosystem/internal/grid"
)

// fieldOctaves layers a little fractal detail so factor clusters have
// ragged, natural-looking edges.
const fieldOctaves = 3

// GenerateField samples normalized noise across the grid and returns one
// movement factor for every cell where the field crosses its threshold.
// Deterministic for a given seed.
func GenerateField(f FieldSpec, width, height int, seed int64) []grid.MovementFactor {
	noise := opensimplex.NewNormalized(seed + f.SeedOffset)

	var factors []grid.MovementFactor
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			v := octaveNoise(noise, float64(x), float64(y), fieldOctaves, f.Frequency, 0.5)
			if v < f.Threshold {
				continue
			}
			factors = append(factors, grid.MovementFactor{
				X:          x,
				Y:          y,
				Strength:   f.Strength,
				Visibility: f.Visibility,
			})
		}
	}
	return factors
}

// FieldFactors generates every field in the scenario, keyed by field name.
func (sc *Scenario) FieldFactors(seed int64) map[string][]grid.MovementFactor {
	fields := make(map[string][]grid.MovementFactor, len(sc.Fields))
	for _, f := range sc.Fields {
		fields[f.Name] = GenerateField(f, sc.Width, sc.Height, seed)
	}
	return fields
}

// FactorsFor assembles the factor set one species member reacts to: every
// generated field the species has an affinity for, re-signed by that
// affinity, plus the scenario's hand-placed factors.
func (sc *Scenario) FactorsFor(sp SpeciesSpec, fields map[string][]grid.MovementFactor) []grid.MovementFactor {
	// Walk sc.Fields rather than the affinity map so the factor order, and
	// with it the floating-point accumulation order, is deterministic.
	var factors []grid.MovementFactor
	for _, fs := range sc.Fields {
		strength, ok := sp.Affinities[fs.Name]
		if !ok {
			continue
		}
		for _, f := range fields[fs.Name] {
			f.Strength = strength
			factors = append(factors, f)
		}
	}
	factors = append(factors, sc.Factors...)
	return factors
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
