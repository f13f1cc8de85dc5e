package organism

import "math"

// Metabolism is a minimal energy budget: a basal drain every tick, an extra
// cost per unit of distance moved, and optional photosynthetic income for
// plants. An organism with no remaining energy is due to die.
type Metabolism struct {
	Energy   float64 `json:"energy" yaml:"energy"`
	Basal    float64 `json:"basal" yaml:"basal"`         // drain per tick
	MoveCost float64 `json:"move_cost" yaml:"move_cost"` // drain per unit distance
	Income   float64 `json:"income" yaml:"income"`       // gain per tick (photosynthesis)
}

// Tick applies one tick's worth of basal drain and income.
func (m *Metabolism) Tick() {
	m.Energy += m.Income - m.Basal
}

// Move charges the energy cost of moving between two cells.
func (m *Metabolism) Move(fromX, fromY, toX, toY int) {
	dx := float64(toX - fromX)
	dy := float64(toY - fromY)
	m.Energy -= m.MoveCost * math.Sqrt(dx*dx+dy*dy)
}

// Exhausted reports whether the energy budget has run out.
func (m *Metabolism) Exhausted() bool {
	return m.Energy <= 0
}
