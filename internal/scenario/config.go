// Package scenario loads YAML scenario definitions and turns them into a
// populated grid: movement factor fields derived from noise, and organisms
// spawned onto free cells.
package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/huokedu/ecosystem/internal/grid"
	"github.com/huokedu/ecosystem/internal/organism"
)

// Scenario is a complete simulation setup.
type Scenario struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Seed   int64  `yaml:"seed"` // 0 = fresh seed every run

	Ticks uint64 `yaml:"ticks"` // 0 = run until stopped

	// TickInterval is given in the file as a duration string such as
	// "250ms"; UnmarshalYAML parses it.
	TickInterval time.Duration `yaml:"-"`

	Species []SpeciesSpec `yaml:"species"`
	Fields  []FieldSpec   `yaml:"fields"`

	// Extra hand-placed factors on top of the generated fields.
	Factors []grid.MovementFactor `yaml:"factors"`
}

// UnmarshalYAML decodes the scenario, parsing tick_interval from a
// duration string such as "250ms".
func (sc *Scenario) UnmarshalYAML(value *yaml.Node) error {
	type Alias Scenario
	aux := struct {
		*Alias       `yaml:",inline"`
		TickInterval string `yaml:"tick_interval"`
	}{Alias: (*Alias)(sc)}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	if aux.TickInterval == "" {
		return nil
	}
	d, err := time.ParseDuration(aux.TickInterval)
	if err != nil {
		return fmt.Errorf("tick_interval: %w", err)
	}
	sc.TickInterval = d
	return nil
}

// SpeciesSpec describes one organism population.
type SpeciesSpec struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"` // "plant" or "animal"
	Count  int    `yaml:"count"`
	Speed  int    `yaml:"speed"`
	Vision int    `yaml:"vision"`

	Metabolism organism.Metabolism `yaml:"metabolism"`

	// How strongly members of this species react to each field, by field
	// name. Negative values repel.
	Affinities map[string]int `yaml:"affinities"`
}

// FieldSpec describes one noise-driven factor field.
type FieldSpec struct {
	Name       string  `yaml:"name"`
	Strength   int     `yaml:"strength"`
	Visibility int     `yaml:"visibility"`
	Threshold  float64 `yaml:"threshold"` // noise value above which a factor is placed
	Frequency  float64 `yaml:"frequency"` // noise frequency, higher = patchier
	SeedOffset int64   `yaml:"seed_offset"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks the scenario for values the simulation cannot run with.
func (sc *Scenario) Validate() error {
	if sc.Width <= 0 || sc.Height <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", sc.Width, sc.Height)
	}
	total := 0
	for i, sp := range sc.Species {
		switch sp.Kind {
		case "plant", "animal":
		default:
			return fmt.Errorf("species %q: unknown kind %q", sp.Name, sp.Kind)
		}
		if sp.Count < 0 {
			return fmt.Errorf("species %q: negative count", sp.Name)
		}
		if sp.Kind == "animal" && sp.Speed <= 0 {
			sc.Species[i].Speed = 1
		}
		total += sp.Count
	}
	if total > sc.Width*sc.Height {
		return fmt.Errorf("%d organisms cannot fit on a %dx%d grid", total, sc.Width, sc.Height)
	}
	for _, f := range sc.Fields {
		if f.Frequency <= 0 {
			return fmt.Errorf("field %q: frequency must be positive", f.Name)
		}
	}
	return nil
}

// Default returns a small built-in scenario used when no file is given.
func Default() *Scenario {
	return &Scenario{
		Name:         "meadow",
		Width:        32,
		Height:       32,
		Seed:         42,
		TickInterval: 250 * time.Millisecond,
		Species: []SpeciesSpec{
			{
				Name:  "grass",
				Kind:  "plant",
				Count: 40,
				Metabolism: organism.Metabolism{
					Energy: 10, Basal: 0.05, Income: 0.05,
				},
			},
			{
				Name:   "grazer",
				Kind:   "animal",
				Count:  12,
				Speed:  1,
				Vision: 10,
				Metabolism: organism.Metabolism{
					Energy: 50, Basal: 0.02, MoveCost: 0.1,
				},
				Affinities: map[string]int{"water": 40},
			},
		},
		Fields: []FieldSpec{
			{
				Name:      "water",
				Strength:  40,
				Threshold: 0.75,
				Frequency: 0.1,
			},
		},
	}
}
