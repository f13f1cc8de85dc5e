package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huokedu/ecosystem/internal/organism"
)

const testScenarioYAML = `
name: pond
width: 16
height: 16
seed: 7
ticks: 100
tick_interval: 50ms
species:
  - name: reed
    kind: plant
    count: 5
    metabolism:
      energy: 10
      basal: 0.1
      income: 0.1
  - name: frog
    kind: animal
    count: 3
    vision: 8
    metabolism:
      energy: 20
      basal: 0.1
      move_cost: 0.2
    affinities:
      water: 30
fields:
  - name: water
    strength: 30
    threshold: 0.7
    frequency: 0.2
factors:
  - x: 8
    y: 8
    strength: -10
    visibility: 4
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	sc, err := Load(writeScenario(t, testScenarioYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sc.Name != "pond" || sc.Width != 16 || sc.Height != 16 || sc.Seed != 7 {
		t.Fatalf("header fields wrong: %+v", sc)
	}
	if sc.TickInterval != 50*time.Millisecond {
		t.Fatalf("tick interval = %v, want 50ms", sc.TickInterval)
	}
	if len(sc.Species) != 2 || len(sc.Fields) != 1 || len(sc.Factors) != 1 {
		t.Fatalf("section sizes wrong: %+v", sc)
	}
	// An animal with no speed gets the default.
	if sc.Species[1].Speed != 1 {
		t.Fatalf("frog speed = %d, want the default 1", sc.Species[1].Speed)
	}
	if sc.Species[1].Affinities["water"] != 30 {
		t.Fatalf("frog affinities = %v", sc.Species[1].Affinities)
	}
	if sc.Factors[0].Strength != -10 {
		t.Fatalf("hand-placed factor = %+v", sc.Factors[0])
	}
}

func TestLoadRejectsBadScenarios(t *testing.T) {
	cases := map[string]string{
		"bad yaml":        "species: [",
		"zero dimensions": "name: x\nwidth: 0\nheight: 4",
		"unknown kind":    "width: 4\nheight: 4\nspecies:\n  - name: x\n    kind: fungus\n    count: 1",
		"overfull grid":   "width: 2\nheight: 2\nspecies:\n  - name: x\n    kind: plant\n    count: 5",
		"bad frequency":   "width: 4\nheight: 4\nfields:\n  - name: f\n    frequency: 0",
	}
	for name, body := range cases {
		if _, err := Load(writeScenario(t, body)); err == nil {
			t.Errorf("%s: Load accepted an invalid scenario", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load accepted a missing file")
	}
}

func TestGenerateFieldDeterministic(t *testing.T) {
	f := FieldSpec{Name: "water", Strength: 30, Threshold: 0.6, Frequency: 0.2}

	a := GenerateField(f, 24, 24, 7)
	b := GenerateField(f, 24, 24, 7)
	if len(a) != len(b) {
		t.Fatalf("same-seed fields differ in size: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same-seed fields differ at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
	if len(a) == 0 {
		t.Fatal("threshold 0.6 produced an empty field")
	}
	for _, factor := range a {
		if factor.Strength != 30 {
			t.Fatalf("factor strength = %d, want 30", factor.Strength)
		}
		if factor.X < 0 || factor.X >= 24 || factor.Y < 0 || factor.Y >= 24 {
			t.Fatalf("factor out of bounds: %+v", factor)
		}
	}

	c := GenerateField(f, 24, 24, 8)
	same := len(a) == len(c)
	if same {
		for i := range a {
			if a[i] != c[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Fatal("different seeds produced identical fields")
	}
}

func TestFactorsFor(t *testing.T) {
	sc, err := Load(writeScenario(t, testScenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	fields := sc.FieldFactors(sc.Seed)

	frog := sc.Species[1]
	factors := sc.FactorsFor(frog, fields)
	// Field factors re-signed by the affinity, then the hand-placed one.
	if len(factors) != len(fields["water"])+1 {
		t.Fatalf("factor count = %d, want %d", len(factors), len(fields["water"])+1)
	}
	for _, f := range factors[:len(factors)-1] {
		if f.Strength != 30 {
			t.Fatalf("field factor strength = %d, want the affinity 30", f.Strength)
		}
	}
	if last := factors[len(factors)-1]; last.Strength != -10 {
		t.Fatalf("hand-placed factor = %+v, want strength -10", last)
	}

	// A species with no affinities still gets the hand-placed factors.
	reed := sc.Species[0]
	if got := sc.FactorsFor(reed, fields); len(got) != 1 {
		t.Fatalf("reed factors = %v, want only the hand-placed one", got)
	}
}

func TestBuild(t *testing.T) {
	sc, err := Load(writeScenario(t, testScenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	g, orgs, seed, err := Build(sc)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if seed != 7 {
		t.Fatalf("seed = %d, want the scenario's own 7", seed)
	}
	if len(orgs) != 8 {
		t.Fatalf("organism count = %d, want 8", len(orgs))
	}

	// Every organism is committed to its own cell.
	seen := make(map[[2]int]bool)
	for _, o := range orgs {
		x, y := o.BakedPosition()
		if g.GetOccupant(x, y) != o.Object {
			t.Fatalf("%s not committed at its baked position (%d,%d)", o.Name, x, y)
		}
		if seen[[2]int{x, y}] {
			t.Fatalf("two organisms share (%d,%d)", x, y)
		}
		seen[[2]int{x, y}] = true
	}

	// Kinds and names follow the species entries.
	if orgs[0].Kind != organism.KindPlant || orgs[0].Name != "reed-0" {
		t.Fatalf("first organism = %s/%v, want reed-0 the plant", orgs[0].Name, orgs[0].Kind)
	}
	if orgs[5].Kind != organism.KindAnimal || orgs[5].Species != "frog" {
		t.Fatalf("sixth organism = %s/%v, want a frog", orgs[5].Name, orgs[5].Kind)
	}
}

func TestBuildDeterministic(t *testing.T) {
	sc := Default()

	_, a, _, err := Build(sc)
	if err != nil {
		t.Fatal(err)
	}
	_, b, _, err := Build(sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("organism counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		ax, ay := a[i].BakedPosition()
		bx, by := b[i].BakedPosition()
		if ax != bx || ay != by {
			t.Fatalf("organism %d placed at (%d,%d) vs (%d,%d) across same-seed builds",
				i, ax, ay, bx, by)
		}
	}
}

func TestBuildFillsTheWholeGrid(t *testing.T) {
	sc := &Scenario{
		Width:  4,
		Height: 4,
		Seed:   3,
		Species: []SpeciesSpec{
			{Name: "moss", Kind: "plant", Count: 16},
		},
	}
	if err := sc.Validate(); err != nil {
		t.Fatal(err)
	}

	g, orgs, _, err := Build(sc)
	if err != nil {
		t.Fatalf("Build failed on a full grid: %v", err)
	}
	if len(orgs) != 16 {
		t.Fatalf("organism count = %d, want 16", len(orgs))
	}
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			if g.GetOccupant(x, y) == nil {
				t.Fatalf("cell (%d,%d) left empty on a fully populated grid", x, y)
			}
		}
	}
}
