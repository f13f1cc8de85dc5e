// Simulation ties the grid, the organism registry, and the update handlers
// together and runs one staging/resolve/commit cycle per tick.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/huokedu/ecosystem/internal/grid"
	"github.com/huokedu/ecosystem/internal/organism"
)

// maxConflictRounds bounds how many times one tick re-runs the conflict
// policy before giving up and leaving the commit blocked for the next tick.
const maxConflictRounds = 8

// Event is a notable occurrence in the simulation.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "movement", "conflict", "death"
}

// SimStats tracks aggregate counters across the run.
type SimStats struct {
	Alive             int    `json:"alive"`
	Deaths            int    `json:"deaths"`
	ConflictsResolved uint64 `json:"conflicts_resolved"`
	BlockedCommits    uint64 `json:"blocked_commits"`
}

// Simulation holds the complete world state and advances it tick by tick.
type Simulation struct {
	Grid      *grid.Grid
	Organisms []*organism.Organism
	Handlers  []Handler
	Events    []Event
	LastTick  uint64
	Stats     SimStats

	// ReportEvery controls how often a summary is logged; 0 disables it.
	ReportEvery uint64

	index map[int]*organism.Organism
}

// NewSimulation creates a simulation over the given grid and organisms.
func NewSimulation(g *grid.Grid, orgs []*organism.Organism) *Simulation {
	index := make(map[int]*organism.Organism, len(orgs))
	for _, o := range orgs {
		index[o.Index()] = o
	}
	s := &Simulation{
		Grid:        g,
		Organisms:   orgs,
		ReportEvery: 100,
		index:       index,
	}
	s.updateStats()
	return s
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// Lookup resolves a grid object back to its organism, or nil when the
// object is not registered (for example after removal).
func (s *Simulation) Lookup(obj *grid.Object) *organism.Organism {
	if obj == nil {
		return nil
	}
	return s.index[obj.Index()]
}

// Add registers an organism with the simulation.
func (s *Simulation) Add(o *organism.Organism) {
	s.Organisms = append(s.Organisms, o)
	s.index[o.Index()] = o
}

// Step runs one full simulation tick: every live organism stages its
// proposal through its handlers, conflicts are resolved by the conflict
// policy, and the grid commits atomically. A commit blocked by unresolved
// conflicts is left for the next tick rather than forced.
func (s *Simulation) Step(tick uint64) {
	s.LastTick = tick

	for _, o := range s.Organisms {
		if !o.Alive {
			continue
		}
		for _, h := range s.Handlers {
			if h.Matches(o) {
				h.Run(s, o, tick)
			}
		}
	}

	if !s.resolveConflicts(tick) {
		s.Stats.BlockedCommits++
		slog.Warn("conflicts left unresolved, commit deferred", "tick", tick)
	}

	if !s.Grid.Update() {
		s.record(tick, "commit blocked by unresolved conflicts", "conflict")
	}

	s.reapDead(tick)
	s.updateStats()

	if s.ReportEvery > 0 && tick%s.ReportEvery == 0 {
		slog.Info("simulation report",
			"tick", tick,
			"alive", s.Stats.Alive,
			"deaths", s.Stats.Deaths,
			"conflicts_resolved", s.Stats.ConflictsResolved,
			"blocked_commits", s.Stats.BlockedCommits,
		)
	}
}

// resolveConflicts repeatedly applies the default conflict policy to every
// conflicted cell until the grid is clean or the round budget runs out.
// Resolution itself stages new moves, which can create fresh conflicts, so
// one pass is not always enough.
func (s *Simulation) resolveConflicts(tick uint64) bool {
	for round := 0; round < maxConflictRounds; round++ {
		pendings, conflicts := s.Grid.GetConflicted()
		if len(conflicts) == 0 {
			return true
		}

		for i := range conflicts {
			winner := s.Lookup(pendings[i])
			loser := s.Lookup(conflicts[i])
			if loser == nil {
				// No organism is backing the record; nothing can re-move,
				// drop the stale claim instead.
				x, y := conflictCell(s.Grid, conflicts[i])
				if x >= 0 {
					s.Grid.PurgeNew(x, y, conflicts[i])
				}
				continue
			}
			handler := winner
			if handler == nil {
				handler = loser
			}
			if handler.DefaultConflictHandler(winner, loser) {
				s.Stats.ConflictsResolved++
				s.record(tick, fmt.Sprintf("conflict between %s and %s resolved",
					name(winner), name(loser)), "conflict")
			}
		}
	}

	_, remaining := s.Grid.GetConflicted()
	return len(remaining) == 0
}

// conflictCell finds the cell where obj is recorded as the conflicting
// occupant. Returns (-1, -1) when no such cell exists.
func conflictCell(g *grid.Grid, obj *grid.Object) (int, int) {
	for x := 0; x < g.XSize(); x++ {
		for y := 0; y < g.YSize(); y++ {
			if g.GetConflict(x, y) == obj {
				return x, y
			}
		}
	}
	return -1, -1
}

func (s *Simulation) reapDead(tick uint64) {
	for _, o := range s.Organisms {
		if o.Alive && o.Metabolism.Exhausted() {
			o.Die()
			s.record(tick, fmt.Sprintf("%s died of exhaustion", name(o)), "death")
		}
	}
}

func (s *Simulation) record(tick uint64, description, category string) {
	s.Events = append(s.Events, Event{Tick: tick, Description: description, Category: category})
	// Trim old events to prevent unbounded growth.
	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}

func (s *Simulation) updateStats() {
	alive, deaths := 0, 0
	for _, o := range s.Organisms {
		if o.Alive {
			alive++
		} else {
			deaths++
		}
	}
	s.Stats.Alive = alive
	s.Stats.Deaths = deaths
}

func name(o *organism.Organism) string {
	if o == nil {
		return "nobody"
	}
	if o.Name != "" {
		return o.Name
	}
	return fmt.Sprintf("organism %d", o.Index())
}
