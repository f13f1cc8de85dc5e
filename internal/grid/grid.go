// Package grid provides the cell grid and the two-phase staging/commit
// protocol that reconciles movement proposals each tick.
//
// Every cell tracks a committed occupant (visible this tick), a pending
// occupant (staged for the next commit), and at most one conflicted
// occupant (the loser of a staging race). Update commits the whole grid
// atomically once no conflicts remain.
package grid

import (
	"math/rand"
	"time"
)

// Coord is a grid location.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// cell is one grid location's occupancy record. Owned exclusively by Grid;
// callers only ever see the Object references it holds.
type cell struct {
	committed  *Object // occupant present this tick
	pending    *Object // occupant staged for the next commit
	conflicted *Object // occupant that lost a staging race

	// Transient per-tick flags, reset unconditionally by Update.
	blacklisted bool // no new occupant may be staged here
	stasis      bool // the committed occupant explicitly re-claimed this cell
}

// Grid owns an xSize × ySize array of cells, row-major by (x, y). It holds
// non-owning references to the objects placed on it; objects own their
// position state and must call RemoveFromGrid before they go away.
type Grid struct {
	xSize, ySize int
	cells        []cell
	rng          *rand.Rand
}

// New creates a zero-initialized grid. The rng drives movement sampling;
// pass a seeded source for deterministic runs, or nil for a time-seeded one.
func New(xSize, ySize int, rng *rand.Rand) *Grid {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Grid{
		xSize: xSize,
		ySize: ySize,
		cells: make([]cell, xSize*ySize),
		rng:   rng,
	}
}

// XSize returns the grid width.
func (g *Grid) XSize() int { return g.xSize }

// YSize returns the grid height.
func (g *Grid) YSize() int { return g.ySize }

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.xSize && y < g.ySize
}

func (g *Grid) at(x, y int) *cell {
	return &g.cells[x*g.ySize+y]
}

// SetOccupant stages occupant into the cell's pending slot.
//
// A nil occupant stages a vacancy. Staging fails on a blacklisted cell
// (unless the call is a no-op), and records a conflict when the cell
// already has a distinct pending occupant. Staging an occupant back onto
// its own committed cell marks the cell as a stasis request, which makes
// later claims by others conflict instead of silently taking the cell.
func (g *Grid) SetOccupant(x, y int, occupant *Object) bool {
	c := g.at(x, y)

	if c.blacklisted {
		if occupant == nil || occupant == c.pending {
			// Nothing would change anyway, so this is not a failure.
			return true
		}
		return false
	}

	if c.pending == nil || (c.pending == c.committed && !c.stasis) {
		// No real pending occupant yet.
		if c.conflicted != nil {
			panic("grid: conflict recorded on a cell with no pending occupant")
		}
		c.pending = occupant
		if occupant != nil && occupant == c.committed {
			// An explicit request to keep this cell the same next tick.
			c.stasis = true
		}
		return true
	}

	if occupant == nil || occupant == c.pending {
		// Re-staging the same occupant, or staging a vacancy into a claimed
		// cell, does nothing but is not a failure.
		return true
	}

	// Second distinct claim on a claimed cell: record the conflict.
	c.conflicted = occupant
	return false
}

// PurgeNew removes object from the cell's staging state. If object held the
// pending slot, the conflicted occupant (if any) is promoted into it;
// otherwise pending reverts to the committed occupant. Returns false when
// object is neither the pending nor the conflicted occupant.
func (g *Grid) PurgeNew(x, y int, object *Object) bool {
	c := g.at(x, y)

	switch {
	case object == c.pending:
		stasis := false
		if c.conflicted != nil {
			promoted := c.conflicted
			if promoted == c.committed {
				// The former conflict is the current occupant re-claiming
				// its own cell.
				c.stasis = true
				stasis = true
			}
			c.pending = promoted
			c.conflicted = nil
			// The promoted occupant's staging attempt has now succeeded;
			// its live position moves here and its old claim is released.
			promoted.promoteTo(x, y)
		} else {
			c.pending = c.committed
		}
		if !stasis {
			// Things can move here again.
			c.stasis = false
		}
		return true

	case object == c.conflicted:
		c.conflicted = nil
		return true

	default:
		return false
	}
}

// GetOccupant returns the committed occupant at (x, y), or nil when the
// cell is vacant or out of bounds.
func (g *Grid) GetOccupant(x, y int) *Object {
	if !g.inBounds(x, y) {
		return nil
	}
	return g.at(x, y).committed
}

// GetPending returns the effective pending occupant at (x, y): nil unless
// something was actually staged this tick (a pending equal to the committed
// occupant only counts when stasis was requested).
func (g *Grid) GetPending(x, y int) *Object {
	if !g.inBounds(x, y) {
		return nil
	}
	c := g.at(x, y)
	if c.pending == c.committed && !c.stasis {
		return nil
	}
	return c.pending
}

// Update commits the entire grid as one atomic unit. If any cell still has
// an unresolved conflict the call fails and no cell is modified. On success
// every cell's pending occupant becomes committed, baked positions are
// refreshed, and the blacklist and stasis flags of every cell are reset.
func (g *Grid) Update() bool {
	for i := range g.cells {
		if g.cells[i].conflicted != nil {
			return false
		}
	}

	for i := range g.cells {
		c := &g.cells[i]
		c.committed = c.pending
		if c.committed != nil {
			c.committed.bakedX = i / g.ySize
			c.committed.bakedY = i % g.ySize
		}
		c.blacklisted = false
		c.stasis = false
	}
	return true
}

// GetConflict returns the conflicting occupant at (x, y), or nil.
func (g *Grid) GetConflict(x, y int) *Object {
	if !g.inBounds(x, y) {
		return nil
	}
	return g.at(x, y).conflicted
}

// GetConflicted returns parallel slices of (pending, conflicting) occupant
// pairs for every cell with an unresolved conflict.
func (g *Grid) GetConflicted() (pending, conflicted []*Object) {
	for i := range g.cells {
		if g.cells[i].conflicted != nil {
			pending = append(pending, g.cells[i].pending)
			conflicted = append(conflicted, g.cells[i].conflicted)
		}
	}
	return pending, conflicted
}

// SetBlacklisted sets the cell's transient exclusion flag. Conflict
// resolution uses it to keep a cell from being re-claimed mid-resolution;
// Update clears it on every cell.
func (g *Grid) SetBlacklisted(x, y int, blacklisted bool) {
	g.at(x, y).blacklisted = blacklisted
}

// IsBlacklisted reports whether the cell is currently blacklisted.
func (g *Grid) IsBlacklisted(x, y int) bool {
	return g.at(x, y).blacklisted
}

// RemoveUnusable drops candidate locations that are blacklisted or hold an
// unresolved conflict; both are unsafe to propose movement into this tick.
func (g *Grid) RemoveUnusable(locations []Coord) []Coord {
	usable := locations[:0]
	for _, loc := range locations {
		c := g.at(loc.X, loc.Y)
		if c.blacklisted || c.conflicted != nil {
			continue
		}
		usable = append(usable, loc)
	}
	return usable
}
