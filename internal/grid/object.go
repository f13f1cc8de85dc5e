package grid

// Object is a positioned entity handle. It owns its own position state and
// delegates all placement to the grid; grid cells hold non-owning
// back-references to it. Call RemoveFromGrid before discarding an Object
// that was ever placed.
type Object struct {
	grid  *Grid
	index int

	// Live position: the most recently successfully staged location.
	x, y int

	// Baked position: the location as of the last successful commit.
	// (-1, -1) until the first commit that includes this object.
	bakedX, bakedY int

	// Where a losing staging attempt left a conflict record, so a later
	// re-stage or removal can purge it.
	conflictX, conflictY int
	conflicted           bool

	onGrid bool
}

// NewObject creates a detached object handle. The index identifies the
// object to the surrounding behavior layer; the grid does not interpret it.
func NewObject(g *Grid, index int) *Object {
	return &Object{
		grid:   g,
		index:  index,
		bakedX: -1,
		bakedY: -1,
	}
}

// Index returns the caller-assigned object index.
func (o *Object) Index() int { return o.index }

// Grid returns the grid this object delegates placement to.
func (o *Object) Grid() *Grid { return o.grid }

// Position returns the live position: the most recently successfully
// staged location.
func (o *Object) Position() (x, y int) { return o.x, o.y }

// BakedPosition returns the position as of the last successful commit, or
// (-1, -1) before the first one.
func (o *Object) BakedPosition() (x, y int) { return o.bakedX, o.bakedY }

// OnGrid reports whether the object currently holds a place on the grid.
func (o *Object) OnGrid() bool { return o.onGrid }

// Initialize stages the object's first placement. Fails when the grid
// rejects the staging (blacklisted cell or conflict).
func (o *Object) Initialize(x, y int) bool {
	if !o.grid.SetOccupant(x, y, o) {
		return false
	}
	o.x, o.y = x, y
	o.onGrid = true
	return true
}

// SetPosition re-stages the object at (x, y). On success the live position
// moves and any claim on the previous cell is released; the baked position
// is untouched until the next commit. On failure the object is recorded as
// the conflicting occupant of the target cell and nothing else changes.
func (o *Object) SetPosition(x, y int) bool {
	if o.onGrid && x == o.x && y == o.y {
		// Re-claiming our own cell: a stasis request, no cleanup needed.
		return o.grid.SetOccupant(x, y, o)
	}

	if !o.grid.SetOccupant(x, y, o) {
		// We lost the race; remember where the conflict was recorded.
		o.conflictX, o.conflictY = x, y
		o.conflicted = true
		return false
	}

	o.releaseStale()
	o.vacate(o.x, o.y)
	o.x, o.y = x, y
	o.onGrid = true
	return true
}

// RemoveFromGrid clears every staged, committed, or conflicted reference to
// the object across the cells it touched. Idempotent; required before the
// object is destroyed because cells do not own their occupants.
func (o *Object) RemoveFromGrid() bool {
	if !o.onGrid {
		o.releaseStale()
		return true
	}

	o.releaseStale()
	o.vacate(o.x, o.y)
	if (o.bakedX != o.x || o.bakedY != o.y) && o.grid.inBounds(o.bakedX, o.bakedY) {
		o.vacate(o.bakedX, o.bakedY)
	}
	o.onGrid = false
	return true
}

// promoteTo finishes a staging attempt that initially lost and has just
// been promoted into a cell's pending slot: the conflict record is
// consumed, the live position moves, and any claim on the previous cell is
// released.
func (o *Object) promoteTo(x, y int) {
	o.conflicted = false
	if o.onGrid && (o.x != x || o.y != y) {
		o.vacate(o.x, o.y)
	}
	o.x, o.y = x, y
	o.onGrid = true
}

// releaseStale purges the conflict record left by a failed staging attempt,
// if there is one.
func (o *Object) releaseStale() {
	if !o.conflicted {
		return
	}
	o.grid.PurgeNew(o.conflictX, o.conflictY, o)
	o.conflicted = false
}

// vacate releases the object's claim on a cell: drop any uncommitted
// staging, then stage a vacancy if the object is still the committed
// occupant there. The vacancy is staged directly because clearing one's own
// claim is allowed even on a blacklisted cell.
func (o *Object) vacate(x, y int) {
	o.grid.PurgeNew(x, y, o)
	c := o.grid.at(x, y)
	if c.committed == o && c.pending == o {
		c.pending = nil
		c.stasis = false
	}
}
