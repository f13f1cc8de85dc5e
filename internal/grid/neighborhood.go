package grid

// neighborhoodRings enumerates the expanding square rings around (x, y),
// one slice of in-bounds coordinates per level. Level 1 is the perimeter of
// the 3×3 square centered on the origin; each further level grows the
// square's side by 2 and contributes only its new perimeter. Rows are
// emitted first (top and bottom, interleaved per column), then the side
// columns without the already-emitted corners. Out-of-bounds coordinates
// are clipped; an out-of-bounds origin fails the whole call.
func (g *Grid) neighborhoodRings(x, y, levels int) ([][]Coord, bool) {
	if !g.inBounds(x, y) {
		return nil, false
	}

	rings := make([][]Coord, 0, levels)
	side := 3
	for level := 1; level <= levels; level++ {
		startX := x - side/2
		endX := x + side/2
		startY := y - side/2
		endY := y + side/2

		var ring []Coord
		for i := startX; i <= endX; i++ {
			if i < 0 || i >= g.xSize {
				continue
			}
			if startY >= 0 {
				ring = append(ring, Coord{X: i, Y: startY})
			}
			if endY < g.ySize {
				ring = append(ring, Coord{X: i, Y: endY})
			}
		}
		for i := startY + 1; i <= endY-1; i++ {
			if i < 0 || i >= g.ySize {
				continue
			}
			if startX >= 0 {
				ring = append(ring, Coord{X: startX, Y: i})
			}
			if endX < g.xSize {
				ring = append(ring, Coord{X: endX, Y: i})
			}
		}

		rings = append(rings, ring)
		side += 2
	}

	return rings, true
}

// GetNeighborhoodLocations enumerates the grid coordinates in expanding
// square rings around (x, y), up to the given number of levels. Fails only
// when the origin itself is off the grid.
func (g *Grid) GetNeighborhoodLocations(x, y, levels int) ([]Coord, bool) {
	rings, ok := g.neighborhoodRings(x, y, levels)
	if !ok {
		return nil, false
	}

	var locations []Coord
	for _, ring := range rings {
		locations = append(locations, ring...)
	}
	return locations, true
}

// GetNeighborhood returns the occupants around (x, y) grouped by ring level,
// in the coordinate order of GetNeighborhoodLocations. Vacant cells are
// omitted. With useStaged the effective pending occupants are reported
// instead of the committed ones.
func (g *Grid) GetNeighborhood(x, y, levels int, useStaged bool) ([][]*Object, bool) {
	rings, ok := g.neighborhoodRings(x, y, levels)
	if !ok {
		return nil, false
	}

	objects := make([][]*Object, 0, len(rings))
	for _, ring := range rings {
		var level []*Object
		for _, loc := range ring {
			var occupant *Object
			if useStaged {
				occupant = g.GetPending(loc.X, loc.Y)
			} else {
				occupant = g.GetOccupant(loc.X, loc.Y)
			}
			if occupant != nil {
				level = append(level, occupant)
			}
		}
		objects = append(objects, level)
	}
	return objects, true
}
