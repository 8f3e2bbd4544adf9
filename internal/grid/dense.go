package grid

// Dense is an array-backed grid. Every cell's occupant slice is allocated up
// front, so occupancy lookups are a single index. Suited to the small,
// densely-populated grids the wealth model runs on.
type Dense struct {
	w, h  int
	torus bool
	cells [][]uint64 // index y*w+x → occupant IDs in placement order
}

// NewDense creates a dense grid. Panics on non-positive dimensions — grid
// shape is validated at configuration time, so this is a logic error.
func NewDense(width, height int, torus bool) *Dense {
	if width <= 0 || height <= 0 {
		panic("grid: dimensions must be positive")
	}
	return &Dense{
		w:     width,
		h:     height,
		torus: torus,
		cells: make([][]uint64, width*height),
	}
}

func (g *Dense) Width() int  { return g.w }
func (g *Dense) Height() int { return g.h }
func (g *Dense) Torus() bool { return g.torus }

func (g *Dense) Contains(c Coord) bool {
	return c.X >= 0 && c.X < g.w && c.Y >= 0 && c.Y < g.h
}

func (g *Dense) Neighbors(c Coord) []Coord {
	return neighbors(c, g.w, g.h, g.torus)
}

func (g *Dense) OccupantsAt(c Coord) []uint64 {
	occ := g.cells[g.idx(c)]
	out := make([]uint64, len(occ))
	copy(out, occ)
	return out
}

func (g *Dense) Place(id uint64, c Coord) {
	i := g.idx(c)
	g.cells[i] = append(g.cells[i], id)
}

func (g *Dense) Move(id uint64, from, to Coord) {
	fi := g.idx(from)
	g.cells[fi] = removeOccupant(g.cells[fi], id, from)
	ti := g.idx(to)
	g.cells[ti] = append(g.cells[ti], id)
}

func (g *Dense) idx(c Coord) int {
	if !g.Contains(c) {
		panic("grid: coordinate out of bounds")
	}
	return c.Y*g.w + c.X
}
