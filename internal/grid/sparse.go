package grid

// Sparse is a map-backed grid. Only occupied cells consume memory, so it
// scales to large boards where most cells are empty.
type Sparse struct {
	w, h  int
	torus bool
	cells map[Coord][]uint64
}

// NewSparse creates a sparse grid.
func NewSparse(width, height int, torus bool) *Sparse {
	if width <= 0 || height <= 0 {
		panic("grid: dimensions must be positive")
	}
	return &Sparse{
		w:     width,
		h:     height,
		torus: torus,
		cells: make(map[Coord][]uint64),
	}
}

func (g *Sparse) Width() int  { return g.w }
func (g *Sparse) Height() int { return g.h }
func (g *Sparse) Torus() bool { return g.torus }

func (g *Sparse) Contains(c Coord) bool {
	return c.X >= 0 && c.X < g.w && c.Y >= 0 && c.Y < g.h
}

func (g *Sparse) Neighbors(c Coord) []Coord {
	return neighbors(c, g.w, g.h, g.torus)
}

func (g *Sparse) OccupantsAt(c Coord) []uint64 {
	occ := g.cells[c]
	out := make([]uint64, len(occ))
	copy(out, occ)
	return out
}

func (g *Sparse) Place(id uint64, c Coord) {
	if !g.Contains(c) {
		panic("grid: coordinate out of bounds")
	}
	g.cells[c] = append(g.cells[c], id)
}

func (g *Sparse) Move(id uint64, from, to Coord) {
	if !g.Contains(to) {
		panic("grid: coordinate out of bounds")
	}
	rest := removeOccupant(g.cells[from], id, from)
	if len(rest) == 0 {
		delete(g.cells, from)
	} else {
		g.cells[from] = rest
	}
	g.cells[to] = append(g.cells[to], id)
}
