// Package grid provides the spatial layer: rectangular grids with Moore
// (8-connected) neighborhoods and multi-occupancy cells.
// Two backings exist — a dense array for small, fully-populated grids and a
// sparse map for large, mostly-empty ones.
package grid

import (
	"fmt"
	"math/rand"
)

// Coord is a cell position on the grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// mooreOffsets are the eight neighbor offsets of a cell.
var mooreOffsets = [8]Coord{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Grid is the spatial provider consumed by the simulation. Cells hold
// occupant sets keyed by agent ID; many agents may share one cell. Cells are
// fixed at construction — only occupancy changes.
type Grid interface {
	Width() int
	Height() int
	Torus() bool

	// Contains reports whether c is a valid cell.
	Contains(c Coord) bool

	// Neighbors returns the distinct Moore-neighbor cells of c, excluding c
	// itself. On a torus, offsets wrap; on a bounded grid, off-edge offsets
	// are dropped. The result is in a fixed deterministic order.
	Neighbors(c Coord) []Coord

	// OccupantsAt returns the IDs of agents in cell c, in placement order.
	// The returned slice is a copy.
	OccupantsAt(c Coord) []uint64

	// Place adds an agent to cell c.
	Place(id uint64, c Coord)

	// Move relocates an agent between cells. Panics if the agent is not at
	// from — that indicates the caller's position bookkeeping is broken.
	Move(id uint64, from, to Coord)
}

// RandomNeighbor picks a uniformly random Moore neighbor of c using rng.
// Returns c itself when the cell has no neighbors (a 1×1 torus, where every
// offset wraps back onto the cell).
func RandomNeighbor(g Grid, c Coord, rng *rand.Rand) Coord {
	ns := g.Neighbors(c)
	if len(ns) == 0 {
		return c
	}
	return ns[rng.Intn(len(ns))]
}

// neighbors computes the shared Moore-neighborhood logic for both backings.
func neighbors(c Coord, w, h int, torus bool) []Coord {
	out := make([]Coord, 0, 8)
	for _, d := range mooreOffsets {
		n := Coord{X: c.X + d.X, Y: c.Y + d.Y}
		if torus {
			n.X = ((n.X % w) + w) % w
			n.Y = ((n.Y % h) + h) % h
		} else if n.X < 0 || n.X >= w || n.Y < 0 || n.Y >= h {
			continue
		}
		if n == c {
			// Wrapped back onto the origin cell (degenerate torus axis).
			continue
		}
		if !containsCoord(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func containsCoord(cs []Coord, c Coord) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

// removeOccupant removes id from occ preserving order. Panics when absent.
func removeOccupant(occ []uint64, id uint64, c Coord) []uint64 {
	for i, o := range occ {
		if o == id {
			return append(occ[:i], occ[i+1:]...)
		}
	}
	panic(fmt.Sprintf("grid: agent %d not present at %v", id, c))
}
