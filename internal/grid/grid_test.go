package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func backings(t *testing.T, w, h int, torus bool) map[string]Grid {
	t.Helper()
	return map[string]Grid{
		"dense":  NewDense(w, h, torus),
		"sparse": NewSparse(w, h, torus),
	}
}

func TestNeighborsTorusInterior(t *testing.T) {
	for name, g := range backings(t, 10, 10, true) {
		t.Run(name, func(t *testing.T) {
			ns := g.Neighbors(Coord{X: 5, Y: 5})
			require.Len(t, ns, 8)

			seen := map[Coord]bool{}
			for _, n := range ns {
				require.False(t, seen[n], "duplicate neighbor %v", n)
				seen[n] = true
				require.True(t, g.Contains(n))
			}
			require.False(t, seen[Coord{X: 5, Y: 5}], "cell must not neighbor itself")
		})
	}
}

func TestNeighborsTorusWrap(t *testing.T) {
	g := NewDense(10, 10, true)
	ns := g.Neighbors(Coord{X: 0, Y: 0})
	require.Len(t, ns, 8)
	require.Contains(t, ns, Coord{X: 9, Y: 9})
	require.Contains(t, ns, Coord{X: 9, Y: 0})
	require.Contains(t, ns, Coord{X: 0, Y: 9})
}

func TestNeighborsBoundedEdges(t *testing.T) {
	for name, g := range backings(t, 10, 10, false) {
		t.Run(name, func(t *testing.T) {
			require.Len(t, g.Neighbors(Coord{X: 0, Y: 0}), 3, "corner")
			require.Len(t, g.Neighbors(Coord{X: 5, Y: 0}), 5, "edge")
			require.Len(t, g.Neighbors(Coord{X: 5, Y: 5}), 8, "interior")
		})
	}
}

func TestNeighborsDegenerateTorus(t *testing.T) {
	// On a 1x1 torus every offset wraps back onto the cell itself.
	g := NewDense(1, 1, true)
	require.Empty(t, g.Neighbors(Coord{}))

	// On a 2x2 torus the eight offsets collapse to the three other cells.
	g2 := NewDense(2, 2, true)
	ns := g2.Neighbors(Coord{X: 0, Y: 0})
	require.ElementsMatch(t, []Coord{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, ns)
}

func TestPlaceMoveOccupants(t *testing.T) {
	for name, g := range backings(t, 4, 4, true) {
		t.Run(name, func(t *testing.T) {
			a := Coord{X: 1, Y: 1}
			b := Coord{X: 2, Y: 1}

			g.Place(1, a)
			g.Place(2, a)
			g.Place(3, b)

			require.Equal(t, []uint64{1, 2}, g.OccupantsAt(a))

			g.Move(1, a, b)
			require.Equal(t, []uint64{2}, g.OccupantsAt(a))
			require.Equal(t, []uint64{3, 1}, g.OccupantsAt(b))

			// Returned slice is a copy — mutating it must not corrupt the cell.
			occ := g.OccupantsAt(b)
			occ[0] = 99
			require.Equal(t, []uint64{3, 1}, g.OccupantsAt(b))
		})
	}
}

func TestMoveMissingAgentPanics(t *testing.T) {
	g := NewDense(4, 4, true)
	g.Place(1, Coord{X: 0, Y: 0})
	require.Panics(t, func() {
		g.Move(2, Coord{X: 0, Y: 0}, Coord{X: 1, Y: 1})
	})
}

func TestRandomNeighbor(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	g := NewDense(10, 10, true)
	c := Coord{X: 3, Y: 3}
	for i := 0; i < 50; i++ {
		n := RandomNeighbor(g, c, rng)
		require.NotEqual(t, c, n)
		require.True(t, g.Contains(n))
	}

	// Degenerate grid: the only "neighbor" is the cell itself.
	g1 := NewDense(1, 1, true)
	require.Equal(t, Coord{}, RandomNeighbor(g1, Coord{}, rng))
}
