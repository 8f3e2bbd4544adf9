package metrics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGiniEqualDistribution(t *testing.T) {
	require.InDelta(t, 0, Gini([]int{3, 3, 3, 3, 3}), 1e-12)
	require.InDelta(t, 0, Gini([]int{1, 1}), 1e-12)
}

func TestGiniSingleAgent(t *testing.T) {
	require.InDelta(t, 0, Gini([]int{7}), 1e-12)
}

func TestGiniMaximalInequality(t *testing.T) {
	// One agent holds everything: G = (n-1)/n.
	g := Gini([]int{0, 0, 0, 10})
	require.InDelta(t, 0.75, g, 1e-12)

	g = Gini([]int{0, 0, 0, 0, 0, 0, 0, 0, 0, 42})
	require.InDelta(t, 0.9, g, 1e-12)
}

func TestGiniSortsInput(t *testing.T) {
	// Order must not matter, and the input must not be mutated.
	in := []int{10, 0, 0, 0}
	g := Gini(in)
	require.InDelta(t, 0.75, g, 1e-12)
	require.Equal(t, []int{10, 0, 0, 0}, in)
}

func TestGiniZeroTotalPolicy(t *testing.T) {
	require.Equal(t, 0.0, Gini([]int{0, 0, 0}))
	require.Equal(t, 0.0, Gini(nil))
}

func TestGiniBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(50)
		wealths := make([]int, n)
		total := 0
		for i := range wealths {
			wealths[i] = rng.Intn(20)
			total += wealths[i]
		}
		if total == 0 {
			wealths[0] = 1
		}
		g := Gini(wealths)
		require.GreaterOrEqual(t, g, -1e-9, "wealths=%v", wealths)
		require.LessOrEqual(t, g, 1.0, "wealths=%v", wealths)
	}
}
