// Initial agent placement strategies.
package model

import (
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/wealthsim/internal/grid"
)

// placeUniform drops each agent on an independently uniform random cell.
func placeUniform(cfg Config, rng *rand.Rand) []grid.Coord {
	out := make([]grid.Coord, cfg.Agents)
	for i := range out {
		out[i] = grid.Coord{X: rng.Intn(cfg.GridWidth), Y: rng.Intn(cfg.GridHeight)}
	}
	return out
}

// placeClustered samples cells proportionally to a simplex-noise density
// field, producing clumped starting populations. Deterministic for a given
// seed: the field derives from cfg.Seed and sampling draws from the model
// stream.
func placeClustered(cfg Config, rng *rand.Rand) []grid.Coord {
	noise := opensimplex.NewNormalized(cfg.Seed)
	const freq = 0.15

	cells := make([]grid.Coord, 0, cfg.GridWidth*cfg.GridHeight)
	cumulative := make([]float64, 0, cfg.GridWidth*cfg.GridHeight)
	total := 0.0
	for y := 0; y < cfg.GridHeight; y++ {
		for x := 0; x < cfg.GridWidth; x++ {
			// Square the field to sharpen cluster contrast. A small floor
			// keeps every cell reachable.
			d := noise.Eval2(float64(x)*freq, float64(y)*freq)
			w := d*d + 0.01
			total += w
			cells = append(cells, grid.Coord{X: x, Y: y})
			cumulative = append(cumulative, total)
		}
	}

	out := make([]grid.Coord, cfg.Agents)
	for i := range out {
		r := rng.Float64() * total
		idx := sort.SearchFloat64s(cumulative, r)
		if idx >= len(cells) {
			idx = len(cells) - 1
		}
		out[i] = cells[idx]
	}
	return out
}
