// Package model provides the wealth-exchange model state: the agent
// population, the grid they live on, and the single seeded random stream
// every stochastic decision draws from.
package model

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/wealthsim/internal/grid"
)

// AgentID is a unique identifier for an agent.
type AgentID uint64

// Agent is a wealth-holding entity on the grid. Agents are created once at
// model construction and never destroyed; movement and transfers mutate them
// every tick.
type Agent struct {
	ID     AgentID    `json:"id"`
	Pos    grid.Coord `json:"pos"`
	Wealth int        `json:"wealth"` // Units; never negative
}

// Backing selects the grid storage strategy.
type Backing string

const (
	BackingDense  Backing = "dense"
	BackingSparse Backing = "sparse"
)

// Placement selects the initial agent placement strategy.
type Placement string

const (
	// PlacementUniform drops each agent on an independently uniform cell.
	PlacementUniform Placement = "uniform"
	// PlacementClustered weights cells by a simplex-noise density field, so
	// the starting population forms spatial clumps.
	PlacementClustered Placement = "clustered"
)

// Config holds model construction parameters.
type Config struct {
	Agents     int
	GridWidth  int
	GridHeight int
	Torus      bool
	Seed       int64
	Placement  Placement
	Backing    Backing
}

// Model is the complete simulation state for one run. It is advanced in
// place by the step engine; the whole model lives exactly as long as the run.
type Model struct {
	RunID  string
	Cfg    Config
	Grid   grid.Grid
	Agents []*Agent
	Index  map[AgentID]*Agent

	// Rng is the single random stream shared by every stochastic decision
	// (placement, activation order, movement, partner choice). Runs with the
	// same seed replay identically.
	Rng *rand.Rand

	// Tick is the index of the most recently completed tick. 0 = freshly
	// constructed, no steps taken.
	Tick uint64
}

// New builds a model: grid, population of cfg.Agents agents each holding one
// unit of wealth, placed per cfg.Placement.
func New(cfg Config) (*Model, error) {
	if cfg.Agents < 1 {
		return nil, fmt.Errorf("model: agent count must be >= 1, got %d", cfg.Agents)
	}
	if cfg.GridWidth < 1 || cfg.GridHeight < 1 {
		return nil, fmt.Errorf("model: grid must be at least 1x1, got %dx%d", cfg.GridWidth, cfg.GridHeight)
	}

	var g grid.Grid
	switch cfg.Backing {
	case BackingSparse:
		g = grid.NewSparse(cfg.GridWidth, cfg.GridHeight, cfg.Torus)
	case BackingDense, "":
		g = grid.NewDense(cfg.GridWidth, cfg.GridHeight, cfg.Torus)
	default:
		return nil, fmt.Errorf("model: unknown grid backing %q", cfg.Backing)
	}

	m := &Model{
		RunID:  uuid.NewString(),
		Cfg:    cfg,
		Grid:   g,
		Agents: make([]*Agent, 0, cfg.Agents),
		Index:  make(map[AgentID]*Agent, cfg.Agents),
		Rng:    rand.New(rand.NewSource(cfg.Seed)),
	}

	var positions []grid.Coord
	switch cfg.Placement {
	case PlacementClustered:
		positions = placeClustered(cfg, m.Rng)
	case PlacementUniform, "":
		positions = placeUniform(cfg, m.Rng)
	default:
		return nil, fmt.Errorf("model: unknown placement %q", cfg.Placement)
	}

	for i := 0; i < cfg.Agents; i++ {
		a := &Agent{
			ID:     AgentID(i + 1),
			Pos:    positions[i],
			Wealth: 1,
		}
		m.Agents = append(m.Agents, a)
		m.Index[a.ID] = a
		m.Grid.Place(uint64(a.ID), a.Pos)
	}

	return m, nil
}

// Restore rebuilds a model from persisted agents (positions and wealth),
// reusing cfg for grid shape. The random stream restarts from the seed — a
// resumed run is reproducible per-session, not across the save boundary.
func Restore(cfg Config, agents []*Agent, tick uint64) (*Model, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("model: cannot restore empty population")
	}
	cfg.Agents = len(agents)

	var g grid.Grid
	switch cfg.Backing {
	case BackingSparse:
		g = grid.NewSparse(cfg.GridWidth, cfg.GridHeight, cfg.Torus)
	default:
		g = grid.NewDense(cfg.GridWidth, cfg.GridHeight, cfg.Torus)
	}

	m := &Model{
		RunID:  uuid.NewString(),
		Cfg:    cfg,
		Grid:   g,
		Agents: agents,
		Index:  make(map[AgentID]*Agent, len(agents)),
		Rng:    rand.New(rand.NewSource(cfg.Seed)),
		Tick:   tick,
	}
	for _, a := range agents {
		if a.Wealth < 0 {
			return nil, fmt.Errorf("model: agent %d has negative wealth %d", a.ID, a.Wealth)
		}
		if !g.Contains(a.Pos) {
			return nil, fmt.Errorf("model: agent %d position %v outside %dx%d grid",
				a.ID, a.Pos, cfg.GridWidth, cfg.GridHeight)
		}
		m.Index[a.ID] = a
		g.Place(uint64(a.ID), a.Pos)
	}
	return m, nil
}

// TotalWealth sums wealth across all agents.
func (m *Model) TotalWealth() int {
	total := 0
	for _, a := range m.Agents {
		total += a.Wealth
	}
	return total
}

// Wealths returns every agent's wealth in agent order.
func (m *Model) Wealths() []int {
	out := make([]int, len(m.Agents))
	for i, a := range m.Agents {
		out[i] = a.Wealth
	}
	return out
}
