package engine

import (
	"fmt"

	"github.com/talgya/wealthsim/internal/grid"
	"github.com/talgya/wealthsim/internal/model"
)

// Stepper advances the model by one tick: every agent, in activation order,
// moves to a random Moore neighbor and then gives one unit of wealth to a
// random co-located peer if it has any to give.
type Stepper struct {
	Activation Activation

	// CheckInvariants verifies wealth conservation and non-negativity after
	// every tick. A violation means the transfer logic itself is broken, so
	// it panics rather than being reported as a recoverable error.
	CheckInvariants bool
}

// NewStepper returns a stepper with random activation and invariant checks
// enabled.
func NewStepper() *Stepper {
	return &Stepper{
		Activation:      RandomActivation{},
		CheckInvariants: true,
	}
}

// Advance runs one full tick, mutating the model in place. Agents act
// strictly sequentially: each sees the positions and balances left behind by
// the agents before it in this tick's order.
func (s *Stepper) Advance(m *model.Model) {
	var totalBefore int
	if s.CheckInvariants {
		totalBefore = m.TotalWealth()
	}

	m.Tick++

	order := s.Activation.Order(len(m.Agents), m.Rng)
	for _, idx := range order {
		a := m.Agents[idx]
		s.move(m, a)
		s.give(m, a)
	}

	if s.CheckInvariants {
		s.verify(m, totalBefore)
	}
}

// move relocates the agent to a uniformly random neighboring cell. On a
// degenerate grid with no distinct neighbors the agent stays put.
func (s *Stepper) move(m *model.Model, a *model.Agent) {
	to := grid.RandomNeighbor(m.Grid, a.Pos, m.Rng)
	if to == a.Pos {
		return
	}
	m.Grid.Move(uint64(a.ID), a.Pos, to)
	a.Pos = to
}

// give transfers one unit of wealth to a uniformly random co-located peer.
// No-op when the agent is broke or alone in its cell.
func (s *Stepper) give(m *model.Model, a *model.Agent) {
	if a.Wealth <= 0 {
		return
	}

	occupants := m.Grid.OccupantsAt(a.Pos)
	peers := occupants[:0]
	for _, id := range occupants {
		if id != uint64(a.ID) {
			peers = append(peers, id)
		}
	}
	if len(peers) == 0 {
		return
	}

	other := m.Index[model.AgentID(peers[m.Rng.Intn(len(peers))])]
	other.Wealth++
	a.Wealth--
}

func (s *Stepper) verify(m *model.Model, totalBefore int) {
	totalAfter := 0
	for _, a := range m.Agents {
		if a.Wealth < 0 {
			panic(fmt.Sprintf("engine: agent %d has negative wealth %d at tick %d",
				a.ID, a.Wealth, m.Tick))
		}
		totalAfter += a.Wealth
	}
	if totalAfter != totalBefore {
		panic(fmt.Sprintf("engine: wealth not conserved at tick %d: %d -> %d",
			m.Tick, totalBefore, totalAfter))
	}
}
