// Simulation ties the model, stepper, and metric collector together and
// guards them for concurrent observers.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/wealthsim/internal/metrics"
	"github.com/talgya/wealthsim/internal/model"
)

// Simulation holds one run's complete state. The tick loop is the only
// writer; the HTTP API and stream reads go through the same lock, so a tick
// is never observed half-applied.
type Simulation struct {
	mu        sync.RWMutex
	m         *model.Model
	stepper   *Stepper
	collector *metrics.Collector
}

// NewSimulation builds a fresh model from cfg and collects the tick-0
// metrics before any step runs.
func NewSimulation(cfg model.Config) (*Simulation, error) {
	m, err := model.New(cfg)
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		m:         m,
		stepper:   NewStepper(),
		collector: metrics.NewCollector(),
	}
	s.collector.Collect(m)
	return s, nil
}

// NewSimulationFrom wraps an already-built model (a restored run). Collects
// a baseline record for the current tick.
func NewSimulationFrom(m *model.Model) *Simulation {
	s := &Simulation{
		m:         m,
		stepper:   NewStepper(),
		collector: metrics.NewCollector(),
	}
	s.collector.Collect(m)
	return s
}

// AdvanceTick runs one full tick and collects metrics, returning the fresh
// record.
func (s *Simulation) AdvanceTick() metrics.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepper.Advance(s.m)
	return s.collector.Collect(s.m)
}

// Reset replaces the run with a new model built from cfg. The old model and
// its history are discarded; persistence of the outgoing run is the caller's
// business.
func (s *Simulation) Reset(cfg model.Config) error {
	m, err := model.New(cfg)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Info("simulation reset", "old_run", s.m.RunID, "new_run", m.RunID, "agents", cfg.Agents)
	s.m = m
	s.collector = metrics.NewCollector()
	s.collector.Collect(m)
	return nil
}

// Tick returns the most recently completed tick.
func (s *Simulation) Tick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Tick
}

// RunID returns the current run's identity.
func (s *Simulation) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.RunID
}

// Config returns the model construction parameters of the current run.
func (s *Simulation) Config() model.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Cfg
}

// Agents returns a snapshot copy of every agent.
func (s *Simulation) Agents() []model.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Agent, len(s.m.Agents))
	for i, a := range s.m.Agents {
		out[i] = *a
	}
	return out
}

// Agent returns a snapshot of one agent by ID.
func (s *Simulation) Agent(id model.AgentID) (model.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.m.Index[id]
	if !ok {
		return model.Agent{}, false
	}
	return *a, true
}

// Portrayals returns the per-agent render records for the current state.
func (s *Simulation) Portrayals() []model.Portrayal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Portrayal, len(s.m.Agents))
	for i, a := range s.m.Agents {
		out[i] = model.PortrayalFor(a)
	}
	return out
}

// Latest returns the most recent metric record.
func (s *Simulation) Latest() metrics.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collector.Latest()
}

// GiniSeries returns the in-memory Gini time series, capped to limit when
// limit > 0.
func (s *Simulation) GiniSeries(limit int) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collector.GiniSeries(limit)
}

// Records returns a copy of the full metric history.
func (s *Simulation) Records() []metrics.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]metrics.Record, len(s.collector.Records))
	copy(out, s.collector.Records)
	return out
}

// TotalWealth sums wealth across all agents.
func (s *Simulation) TotalWealth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.TotalWealth()
}

// Snapshot returns agent copies plus the current tick in one consistent
// read, for persistence.
func (s *Simulation) Snapshot() ([]model.Agent, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agents := make([]model.Agent, len(s.m.Agents))
	for i, a := range s.m.Agents {
		agents[i] = *a
	}
	return agents, s.m.Tick
}
