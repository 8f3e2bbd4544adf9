package metrics

import (
	"github.com/talgya/wealthsim/internal/model"
)

// Record is one immutable per-tick snapshot: the tick index, the Gini
// coefficient, and every agent's wealth at that moment.
type Record struct {
	Tick   uint64                `json:"tick"`
	Gini   float64               `json:"gini"`
	Wealth map[model.AgentID]int `json:"wealth"`
}

// Collector accumulates the append-only metric history for one model run.
// Collect is invoked once at model construction (tick 0) and once after
// every completed tick.
type Collector struct {
	Records []Record
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect reads the model and appends a snapshot record. The wealth map is a
// copy — later ticks never mutate earlier records.
func (c *Collector) Collect(m *model.Model) Record {
	wealth := make(map[model.AgentID]int, len(m.Agents))
	for _, a := range m.Agents {
		wealth[a.ID] = a.Wealth
	}
	rec := Record{
		Tick:   m.Tick,
		Gini:   Gini(m.Wealths()),
		Wealth: wealth,
	}
	c.Records = append(c.Records, rec)
	return rec
}

// Latest returns the most recent record, or a zero Record when nothing has
// been collected yet.
func (c *Collector) Latest() Record {
	if len(c.Records) == 0 {
		return Record{}
	}
	return c.Records[len(c.Records)-1]
}

// GiniSeries returns the Gini time series, capped to the last limit entries
// when limit > 0.
func (c *Collector) GiniSeries(limit int) []float64 {
	recs := c.Records
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.Gini
	}
	return out
}
