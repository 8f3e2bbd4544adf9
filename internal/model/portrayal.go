package model

// Portrayal is the render record a dashboard consumes for one agent. Derived
// purely from wealth: broke agents draw smaller, grey, and underneath.
type Portrayal struct {
	ID    AgentID `json:"id"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
	Layer int     `json:"layer"`
}

const (
	colorWealthy = "#d62728"
	colorBroke   = "#7f7f7f"
)

// PortrayalFor derives the visual record for an agent.
func PortrayalFor(a *Agent) Portrayal {
	p := Portrayal{
		ID:    a.ID,
		X:     a.Pos.X,
		Y:     a.Pos.Y,
		Size:  0.8,
		Color: colorWealthy,
		Layer: 1,
	}
	if a.Wealth == 0 {
		p.Size = 0.3
		p.Color = colorBroke
		p.Layer = 0
	}
	return p
}
