package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/wealthsim/internal/grid"
)

func TestNewModel(t *testing.T) {
	m, err := New(Config{
		Agents:     50,
		GridWidth:  10,
		GridHeight: 8,
		Torus:      true,
		Seed:       42,
	})
	require.NoError(t, err)

	require.Len(t, m.Agents, 50)
	require.Len(t, m.Index, 50)
	require.NotEmpty(t, m.RunID)
	require.Equal(t, uint64(0), m.Tick)

	for _, a := range m.Agents {
		require.Equal(t, 1, a.Wealth)
		require.True(t, m.Grid.Contains(a.Pos), "agent %d at %v", a.ID, a.Pos)
		require.Same(t, a, m.Index[a.ID])
		require.Contains(t, m.Grid.OccupantsAt(a.Pos), uint64(a.ID))
	}

	require.Equal(t, 50, m.TotalWealth())
}

func TestNewModelValidation(t *testing.T) {
	_, err := New(Config{Agents: 0, GridWidth: 5, GridHeight: 5})
	require.Error(t, err)

	_, err = New(Config{Agents: 5, GridWidth: 0, GridHeight: 5})
	require.Error(t, err)

	_, err = New(Config{Agents: 5, GridWidth: 5, GridHeight: 5, Placement: "spiral"})
	require.Error(t, err)

	_, err = New(Config{Agents: 5, GridWidth: 5, GridHeight: 5, Backing: "btree"})
	require.Error(t, err)
}

func TestPlacementDeterminism(t *testing.T) {
	for _, p := range []Placement{PlacementUniform, PlacementClustered} {
		cfg := Config{
			Agents:     40,
			GridWidth:  20,
			GridHeight: 20,
			Torus:      true,
			Seed:       7,
			Placement:  p,
		}
		a, err := New(cfg)
		require.NoError(t, err)
		b, err := New(cfg)
		require.NoError(t, err)

		for i := range a.Agents {
			require.Equal(t, a.Agents[i].Pos, b.Agents[i].Pos,
				"placement %s agent %d", p, i)
		}
	}
}

func TestClusteredPlacementInBounds(t *testing.T) {
	m, err := New(Config{
		Agents:     200,
		GridWidth:  15,
		GridHeight: 9,
		Seed:       3,
		Placement:  PlacementClustered,
		Backing:    BackingSparse,
	})
	require.NoError(t, err)
	for _, a := range m.Agents {
		require.True(t, m.Grid.Contains(a.Pos))
	}
}

func TestRestore(t *testing.T) {
	cfg := Config{GridWidth: 6, GridHeight: 6, Torus: true, Seed: 5}
	agents := []*Agent{
		{ID: 1, Pos: grid.Coord{X: 0, Y: 0}, Wealth: 3},
		{ID: 2, Pos: grid.Coord{X: 5, Y: 5}, Wealth: 0},
	}

	m, err := Restore(cfg, agents, 120)
	require.NoError(t, err)
	require.Equal(t, uint64(120), m.Tick)
	require.Equal(t, 3, m.TotalWealth())
	require.Equal(t, []uint64{1}, m.Grid.OccupantsAt(grid.Coord{X: 0, Y: 0}))
}

func TestRestoreRejectsBadState(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3}

	_, err := Restore(cfg, nil, 0)
	require.Error(t, err)

	_, err = Restore(cfg, []*Agent{{ID: 1, Pos: grid.Coord{X: 9, Y: 0}, Wealth: 1}}, 0)
	require.Error(t, err, "out-of-bounds position")

	_, err = Restore(cfg, []*Agent{{ID: 1, Pos: grid.Coord{X: 0, Y: 0}, Wealth: -1}}, 0)
	require.Error(t, err, "negative wealth")
}

func TestPortrayalFromWealth(t *testing.T) {
	rich := PortrayalFor(&Agent{ID: 1, Pos: grid.Coord{X: 2, Y: 3}, Wealth: 2})
	broke := PortrayalFor(&Agent{ID: 2, Pos: grid.Coord{X: 2, Y: 3}, Wealth: 0})

	require.Equal(t, 2, rich.X)
	require.Equal(t, 3, rich.Y)
	require.Greater(t, rich.Size, broke.Size)
	require.NotEqual(t, rich.Color, broke.Color)
	require.Greater(t, rich.Layer, broke.Layer)

	// Portrayal depends only on wealth, not on how much wealth.
	richer := PortrayalFor(&Agent{ID: 3, Wealth: 50})
	require.Equal(t, rich.Size, richer.Size)
	require.Equal(t, rich.Color, richer.Color)
}
