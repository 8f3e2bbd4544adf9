package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/wealthsim/internal/metrics"
	"github.com/talgya/wealthsim/internal/model"
)

func TestWriteReadRoundtrip(t *testing.T) {
	dir := t.TempDir()

	in := HistoryV1{
		RunID:  "run-x",
		Seed:   1234,
		Agents: 3,
		Ticks:  2,
		Records: []metrics.Record{
			{Tick: 0, Gini: 0, Wealth: map[model.AgentID]int{1: 1, 2: 1, 3: 1}},
			{Tick: 1, Gini: 0.22, Wealth: map[model.AgentID]int{1: 0, 2: 2, 3: 1}},
		},
	}

	path, err := Write(dir, in)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "run-x.hist.zst"), path)

	out, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, 1, out.Version)
	require.Equal(t, in.RunID, out.RunID)
	require.Equal(t, in.Seed, out.Seed)
	require.Equal(t, in.Agents, out.Agents)
	require.Equal(t, in.Ticks, out.Ticks)
	require.Equal(t, in.Records, out.Records)
}

func TestWriteRejectsEmptyRunID(t *testing.T) {
	_, err := Write(t.TempDir(), HistoryV1{})
	require.Error(t, err)
}

func TestWriteCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")
	_, err := Write(dir, HistoryV1{RunID: "r"})
	require.NoError(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.hist.zst"))
	require.Error(t, err)
}
