package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubEmptyBroadcast(t *testing.T) {
	h := NewHub()
	require.Equal(t, 0, h.ClientCount())

	// Broadcasting with no clients must not block or panic.
	h.Broadcast(Frame{Tick: 1, Gini: 0.5})
}
