// Package snapshot exports a run's full metric history as zstd-compressed
// JSON for offline analysis.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/wealthsim/internal/metrics"
)

// HistoryV1 is the export envelope. Version bumps on breaking layout change.
type HistoryV1 struct {
	Version int              `json:"version"`
	RunID   string           `json:"run_id"`
	Seed    int64            `json:"seed"`
	Agents  int              `json:"agents"`
	Ticks   uint64           `json:"ticks"`
	Records []metrics.Record `json:"records"`
}

// Write serializes h to <dir>/<run-id>.hist.zst, creating dir as needed.
// The file is written to a temp name and renamed, so readers never see a
// partial snapshot.
func Write(dir string, h HistoryV1) (string, error) {
	if h.RunID == "" {
		return "", fmt.Errorf("snapshot: empty run id")
	}
	h.Version = 1

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot: mkdir %s: %w", dir, err)
	}

	path := filepath.Join(dir, h.RunID+".hist.zst")
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("snapshot: create: %w", err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("snapshot: zstd: %w", err)
	}

	if err := json.NewEncoder(enc).Encode(h); err != nil {
		enc.Close()
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("snapshot: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("snapshot: close: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("snapshot: rename: %w", err)
	}
	return path, nil
}

// Read loads a snapshot file written by Write.
func Read(path string) (HistoryV1, error) {
	var h HistoryV1

	f, err := os.Open(path)
	if err != nil {
		return h, fmt.Errorf("snapshot: open: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, fmt.Errorf("snapshot: zstd: %w", err)
	}
	defer dec.Close()

	if err := json.NewDecoder(dec).Decode(&h); err != nil {
		return h, fmt.Errorf("snapshot: decode: %w", err)
	}
	if h.Version != 1 {
		return h, fmt.Errorf("snapshot: unsupported version %d", h.Version)
	}
	return h, nil
}
