// Package entropy provides boot-time seed material. The model itself owns a
// single seeded math/rand stream for reproducibility; this package only
// supplies the seed when the operator did not pin one.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
)

// Seed returns a uniformly random non-zero int64 from crypto/rand. Zero is
// reserved to mean "draw me a seed" in configuration, so it is never
// returned.
func Seed() int64 {
	for {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand failing means the platform entropy source is
			// broken; there is no sane fallback for seeding a run.
			slog.Error("entropy: crypto/rand failed", "error", err)
			panic(err)
		}
		s := int64(binary.LittleEndian.Uint64(buf[:]))
		if s != 0 {
			return s
		}
	}
}
