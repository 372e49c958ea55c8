// Package physical implements the bit-level physical layer: encoding a
// logical 1 or 0 as a fixed-duration burst of port saturation or idling.
package physical

import (
	"context"
	"time"

	"github.com/MIAOUS-group/go-port-contention/internal/portspam"
)

// BitDuration is the wall-clock time budget for transmitting a single bit.
const BitDuration = 1 * time.Millisecond

// SendOne busy-loops saturating Port A for approximately d, encoding a 1-bit.
func SendOne(ctx context.Context, d time.Duration) {
	scratch := make([]byte, 64)
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		portspam.SaturatePortA(scratch)
	}
}

// SendZero busy-waits for approximately d without contending any port,
// encoding a 0-bit.
func SendZero(ctx context.Context, d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// SendSequence transmits bits in order, one bit per d, stopping early if ctx
// is cancelled.
func SendSequence(ctx context.Context, bits []bool, d time.Duration) {
	for _, b := range bits {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if b {
			SendOne(ctx, d)
		} else {
			SendZero(ctx, d)
		}
	}
}
