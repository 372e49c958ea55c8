// Package portspam implements the opaque port-saturation and timestamped-read
// primitives the covert channel's physical layer is built on. A tight run of
// instructions bound to a single execution port would normally be hand
// written in assembly; this package reaches for the closest portable Go
// equivalent instead of fabricating inline assembly: the hardware-accelerated
// Castagnoli CRC32 in hash/crc32, which on amd64 lowers to the SSE4.2 CRC32
// instruction and genuinely contends on a specific execution port.
package portspam

import (
	"hash/crc32"
	"math/bits"
	"time"
)

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// spamRepeats bounds a single primitive call well under one bit duration
// while still producing measurable port pressure.
const spamRepeats = 64

// SaturatePortA performs a fixed, small burst of work that contends on the
// execution port backing the CRC32 instruction. It is the primitive
// physical.SendOne uses to encode a 1-bit and the one sampler.Listen uses to
// measure port contention.
func SaturatePortA(scratch []byte) uint32 {
	var acc uint32
	for i := 0; i < spamRepeats; i++ {
		acc = crc32.Update(acc, castagnoliTable, scratch)
	}
	return acc
}

// SaturatePortB performs a fixed, small burst of work with a distinct
// instruction mix (population count) so it contends on a different
// execution port than SaturatePortA. Nothing in the core sender/receiver
// pair uses it today; it exists for an alternate or future symmetric
// encoding scheme.
func SaturatePortB(words []uint64) int {
	count := 0
	for i := 0; i < spamRepeats; i++ {
		for _, w := range words {
			count += bits.OnesCount64(w)
		}
	}
	return count
}

// ReadTimings performs n repetitions of SaturatePortA and returns one
// monotonic nanosecond timestamp per repetition, measured from the start of
// the call.
func ReadTimings(n int) []int64 {
	timings := make([]int64, n)
	scratch := make([]byte, 64)
	start := time.Now()
	for i := 0; i < n; i++ {
		SaturatePortA(scratch)
		timings[i] = int64(time.Since(start))
	}
	return timings
}
