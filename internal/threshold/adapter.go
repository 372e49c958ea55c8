package threshold

import "math"

// Adapter satisfies detector.Detector for the threshold algorithm.
type Adapter struct {
	results *Results
}

// NewAdapter builds a fresh threshold-backed detector using the given jump
// threshold (nanoseconds).
func NewAdapter(jumpThreshold int) *Adapter {
	return &Adapter{results: NewResults(jumpThreshold)}
}

// ParseNewPoint feeds one latency sample, rounded to the nearest integer
// nanosecond, to the underlying results.
func (a *Adapter) ParseNewPoint(point float64) error {
	return a.results.ParseNewPoint(int(math.Round(point)))
}

// Bits returns the bit sequence accumulated so far.
func (a *Adapter) Bits() []int { return a.results.GetBits() }

// Ready reports whether enough bits have accumulated for a frame decode.
func (a *Adapter) Ready() bool { return a.results.Ready() }
