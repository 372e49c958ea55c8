package denstream

import "github.com/MIAOUS-group/go-port-contention/internal/microcluster"

// Adapter satisfies detector.Detector by combining a DenStream State with
// its bit-parsing Results, giving each listener goroutine its own
// independent, thread-local detector instance.
type Adapter struct {
	state   *State
	results *Results
	index   float64
}

// NewAdapter builds a fresh DenStream-backed detector.
func NewAdapter(lambda, eps, beta, mu float64) *Adapter {
	return &Adapter{state: New(lambda, eps, beta, mu), results: NewResults()}
}

// ParseNewPoint feeds one latency sample to the underlying state/results pair.
func (a *Adapter) ParseNewPoint(point float64) error {
	s := microcluster.Sample{X: a.index, Y: point}
	a.index++
	return a.results.ParseNewPoint(s, a.state)
}

// Bits returns the bit sequence accumulated so far.
func (a *Adapter) Bits() []int { return a.results.GetBits() }

// Ready reports whether enough bits have accumulated for a frame decode.
func (a *Adapter) Ready() bool { return a.results.Ready() }
