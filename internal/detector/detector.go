// Package detector provides a common interface over the two bit-detection
// algorithms (DenStream and threshold), letting the receiver controller
// run either one uniformly per listener goroutine.
package detector

import (
	"fmt"

	"github.com/MIAOUS-group/go-port-contention/internal/denstream"
	"github.com/MIAOUS-group/go-port-contention/internal/threshold"
)

// Detector converts a stream of median-smoothed latency samples into an
// ordered bit sequence.
type Detector interface {
	ParseNewPoint(point float64) error
	Bits() []int
	Ready() bool
}

// Params carries the tunables needed to construct either detector kind.
type Params struct {
	Kind string // "threshold" (default) or "denstream"

	ThresholdJump int

	DenStreamLambda float64
	DenStreamEps    float64
	DenStreamBeta   float64
	DenStreamMu     float64
}

// New builds a fresh, thread-local Detector instance per Params.Kind. Each
// listener goroutine must call this itself rather than share one instance.
func New(p Params) (Detector, error) {
	switch p.Kind {
	case "", "threshold":
		return threshold.NewAdapter(p.ThresholdJump), nil
	case "denstream":
		return denstream.NewAdapter(p.DenStreamLambda, p.DenStreamEps, p.DenStreamBeta, p.DenStreamMu), nil
	default:
		return nil, fmt.Errorf("detector: unknown kind %q", p.Kind)
	}
}
