// Package sampler implements the latency sampling stage between the
// port-contention physical layer and the bit detectors.
package sampler

import (
	"sort"

	"github.com/MIAOUS-group/go-port-contention/internal/portspam"
	"gonum.org/v1/gonum/stat"
)

// ReceiverRep is the number of timestamped repetitions Listen averages over.
const ReceiverRep = 128

// MedianWindow is the number of Listen() samples folded into one
// median-smoothed sample fed to a detector.
const MedianWindow = 10

// Listen performs one round of timestamped Port A readings and returns the
// mean of the adjacent-timestamp deltas, in nanoseconds. A contended port
// produces larger deltas than an idle one.
func Listen() float64 {
	timings := portspam.ReadTimings(ReceiverRep)
	diffs := make([]float64, len(timings)-1)
	for i := range diffs {
		diffs[i] = float64(timings[i+1] - timings[i])
	}
	return stat.Mean(diffs, nil)
}

// Median returns the middle element of an ascending sort of values.
func Median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// Sampler produces one median-smoothed latency sample per Next() call by
// folding MedianWindow consecutive Listen() means together, damping the
// single-reading noise that would otherwise reach the detectors.
type Sampler struct{}

// Next blocks for MedianWindow Listen() calls and returns their median.
func (Sampler) Next() float64 {
	window := make([]float64, MedianWindow)
	for i := range window {
		window[i] = Listen()
	}
	return Median(window)
}
