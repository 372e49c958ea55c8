package denstream

import (
	"math"
	"sort"

	"github.com/MIAOUS-group/go-port-contention/internal/microcluster"
)

// RequestFrameSize is the bit width of a request frame; GetBits never
// returns more than this many bits regardless of how many clusters have
// accumulated.
const RequestFrameSize = 12

// mergeRatio is how close two candidate preamble clusters' vertical centers
// must be (within a factor of mergeRatio of each other) for the newer one
// to be dropped as the same candidate instead of shifting the three-cluster
// calibration window.
const mergeRatio = 1.05

// preambleRatio is how much higher the two "1" clusters flanking the
// preamble's "0" must read to be accepted as a valid init sequence.
const preambleRatio = 1.15

// Results tracks the online bit-stream parse derived from a DenStream
// cluster pool: preamble calibration followed by a running, bit-labeled
// cluster list.
type Results struct {
	StartIndex   int
	Clusters     []microcluster.MicroCluster
	BitNumber    int
	Threshold    float64
	BitSize0     float64
	BitSize1     float64
	InitSequence [3]microcluster.MicroCluster
}

// NewResults returns a Results ready to consume a fresh cluster stream.
func NewResults() *Results {
	r := &Results{StartIndex: -1, BitSize0: -1, BitSize1: -1}
	for i := range r.InitSequence {
		r.InitSequence[i] = microcluster.New(0, 0)
	}
	return r
}

func (r *Results) bitPosition(mc microcluster.MicroCluster) int {
	if mc.CenterY > r.Threshold {
		return 1
	}
	return 0
}

func (r *Results) bitCount(mc microcluster.MicroCluster) int {
	size := r.BitSize0
	if r.bitPosition(mc) == 1 {
		size = r.BitSize1
	}
	return int(math.Round(float64(mc.PointNumber) / size))
}

// calibrate derives the 0/1 threshold and the two expected point-count
// sizes from the detected preamble triplet (1, 0, 1).
func (r *Results) calibrate() {
	a, b, c := r.InitSequence[0], r.InitSequence[1], r.InitSequence[2]
	r.Threshold = (a.CenterY + 2*b.CenterY + c.CenterY) / 4
	r.BitSize0 = float64(b.PointNumber)
	r.BitSize1 = float64(a.PointNumber+c.PointNumber) / 2 * 1.1
}

func allFilled(seq [3]microcluster.MicroCluster) bool {
	for _, mc := range seq {
		if mc.Empty() {
			return false
		}
	}
	return true
}

// checkInitSequence accepts the current three-cluster window as the
// preamble if it reads high-low-high with the flanking clusters more than
// preambleRatio times taller than the middle one.
func (r *Results) checkInitSequence(pLen int) {
	a, b, c := r.InitSequence[0], r.InitSequence[1], r.InitSequence[2]
	if a.Empty() || b.Empty() || c.Empty() {
		return
	}
	if a.CenterY > preambleRatio*b.CenterY && c.CenterY > preambleRatio*b.CenterY {
		r.StartIndex = pLen - 5
		r.BitNumber = 3
		r.Clusters = append(r.Clusters, a, b, c)
		r.calibrate()
	}
}

// update folds a newly-formed cluster into either the post-preamble bit
// stream or the pre-preamble calibration window.
func (r *Results) update(nc microcluster.MicroCluster) {
	switch {
	case len(r.Clusters) > 0 && r.StartIndex != -1:
		last := r.Clusters[len(r.Clusters)-1]
		if last.CenterX == nc.CenterX {
			r.calibrate()
			return
		}
		if r.bitPosition(last) == r.bitPosition(nc) {
			r.BitNumber -= r.bitCount(last)
			merged := microcluster.Merge(last, nc)
			r.Clusters[len(r.Clusters)-1] = merged
			r.BitNumber += r.bitCount(merged)
		} else {
			r.Clusters = append(r.Clusters, nc)
			r.BitNumber += r.bitCount(nc)
		}
		r.calibrate()

	case r.StartIndex == -1 && allFilled(r.InitSequence):
		last := r.InitSequence[2]
		if nc.CenterX == last.CenterX {
			return
		}
		if nc.CenterY < last.CenterY*mergeRatio && nc.CenterY > last.CenterY/mergeRatio {
			// Close enough to the current window's last cluster to be
			// treated as the same preamble candidate; drop it rather than
			// sliding the window.
			return
		}
		r.InitSequence[0] = r.InitSequence[1]
		r.InitSequence[1] = r.InitSequence[2]
		r.InitSequence[2] = nc

	default:
		for i := range r.InitSequence {
			if r.InitSequence[i].Empty() {
				r.InitSequence[i] = nc
				break
			}
		}
	}
}

// parseNewCluster is invoked whenever the DenStream potential pool changes
// size: the third-to-last cluster has just stabilized and is ready to fold in.
func (r *Results) parseNewCluster(pmc []microcluster.MicroCluster) {
	pLen := len(pmc)
	if pLen <= 3 {
		return
	}
	r.update(pmc[pLen-3])
	if r.StartIndex == -1 {
		r.checkInitSequence(pLen)
	}
}

// ParseNewPoint feeds one latency sample through DenStream and, if the
// potential pool changed size as a result, updates the bit parse.
func (r *Results) ParseNewPoint(s microcluster.Sample, ds *State) error {
	oldLen := len(ds.PMC)
	if err := ds.PartialFit(s); err != nil {
		return err
	}
	if len(ds.PMC) != oldLen {
		sort.Slice(ds.PMC, func(i, j int) bool { return ds.PMC[i].CenterX < ds.PMC[j].CenterX })
		r.parseNewCluster(ds.PMC)
	}
	return nil
}

// GetBits expands the accumulated cluster list into a 0/1 bit sequence,
// never returning more than RequestFrameSize bits.
func (r *Results) GetBits() []int {
	bits := make([]int, 0, RequestFrameSize)
	for _, c := range r.Clusters {
		pos := r.bitPosition(c)
		n := r.bitCount(c)
		for i := 0; i < n && len(bits) < RequestFrameSize; i++ {
			bits = append(bits, pos)
		}
		if len(bits) >= RequestFrameSize {
			break
		}
	}
	return bits
}

// Ready reports whether enough bits have accumulated to attempt a frame
// decode.
func (r *Results) Ready() bool {
	return r.BitNumber >= RequestFrameSize
}
