// Package denstream implements the DenStream online density clustering
// algorithm used as one of the two interchangeable bit detectors.
package denstream

import (
	"errors"
	"math"

	"github.com/MIAOUS-group/go-port-contention/internal/microcluster"
	"gonum.org/v1/gonum/floats"
)

// MaxCluster bounds each pool's size so a runaway stream cannot grow it
// without limit.
const MaxCluster = 1000

// ErrClusterCapacityExceeded is returned when a pool would grow past
// MaxCluster.
var ErrClusterCapacityExceeded = errors.New("denstream: cluster capacity exceeded")

// State holds the two micro-cluster pools DenStream maintains: mature
// "potential" clusters (PMC) and provisional "outlier" clusters (OMC).
type State struct {
	Lambda, Eps, Beta, Mu float64
	T                     float64
	Tp                    float64

	PMC []microcluster.MicroCluster
	OMC []microcluster.MicroCluster
}

// New builds a DenStream state. lambda <= 0 disables periodic pruning
// entirely (Tp = +Inf); otherwise Tp defaults to 5 ticks.
func New(lambda, eps, beta, mu float64) *State {
	tp := 5.0
	if lambda <= 0 {
		tp = math.Inf(1)
	}
	return &State{Lambda: lambda, Eps: eps, Beta: beta, Mu: mu, Tp: tp}
}

func nearest(s microcluster.Sample, pool []microcluster.MicroCluster) int {
	best := -1
	bestDist := math.Inf(1)
	sv := []float64{s.X, s.Y}
	for i, mc := range pool {
		d := floats.Distance(sv, []float64{mc.CenterX, mc.CenterY}, 2)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// tryMerge speculatively inserts s into a copy of pool[idx]; if the
// resulting radius still satisfies eps, the insert is committed to the
// real cluster and true is returned.
func tryMerge(s microcluster.Sample, pool []microcluster.MicroCluster, idx int, eps float64) bool {
	if idx < 0 {
		return false
	}
	candidate := pool[idx].Copy()
	candidate.Insert(s)
	if candidate.Radius() < eps {
		pool[idx].Insert(s)
		return true
	}
	return false
}

func (st *State) merge(s microcluster.Sample) error {
	if pIdx := nearest(s, st.PMC); pIdx != -1 && tryMerge(s, st.PMC, pIdx, st.Eps) {
		return nil
	}

	if oIdx := nearest(s, st.OMC); oIdx != -1 && tryMerge(s, st.OMC, oIdx, st.Eps) {
		if st.OMC[oIdx].Weight > st.Beta*st.Mu {
			promoted := st.OMC[oIdx]
			st.OMC = append(st.OMC[:oIdx], st.OMC[oIdx+1:]...)
			if len(st.PMC) >= MaxCluster {
				return ErrClusterCapacityExceeded
			}
			st.PMC = append(st.PMC, promoted)
		}
		return nil
	}

	if len(st.OMC) >= MaxCluster {
		return ErrClusterCapacityExceeded
	}
	mc := microcluster.New(st.Lambda, st.T)
	mc.Insert(s)
	st.OMC = append(st.OMC, mc)
	return nil
}

func decay(lambda, t float64) float64 {
	return math.Pow(2, -lambda*t)
}

// prune drops potential clusters that fell below the weight threshold and
// outlier clusters whose weight hasn't kept pace with the decay envelope
// expected since their creation.
func (st *State) prune() {
	kept := make([]microcluster.MicroCluster, 0, len(st.PMC))
	for _, mc := range st.PMC {
		if mc.Weight >= st.Beta*st.Mu {
			kept = append(kept, mc)
		}
	}
	st.PMC = kept

	keptO := make([]microcluster.MicroCluster, 0, len(st.OMC))
	for _, mc := range st.OMC {
		xi := (decay(st.Lambda, st.T-mc.CreationTime+st.Tp) - 1) / (decay(st.Lambda, st.Tp) - 1)
		if mc.Weight >= xi {
			keptO = append(keptO, mc)
		}
	}
	st.OMC = keptO
}

// PartialFit merges one new sample into the pools, runs the periodic prune
// check, and advances the tick counter.
func (st *State) PartialFit(s microcluster.Sample) error {
	if err := st.merge(s); err != nil {
		return err
	}
	if !math.IsInf(st.Tp, 1) {
		if math.Mod(math.Round(st.T), math.Round(st.Tp)) == 0 {
			st.prune()
		}
	}
	st.T++
	return nil
}
