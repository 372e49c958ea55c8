// Package microcluster implements the online, exponentially time-decayed
// 2D cluster summary DenStream builds its micro-cluster pools from.
package microcluster

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EmptyCenter marks an unused cluster slot, matching the original's cx=-1
// sentinel convention.
const EmptyCenter = -1

// Sample is a single 2D point fed to the clustering pipeline: X is the
// monotonically increasing sample index, Y is a latency measurement.
type Sample struct {
	X float64
	Y float64
}

// MicroCluster is an online summary of the samples merged into it so far.
type MicroCluster struct {
	CenterX, CenterY     float64
	VarianceX, VarianceY float64
	Weight               float64
	PointNumber          uint
	Lambda               float64
	DecayFactor          float64
	CreationTime         float64
}

// New returns an empty cluster seeded with the given decay rate and creation
// time (the tick count at which the cluster was first instantiated).
func New(lambda, creationTime float64) MicroCluster {
	return MicroCluster{
		CenterX:      EmptyCenter,
		CenterY:      EmptyCenter,
		Lambda:       lambda,
		DecayFactor:  math.Pow(2, -lambda),
		CreationTime: creationTime,
	}
}

// Empty reports whether mc is still an unused sentinel slot.
func (mc MicroCluster) Empty() bool {
	return mc.CenterX == EmptyCenter && mc.Weight == 0
}

// Insert merges a new sample into the cluster using a decayed-weight moving
// average for the center and a decayed sum-of-squares for the variance.
func (mc *MicroCluster) Insert(s Sample) {
	if mc.Weight == 0 {
		mc.CenterX = s.X
		mc.CenterY = s.Y
		mc.Weight = 1
		mc.PointNumber++
		return
	}

	const w = 1.0
	w0 := mc.Weight
	w1 := w0*mc.DecayFactor + w
	mc.Weight = w1

	oldCenterX, oldCenterY := mc.CenterX, mc.CenterY
	mc.CenterX = oldCenterX + (w/w1)*(s.X-oldCenterX)
	mc.CenterY = oldCenterY + (w/w1)*(s.Y-oldCenterY)

	mc.VarianceX = mc.VarianceX*((w1-w)/w0) + w*(s.X-mc.CenterX)*(s.X-oldCenterX)
	mc.VarianceY = mc.VarianceY*((w1-w)/w0) + w*(s.Y-mc.CenterY)*(s.Y-oldCenterY)

	mc.PointNumber++
}

// Radius returns the combined per-axis standard deviation, or -1 for a
// cluster that has never absorbed a sample.
func (mc MicroCluster) Radius() float64 {
	if mc.Weight <= 0 {
		return -1
	}
	rx := math.Sqrt(mc.VarianceX / mc.Weight)
	ry := math.Sqrt(mc.VarianceY / mc.Weight)
	return floats.Norm([]float64{rx, ry}, 2)
}

// Copy returns an independent clone of mc, reseeded through New so the
// decay factor is recomputed rather than carried over verbatim.
func (mc MicroCluster) Copy() MicroCluster {
	dst := New(mc.Lambda, mc.CreationTime)
	dst.CenterX = mc.CenterX
	dst.CenterY = mc.CenterY
	dst.VarianceX = mc.VarianceX
	dst.VarianceY = mc.VarianceY
	dst.Weight = mc.Weight
	dst.PointNumber = mc.PointNumber
	return dst
}

// Merge combines two clusters into one, averaging their centers and decay
// rates and summing their weight and point counts.
func Merge(a, b MicroCluster) MicroCluster {
	lambda := (a.Lambda + b.Lambda) / 2
	return MicroCluster{
		CenterX:      (a.CenterX + b.CenterX) / 2,
		CenterY:      (a.CenterY + b.CenterY) / 2,
		VarianceX:    a.VarianceX + b.VarianceX,
		VarianceY:    a.VarianceY + b.VarianceY,
		Lambda:       lambda,
		DecayFactor:  math.Pow(2, -lambda),
		CreationTime: a.CreationTime,
		Weight:       a.Weight + b.Weight,
		PointNumber:  a.PointNumber + b.PointNumber,
	}
}

// Distance returns the Euclidean distance between two cluster centers.
func Distance(a, b MicroCluster) float64 {
	return floats.Distance([]float64{a.CenterX, a.CenterY}, []float64{b.CenterX, b.CenterY}, 2)
}
