package denstream

import (
	"testing"

	"github.com/MIAOUS-group/go-port-contention/internal/microcluster"
)

func withCenterAndCount(cy float64, pointNumber uint) microcluster.MicroCluster {
	mc := microcluster.New(0.25, 0)
	mc.CenterX = 0
	mc.CenterY = cy
	mc.PointNumber = pointNumber
	mc.Weight = 1
	return mc
}

func TestCheckInitSequenceRejectsLowRatioPreamble(t *testing.T) {
	r := NewResults()
	r.InitSequence[0] = withCenterAndCount(100, 3)
	r.InitSequence[1] = withCenterAndCount(90, 3)
	r.InitSequence[2] = withCenterAndCount(100, 3)

	r.checkInitSequence(10)

	if r.StartIndex != -1 {
		t.Fatalf("StartIndex = %d, want -1 for a preamble with ratios below 1.15", r.StartIndex)
	}
}

func TestCheckInitSequenceAcceptsValidPreambleAndCalibrates(t *testing.T) {
	r := NewResults()
	r.InitSequence[0] = withCenterAndCount(200, 5)
	r.InitSequence[1] = withCenterAndCount(100, 4)
	r.InitSequence[2] = withCenterAndCount(210, 6)

	r.checkInitSequence(10)

	if r.StartIndex == -1 {
		t.Fatal("expected a valid 1-0-1 preamble to be accepted")
	}
	if r.Threshold != 152.5 {
		t.Errorf("Threshold = %f, want 152.5", r.Threshold)
	}
	if r.BitSize0 != 4 {
		t.Errorf("BitSize0 = %f, want 4", r.BitSize0)
	}
	// (5+6)/2*1.1 is 6.050000000000001 in float64, so compare with a tolerance.
	if d := r.BitSize1 - 6.05; d > 1e-9 || d < -1e-9 {
		t.Errorf("BitSize1 = %f, want 6.05", r.BitSize1)
	}
}

func TestCalibrateIsIdempotent(t *testing.T) {
	r := NewResults()
	r.InitSequence[0] = withCenterAndCount(200, 5)
	r.InitSequence[1] = withCenterAndCount(100, 4)
	r.InitSequence[2] = withCenterAndCount(210, 6)

	r.calibrate()
	threshold1, size0_1, size1_1 := r.Threshold, r.BitSize0, r.BitSize1

	r.calibrate()
	if r.Threshold != threshold1 || r.BitSize0 != size0_1 || r.BitSize1 != size1_1 {
		t.Fatalf("calibrate is not idempotent: got (%f, %f, %f) then (%f, %f, %f)",
			threshold1, size0_1, size1_1, r.Threshold, r.BitSize0, r.BitSize1)
	}
}

func TestGetBitsNeverExceedsRequestFrameSize(t *testing.T) {
	r := NewResults()
	r.BitSize0, r.BitSize1 = 1, 1
	for i := 0; i < 30; i++ {
		r.Clusters = append(r.Clusters, withCenterAndCount(float64(i), 1))
	}
	if len(r.GetBits()) > RequestFrameSize {
		t.Fatalf("GetBits() returned %d bits, want at most %d", len(r.GetBits()), RequestFrameSize)
	}
}

func TestParseNewPointIntegration(t *testing.T) {
	st := New(0.1, 30, 0.2, 2)
	r := NewResults()

	// A 1-0-1-... train of two latency levels: with eps = 30 the later runs
	// merge into the first high and first low potential clusters, so the
	// pool holds only two clusters and no preamble is detected. The test
	// checks that feeding the stream succeeds and GetBits stays bounded.
	levels := []float64{300, 300, 300, 100, 100, 100, 310, 310, 310, 95, 95, 95, 305, 305, 305}
	for i, y := range levels {
		if err := r.ParseNewPoint(microcluster.Sample{X: float64(i), Y: y}, st); err != nil {
			t.Fatalf("ParseNewPoint(%d): %v", i, err)
		}
	}

	if len(r.GetBits()) > RequestFrameSize {
		t.Fatalf("GetBits() returned more than %d bits", RequestFrameSize)
	}
}
