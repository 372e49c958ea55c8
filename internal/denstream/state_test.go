package denstream

import (
	"math"
	"testing"

	"github.com/MIAOUS-group/go-port-contention/internal/microcluster"
)

func TestLambdaZeroDisablesPruning(t *testing.T) {
	st := New(0, 25, 0.2, 2)
	if !math.IsInf(st.Tp, 1) {
		t.Fatalf("Tp = %f, want +Inf when lambda = 0", st.Tp)
	}
}

func TestPartialFitBoundsPoolSizes(t *testing.T) {
	st := New(0.25, 5, 0.2, 2)
	for i := 0; i < 500; i++ {
		s := microcluster.Sample{X: float64(i), Y: float64(1000 + (i%37)*23)}
		if err := st.PartialFit(s); err != nil {
			t.Fatalf("PartialFit(%d): %v", i, err)
		}
		if len(st.PMC) > MaxCluster {
			t.Fatalf("len(PMC) = %d exceeds MaxCluster after %d fits", len(st.PMC), i)
		}
		if len(st.OMC) > MaxCluster {
			t.Fatalf("len(OMC) = %d exceeds MaxCluster after %d fits", len(st.OMC), i)
		}
	}
}

func TestPartialFitAdvancesTickMonotonically(t *testing.T) {
	st := New(0.25, 25, 0.2, 2)
	for i := 0; i < 10; i++ {
		before := st.T
		if err := st.PartialFit(microcluster.Sample{X: float64(i), Y: 1000}); err != nil {
			t.Fatalf("PartialFit: %v", err)
		}
		if st.T != before+1 {
			t.Fatalf("T went from %f to %f, want step of exactly 1", before, st.T)
		}
	}
}

func TestMergeCreatesNewOutlierCluster(t *testing.T) {
	st := New(0.25, 100, 0.2, 2)
	if err := st.PartialFit(microcluster.Sample{X: 0, Y: 1000}); err != nil {
		t.Fatalf("PartialFit: %v", err)
	}
	if len(st.OMC) != 1 {
		t.Fatalf("len(OMC) = %d, want 1 after the first sample", len(st.OMC))
	}
	if len(st.PMC) != 0 {
		t.Fatalf("len(PMC) = %d, want 0 after the first sample", len(st.PMC))
	}
}

func TestOutlierPromotedToPotentialOnceWeightCrossesBetaMu(t *testing.T) {
	st := New(0.0001, 1000, 0.1, 1) // beta*mu = 0.1, trivially crossed
	for i := 0; i < 5; i++ {
		if err := st.PartialFit(microcluster.Sample{X: float64(i), Y: 1000}); err != nil {
			t.Fatalf("PartialFit(%d): %v", i, err)
		}
	}
	if len(st.PMC) == 0 {
		t.Error("expected the outlier cluster to have been promoted to the potential pool")
	}
}
