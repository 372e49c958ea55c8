package threshold

import "testing"

func TestParseNewPointClassifiesAgainstThreshold(t *testing.T) {
	r := NewResults(1350)
	r.ParseNewPoint(1000) // below threshold -> bit 0
	r.ParseNewPoint(1000)
	r.ParseNewPoint(2000) // above threshold -> bit 1

	if len(r.Clusters) != 2 {
		t.Fatalf("len(Clusters) = %d, want 2", len(r.Clusters))
	}
	if r.Clusters[0].BitPosition != 0 || r.Clusters[0].PointCount != 2 {
		t.Errorf("Clusters[0] = %+v, want {PointCount:2 BitPosition:0}", r.Clusters[0])
	}
	if r.Clusters[1].BitPosition != 1 || r.Clusters[1].PointCount != 1 {
		t.Errorf("Clusters[1] = %+v, want {PointCount:1 BitPosition:1}", r.Clusters[1])
	}
}

func TestDetectInitSequenceRequiresSpikeRange(t *testing.T) {
	r := NewResults(1350)
	r.Clusters = []Cluster{
		{PointCount: MinSpike, BitPosition: 1}, // exactly MIN_SPIKE, must not count
		{PointCount: 5, BitPosition: 0},
		{PointCount: 5, BitPosition: 1},
	}
	r.detectInitSequence()
	if r.InitSequenceDetected {
		t.Error("expected InitSequenceDetected to stay false when a cluster's pointCount <= MIN_SPIKE")
	}
}

func TestDetectInitSequenceAcceptsValidPreamble(t *testing.T) {
	r := NewResults(1350)
	r.Clusters = []Cluster{
		{PointCount: 5, BitPosition: 1},
		{PointCount: 4, BitPosition: 0},
		{PointCount: 4, BitPosition: 1},
	}
	r.detectInitSequence()
	if !r.InitSequenceDetected {
		t.Fatal("expected InitSequenceDetected to become true for a valid 1-0-1 preamble within spike range")
	}
}

func TestInitSequenceDetectedStaysTrue(t *testing.T) {
	r := NewResults(1350)
	r.InitSequenceDetected = true
	r.Clusters = []Cluster{{PointCount: 3, BitPosition: 1}}

	for i := 0; i < 50; i++ {
		if err := r.ParseNewPoint(1000 + i); err != nil {
			t.Fatalf("ParseNewPoint: %v", err)
		}
		if !r.InitSequenceDetected {
			t.Fatalf("InitSequenceDetected flipped back to false after %d points", i)
		}
	}
}

func TestGetBitsScenario(t *testing.T) {
	// (bitPosition, pointCount) pairs forming an alternating 1/0 run with
	// defaults bitSize_0=5, bitSize_1=4.
	r := NewResults(1350)
	r.InitSequenceDetected = true
	r.Clusters = []Cluster{
		{BitPosition: 1, PointCount: 5},
		{BitPosition: 0, PointCount: 4},
		{BitPosition: 1, PointCount: 4},
		{BitPosition: 0, PointCount: 5},
		{BitPosition: 1, PointCount: 4},
		{BitPosition: 0, PointCount: 4},
		{BitPosition: 1, PointCount: 20},
		{BitPosition: 0, PointCount: 5},
		{BitPosition: 1, PointCount: 4},
	}

	want := []int{1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 0}
	got := r.GetBits()
	if len(got) != RequestFrameSize {
		t.Fatalf("len(GetBits()) = %d, want %d", len(got), RequestFrameSize)
	}
	for i, b := range want {
		if got[i] != b {
			t.Errorf("bit %d = %d, want %d (%v)", i, got[i], b, got)
		}
	}
}

func TestGetBitsNeverExceedsRequestFrameSize(t *testing.T) {
	r := NewResults(1350)
	r.InitSequenceDetected = true
	for i := 0; i < MaxTCluster; i++ {
		r.Clusters = append(r.Clusters, Cluster{BitPosition: i % 2, PointCount: 40})
	}
	if len(r.GetBits()) > RequestFrameSize {
		t.Fatalf("GetBits() returned %d bits, want at most %d", len(r.GetBits()), RequestFrameSize)
	}
}

func TestSmoothenMergesSpikeCluster(t *testing.T) {
	r := NewResults(1350)
	r.InitSequenceDetected = true
	r.Clusters = []Cluster{
		{BitPosition: 1, PointCount: 5},
		{BitPosition: 0, PointCount: 1}, // spike: below MinSpike
		{BitPosition: 1, PointCount: 3},
	}
	r.smoothen()
	if len(r.Clusters) != 1 {
		t.Fatalf("len(Clusters) = %d, want 1 after smoothing", len(r.Clusters))
	}
	if r.Clusters[0].PointCount != 9 {
		t.Errorf("Clusters[0].PointCount = %d, want 9", r.Clusters[0].PointCount)
	}
}

func TestClusterCapacityExceeded(t *testing.T) {
	r := NewResults(1350)
	r.InitSequenceDetected = true // skip the pre-preamble 3-cluster truncation
	for i := 0; i < MaxTCluster; i++ {
		point := 1000
		if i%2 == 1 {
			point = 2000
		}
		if err := r.ParseNewPoint(point); err != nil {
			t.Fatalf("unexpected error before capacity reached (i=%d): %v", i, err)
		}
	}
	// MaxTCluster-1 was odd, so its classification was bit 1; a bit-0 point
	// forces a new cluster rather than merging into the last one.
	if err := r.ParseNewPoint(1000); err != ErrClusterCapacityExceeded {
		t.Fatalf("ParseNewPoint past capacity: got %v, want ErrClusterCapacityExceeded", err)
	}
}
