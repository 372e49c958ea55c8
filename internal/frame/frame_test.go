package frame

import "testing"

func TestDataFrameRoundTrip(t *testing.T) {
	for seq := 0; seq < 16; seq++ {
		for _, data := range []byte{0x00, 0x4A, 0xFF, 0x81} {
			f := EncodeData(data, seq)
			d := f.Decode()
			if d.InitSeq != ValidInitSeq {
				t.Fatalf("data=%#x seq=%d: initSeq = %d, want %d", data, seq, d.InitSeq, ValidInitSeq)
			}
			if d.SequenceNumber != seq {
				t.Errorf("data=%#x seq=%d: sequenceNumber = %d, want %d", data, seq, d.SequenceNumber, seq)
			}
			if d.Data != data {
				t.Errorf("data=%#x seq=%d: data = %#x, want %#x", data, seq, d.Data, data)
			}
			if d.Berger != f.CountZeros() {
				t.Errorf("data=%#x seq=%d: berger = %d, want %d", data, seq, d.Berger, f.CountZeros())
			}
			if !d.Valid(f) {
				t.Errorf("data=%#x seq=%d: expected untampered frame to be valid", data, seq)
			}
		}
	}
}

func TestDataFrameBergerScenario(t *testing.T) {
	// data = 0x4A (01001010), seq = 3: first 16 bits are
	// 1010 0011 01001010, which carry 9 zero bits.
	f := EncodeData(0x4A, 3)
	if got := f.CountZeros(); got != 9 {
		t.Fatalf("CountZeros() = %d, want 9", got)
	}
	d := f.Decode()
	if d.Berger != 9 {
		t.Errorf("Berger = %d, want 9", d.Berger)
	}
}

func TestDataFrameBergerDetectsTamper(t *testing.T) {
	f := EncodeData(0x4A, 3)
	d := f.Decode()
	for i := 0; i < 16; i++ {
		tampered := f
		tampered.Bits[i] = !tampered.Bits[i]
		if d.Berger == tampered.CountZeros() {
			t.Errorf("flipping bit %d did not change the berger check (both %d)", i, d.Berger)
		}
	}
}

func TestRequestFrameRoundTrip(t *testing.T) {
	for seq := 0; seq < 16; seq++ {
		f := EncodeRequest(seq)
		d := f.Decode()
		if d.InitSeq != ValidInitSeq {
			t.Fatalf("seq=%d: initSeq = %d, want %d", seq, d.InitSeq, ValidInitSeq)
		}
		if d.SequenceNumber != seq {
			t.Errorf("seq=%d: sequenceNumber = %d, want %d", seq, d.SequenceNumber, seq)
		}
		if !d.Valid() {
			t.Errorf("seq=%d: expected decoded request to be valid", seq)
		}
	}
}

func TestRequestFrameRejectsCorruption(t *testing.T) {
	f := EncodeRequest(9)
	f.Bits[5] = !f.Bits[5]
	d := f.Decode()
	if d.Valid() {
		t.Error("expected corrupted request frame to be invalid")
	}
	if d.InitSeq != 0 {
		t.Errorf("InitSeq = %d, want 0 on decode failure", d.InitSeq)
	}
}

func TestRequestFrameFromBitsPadsShortInput(t *testing.T) {
	f := RequestFrameFromBits([]int{1, 0, 1, 0})
	for i := 4; i < RequestFrameSize; i++ {
		if f.Bits[i] {
			t.Errorf("bit %d should default to 0 for short input", i)
		}
	}
}
