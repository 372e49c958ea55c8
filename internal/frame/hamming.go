package frame

import "errors"

// ErrUncorrectable indicates a Hamming(7,4)+parity decode found a bit error.
// A single-bit corrector exists (HammingCorrect) but Decode deliberately
// never calls it — any corruption on this channel is treated as a dropped
// frame rather than silently "fixed" data, the same conservative behavior
// the original request-frame decoder had.
var ErrUncorrectable = errors.New("frame: uncorrectable hamming codeword")

// hammingControl is the parity-check matrix used to locate a single flipped
// bit for correction: its three rows dotted with the codeword, mod 2, give
// a 3-bit binary index of the errored position (1-based, 0 meaning none).
var hammingControl = [3][7]int{
	{0, 0, 0, 1, 1, 1, 1},
	{0, 1, 1, 0, 0, 1, 1},
	{1, 0, 1, 0, 1, 0, 1},
}

// HammingEncode encodes a 4-bit message into a 7-bit Hamming codeword plus
// one overall parity bit (8 bits total).
func HammingEncode(m [4]int) [8]int {
	var e [8]int
	e[2] = m[0]
	e[4] = m[1]
	e[5] = m[2]
	e[6] = m[3]
	e[0] = m[0] ^ m[1] ^ m[3]
	e[1] = m[0] ^ m[2] ^ m[3]
	e[3] = m[1] ^ m[2] ^ m[3]
	parity := 0
	for i := 0; i < 7; i++ {
		parity ^= e[i]
	}
	e[7] = parity
	return e
}

func overallParity(e [8]int) int {
	p := 0
	for i := 0; i < 7; i++ {
		p ^= e[i]
	}
	return p
}

// hammingErrorCount cross-checks each parity bit against the data bits it
// covers, then uses agreement/disagreement with the overall parity bit to
// classify the codeword as clean (0), single-bit-wrong (1), or
// double-bit-wrong (2).
func hammingErrorCount(e [8]int) int {
	parityOK := e[0] == e[2]^e[4]^e[6] &&
		e[1] == e[2]^e[5]^e[6] &&
		e[3] == e[4]^e[5]^e[6] &&
		e[7] == overallParity(e)
	if parityOK {
		return 0
	}
	if e[7] != overallParity(e) {
		return 1
	}
	return 2
}

// HammingDecode validates an 8-bit codeword and, if clean, extracts the
// original 4-bit message (0-15). It returns ErrUncorrectable on any
// detected error, single- or double-bit, without attempting correction.
func HammingDecode(e [8]int) (int, error) {
	if hammingErrorCount(e) != 0 {
		return -1, ErrUncorrectable
	}
	m0, m1, m2, m3 := e[2], e[4], e[5], e[6]
	return m0*8 + m1*4 + m2*2 + m3, nil
}

// HammingCorrect flips the single bit identified by the control-matrix
// syndrome. It is exercised directly by tests but intentionally unused by
// HammingDecode; see ErrUncorrectable.
func HammingCorrect(e [8]int) [8]int {
	var syndrome [3]int
	for row := 0; row < 3; row++ {
		sum := 0
		for col := 0; col < 7; col++ {
			sum += hammingControl[row][col] * e[col]
		}
		syndrome[row] = sum % 2
	}
	errorIndex := syndrome[0]*4 + syndrome[1]*2 + syndrome[2] - 1
	corrected := e
	if errorIndex >= 0 && errorIndex < 7 {
		corrected[errorIndex] ^= 1
	}
	return corrected
}
