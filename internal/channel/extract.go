package channel

import "github.com/zedseven/estegano/internal/algos"

// Extract reads the envelope back out of an image produced by Inject. An
// image without enough usable samples for a header yields an empty envelope,
// which the cipher layer rejects like any other unauthenticated data.
func Extract(pix []uint8) []byte {
	positions := algos.UsablePositions(pix, algos.ExtractUpperBound)
	stride, ok := readStride(pix, positions)
	if !ok {
		return []byte{}
	}

	start := HeaderBits + stride - 1
	bits := make([]uint8, 0, algos.StrideCount(len(positions), start, stride))
	next := algos.StrideAddressor(positions, start, stride)
	for {
		p, err := next()
		if err != nil {
			break
		}
		bits = append(bits, lsb(pix[p]))
	}

	// The trailing partial byte, if any, is the filler.
	return packBits(bits)
}

// ReadStride returns the stride recorded in the header of pix.
func ReadStride(pix []uint8) (int, bool) {
	return readStride(pix, algos.UsablePositions(pix, algos.ExtractUpperBound))
}

func readStride(pix []uint8, positions []int) (int, bool) {
	if len(positions) < HeaderBits {
		return 0, false
	}
	bits := make([]uint8, HeaderBits)
	for i, p := range positions[:HeaderBits] {
		bits[i] = lsb(pix[p])
	}
	return int(packBits(bits)[0]) + 1, true
}
