package channel

import (
	"fmt"
	"io"

	"github.com/zedseven/binmani"

	"github.com/zedseven/estegano/internal/algos"
)

// Clean erases the channel of an image produced by Inject and returns pix.
// Header samples get random LSBs; payload samples get their LSB replaced by
// their second-least-significant bit. Only LSBs change, so every sample
// moves by at most one. Images too small to hold a header are returned as is.
func Clean(pix []uint8, rng io.Reader) ([]uint8, error) {
	positions := algos.UsablePositions(pix, algos.ExtractUpperBound)
	stride, ok := readStride(pix, positions)
	if !ok {
		return pix, nil
	}

	var seed [1]byte
	if _, err := io.ReadFull(rng, seed[:]); err != nil {
		return pix, fmt.Errorf("generating random header: %w", err)
	}

	next := algos.SequentialAddressor(positions, HeaderBits)
	for _, bit := range unpackBits(seed[:]) {
		p, err := next()
		if err != nil {
			return pix, err
		}
		pix[p] = uint8(binmani.WriteTo(uint16(pix[p]), 0, 1, uint16(bit)))
	}

	next = algos.StrideAddressor(positions, HeaderBits+stride-1, stride)
	for {
		p, err := next()
		if err != nil {
			break
		}
		pix[p] = uint8(binmani.WriteTo(uint16(pix[p]), 0, 1, binmani.ReadFrom(uint16(pix[p]), 1, 1)))
	}

	return pix, nil
}
