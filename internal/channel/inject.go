// Package channel plans, writes, reads and erases the hidden bit channel
// inside a flattened 8-bit image.
//
// The channel lives in the least-significant bits of the usable samples
// (values strictly between 1 and 254 while hiding). The first HeaderBits
// usable samples carry stride-1 as a big-endian byte; after them every
// stride-th usable sample carries one envelope bit.
//
// Nothing in this package logs or reads global state. Randomness comes in
// through io.Reader parameters.
package channel

import (
	"fmt"
	"io"

	"github.com/zedseven/estegano/internal/algos"
)

// Inject writes the stride header and the envelope bits into pix and returns
// it. Inject takes ownership of pix. Every sample either keeps its value or
// grows by exactly one, and pix is left untouched when an error is returned.
//
// One random filler byte is appended to the envelope so the final channel
// sample always has a defined bit; its value is never read back.
func Inject(pix []uint8, envelope []byte, stride int, rng io.Reader) ([]uint8, error) {
	if stride < 1 || stride > MaxStride {
		return pix, fmt.Errorf("stride %d is outside the allowed range of 1-%d", stride, MaxStride)
	}

	positions := algos.UsablePositions(pix, algos.InjectUpperBound)
	if len(positions) < HeaderBits {
		return pix, &InsufficientHidingSpotsError{UsableBits: 0, RequiredBits: len(envelope) * bitsPerByte}
	}

	start := HeaderBits + stride - 1
	count := algos.StrideCount(len(positions), start, stride)

	framed := make([]byte, len(envelope)+1)
	copy(framed, envelope)
	if _, err := io.ReadFull(rng, framed[len(envelope):]); err != nil {
		return pix, fmt.Errorf("generating filler byte: %w", err)
	}
	bits := unpackBits(framed)
	if len(bits) < count {
		return pix, fmt.Errorf("an envelope of %d bytes cannot fill %d channel samples at stride %d",
			len(envelope), count, stride)
	}
	bits = bits[:count]

	// After this, the only 254s in the image are channel samples raised from 253.
	for i, v := range pix {
		if v == algos.InjectUpperBound {
			pix[i] = algos.ExtractUpperBound
		}
	}

	header := unpackBits([]byte{byte(stride - 1)})
	if err := writeBits(pix, algos.SequentialAddressor(positions, HeaderBits), header); err != nil {
		return pix, err
	}
	if err := writeBits(pix, algos.StrideAddressor(positions, start, stride), bits); err != nil {
		return pix, err
	}

	return pix, nil
}

func writeBits(pix []uint8, next func() (int, error), bits []uint8) error {
	for i, bit := range bits {
		p, err := next()
		if err != nil {
			return fmt.Errorf("writing bit %d of %d: %w", i, len(bits), err)
		}
		pix[p] = SetLSB(pix[p], bit)
	}
	return nil
}

// Capacity returns the number of envelope bits a channel with the given
// stride can carry in an image with maskCount usable samples.
func Capacity(maskCount, stride int) int {
	return algos.StrideCount(maskCount, HeaderBits+stride-1, stride)
}
