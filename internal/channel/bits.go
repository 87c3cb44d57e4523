package channel

import "github.com/zedseven/binmani"

// unpackBits returns the bits of data, most significant bit of each byte first.
func unpackBits(data []byte) []uint8 {
	return *binmani.BytesToBits(&data)
}

// packBits is the inverse of unpackBits. A trailing partial byte is dropped.
func packBits(bits []uint8) []byte {
	out := make([]byte, len(bits)/bitsPerByte)
	for i := range out {
		for j := 0; j < bitsPerByte; j++ {
			out[i] = byte(binmani.WriteTo(uint16(out[i]), uint8(bitsPerByte-j-1), 1, uint16(bits[i*bitsPerByte+j])))
		}
	}
	return out
}

func lsb(sample uint8) uint8 {
	return uint8(binmani.ReadFrom(uint16(sample), 0, 1))
}

// SetLSB returns sample with its least-significant bit equal to bit, never
// decrementing: the result is sample or sample+1. The caller guarantees
// sample < 255.
func SetLSB(sample, bit uint8) uint8 {
	return sample + (bit ^ lsb(sample))
}
