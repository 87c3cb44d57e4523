// Package sizeprefix frames a byte blob with its own length as a
// self-delimiting varint: 7 data bits per byte, least-significant group
// first, high bit set on every byte except the last.
package sizeprefix

import (
	"errors"
	"fmt"

	"github.com/multiformats/go-varint"
)

// ErrTruncatedHeader is returned when a buffer ends before the size prefix
// terminates, or before the number of bytes it declares.
var ErrTruncatedHeader = errors.New("truncated size header")

// Encode returns the varint form of size. The result is never empty.
func Encode(size uint64) []byte {
	return varint.ToUvarint(size)
}

// Decode reads a varint starting at offset and returns its value together
// with the number of bytes it occupied.
//
// Decode is stricter than the bare varint rule: non-minimal encodings (such
// as 80 00 for zero) fail with varint.ErrNotMinimal and values above 63 bits
// with varint.ErrOverflow, both wrapped. Encode never produces either form.
func Decode(buf []byte, offset int) (size uint64, n int, err error) {
	if offset < 0 || offset >= len(buf) {
		return 0, 0, ErrTruncatedHeader
	}
	size, n, err = varint.FromUvarint(buf[offset:])
	switch {
	case err == nil:
		return size, n, nil
	case errors.Is(err, varint.ErrUnderflow):
		return 0, 0, ErrTruncatedHeader
	default:
		return 0, 0, fmt.Errorf("decoding size header: %w", err)
	}
}

// Prefix returns data preceded by its encoded length.
func Prefix(data []byte) []byte {
	header := Encode(uint64(len(data)))
	out := make([]byte, 0, len(header)+len(data))
	out = append(out, header...)
	return append(out, data...)
}

// Strip decodes the size prefix at the start of buf and returns exactly the
// bytes it declares. Anything past them (cipher padding) is discarded.
func Strip(buf []byte) ([]byte, error) {
	size, n, err := Decode(buf, 0)
	if err != nil {
		return nil, err
	}
	if size > uint64(len(buf)-n) {
		return nil, fmt.Errorf("%w: header declares %d bytes, %d available", ErrTruncatedHeader, size, len(buf)-n)
	}
	return buf[n : n+int(size)], nil
}
