// Package algos selects the image samples that may carry hidden bits and
// hands their addresses out in the order the channel reads and writes them.
package algos

import (
	"fmt"

	"github.com/zedseven/estegano/internal/util"
)

// Sample bounds. A sample is usable when lowerBound < value < upper.
const (
	lowerBound uint8 = 1
	// InjectUpperBound is the exclusive upper bound used while hiding.
	InjectUpperBound uint8 = 254
	// ExtractUpperBound is the exclusive upper bound used while digging and cleaning.
	// It differs from InjectUpperBound because hiding remaps 254 to 255 and
	// may raise 253 to 254.
	ExtractUpperBound uint8 = 255
)

// Error types

// Thrown when an addressor is called but its pool of available addresses to hand out is empty.
type EmptyPoolError struct {
	Handed int
}

func (e EmptyPoolError) Error() string {
	return fmt.Sprintf("The pool of sample addresses is empty after %d addresses.", e.Handed)
}

// UsablePositions returns the indices of every sample in pix that lies strictly
// between 1 and upper, in flattened order. The result is a snapshot: later
// writes to pix do not change it.
func UsablePositions(pix []uint8, upper uint8) []int {
	positions := make([]int, 0, len(pix))
	for i, v := range pix {
		if v > lowerBound && v < upper {
			positions = append(positions, i)
		}
	}
	return positions
}

// StrideCount returns how many of the indices start, start+stride, ... are below total.
func StrideCount(total, start, stride int) int {
	if stride <= 0 || start < 0 || start >= total {
		return 0
	}
	return util.CeilDiv(total-start, stride)
}

// Addressor closures

// An addressor that hands out the first count positions in order.
func SequentialAddressor(positions []int, count int) func() (int, error) {
	return StrideAddressor(positions[:util.Min(count, len(positions))], 0, 1)
}

// An addressor that hands out positions[start], positions[start+stride], ...
func StrideAddressor(positions []int, start, stride int) func() (int, error) {
	i, handed := start, 0
	return func() (int, error) {
		if stride <= 0 || i < 0 || i >= len(positions) {
			return -1, &EmptyPoolError{Handed: handed}
		}
		p := positions[i]
		i += stride
		handed++
		return p, nil
	}
}
