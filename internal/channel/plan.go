package channel

import (
	"errors"
	"fmt"

	"github.com/zedseven/estegano/internal/util"
)

const (
	bitsPerByte = 8
	// HeaderBits is the number of usable samples holding the stride header.
	HeaderBits = 8
	// MaxStride is the largest stride the 8-bit header can describe.
	MaxStride = 256
	// ConspicuousStride is the stride below which the density of changed
	// samples makes hidden data statistically noticeable.
	ConspicuousStride = 12
)

// ErrImageTooSmall is returned when an image cannot fit even one copy of the envelope.
var ErrImageTooSmall = errors.New("image too small for the payload")

// InsufficientHidingSpotsError describes a failed capacity plan. It matches
// ErrImageTooSmall with errors.Is.
type InsufficientHidingSpotsError struct {
	UsableBits   int
	RequiredBits int
}

func (e *InsufficientHidingSpotsError) Error() string {
	return fmt.Sprintf("There is not enough space available to store the payload within the image: %d usable bits, %d required.",
		e.UsableBits, e.RequiredBits)
}

func (e *InsufficientHidingSpotsError) Is(target error) bool {
	return target == ErrImageTooSmall
}

// Plan is the outcome of capacity planning for one hide operation.
type Plan struct {
	// UsableBits is the number of usable samples left after the header.
	UsableBits int
	// EnvelopeBase is the size-prefixed payload plus the envelope overhead, in bytes.
	EnvelopeBase int
	// Stride is the number of usable samples per payload bit.
	Stride int
	// ChannelBytes is the exact envelope size that fills the channel.
	ChannelBytes int
}

// NewPlan computes the largest stride at which an envelope of envelopeBase
// bytes fits into an image with maskCount usable samples.
func NewPlan(maskCount, envelopeBase int) (Plan, error) {
	usable := maskCount - HeaderBits
	required := envelopeBase * bitsPerByte
	if envelopeBase <= 0 || usable < required {
		return Plan{}, &InsufficientHidingSpotsError{UsableBits: util.Max(usable, 0), RequiredBits: required}
	}

	stride := util.Min(MaxStride, usable/required)
	return Plan{
		UsableBits:   usable,
		EnvelopeBase: envelopeBase,
		Stride:       stride,
		ChannelBytes: usable / stride / bitsPerByte,
	}, nil
}

// Conspicuous reports whether the stride is low enough to be detectable.
func (p Plan) Conspicuous() bool {
	return p.Stride < ConspicuousStride
}
