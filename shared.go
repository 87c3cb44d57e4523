package estegano

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/zedseven/estegano/internal/channel"
	"github.com/zedseven/estegano/internal/cipherlayer"
	"github.com/zedseven/estegano/internal/sizeprefix"
)

const (
	VersionMax uint8 = 1
	VersionMid uint8 = 0
	VersionMin uint8 = 0
)

// Error values

var (
	// ErrImageTooSmall means the image cannot hold even one copy of the envelope.
	ErrImageTooSmall = channel.ErrImageTooSmall
	// ErrPayloadTooLarge means the envelope padding would have been negative.
	ErrPayloadTooLarge = cipherlayer.ErrPayloadTooLarge
	// ErrAuthenticationFailed covers "nothing hidden", "wrong password" and
	// "corrupted image" without telling them apart.
	ErrAuthenticationFailed = cipherlayer.ErrAuthenticationFailed
	// ErrTruncatedHeader means the size prefix of the hidden data is incomplete.
	ErrTruncatedHeader = sizeprefix.ErrTruncatedHeader
)

// InsufficientHidingSpotsError is returned by Hide when the capacity plan
// fails. It matches ErrImageTooSmall.
type InsufficientHidingSpotsError = channel.InsufficientHidingSpotsError

// Error types

type InvalidFormatError struct {
	ErrorDesc string
}

func (e InvalidFormatError) Error() string {
	if len(e.ErrorDesc) > 0 {
		return e.ErrorDesc
	}
	return "The provided data is of an invalid format."
}

// UnsupportedImageError is returned for images whose samples are not 8 bits wide.
type UnsupportedImageError struct {
	Model string
}

func (e *UnsupportedImageError) Error() string {
	return fmt.Sprintf("The %v colour model is not supported: only 8-bit channels can hide data.", e.Model)
}

// HiddenDataError is the single failure Dig reports when an image yields no
// hidden data. It matches ErrAuthenticationFailed.
type HiddenDataError struct{}

func (e *HiddenDataError) Error() string {
	return "Cannot extract hidden data: the image hides nothing, the password is wrong, or the hidden data was corrupted."
}

func (e *HiddenDataError) Is(target error) bool {
	return target == ErrAuthenticationFailed
}

// Library methods

func Version() string {
	return fmt.Sprintf("%d.%d.%d", VersionMax, VersionMid, VersionMin)
}

// Shared methods

func loggerOr(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
