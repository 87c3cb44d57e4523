package estegano

import (
	"errors"
	"log/slog"

	"github.com/zedseven/estegano/internal/archive"
	"github.com/zedseven/estegano/internal/channel"
	"github.com/zedseven/estegano/internal/cipherlayer"
	"github.com/zedseven/estegano/internal/sizeprefix"
)

// Types

// DigConfig stores the configuration options for the Dig operation.
type DigConfig struct {
	ImagePath string       // The path on disk to a supported image.
	OutPath   string       // The directory to unpack the hidden files into. Defaults to ".".
	Password  []byte       // The password used when hiding, or nil for none.
	Logger    *slog.Logger // Receives progress output. nil discards it.
}

// Primary methods

// Unhide recovers the archive hidden in img. Every failure to find valid
// hidden data, including a wrong password, is reported as
// ErrAuthenticationFailed.
func Unhide(img *Image, password []byte) ([]byte, error) {
	if img == nil {
		return nil, &InvalidFormatError{"The image is nil."}
	}

	plaintext, err := cipherlayer.Open(channel.Extract(img.Pix), password)
	if err != nil {
		return nil, err
	}
	return sizeprefix.Strip(plaintext)
}

// Dig extracts the files hidden in the image at config.ImagePath into config.OutPath.
func Dig(config DigConfig) error {
	// Input validation
	if len(config.ImagePath) <= 0 {
		return &InvalidFormatError{"ImagePath is empty."}
	}
	if len(config.OutPath) <= 0 {
		config.OutPath = "."
	}
	logger := loggerOr(config.Logger)

	logger.Debug("loading image", "path", config.ImagePath)
	img, err := LoadImage(config.ImagePath)
	if err != nil {
		return err
	}
	logger.Debug("image info", "width", img.W, "height", img.H, "format", img.Format)

	data, err := Unhide(img, config.Password)
	if errors.Is(err, ErrAuthenticationFailed) {
		return &HiddenDataError{}
	}
	if err != nil {
		return err
	}
	logger.Info("recovered hidden data", "bytes", len(data))

	names, err := archive.List(data)
	if err != nil {
		return err
	}
	for _, name := range names {
		logger.Debug("unpacking", "entry", name)
	}
	if err := archive.Unpack(data, config.OutPath); err != nil {
		return err
	}
	logger.Info("unpacked files", "count", len(names), "path", config.OutPath)
	return nil
}
