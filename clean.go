package estegano

import (
	"crypto/rand"
	"image/png"
	"io"
	"log/slog"

	"github.com/zedseven/estegano/internal/channel"
)

// Types

// CleanConfig stores the configuration options for the CleanFile operation.
type CleanConfig struct {
	ImagePath      string              // The path on disk to a supported image.
	OutPath        string              // The path on disk to write the cleaned image. Defaults to ImagePath.
	PNGCompression png.CompressionLevel // Used when the output is a PNG.
	Logger         *slog.Logger        // Receives progress output. nil discards it.
}

// Primary methods

// Clean erases hidden data from img and returns a new image. No password is
// needed: the channel is scrambled, not decrypted. Each sample differs from
// its value in img by at most one.
func Clean(img *Image) (*Image, error) {
	return clean(img, rand.Reader)
}

func clean(img *Image, rng io.Reader) (*Image, error) {
	if img == nil {
		return nil, &InvalidFormatError{"The image is nil."}
	}

	pix := make([]uint8, len(img.Pix))
	copy(pix, img.Pix)
	pix, err := channel.Clean(pix, rng)
	if err != nil {
		return nil, err
	}
	return &Image{W: img.W, H: img.H, Format: img.Format, Pix: pix}, nil
}

// CleanFile erases hidden data from the image at config.ImagePath and writes
// the result to config.OutPath.
func CleanFile(config CleanConfig) error {
	// Input validation
	if len(config.ImagePath) <= 0 {
		return &InvalidFormatError{"ImagePath is empty."}
	}
	if len(config.OutPath) <= 0 {
		config.OutPath = config.ImagePath
	}
	logger := loggerOr(config.Logger)

	logger.Debug("loading image", "path", config.ImagePath)
	img, err := LoadImage(config.ImagePath)
	if err != nil {
		return err
	}

	if stride, ok := channel.ReadStride(img.Pix); ok {
		logger.Debug("scrambling channel", "stride", stride)
	}
	out, err := Clean(img)
	if err != nil {
		return err
	}

	if !IsLosslessPath(config.OutPath) {
		logger.Warn("the output name does not end in .png or .bmp; writing PNG data anyway", "path", config.OutPath)
	}
	if err := WriteImage(out, config.OutPath, config.PNGCompression); err != nil {
		return err
	}
	logger.Info("cleaned image", "path", config.OutPath)
	return nil
}
