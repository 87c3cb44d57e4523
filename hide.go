package estegano

import (
	"crypto/rand"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/zedseven/estegano/internal/algos"
	"github.com/zedseven/estegano/internal/archive"
	"github.com/zedseven/estegano/internal/channel"
	"github.com/zedseven/estegano/internal/cipherlayer"
	"github.com/zedseven/estegano/internal/sizeprefix"
)

// Types

// HideReport describes the channel chosen for a hide operation.
type HideReport struct {
	// UsableBits is the number of usable samples after the stride header.
	UsableBits int
	// EnvelopeBase is the minimum envelope size in bytes.
	EnvelopeBase int
	// Stride is the number of usable samples per hidden bit.
	Stride int
	// ChannelBytes is the size of the envelope actually written.
	ChannelBytes int
}

// Conspicuous reports whether the stride is low enough for the hidden data to
// be statistically detectable.
func (r HideReport) Conspicuous() bool {
	return r.Stride < channel.ConspicuousStride
}

// HideConfig stores the configuration options for the HideFile operation.
type HideConfig struct {
	// ImagePath is the path on disk to a supported image.
	ImagePath string
	// FilePath is the path on disk to the file or directory to hide.
	FilePath string
	// OutPath is the path on disk to write the output image. Defaults to ImagePath.
	OutPath string
	// Password encrypts the hidden data. nil hides the data without one.
	Password []byte
	// Compression is the flate level used to pack FilePath.
	Compression int
	// PNGCompression is used when the output is a PNG.
	PNGCompression png.CompressionLevel
	// Logger receives progress output. nil discards it.
	Logger *slog.Logger
}

// Primary methods

// Hide hides archive in img and returns the modified image. The input image
// is not modified. The returned report describes the channel that was used.
func Hide(img *Image, archive []byte, password []byte) (*Image, HideReport, error) {
	return hide(img, archive, password, rand.Reader)
}

func hide(img *Image, archive []byte, password []byte, rng io.Reader) (*Image, HideReport, error) {
	if img == nil {
		return nil, HideReport{}, &InvalidFormatError{"The image is nil."}
	}

	prefixed := sizeprefix.Prefix(archive)
	maskCount := len(algos.UsablePositions(img.Pix, algos.InjectUpperBound))
	plan, err := channel.NewPlan(maskCount, len(prefixed)+cipherlayer.Overhead(password))
	if err != nil {
		return nil, HideReport{}, err
	}
	report := HideReport(plan)

	envelope, err := cipherlayer.Seal(prefixed, plan.ChannelBytes, password, rng)
	if err != nil {
		return nil, report, err
	}

	pix := make([]uint8, len(img.Pix))
	copy(pix, img.Pix)
	pix, err = channel.Inject(pix, envelope, plan.Stride, rng)
	if err != nil {
		return nil, report, err
	}

	return &Image{W: img.W, H: img.H, Format: img.Format, Pix: pix}, report, nil
}

// HideFile packs the file or directory at config.FilePath, hides it in the
// image at config.ImagePath and writes the result to config.OutPath.
func HideFile(config HideConfig) (HideReport, error) {
	// Input validation
	if len(config.ImagePath) <= 0 {
		return HideReport{}, &InvalidFormatError{"ImagePath is empty."}
	}
	if len(config.FilePath) <= 0 {
		return HideReport{}, &InvalidFormatError{"FilePath is empty."}
	}
	if len(config.OutPath) <= 0 {
		config.OutPath = config.ImagePath
	}
	logger := loggerOr(config.Logger)

	logger.Debug("loading image", "path", config.ImagePath)
	img, err := LoadImage(config.ImagePath)
	if err != nil {
		return HideReport{}, err
	}
	logger.Debug("image info", "width", img.W, "height", img.H, "format", img.Format)

	logger.Debug("packing data", "path", config.FilePath, "level", config.Compression)
	data, err := archive.Pack(config.FilePath, config.Compression)
	if err != nil {
		return HideReport{}, err
	}
	logger.Info("packed data", "path", config.FilePath, "bytes", len(data))

	out, report, err := Hide(img, data, config.Password)
	if err != nil {
		return report, err
	}
	logger.Info("hid data",
		"stride", report.Stride,
		"channel_bytes", report.ChannelBytes,
		"usable_bits", report.UsableBits,
		"encrypted", config.Password != nil)
	if report.Conspicuous() {
		logger.Warn(fmt.Sprintf("the stride is below %d, so the hidden data is statistically noticeable; hide less data or use a larger image",
			channel.ConspicuousStride), "stride", report.Stride)
	}

	if !IsLosslessPath(config.OutPath) {
		logger.Warn("the output name does not end in .png or .bmp; writing PNG data anyway", "path", config.OutPath)
	}
	if err := WriteImage(out, config.OutPath, config.PNGCompression); err != nil {
		return report, err
	}
	logger.Info("wrote image", "path", config.OutPath)

	if config.OutPath != config.ImagePath {
		if _, err := os.Stat(config.ImagePath); err == nil {
			logger.Warn("the original image is still next to the output; comparing the two reveals the hidden data",
				"original", config.ImagePath)
		}
	}
	return report, nil
}
