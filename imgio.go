package estegano

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // cover images may be JPEGs; output is always lossless
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

const bitsPerChannel uint8 = 8

// Types

// FmtInfo describes the sample layout of an Image.
type FmtInfo struct {
	Model          color.Model
	ChannelsPerPix uint8
	BitsPerChannel uint8
}

func (info FmtInfo) String() string {
	return fmt.Sprintf("{%v %d %d}", colourModelToStr(info.Model), info.ChannelsPerPix, info.BitsPerChannel)
}

var (
	grayFormat  = FmtInfo{color.GrayModel, 1, bitsPerChannel}
	rgbaFormat  = FmtInfo{color.RGBAModel, 4, bitsPerChannel}
	nrgbaFormat = FmtInfo{color.NRGBAModel, 4, bitsPerChannel}
)

// Image is a fully materialised 8-bit image. Pix holds every sample in
// row-major order with channels interleaved and no row padding, which is the
// order the hidden channel is laid out in.
type Image struct {
	W, H   int
	Format FmtInfo
	Pix    []uint8
}

// Primary methods

// FromImage copies img into a flat Image. Gray, RGBA and NRGBA images keep
// their layout. Other 8-bit models are converted: palettes of opaque greys
// to Gray, everything else to NRGBA. 16-bit models are rejected.
func FromImage(img image.Image) (*Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// Each colour model has to be handled individually
	switch simg := img.(type) {
	case *image.Gray:
		return &Image{w, h, grayFormat, flatten(simg.Pix[simg.PixOffset(b.Min.X, b.Min.Y):], simg.Stride, w, h, 1)}, nil
	case *image.RGBA:
		return &Image{w, h, rgbaFormat, flatten(simg.Pix[simg.PixOffset(b.Min.X, b.Min.Y):], simg.Stride, w, h, 4)}, nil
	case *image.NRGBA:
		return &Image{w, h, nrgbaFormat, flatten(simg.Pix[simg.PixOffset(b.Min.X, b.Min.Y):], simg.Stride, w, h, 4)}, nil
	case *image.Gray16, *image.Alpha16, *image.RGBA64, *image.NRGBA64:
		return nil, &UnsupportedImageError{Model: colourModelToStr(img.ColorModel())}
	case *image.Paletted:
		if isGrayPalette(simg.Palette) {
			gray := image.NewGray(image.Rect(0, 0, w, h))
			draw.Draw(gray, gray.Bounds(), simg, b.Min, draw.Src)
			return FromImage(gray)
		}
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return FromImage(nrgba)
}

// ToImage copies the samples back into a standard library image.
func (img *Image) ToImage() image.Image {
	r := image.Rect(0, 0, img.W, img.H)
	switch img.Format.Model {
	case color.GrayModel:
		simg := image.NewGray(r)
		copy(simg.Pix, img.Pix)
		return simg
	case color.RGBAModel:
		simg := image.NewRGBA(r)
		copy(simg.Pix, img.Pix)
		return simg
	default:
		simg := image.NewNRGBA(r)
		copy(simg.Pix, img.Pix)
		return simg
	}
}

// DecodeImage reads a PNG, BMP or JPEG image and returns it with the name of its format.
func DecodeImage(r io.Reader) (*Image, string, error) {
	decoded, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	img, err := FromImage(decoded)
	if err != nil {
		return nil, format, err
	}
	return img, format, nil
}

// LoadImage reads the image at imgPath.
func LoadImage(imgPath string) (*Image, error) {
	f, err := os.Open(imgPath)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", imgPath, err)
	}
	return img, nil
}

// Encode writes img losslessly as "png" or "bmp".
func (img *Image) Encode(w io.Writer, format string, level png.CompressionLevel) error {
	switch format {
	case "bmp":
		return bmp.Encode(w, img.ToImage())
	case "png":
		encoder := png.Encoder{CompressionLevel: level}
		return encoder.Encode(w, img.ToImage())
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteImage writes img to outPath as BMP when the name ends in .bmp and as
// PNG otherwise.
func WriteImage(img *Image, outPath string, level png.CompressionLevel) (err error) {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", outPath, cerr)
		}
	}()

	if err := img.Encode(f, formatForPath(outPath), level); err != nil {
		return fmt.Errorf("encoding %s: %w", outPath, err)
	}
	return nil
}

// IsLosslessPath reports whether outPath names a format that keeps every sample intact.
func IsLosslessPath(outPath string) bool {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".png", ".bmp":
		return true
	default:
		return false
	}
}

// Helper functions

func formatForPath(outPath string) string {
	if strings.EqualFold(filepath.Ext(outPath), ".bmp") {
		return "bmp"
	}
	return "png"
}

func flatten(pix []uint8, stride, w, h, channels int) []uint8 {
	rowLen := w * channels
	out := make([]uint8, rowLen*h)
	for y := 0; y < h; y++ {
		copy(out[y*rowLen:(y+1)*rowLen], pix[y*stride:y*stride+rowLen])
	}
	return out
}

func isGrayPalette(palette color.Palette) bool {
	for _, c := range palette {
		r, g, b, a := c.RGBA()
		if r != g || g != b || a != 0xffff {
			return false
		}
	}
	return true
}

func colourModelToStr(model color.Model) string {
	switch model {
	case color.Alpha16Model:
		return "Alpha16"
	case color.AlphaModel:
		return "Alpha"
	case color.CMYKModel:
		return "CMYK"
	case color.Gray16Model:
		return "Gray16"
	case color.GrayModel:
		return "Gray"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.NRGBAModel:
		return "NRGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.RGBAModel:
		return "RGBA"
	case color.NYCbCrAModel:
		return "NYCbCrA"
	case color.YCbCrModel:
		return "YCbCr"
	default:
		return "<Unknown>"
	}
}
