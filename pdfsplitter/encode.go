package pdfsplitter

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// Output formats accepted by Encode
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// EncodeJPEG writes img as JPEG at the quality the compression level maps to
func EncodeJPEG(w io.Writer, img image.Image, compression CompressionLevel) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(compression.Quality()))
}

// Encode writes img as jpeg or png. compression only applies to jpeg.
func Encode(w io.Writer, img image.Image, format string, compression CompressionLevel) error {
	switch strings.ToLower(format) {
	case "", FormatJPEG, "jpg":
		return EncodeJPEG(w, img, compression)
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// saveJPEG creates or overwrites path
func saveJPEG(path string, img image.Image, compression CompressionLevel) error {
	return imaging.Save(img, path, imaging.JPEGQuality(compression.Quality()))
}
