package output

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

var ErrBufferSize = errors.New("pixel buffer does not match image size")

func checkBuffer(pixels []byte, width, height int) error {
	if width <= 0 || height <= 0 || len(pixels) != width*height*3 {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrBufferSize, len(pixels), width, height)
	}
	return nil
}

// ToImage converts an RGB pixel buffer (row 0 at the top) to an opaque image
func ToImage(pixels []byte, width, height int) (*image.NRGBA, error) {
	if err := checkBuffer(pixels, width, height); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(pixels); i, j = i+3, j+4 {
		img.Pix[j] = pixels[i]
		img.Pix[j+1] = pixels[i+1]
		img.Pix[j+2] = pixels[i+2]
		img.Pix[j+3] = 255
	}
	return img, nil
}

// ToPixels converts any image back to an RGB pixel buffer
func ToPixels(img image.Image) []byte {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	pixels := make([]byte, 0, bounds.Dx()*bounds.Dy()*3)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		pixels = append(pixels, nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2])
	}
	return pixels
}

// Thumbnail scales img down to fit within maxSize x maxSize, keeping its aspect ratio.
// Images that already fit are returned unchanged.
func Thumbnail(img image.Image, maxSize uint) image.Image {
	return resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)
}

// Encode writes img to w in the named format: "ppm" or any format imaging
// supports ("png", "jpg", "gif", "tif", "bmp").
func Encode(w io.Writer, img image.Image, format string) error {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "ppm" {
		bounds := img.Bounds()
		return WritePPM(w, ToPixels(img), bounds.Dx(), bounds.Dy())
	}

	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("unsupported output format %q: %w", format, err)
	}
	return imaging.Encode(w, img, f, imaging.JPEGQuality(95))
}

// Save writes img to path, choosing the format from the file extension
func Save(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if ext == "" {
		return fmt.Errorf("output path %q has no file extension", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Encode(f, img, ext); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ContentType returns the MIME type for an output format
func ContentType(format string) string {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tif", "tiff":
		return "image/tiff"
	case "ppm":
		return "image/x-portable-pixmap"
	default:
		return "application/octet-stream"
	}
}
