package conditioner

// Package conditioner prepares photographed ledger pages for text detection.
// Condition applies a fixed sequence of deterministic transforms: grayscale
// reduction, deskew, edge-preserving denoise, adaptive contrast, Otsu
// binarization, and ruled-line removal. Every stage preserves the spatial
// dimensions of its input, and a stage that cannot improve the image (for
// example, deskew when no dominant lines are found) degrades to a no-op
// rather than failing the run.

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

const (
	// maxDimension caps width/height to avoid excessive allocations when a
	// caller hands us an absurdly large or corrupted frame.
	maxDimension = 16384
	// maxPixels bounds the total pixel count (64MP keeps grayscale scratch
	// buffers comfortably under memory limits).
	maxPixels int64 = 64 * 1024 * 1024
)

var errEmptyImage = errors.New("conditioner: empty image")

func validateBounds(b image.Rectangle) error {
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return errEmptyImage
	}
	if w > maxDimension || h > maxDimension {
		return fmt.Errorf("conditioner: image dimension exceeds limit (%d x %d)", w, h)
	}
	if int64(w)*int64(h) > maxPixels {
		return fmt.Errorf("conditioner: image pixel count %d exceeds limit %d", int64(w)*int64(h), maxPixels)
	}
	return nil
}

// Condition runs the full preprocessing pipeline over a ledger photo and
// returns a binarized image of identical spatial dimensions with printed
// rule lines removed. The input image is never modified.
func Condition(img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, errEmptyImage
	}
	if err := validateBounds(img.Bounds()); err != nil {
		return nil, err
	}
	gray := Grayscale(img)
	deskewed := Deskew(gray)
	denoised := Denoise(deskewed)
	enhanced := EnhanceContrast(denoised)
	binary := Binarize(enhanced)
	return RemoveLines(binary), nil
}

// Grayscale reduces an image to single-channel luminance. Images that are
// already grayscale are returned as-is.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
