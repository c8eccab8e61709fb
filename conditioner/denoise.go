package conditioner

import (
	"image"
	"math"
)

const (
	bilateralDiameter   = 9
	bilateralSigmaColor = 75.0
	bilateralSigmaSpace = 75.0
)

// Denoise applies an edge-preserving bilateral filter: sensor noise is
// smoothed away while character strokes, which sit across strong intensity
// edges, are left sharp.
func Denoise(img *image.Gray) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	radius := bilateralDiameter / 2

	// Spatial weights depend only on the window offset; color weights only
	// on the intensity difference. Both are precomputed.
	size := 2*radius + 1
	spatial := make([]float64, size*size)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*size+(dx+radius)] = math.Exp(-d2 / (2 * bilateralSigmaSpace * bilateralSigmaSpace))
		}
	}
	var colorW [256]float64
	for d := 0; d < 256; d++ {
		colorW[d] = math.Exp(-float64(d*d) / (2 * bilateralSigmaColor * bilateralSigmaColor))
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := img.Pix[y*img.Stride+x]
			var sum, norm float64
			for dy := -radius; dy <= radius; dy++ {
				sy := clamp(y+dy, 0, h-1)
				for dx := -radius; dx <= radius; dx++ {
					sx := clamp(x+dx, 0, w-1)
					v := img.Pix[sy*img.Stride+sx]
					diff := int(v) - int(center)
					if diff < 0 {
						diff = -diff
					}
					wgt := spatial[(dy+radius)*size+(dx+radius)] * colorW[diff]
					sum += wgt * float64(v)
					norm += wgt
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8(math.Round(sum / norm))
		}
	}
	return dst
}
