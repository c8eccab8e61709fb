package conditioner

import "image"

const (
	// lineKernelLen is the long side of the elongated structuring elements.
	// Glyph strokes are far shorter than 40px at typical capture resolution,
	// so only printed rule lines survive the opening.
	lineKernelLen      = 40
	lineOpenIterations = 2
)

// RemoveLines erases printed ledger rule lines from a binarized image. The
// image is inverted so ink is white, long horizontal and vertical runs are
// extracted independently by morphological opening with elongated kernels,
// the merged line mask is subtracted, and the result re-inverted.
func RemoveLines(bin *image.Gray) *image.Gray {
	inv := invert(bin)
	horizontal := open(inv, lineKernelLen, 1, lineOpenIterations)
	vertical := open(inv, 1, lineKernelLen, lineOpenIterations)

	dst := image.NewGray(image.Rect(0, 0, bin.Bounds().Dx(), bin.Bounds().Dy()))
	for i := range dst.Pix {
		mask := horizontal.Pix[i]
		if vertical.Pix[i] > mask {
			mask = vertical.Pix[i]
		}
		clean := inv.Pix[i]
		if mask >= clean {
			clean = 0
		} else {
			clean -= mask
		}
		dst.Pix[i] = 255 - clean
	}
	return dst
}

func invert(img *image.Gray) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Pix[y*dst.Stride+x] = 255 - img.Pix[y*img.Stride+x]
		}
	}
	return dst
}

// open applies iterated erosion followed by iterated dilation with a
// kw x kh rectangular structuring element.
func open(img *image.Gray, kw, kh, iterations int) *image.Gray {
	out := img
	for i := 0; i < iterations; i++ {
		out = morph(out, kw, kh, true)
	}
	for i := 0; i < iterations; i++ {
		out = morph(out, kw, kh, false)
	}
	return out
}

// morph erodes (min) or dilates (max) with a centered rectangular kernel,
// replicating edges at the borders.
func morph(img *image.Gray, kw, kh int, erode bool) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rx, ry := kw/2, kh/2
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc uint8
			if erode {
				acc = 255
			}
			for dy := -ry; dy <= kh-1-ry; dy++ {
				sy := clamp(y+dy, 0, h-1)
				for dx := -rx; dx <= kw-1-rx; dx++ {
					v := img.Pix[sy*img.Stride+clamp(x+dx, 0, w-1)]
					if erode {
						if v < acc {
							acc = v
						}
					} else if v > acc {
						acc = v
					}
				}
			}
			dst.Pix[y*dst.Stride+x] = acc
		}
	}
	return dst
}
