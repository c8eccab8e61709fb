package conditioner

import "image"

// Binarize thresholds the image into strict black and white using Otsu's
// method: the global threshold maximizing between-class variance over the
// intensity histogram. A degenerate histogram (single intensity level)
// leaves the image unchanged.
func Binarize(img *image.Gray) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[img.Pix[y*img.Stride+x]]++
		}
	}

	total := w * h
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * float64(c)
	}

	var (
		sumBG     float64
		weightBG  int
		bestVar   float64
		threshold = -1
	)
	for t := 0; t < 256; t++ {
		weightBG += hist[t]
		if weightBG == 0 {
			continue
		}
		weightFG := total - weightBG
		if weightFG == 0 {
			break
		}
		sumBG += float64(t) * float64(hist[t])
		meanBG := sumBG / float64(weightBG)
		meanFG := (sumAll - sumBG) / float64(weightFG)
		diff := meanBG - meanFG
		between := float64(weightBG) * float64(weightFG) * diff * diff
		if between > bestVar {
			bestVar = between
			threshold = t
		}
	}
	if threshold < 0 {
		return img
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.Pix[y*img.Stride+x] > uint8(threshold) {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}
