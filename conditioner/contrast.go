package conditioner

import (
	"image"
	"math"
)

const (
	claheClipLimit = 2.0
	claheTileGrid  = 8
)

// EnhanceContrast applies contrast-limited adaptive histogram equalization
// over an 8x8 tile grid, compensating for uneven lighting across the page
// without blowing out locally uniform regions.
func EnhanceContrast(img *image.Gray) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tileW := (w + claheTileGrid - 1) / claheTileGrid
	tileH := (h + claheTileGrid - 1) / claheTileGrid
	if tileW == 0 || tileH == 0 {
		return img
	}
	// Small images occupy fewer tiles than the nominal grid; interpolation
	// indices clamp to the populated range.
	tilesX := (w + tileW - 1) / tileW
	tilesY := (h + tileH - 1) / tileH

	// Per-tile equalization lookup tables built from clipped histograms.
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := clamp(x0+tileW, 0, w), clamp(y0+tileH, 0, h)
			luts[ty*tilesX+tx] = tileLUT(img, x0, y0, x1, y1)
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		// Position relative to tile centers drives bilinear blending of the
		// four surrounding tile LUTs.
		fy := (float64(y) - float64(tileH)/2) / float64(tileH)
		ty0 := clamp(int(math.Floor(fy)), 0, tilesY-1)
		ty1 := clamp(ty0+1, 0, tilesY-1)
		wy := fy - math.Floor(fy)
		if fy < 0 {
			ty0, ty1, wy = 0, 0, 0
		}
		for x := 0; x < w; x++ {
			fx := (float64(x) - float64(tileW)/2) / float64(tileW)
			tx0 := clamp(int(math.Floor(fx)), 0, tilesX-1)
			tx1 := clamp(tx0+1, 0, tilesX-1)
			wx := fx - math.Floor(fx)
			if fx < 0 {
				tx0, tx1, wx = 0, 0, 0
			}
			v := img.Pix[y*img.Stride+x]
			tl := float64(luts[ty0*tilesX+tx0][v])
			tr := float64(luts[ty0*tilesX+tx1][v])
			bl := float64(luts[ty1*tilesX+tx0][v])
			br := float64(luts[ty1*tilesX+tx1][v])
			top := tl + (tr-tl)*wx
			bot := bl + (br-bl)*wx
			dst.Pix[y*dst.Stride+x] = uint8(math.Round(top + (bot-top)*wy))
		}
	}
	return dst
}

// tileLUT builds the clipped, redistributed equalization table for one tile.
func tileLUT(img *image.Gray, x0, y0, x1, y1 int) [256]uint8 {
	var hist [256]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[img.Pix[y*img.Stride+x]]++
		}
	}
	pixels := (x1 - x0) * (y1 - y0)
	var lut [256]uint8
	if pixels == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	// Clip histogram bins at the contrast limit and spread the excess evenly.
	limit := int(claheClipLimit * float64(pixels) / 256)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i, c := range hist {
		if c > limit {
			excess += c - limit
			hist[i] = limit
		}
	}
	share := excess / 256
	rem := excess % 256
	for i := range hist {
		hist[i] += share
		if i < rem {
			hist[i]++
		}
	}

	cdf := 0
	for i, c := range hist {
		cdf += c
		lut[i] = uint8(math.Round(255 * float64(cdf) / float64(pixels)))
	}
	return lut
}
