package conditioner

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

const (
	// sobelThreshold selects gradient magnitudes strong enough to count as
	// edges when voting for skew lines.
	sobelThreshold = 600
	// houghVotes is the minimum accumulator count for a (rho, theta) cell to
	// be treated as a dominant line.
	houghVotes = 200
	// minSkewDegrees is the rotation threshold below which deskew is skipped
	// to avoid amplifying detector noise on already-straight images.
	minSkewDegrees = 0.5
)

// Deskew estimates the dominant skew angle from ruled and text baselines and
// rotates the image about its center to cancel it. When no dominant lines
// are found, or the median deviation is below half a degree, the input is
// returned unchanged.
func Deskew(img *image.Gray) *image.Gray {
	angle, ok := skewAngle(img)
	if !ok || math.Abs(angle) < minSkewDegrees {
		return img
	}
	return rotate(img, -angle)
}

// skewAngle runs a Hough transform over the edge map and reports the median
// deviation of dominant lines from the horizontal/vertical reference, folded
// into [-45, 45] degrees.
func skewAngle(img *image.Gray) (float64, bool) {
	edges := sobelEdges(img)
	if len(edges) == 0 {
		return 0, false
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	diag := int(math.Ceil(math.Hypot(float64(w), float64(h))))

	// Accumulator indexed by [theta][rho+diag], 1 degree by 1 pixel bins.
	acc := make([][]int32, 180)
	for t := range acc {
		acc[t] = make([]int32, 2*diag+1)
	}
	sins := make([]float64, 180)
	coss := make([]float64, 180)
	for t := 0; t < 180; t++ {
		rad := float64(t) * math.Pi / 180
		sins[t], coss[t] = math.Sincos(rad)
	}
	for _, p := range edges {
		for t := 0; t < 180; t++ {
			rho := int(math.Round(float64(p.X)*coss[t]+float64(p.Y)*sins[t])) + diag
			acc[t][rho]++
		}
	}

	var deviations []float64
	for t := 0; t < 180; t++ {
		for _, votes := range acc[t] {
			if votes < houghVotes {
				continue
			}
			dev := float64(t) - 90
			for dev > 45 {
				dev -= 90
			}
			for dev < -45 {
				dev += 90
			}
			deviations = append(deviations, dev)
		}
	}
	if len(deviations) == 0 {
		return 0, false
	}
	sort.Float64s(deviations)
	mid := len(deviations) / 2
	if len(deviations)%2 == 0 {
		return (deviations[mid-1] + deviations[mid]) / 2, true
	}
	return deviations[mid], true
}

// sobelEdges returns the pixels whose Sobel gradient magnitude exceeds the
// edge threshold.
func sobelEdges(img *image.Gray) []image.Point {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var edges []image.Point
	at := func(x, y int) int {
		return int(img.Pix[y*img.Stride+x])
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy >= sobelThreshold {
				edges = append(edges, image.Point{X: x, Y: y})
			}
		}
	}
	return edges
}

// rotate turns the image by the given angle (degrees, counter-clockwise)
// about its center. Border pixels are replicated so rotation never
// introduces black-fill artifacts.
func rotate(src *image.Gray, degrees float64) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	rad := degrees * math.Pi / 180
	diag := math.Hypot(float64(w), float64(h))
	pad := int(math.Ceil(diag*math.Abs(math.Sin(rad/2)))) + 2

	padded := replicatePad(src, pad)
	dst := image.NewGray(image.Rect(0, 0, w, h))
	sin, cos := math.Sincos(rad)
	cx, cy := float64(w)/2, float64(h)/2
	fp := float64(pad)
	// Affine map from padded-source coordinates to destination coordinates:
	// rotate about the padded center, then shift back to the unpadded frame.
	m := f64.Aff3{
		cos, -sin, cx - cos*(cx+fp) + sin*(cy+fp),
		sin, cos, cy - sin*(cx+fp) - cos*(cy+fp),
	}
	draw.BiLinear.Transform(dst, m, padded, padded.Bounds(), draw.Src, nil)
	return dst
}

// replicatePad surrounds the image with pad pixels of clamped edge values.
func replicatePad(src *image.Gray, pad int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w+2*pad, h+2*pad))
	for y := 0; y < h+2*pad; y++ {
		sy := clamp(y-pad, 0, h-1)
		row := dst.Pix[y*dst.Stride:]
		srow := src.Pix[sy*src.Stride:]
		for x := 0; x < w+2*pad; x++ {
			row[x] = srow[clamp(x-pad, 0, w-1)]
		}
	}
	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
