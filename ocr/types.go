package ocr

import (
	"context"
	"image"
)

// Quad describes a detected text region as four corner points in image
// coordinates, ordered clockwise starting from the top-left corner.
type Quad [4]image.Point

// Bounds returns the axis-aligned bounding rectangle enclosing the quad.
func (q Quad) Bounds() image.Rectangle {
	r := image.Rectangle{Min: q[0], Max: q[0]}
	for _, p := range q[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	// Max is exclusive in image.Rectangle terms.
	r.Max.X++
	r.Max.Y++
	return r
}

// IsEmpty reports whether the quad collapses to a degenerate region.
func (q Quad) IsEmpty() bool {
	b := q.Bounds()
	return b.Dx() <= 1 || b.Dy() <= 1
}

// QuadFromRect builds an axis-aligned quad from a rectangle.
func QuadFromRect(r image.Rectangle) Quad {
	return Quad{
		{r.Min.X, r.Min.Y},
		{r.Max.X - 1, r.Min.Y},
		{r.Max.X - 1, r.Max.Y - 1},
		{r.Min.X, r.Max.Y - 1},
	}
}

// Token is a single recognized text region: the raw string produced by a
// recognition engine, its confidence in [0,1], and the region it was read
// from. Tokens are immutable once produced.
type Token struct {
	Text       string
	Confidence float64
	Box        Quad
}

// Recognition captures the output of a recognition engine for one crop.
type Recognition struct {
	Text       string
	Confidence float64
}

// Detector locates text regions in a conditioned page image. Implementations
// must return quads ordered top-to-bottom, then left-to-right.
type Detector interface {
	Name() string
	Detect(ctx context.Context, img image.Image) ([]Quad, error)
}

// Recognizer reads the text content of a single cropped region.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, crop image.Image) (Recognition, error)
}

// BatchRecognizer handles multiple crops in a single call, enabling providers
// that amortize setup costs or remote round-trips. Results are returned in
// input order.
type BatchRecognizer interface {
	Recognizer
	RecognizeBatch(ctx context.Context, crops []image.Image) ([]Recognition, error)
}

// RecognizeAll runs recognition over an ordered sequence of crops. If the
// engine supports batch operation it is used; otherwise calls execute
// sequentially with cancellation checked between crops.
func RecognizeAll(ctx context.Context, engine Recognizer, crops []image.Image) ([]Recognition, error) {
	if b, ok := engine.(BatchRecognizer); ok {
		return b.RecognizeBatch(ctx, crops)
	}
	results := make([]Recognition, 0, len(crops))
	for _, crop := range crops {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		res, err := engine.Recognize(ctx, crop)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
