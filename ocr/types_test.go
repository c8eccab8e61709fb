package ocr

import (
	"context"
	"image"
	"reflect"
	"testing"
)

func TestQuadBounds(t *testing.T) {
	q := Quad{{10, 5}, {40, 6}, {41, 20}, {9, 19}}
	got := q.Bounds()
	want := image.Rect(9, 5, 42, 21)
	if got != want {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}
	if q.IsEmpty() {
		t.Fatalf("non-degenerate quad reported empty")
	}
	if !(Quad{{3, 3}, {3, 3}, {3, 3}, {3, 3}}).IsEmpty() {
		t.Fatalf("point quad must be empty")
	}
}

func TestQuadFromRectRoundTrip(t *testing.T) {
	r := image.Rect(2, 3, 20, 15)
	if got := QuadFromRect(r).Bounds(); got != r {
		t.Fatalf("round trip = %v, want %v", got, r)
	}
}

type scriptedRecognizer struct {
	results []Recognition
	batched bool
	calls   int
}

func (s *scriptedRecognizer) Name() string { return "scripted" }

func (s *scriptedRecognizer) Recognize(_ context.Context, _ image.Image) (Recognition, error) {
	res := s.results[s.calls]
	s.calls++
	return res, nil
}

type scriptedBatch struct{ scriptedRecognizer }

func (s *scriptedBatch) RecognizeBatch(_ context.Context, crops []image.Image) ([]Recognition, error) {
	s.batched = true
	return s.results[:len(crops)], nil
}

func TestRecognizeAllSequential(t *testing.T) {
	eng := &scriptedRecognizer{results: []Recognition{{Text: "a"}, {Text: "b"}}}
	crops := []image.Image{image.NewGray(image.Rect(0, 0, 1, 1)), image.NewGray(image.Rect(0, 0, 1, 1))}
	got, err := RecognizeAll(context.Background(), eng, crops)
	if err != nil {
		t.Fatalf("RecognizeAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, eng.results) {
		t.Fatalf("results = %+v", got)
	}
}

func TestRecognizeAllPrefersBatch(t *testing.T) {
	eng := &scriptedBatch{scriptedRecognizer{results: []Recognition{{Text: "a"}}}}
	crops := []image.Image{image.NewGray(image.Rect(0, 0, 1, 1))}
	if _, err := RecognizeAll(context.Background(), eng, crops); err != nil {
		t.Fatalf("RecognizeAll() error = %v", err)
	}
	if !eng.batched {
		t.Fatalf("batch-capable engine was called sequentially")
	}
}

func TestRecognizeAllCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eng := &scriptedRecognizer{results: []Recognition{{Text: "a"}}}
	crops := []image.Image{image.NewGray(image.Rect(0, 0, 1, 1))}
	if _, err := RecognizeAll(ctx, eng, crops); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestRegistryUnknownBackend(t *testing.T) {
	if _, err := NewRecognizer("nope", Config{}); err == nil {
		t.Fatalf("expected error for unknown recognizer")
	}
	if _, err := NewDetector("nope", Config{}); err == nil {
		t.Fatalf("expected error for unknown detector")
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	RegisterRecognizer("test-engine", func(Config) (Recognizer, error) {
		return &scriptedRecognizer{}, nil
	})
	eng, err := NewRecognizer("test-engine", Config{})
	if err != nil {
		t.Fatalf("NewRecognizer() error = %v", err)
	}
	if eng.Name() != "scripted" {
		t.Fatalf("unexpected engine %q", eng.Name())
	}
}

func TestDefaultRecognizerSwap(t *testing.T) {
	orig := DefaultRecognizer()
	defer SetDefaultRecognizer(orig)
	eng := &scriptedRecognizer{}
	SetDefaultRecognizer(eng)
	if DefaultRecognizer() != Recognizer(eng) {
		t.Fatalf("default recognizer not swapped")
	}
}
