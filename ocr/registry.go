package ocr

import (
	"context"
	"fmt"
	"image"
	"sort"
)

// RecognizerFactory constructs a recognition engine from a Config.
type RecognizerFactory func(cfg Config) (Recognizer, error)

// DetectorFactory constructs a detection engine from a Config.
type DetectorFactory func(cfg Config) (Detector, error)

var (
	recognizers = make(map[string]RecognizerFactory)
	detectors   = make(map[string]DetectorFactory)
)

// RegisterRecognizer makes a recognition backend available under the given
// name. Backends call this from init so that importing a backend package is
// enough to enable it.
func RegisterRecognizer(name string, factory RecognizerFactory) {
	recognizers[name] = factory
}

// RegisterDetector makes a detection backend available under the given name.
func RegisterDetector(name string, factory DetectorFactory) {
	detectors[name] = factory
}

// NewRecognizer constructs the recognition backend registered under name.
// Unknown names are a constructor error listing the available backends.
func NewRecognizer(name string, cfg Config) (Recognizer, error) {
	factory, ok := recognizers[name]
	if !ok {
		return nil, fmt.Errorf("unknown recognizer %q (available: %v)", name, registered(recognizers))
	}
	return factory(cfg)
}

// NewDetector constructs the detection backend registered under name.
func NewDetector(name string, cfg Config) (Detector, error) {
	factory, ok := detectors[name]
	if !ok {
		return nil, fmt.Errorf("unknown detector %q (available: %v)", name, registered(detectors))
	}
	return factory(cfg)
}

func registered[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRecognizer Recognizer = noopRecognizer{}

// DefaultRecognizer returns the library's default recognition engine.
func DefaultRecognizer() Recognizer { return defaultRecognizer }

// SetDefaultRecognizer sets the library's default recognition engine.
func SetDefaultRecognizer(engine Recognizer) { defaultRecognizer = engine }

type noopRecognizer struct{}

func (noopRecognizer) Name() string { return "noop" }

func (noopRecognizer) Recognize(ctx context.Context, crop image.Image) (Recognition, error) {
	return Recognition{}, nil
}
