package config

// Package config defines the fully enumerated extraction configuration.
// Every knob is a named field with a documented default; decoding a file
// with an unknown key is a construction-time error rather than a silent
// no-op, so misspelled settings cannot slip through.

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config selects the detection and recognition backends and their shared
// engine parameters.
type Config struct {
	// Detector is the registered detection backend name. Default "paddle".
	Detector string `toml:"detector"`
	// Recognizer is the registered recognition backend name.
	// Default "paddle"; "tesseract" selects the local native engine.
	Recognizer string `toml:"recognizer"`

	OCR OCR `toml:"ocr"`
}

// OCR carries engine parameters common to all backends.
type OCR struct {
	// Languages lists language hints for trained-data selection.
	// Default ["eng"].
	Languages []string `toml:"languages"`
	// DPI is the effective input resolution; 0 means unknown. Default 0.
	DPI int `toml:"dpi"`
	// BatchSize bounds crops per recognition round-trip. Default 8.
	BatchSize int `toml:"batch_size"`
	// MinConfidence discards detections scored below it. Default 0.5.
	MinConfidence float64 `toml:"min_confidence"`
	// Endpoint is the base URL of a remote serving container; only remote
	// backends read it. Default "http://localhost:8868".
	Endpoint string `toml:"endpoint"`
	// Variables passes engine-specific settings by name, e.g.
	// "tessedit_pageseg_mode" for Tesseract. Default empty.
	Variables map[string]string `toml:"variables"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Detector:   "paddle",
		Recognizer: "paddle",
		OCR: OCR{
			Languages:     []string{"eng"},
			BatchSize:     8,
			MinConfidence: 0.5,
			Endpoint:      "http://localhost:8868",
		},
	}
}

// Load reads a TOML configuration file over the defaults. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML configuration bytes over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown config key: %s", strict.String())
		}
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
