package ocr

import "strconv"

// Config carries engine construction parameters. Every field is enumerated
// here rather than passed as free-form key/value pairs so that misspelled
// settings fail at the type level instead of being silently ignored.
type Config struct {
	// Languages is a list of language hints (e.g. "eng") that providers use
	// to select trained data.
	Languages []string
	// DPI is the effective dots-per-inch of input crops; zero means unknown.
	DPI int
	// BatchSize bounds how many crops a batch-capable engine processes per
	// round-trip. Zero selects the engine default.
	BatchSize int
	// MinConfidence discards detections below this threshold. Used by
	// detection backends; recognition backends report confidence as-is.
	MinConfidence float64
	// Endpoint is the base URL of a remote serving container. Only used by
	// remote backends such as paddle.
	Endpoint string
	// Variables passes engine-specific knobs (e.g. "tessedit_pageseg_mode"
	// for Tesseract) without hard-coding them into the API surface.
	Variables map[string]string
}

// Option mutates an engine Config.
type Option func(*Config)

// WithLanguages sets language hints.
func WithLanguages(langs ...string) Option {
	return func(c *Config) { c.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value.
func WithDPI(dpi int) Option {
	return func(c *Config) { c.DPI = dpi }
}

// WithEndpoint sets the remote serving endpoint.
func WithEndpoint(url string) Option {
	return func(c *Config) { c.Endpoint = url }
}

// WithVariable sets one engine-specific variable.
func WithVariable(key, value string) Option {
	return func(c *Config) {
		if c.Variables == nil {
			c.Variables = make(map[string]string)
		}
		c.Variables[key] = value
	}
}

// WithTesseractPSM sets the page segmentation mode (PSM) variable for
// Tesseract. See https://tesseract-ocr.github.io/tessdoc/ImproveQuality.html#page-segmentation-method for values.
func WithTesseractPSM(mode int) Option {
	return WithVariable("tessedit_pageseg_mode", strconv.Itoa(mode))
}

// WithTesseractWhitelist restricts recognition to the provided characters.
func WithTesseractWhitelist(chars string) Option {
	return WithVariable("tessedit_char_whitelist", chars)
}
