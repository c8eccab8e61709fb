package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/ledgerkit/ocr"
)

func init() {
	ocr.RegisterRecognizer("tesseract", func(cfg ocr.Config) (ocr.Recognizer, error) {
		return NewEngine(cfg), nil
	})
	ocr.SetDefaultRecognizer(NewEngine(ocr.Config{}))
}

// Engine implements Recognizer and BatchRecognizer using the gosseract
// client as the local native OCR provider.
type Engine struct {
	cfg           ocr.Config
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed recognition engine.
func NewEngine(cfg ocr.Config) *Engine {
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single cropped region.
func (e *Engine) Recognize(ctx context.Context, crop image.Image) (ocr.Recognition, error) {
	c := e.clientFactory()
	defer c.Close()
	return e.recognizeWithClient(ctx, c, crop)
}

// RecognizeBatch processes multiple crops with one client instance to
// amortize setup costs. Crops are processed sequentially.
func (e *Engine) RecognizeBatch(ctx context.Context, crops []image.Image) ([]ocr.Recognition, error) {
	c := e.clientFactory()
	defer c.Close()
	results := make([]ocr.Recognition, 0, len(crops))
	for i, crop := range crops {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		res, err := e.recognizeWithClient(ctx, c, crop)
		if err != nil {
			return nil, fmt.Errorf("recognize crop %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) recognizeWithClient(_ context.Context, c *gosseract.Client, crop image.Image) (ocr.Recognition, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return ocr.Recognition{}, fmt.Errorf("encode crop: %w", err)
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return ocr.Recognition{}, fmt.Errorf("set image: %w", err)
	}
	if len(e.cfg.Languages) > 0 {
		if err := c.SetLanguage(e.cfg.Languages...); err != nil {
			return ocr.Recognition{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if e.cfg.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.cfg.DPI)); err != nil {
			return ocr.Recognition{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range e.cfg.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Recognition{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Recognition{}, fmt.Errorf("recognize text: %w", err)
	}
	return ocr.Recognition{
		Text:       strings.TrimSpace(text),
		Confidence: wordConfidence(c),
	}, nil
}

// wordConfidence averages per-word confidences, scaled from Tesseract's
// 0-100 range into [0,1].
func wordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
