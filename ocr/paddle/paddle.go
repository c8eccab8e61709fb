package paddle

// Package paddle is a client for a PaddleOCR serving container. The original
// deployment runs PaddleOCR as a sidecar exposing hub-style JSON endpoints;
// this backend speaks that protocol so the extraction core needs no Python
// runtime. Both detection and recognition are served by the same container.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/wudi/ledgerkit/ocr"
)

func init() {
	ocr.RegisterDetector("paddle", func(cfg ocr.Config) (ocr.Detector, error) {
		return NewClient(cfg)
	})
	ocr.RegisterRecognizer("paddle", func(cfg ocr.Config) (ocr.Recognizer, error) {
		return NewClient(cfg)
	})
}

const defaultTimeout = 60 * time.Second

// Client implements Detector, Recognizer and BatchRecognizer against a
// PaddleOCR serving endpoint.
type Client struct {
	endpoint string
	minConf  float64
	http     *http.Client
}

// NewClient builds a client for the serving container at cfg.Endpoint.
func NewClient(cfg ocr.Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("paddle: endpoint required")
	}
	return &Client{
		endpoint: cfg.Endpoint,
		minConf:  cfg.MinConfidence,
		http:     &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) Name() string { return "paddle" }

// request/response shapes for the hub-style predict endpoints.
type predictRequest struct {
	Images []string `json:"images"`
}

type predictResponse struct {
	Results [][]predictEntry `json:"results"`
	Status  string           `json:"status"`
	Msg     string           `json:"msg"`
}

type predictEntry struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	TextRegion [][2]int `json:"text_region"`
}

func (c *Client) predict(ctx context.Context, path string, imgs []image.Image) ([][]predictEntry, error) {
	req := predictRequest{Images: make([]string, 0, len(imgs))}
	for _, img := range imgs {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode image: %w", err)
		}
		req.Images = append(req.Images, base64.StdEncoding.EncodeToString(buf.Bytes()))
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("call %s: status %s", path, resp.Status)
	}
	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	if out.Status != "" && out.Status != "000" {
		return nil, fmt.Errorf("paddle %s: %s", path, out.Msg)
	}
	if len(out.Results) != len(imgs) {
		return nil, fmt.Errorf("paddle %s: got %d results for %d images", path, len(out.Results), len(imgs))
	}
	return out.Results, nil
}

// Detect returns text region quads in the serving container's reading
// order (top-to-bottom, then left-to-right). Regions scored below the
// configured minimum confidence are dropped.
func (c *Client) Detect(ctx context.Context, img image.Image) ([]ocr.Quad, error) {
	results, err := c.predict(ctx, "/predict/ocr_det", []image.Image{img})
	if err != nil {
		return nil, err
	}
	quads := make([]ocr.Quad, 0, len(results[0]))
	for _, entry := range results[0] {
		if entry.Confidence > 0 && entry.Confidence < c.minConf {
			continue
		}
		quad, ok := quadFromRegion(entry.TextRegion)
		if !ok {
			continue
		}
		quads = append(quads, quad)
	}
	return quads, nil
}

// Recognize reads the text content of one cropped region.
func (c *Client) Recognize(ctx context.Context, crop image.Image) (ocr.Recognition, error) {
	results, err := c.RecognizeBatch(ctx, []image.Image{crop})
	if err != nil {
		return ocr.Recognition{}, err
	}
	return results[0], nil
}

// RecognizeBatch sends all crops in a single round-trip.
func (c *Client) RecognizeBatch(ctx context.Context, crops []image.Image) ([]ocr.Recognition, error) {
	results, err := c.predict(ctx, "/predict/ocr_rec", crops)
	if err != nil {
		return nil, err
	}
	out := make([]ocr.Recognition, len(crops))
	for i, entries := range results {
		if len(entries) == 0 {
			continue
		}
		out[i] = ocr.Recognition{Text: entries[0].Text, Confidence: entries[0].Confidence}
	}
	return out, nil
}

func quadFromRegion(region [][2]int) (ocr.Quad, bool) {
	if len(region) != 4 {
		return ocr.Quad{}, false
	}
	var q ocr.Quad
	for i, p := range region {
		q[i] = image.Point{X: p[0], Y: p[1]}
	}
	return q, true
}
