package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/wudi/ledgerkit/config"
	"github.com/wudi/ledgerkit/ledger"
	"github.com/wudi/ledgerkit/observability"
	"github.com/wudi/ledgerkit/ocr"
	_ "github.com/wudi/ledgerkit/ocr/paddle"
	_ "github.com/wudi/ledgerkit/ocr/tesseract"
	"github.com/wudi/ledgerkit/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config (defaults apply when empty)")
	asJSON := flag.Bool("json", false, "emit the full extraction result as JSON")
	verbose := flag.Bool("v", false, "log pipeline stages to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ledgerproc [-config file] [-json] [-v] <image>")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fatal(err)
		}
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fatal(err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		fatal(fmt.Errorf("decode image: %w", err))
	}

	engineCfg := ocr.Config{
		Languages:     cfg.OCR.Languages,
		DPI:           cfg.OCR.DPI,
		BatchSize:     cfg.OCR.BatchSize,
		MinConfidence: cfg.OCR.MinConfidence,
		Endpoint:      cfg.OCR.Endpoint,
		Variables:     cfg.OCR.Variables,
	}
	detector, err := ocr.NewDetector(cfg.Detector, engineCfg)
	if err != nil {
		fatal(err)
	}
	recognizer, err := ocr.NewRecognizer(cfg.Recognizer, engineCfg)
	if err != nil {
		fatal(err)
	}

	var opts []pipeline.Option
	if *verbose {
		opts = append(opts, pipeline.WithLogger(observability.NewTextLogger(os.Stderr)))
	}
	result := pipeline.New(detector, recognizer, opts...).Run(context.Background(), img)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fatal(err)
		}
		if !result.Success {
			os.Exit(1)
		}
		return
	}

	if !result.Success {
		fatal(fmt.Errorf("extraction failed: %s", result.Error))
	}
	printResult(result)
}

func printResult(result ledger.ExtractionResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Date", "Description", "Amount", "Kind", "Confidence", "Review"})
	for _, tx := range result.Transactions {
		review := ""
		if tx.NeedsReview {
			review = "yes"
		}
		t.AppendRow(table.Row{
			tx.Date.Format("2006-01-02"),
			tx.Description,
			fmt.Sprintf("%.2f", tx.Amount),
			tx.Kind,
			fmt.Sprintf("%.2f (%s)", tx.Confidence, tx.Tier),
			review,
		})
	}
	t.Render()
	fmt.Printf("rows: %d  high-confidence: %d  needs-review: %d  elapsed: %.1fms\n",
		result.TotalRows, result.HighConfidenceRows, result.NeedsReviewCount, result.ProcessingTimeMS)
	for _, msg := range result.ValidationErrors {
		fmt.Println("rejected:", msg)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "ledgerproc:", err)
	os.Exit(1)
}
