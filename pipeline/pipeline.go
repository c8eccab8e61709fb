package pipeline

// Package pipeline sequences the extraction stages over one ledger photo:
// conditioning, detection, recognition, table reconstruction, normalization,
// validation, scoring, and result assembly. The pipeline performs no
// recognition itself; detection and recognition are collaborators plugged in
// behind the ocr contracts. Each run is independent and shares no mutable
// state with any other run, so a serving layer may process images
// concurrently with a single Pipeline value.

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wudi/ledgerkit/conditioner"
	"github.com/wudi/ledgerkit/ledger"
	"github.com/wudi/ledgerkit/observability"
	"github.com/wudi/ledgerkit/ocr"
	"github.com/wudi/ledgerkit/rules"
	"github.com/wudi/ledgerkit/table"
)

// State names one step of the extraction run. States advance strictly
// forward; no state is revisited.
type State string

const (
	StateIngested      State = "INGESTED"
	StateConditioned   State = "CONDITIONED"
	StateTokenized     State = "TOKENIZED"
	StateReconstructed State = "RECONSTRUCTED"
	StateNormalized    State = "NORMALIZED"
	StateValidated     State = "VALIDATED"
	StateScored        State = "SCORED"
	StateFinalized     State = "FINALIZED"
)

// Pipeline runs end-to-end extraction. The zero value is not usable;
// construct with New.
type Pipeline struct {
	detector   ocr.Detector
	recognizer ocr.Recognizer
	log        observability.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger wires a logger for per-stage events.
func WithLogger(log observability.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New builds a pipeline around the given detection and recognition engines.
func New(detector ocr.Detector, recognizer ocr.Recognizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		detector:   detector,
		recognizer: recognizer,
		log:        observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one ledger photo into structured transactions. Collaborator
// failures and unreadable input produce a result with Success=false; rows
// that fail validation are dropped and counted, and an empty transaction
// sequence is a valid successful outcome.
func (p *Pipeline) Run(ctx context.Context, img image.Image) ledger.ExtractionResult {
	start := time.Now()
	runID := uuid.NewString()
	log := p.log.With(observability.String("run_id", runID))
	state := StateIngested

	fail := func(err error) ledger.ExtractionResult {
		log.Error("run failed", observability.String("state", string(state)), observability.Error("err", err))
		return ledger.ExtractionResult{
			Success:          false,
			RunID:            runID,
			Error:            err.Error(),
			ValidationErrors: []string{},
			ProcessingTimeMS: float64(time.Since(start)) / float64(time.Millisecond),
		}
	}

	conditioned, err := conditioner.Condition(img)
	if err != nil {
		return fail(fmt.Errorf("condition image: %w", err))
	}
	state = StateConditioned
	log.Debug(observability.EventConditioned,
		observability.Int("width", conditioned.Bounds().Dx()),
		observability.Int("height", conditioned.Bounds().Dy()))

	quads, err := p.detector.Detect(ctx, conditioned)
	if err != nil {
		return fail(fmt.Errorf("detect text regions: %w", err))
	}
	log.Debug(observability.EventDetected, observability.Int("regions", len(quads)))

	tokens, err := p.recognize(ctx, conditioned, quads)
	if err != nil {
		return fail(fmt.Errorf("recognize text: %w", err))
	}
	state = StateTokenized
	log.Debug(observability.EventRecognized, observability.Int("tokens", len(tokens)))

	rawRows := table.Reconstruct(tokens)
	state = StateReconstructed

	normalized := normalizeRows(rawRows)
	state = StateNormalized
	log.Debug(observability.EventNormalized, observability.Int("rows", len(normalized)))

	validated, rejections := validateRows(normalized)
	state = StateValidated
	log.Debug(observability.EventValidated,
		observability.Int("accepted", len(validated)),
		observability.Int("rejected", len(rejections)))

	scored := scoreRows(validated)
	state = StateScored
	log.Debug(observability.EventScored, observability.Int("rows", len(scored)))

	result := finalize(runID, start, scored, rejections)
	state = StateFinalized
	log.Info(observability.EventFinalized,
		observability.String("state", string(state)),
		observability.Int("transactions", len(result.Transactions)),
		observability.Float64("elapsed_ms", result.ProcessingTimeMS))
	return result
}

// recognize crops every detected region out of the conditioned image and
// runs recognition over the crops, preserving detection order.
func (p *Pipeline) recognize(ctx context.Context, conditioned *image.Gray, quads []ocr.Quad) ([]ocr.Token, error) {
	kept := make([]ocr.Quad, 0, len(quads))
	crops := make([]image.Image, 0, len(quads))
	for _, quad := range quads {
		b := quad.Bounds().Intersect(conditioned.Bounds())
		if b.Empty() {
			continue
		}
		kept = append(kept, quad)
		crops = append(crops, conditioned.SubImage(b))
	}
	recs, err := ocr.RecognizeAll(ctx, p.recognizer, crops)
	if err != nil {
		return nil, err
	}
	tokens := make([]ocr.Token, len(recs))
	for i, rec := range recs {
		tokens[i] = ocr.Token{Text: rec.Text, Confidence: rec.Confidence, Box: kept[i]}
	}
	return tokens, nil
}

// normalizeRows maps raw reconstructed rows to typed rows, carrying the mean
// recognition confidence of each row's cells.
func normalizeRows(rawRows []ledger.RawRow) []ledger.NormalizedRow {
	rows := make([]ledger.NormalizedRow, 0, len(rawRows))
	for _, raw := range rawRows {
		row := ledger.NormalizedRow{Kind: raw.Kind, Confidence: rowConfidence(raw)}
		if cell, ok := raw.Cells[ledger.FieldDate]; ok {
			row.Date, row.HasDate = rules.NormalizeDate(cell.Text)
		}
		if cell, ok := raw.Cells[ledger.FieldAmount]; ok {
			row.Amount, row.HasAmount = rules.NormalizeAmount(cell.Text)
		}
		if cell, ok := raw.Cells[ledger.FieldDescription]; ok {
			row.Description = rules.CleanDescription(cell.Text)
		}
		rows = append(rows, row)
	}
	return rows
}

func rowConfidence(raw ledger.RawRow) float64 {
	if len(raw.Cells) == 0 {
		return 0
	}
	var sum float64
	for _, cell := range raw.Cells {
		sum += cell.Confidence
	}
	return sum / float64(len(raw.Cells))
}

// validateRows drops rows that fail structural checks and accumulates their
// rejection reasons for the result.
func validateRows(rows []ledger.NormalizedRow) ([]ledger.NormalizedRow, []string) {
	accepted := make([]ledger.NormalizedRow, 0, len(rows))
	var rejections []string
	for i, row := range rows {
		ok, errs := rules.ValidateRow(row)
		if ok {
			accepted = append(accepted, row)
			continue
		}
		rejections = append(rejections, fmt.Sprintf("row %d: %s", i+1, strings.Join(errs, "; ")))
	}
	return accepted, rejections
}

func scoreRows(rows []ledger.NormalizedRow) []ledger.ScoredRow {
	scored := make([]ledger.ScoredRow, 0, len(rows))
	for _, row := range rows {
		score, tier, review := rules.ScoreRow(row, row.Confidence)
		scored = append(scored, ledger.ScoredRow{
			NormalizedRow: row,
			Score:         score,
			Tier:          tier,
			NeedsReview:   review,
		})
	}
	return scored
}

// finalize assembles the immutable run result: transactions, aggregate
// statistics, the advisory balance check, and wall-clock duration.
func finalize(runID string, start time.Time, scored []ledger.ScoredRow, rejections []string) ledger.ExtractionResult {
	transactions := make([]ledger.Transaction, 0, len(scored))
	for i, row := range scored {
		tx, err := ledger.NewTransaction(row)
		if err != nil {
			rejections = append(rejections, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		transactions = append(transactions, tx)
	}
	stats := rules.Aggregate(scored)
	balanceOK, _ := rules.ValidateBalance(transactions, 0)
	if rejections == nil {
		rejections = []string{}
	}
	return ledger.ExtractionResult{
		Success:            true,
		RunID:              runID,
		Transactions:       transactions,
		TotalRows:          stats.Total,
		HighConfidenceRows: stats.HighConfidence,
		NeedsReviewCount:   stats.NeedsReview,
		BalanceVerified:    balanceOK,
		ValidationErrors:   rejections,
		ProcessingTimeMS:   float64(time.Since(start)) / float64(time.Millisecond),
	}
}
