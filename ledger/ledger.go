package ledger

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wudi/ledgerkit/ocr"
)

// TransactionKind distinguishes money in from money out.
type TransactionKind string

const (
	Credit TransactionKind = "CREDIT"
	Debit  TransactionKind = "DEBIT"
)

// ConfidenceTier is a coarse bucket derived from a continuous confidence
// score.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// Field names a semantic ledger column.
type Field string

const (
	FieldDate        Field = "date"
	FieldAmount      Field = "amount"
	FieldDescription Field = "description"
)

// RawRow maps semantic columns to the recognized tokens that table
// reconstruction assigned to them. Rows are ephemeral; the normalizer
// consumes them.
type RawRow struct {
	Cells map[Field]ocr.Token
	Kind  TransactionKind
}

// NormalizedRow holds the typed fields recovered from a RawRow. Absent
// fields keep their zero value with the corresponding Has flag unset. Only
// the normalizer mutates a NormalizedRow; rows are never shared across
// stages or runs.
type NormalizedRow struct {
	Date        time.Time
	HasDate     bool
	Amount      float64
	HasAmount   bool
	Description string
	Kind        TransactionKind
	// Confidence is the recognition confidence carried over from the source
	// tokens.
	Confidence float64
}

// ScoredRow is a validated row plus its final confidence assessment.
type ScoredRow struct {
	NormalizedRow
	Score       float64
	Tier        ConfidenceTier
	NeedsReview bool
}

// Date is a calendar date serialized in ISO 8601 form (2006-01-02).
type Date struct{ time.Time }

// MarshalJSON renders the date as a quoted ISO 8601 calendar date.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON parses a quoted ISO 8601 calendar date.
func (d *Date) UnmarshalJSON(data []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(data))
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	d.Time = t
	return nil
}

// maxDescriptionLen bounds persisted descriptions.
const maxDescriptionLen = 200

// Transaction is the final persisted unit of extraction. Amount is strictly
// positive and rounded to cents; Description is non-empty after trimming.
type Transaction struct {
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Kind        TransactionKind `json:"transaction_kind"`
	Confidence  float64         `json:"confidence"`
	Tier        ConfidenceTier  `json:"confidence_tier"`
	NeedsReview bool            `json:"needs_review"`
	// RawSource optionally carries the opaque recognition output the
	// transaction was built from.
	RawSource map[string]string `json:"raw_source_data,omitempty"`
}

// ErrInvalidTransaction reports a scored row that cannot form a valid
// transaction.
var ErrInvalidTransaction = errors.New("invalid transaction")

// NewTransaction builds a Transaction from a scored row, enforcing the
// persistence invariants: positive amount rounded to two decimals and a
// non-empty description capped at 200 characters.
func NewTransaction(row ScoredRow) (Transaction, error) {
	desc := strings.TrimSpace(row.Description)
	if desc == "" {
		return Transaction{}, fmt.Errorf("%w: description required", ErrInvalidTransaction)
	}
	if runes := []rune(desc); len(runes) > maxDescriptionLen {
		desc = string(runes[:maxDescriptionLen])
	}
	amount := math.Round(row.Amount*100) / 100
	if amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	return Transaction{
		Date:        Date{row.Date},
		Description: desc,
		Amount:      amount,
		Kind:        row.Kind,
		Confidence:  row.Score,
		Tier:        row.Tier,
		NeedsReview: row.NeedsReview,
	}, nil
}

// ExtractionResult is the complete outcome of one pipeline run. It is built
// once at finalization and never mutated afterwards.
type ExtractionResult struct {
	Success            bool          `json:"success"`
	RunID              string        `json:"run_id"`
	Transactions       []Transaction `json:"transactions"`
	TotalRows          int           `json:"total_rows"`
	HighConfidenceRows int           `json:"high_confidence_rows"`
	NeedsReviewCount   int           `json:"needs_review_count"`
	BalanceVerified    bool          `json:"balance_verified"`
	ValidationErrors   []string      `json:"validation_errors"`
	ProcessingTimeMS   float64       `json:"processing_time_ms"`
	// Error carries the human-readable reason when Success is false.
	Error string `json:"error,omitempty"`
}
