package ledger

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func scoredRow() ScoredRow {
	return ScoredRow{
		NormalizedRow: NormalizedRow{
			Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			HasDate:     true,
			Amount:      100.006,
			HasAmount:   true,
			Description: "CAFE SALES",
			Kind:        Credit,
		},
		Score: 0.95,
		Tier:  TierHigh,
	}
}

func TestNewTransactionRoundsAmount(t *testing.T) {
	tx, err := NewTransaction(scoredRow())
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	if tx.Amount != 100.01 {
		t.Fatalf("amount = %v, want 100.01", tx.Amount)
	}
	if tx.Kind != Credit || tx.Tier != TierHigh {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

func TestNewTransactionRejectsEmptyDescription(t *testing.T) {
	row := scoredRow()
	row.Description = "   "
	if _, err := NewTransaction(row); !errors.Is(err, ErrInvalidTransaction) {
		t.Fatalf("error = %v, want ErrInvalidTransaction", err)
	}
}

func TestNewTransactionRejectsNonPositiveAmount(t *testing.T) {
	row := scoredRow()
	row.Amount = 0.004 // rounds to zero cents
	if _, err := NewTransaction(row); !errors.Is(err, ErrInvalidTransaction) {
		t.Fatalf("error = %v, want ErrInvalidTransaction", err)
	}
}

func TestNewTransactionTruncatesDescription(t *testing.T) {
	row := scoredRow()
	row.Description = strings.Repeat("A", 300)
	tx, err := NewTransaction(row)
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	if len(tx.Description) != 200 {
		t.Fatalf("description length = %d, want 200", len(tx.Description))
	}

	// Truncation counts characters, not bytes, so a multi-byte rune at the
	// boundary is kept whole.
	row.Description = strings.Repeat("É", 300)
	tx, err = NewTransaction(row)
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	if got := []rune(tx.Description); len(got) != 200 || got[199] != 'É' {
		t.Fatalf("rune truncation: %d runes, last %q", len(got), got[len(got)-1])
	}
}

func TestTransactionJSON(t *testing.T) {
	tx, err := NewTransaction(scoredRow())
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{
		`"date":"2024-03-05"`,
		`"transaction_kind":"CREDIT"`,
		`"confidence_tier":"high"`,
		`"needs_review":false`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("payload missing %s: %s", want, data)
		}
	}
	var back Transaction
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Date.Equal(tx.Date.Time) {
		t.Fatalf("date round-trip: %v vs %v", back.Date, tx.Date)
	}
}

func TestExtractionResultJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(ExtractionResult{Success: true, ValidationErrors: []string{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{
		`"success":true`,
		`"total_rows":0`,
		`"high_confidence_rows":0`,
		`"needs_review_count":0`,
		`"balance_verified":false`,
		`"validation_errors":[]`,
		`"processing_time_ms":0`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("payload missing %s: %s", want, data)
		}
	}
	if strings.Contains(string(data), `"error":`) {
		t.Fatalf("empty error must be omitted: %s", data)
	}

	data, err = json.Marshal(ExtractionResult{Error: "condition image: empty image"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"error":"condition image: empty image"`) {
		t.Fatalf("failure payload must carry the reason: %s", data)
	}
}
