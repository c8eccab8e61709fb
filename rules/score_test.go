package rules

import (
	"math"
	"testing"
	"time"

	"github.com/wudi/ledgerkit/ledger"
)

func closeTo(got, want float64) bool { return math.Abs(got-want) < 1e-9 }

func TestScoreRowBoostsAndPenalty(t *testing.T) {
	base := ledger.NormalizedRow{Description: "CAFE"}
	score, tier, review := ScoreRow(base, 0.80)
	if score != 0.80 || tier != ledger.TierMedium || review {
		t.Fatalf("bare row: got %v, %v, %v", score, tier, review)
	}

	withAmount := base
	withAmount.Amount, withAmount.HasAmount = 100, true
	if s, _, _ := ScoreRow(withAmount, 0.80); !closeTo(s, 0.85) {
		t.Fatalf("amount boost: score = %v, want 0.85", s)
	}

	withBoth := withAmount
	withBoth.Date, withBoth.HasDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true
	score, tier, review = ScoreRow(withBoth, 0.80)
	if !closeTo(score, 0.90) || tier != ledger.TierHigh || review {
		t.Fatalf("both boosts: got %v, %v, %v", score, tier, review)
	}

	suspect := withBoth
	suspect.Description = "CA?E"
	if s, _, _ := ScoreRow(suspect, 0.80); !closeTo(s, 0.80) {
		t.Fatalf("penalty: score = %v, want 0.80", s)
	}
}

func TestScoreRowMonotonic(t *testing.T) {
	row := ledger.NormalizedRow{Description: "SHOP"}
	for _, conf := range []float64{0, 0.3, 0.69, 0.7, 0.9, 1} {
		plain, _, _ := ScoreRow(row, conf)

		boosted := row
		boosted.HasAmount = true
		withAmount, _, _ := ScoreRow(boosted, conf)
		if withAmount < plain {
			t.Errorf("conf %v: amount boost decreased score (%v -> %v)", conf, plain, withAmount)
		}

		suspect := row
		suspect.Description = "SH?P"
		penalized, _, _ := ScoreRow(suspect, conf)
		if penalized > plain {
			t.Errorf("conf %v: '?' increased score (%v -> %v)", conf, plain, penalized)
		}
	}
}

func TestScoreRowClamped(t *testing.T) {
	full := ledger.NormalizedRow{HasAmount: true, HasDate: true, Description: "OK"}
	if s, _, _ := ScoreRow(full, 0.98); s != 1.0 {
		t.Fatalf("score = %v, want clamp at 1.0", s)
	}
	suspect := ledger.NormalizedRow{Description: "??"}
	if s, _, _ := ScoreRow(suspect, 0.05); s != 0.0 {
		t.Fatalf("score = %v, want clamp at 0.0", s)
	}
}

func TestScoreRowTiers(t *testing.T) {
	tests := []struct {
		conf   float64
		tier   ledger.ConfidenceTier
		review bool
	}{
		{0.95, ledger.TierHigh, false},
		{0.90, ledger.TierHigh, false},
		{0.89, ledger.TierMedium, false},
		{0.70, ledger.TierMedium, false},
		{0.69, ledger.TierLow, true},
		{0.10, ledger.TierLow, true},
	}
	for _, tt := range tests {
		_, tier, review := ScoreRow(ledger.NormalizedRow{Description: "X"}, tt.conf)
		if tier != tt.tier || review != tt.review {
			t.Errorf("conf %v: got %v, %v; want %v, %v", tt.conf, tier, review, tt.tier, tt.review)
		}
	}
}

func TestAggregate(t *testing.T) {
	rows := []ledger.ScoredRow{
		{Score: 0.95},
		{Score: 0.60, NeedsReview: true},
		{Score: 0.91},
	}
	got := Aggregate(rows)
	want := Stats{Total: 3, HighConfidence: 2, NeedsReview: 1}
	if got != want {
		t.Fatalf("Aggregate() = %+v, want %+v", got, want)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); got != (Stats{}) {
		t.Fatalf("Aggregate(nil) = %+v, want zero", got)
	}
}
