package rules

import (
	"strings"

	"github.com/wudi/ledgerkit/ledger"
)

const (
	tierHighMin   = 0.90
	tierMediumMin = 0.70

	amountParsedBoost = 0.05
	dateParsedBoost   = 0.05
	suspectPenalty    = 0.10
)

// ScoreRow combines raw recognition confidence with normalization signals
// into a single score in [0,1], its tier, and a review flag. A cleanly
// parsed amount or date each add a small boost; a '?' in the description (a
// recognizer uncertainty marker) costs more than either boost gives back.
func ScoreRow(row ledger.NormalizedRow, ocrConfidence float64) (float64, ledger.ConfidenceTier, bool) {
	score := ocrConfidence
	if row.HasAmount {
		score = min(1, score+amountParsedBoost)
	}
	if row.HasDate {
		score = min(1, score+dateParsedBoost)
	}
	if strings.ContainsRune(row.Description, '?') {
		score = max(0, score-suspectPenalty)
	}

	tier := ledger.TierLow
	switch {
	case score >= tierHighMin:
		tier = ledger.TierHigh
	case score >= tierMediumMin:
		tier = ledger.TierMedium
	}
	return score, tier, score < tierMediumMin
}

// Stats aggregates confidence outcomes over a scored row set.
type Stats struct {
	Total          int
	HighConfidence int
	NeedsReview    int
}

// Aggregate reduces a finite row collection to its confidence statistics.
// The zero Stats value is the correct answer for an empty collection.
func Aggregate(rows []ledger.ScoredRow) Stats {
	var s Stats
	for _, row := range rows {
		s.Total++
		if row.Score >= tierHighMin {
			s.HighConfidence++
		}
		if row.NeedsReview {
			s.NeedsReview++
		}
	}
	return s
}
