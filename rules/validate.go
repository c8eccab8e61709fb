package rules

import (
	"strings"
	"time"

	"github.com/wudi/ledgerkit/ledger"
)

const maxAmount = 1_000_000_000

// timeNow is swapped out in tests to pin the validation window.
var timeNow = time.Now

// ValidateRow runs every structural check on a normalized row and reports
// all failures, not just the first: a reviewer fixing a rejected row should
// see the full list. The row is acceptable only when the error list is
// empty.
func ValidateRow(row ledger.NormalizedRow) (bool, []string) {
	var errs []string
	if !row.HasDate || !dateInRange(row.Date) {
		errs = append(errs, "invalid date")
	}
	if !row.HasAmount || row.Amount <= 0 || row.Amount >= maxAmount {
		errs = append(errs, "invalid amount")
	}
	if strings.TrimSpace(row.Description) == "" {
		errs = append(errs, "description required")
	}
	return len(errs) == 0, errs
}

// dateInRange bounds plausible ledger dates: nothing before 2000, nothing
// past the end of the second year from now.
func dateInRange(d time.Time) bool {
	min := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	max := time.Date(timeNow().Year()+2, time.December, 31, 0, 0, 0, 0, time.UTC)
	return !d.Before(min) && !d.After(max)
}

// ValidateBalance walks the transactions in the order presented, adding
// credits and subtracting debits from the opening balance, and returns the
// computed closing balance. Callers supply transactions in ledger order; no
// re-sorting happens here. The check is advisory: it always reports ok so
// that a surprising balance shows up in statistics rather than failing the
// run.
func ValidateBalance(transactions []ledger.Transaction, opening float64) (bool, float64) {
	balance := opening
	for _, tx := range transactions {
		if tx.Kind == ledger.Credit {
			balance += tx.Amount
		} else {
			balance -= tx.Amount
		}
	}
	return true, balance
}
