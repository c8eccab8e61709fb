package rules

// Package rules implements the deterministic heuristics that turn raw
// recognized strings into trustworthy transaction fields: OCR-error-aware
// normalization, structural row validation, balance reconciliation, and
// confidence scoring. Every function here is total and referentially
// transparent; unparsable input yields an absent value, never an error.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// currencyMarkers are stripped before numeric parsing. The naira sign and
// code dominate the ledgers this engine was built for.
var currencyMarkers = []string{"₦", "NGN", "$"}

// descriptionJunk matches characters outside {word characters, whitespace,
// hyphen, period, comma}. Word characters are Unicode letters and digits,
// so accented merchant names survive cleaning.
var descriptionJunk = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.,]`)

// NormalizeAmount parses a monetary amount from recognized text, repairing
// common OCR confusions first. The repair is positional: a letter O next to
// a digit becomes 0, and S or I immediately after a digit become 5 and 1;
// letters with no adjacent digit are left alone so currency codes and words
// are never mangled.
//
//	"450,000" -> 450000, "4S0.00" -> 450, "GOOD" -> absent
func NormalizeAmount(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = fixDigitConfusion(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// fixDigitConfusion rewrites glyphs that recognizers commonly confuse with
// digits, using the surrounding characters to decide.
func fixDigitConfusion(s string) string {
	runes := []rune(s)
	out := make([]rune, len(runes))
	isDigit := func(i int) bool {
		return i >= 0 && i < len(runes) && runes[i] >= '0' && runes[i] <= '9'
	}
	for i, r := range runes {
		switch {
		case (r == 'O' || r == 'o') && (isDigit(i-1) || isDigit(i+1)):
			out[i] = '0'
		case r == 'S' && isDigit(i-1):
			out[i] = '5'
		case r == 'I' && isDigit(i-1):
			out[i] = '1'
		default:
			out[i] = r
		}
	}
	return string(out)
}

// dateLayouts are tried in order; the first successful parse wins. Ledger
// entries are day-first with slash, dash, or dot separators and two- or
// four-digit years.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
}

// NormalizeDate parses a calendar date from recognized text. Unparsable text
// reports absent rather than an error.
func NormalizeDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CleanDescription collapses whitespace runs, strips characters outside the
// word/whitespace/hyphen/period/comma set, uppercases, and trims. The result
// is a fixed point: cleaning clean text is a no-op.
func CleanDescription(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	s = descriptionJunk.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.ToUpper(s))
}
