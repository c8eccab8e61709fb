package table

// Package table turns the flat token stream produced by detection and
// recognition into ledger rows keyed by semantic column. Tokens are grouped
// into rows by vertical overlap, then assigned to the date, amount, and
// description columns either by matching a recognized header row or, when no
// header is present, by horizontal order.

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/wudi/ledgerkit/ledger"
	"github.com/wudi/ledgerkit/ocr"
)

// maxHeaderDistance is the edit-distance allowance for matching a recognized
// header cell against a known column label; it absorbs one or two OCR
// misreads without letting arbitrary text claim a column.
const maxHeaderDistance = 2

// headerLabels maps recognizable column headings to semantic fields. CREDIT
// and DEBIT headings both carry amounts; which one a row's amount falls
// under decides its transaction kind.
var headerLabels = map[string]ledger.Field{
	"DATE":        ledger.FieldDate,
	"AMOUNT":      ledger.FieldAmount,
	"CREDIT":      ledger.FieldAmount,
	"DEBIT":       ledger.FieldAmount,
	"DESCRIPTION": ledger.FieldDescription,
	"PARTICULARS": ledger.FieldDescription,
}

type column struct {
	field   ledger.Field
	kind    ledger.TransactionKind
	centerX float64
}

// Reconstruct groups tokens into rows and assigns semantic columns.
// Tokens must arrive in the detector's top-to-bottom, left-to-right order.
func Reconstruct(tokens []ocr.Token) []ledger.RawRow {
	lines := groupLines(tokens)
	if len(lines) == 0 {
		return nil
	}

	columns, hasHeader := headerColumns(lines[0])
	body := lines
	if hasHeader {
		body = lines[1:]
	}

	rows := make([]ledger.RawRow, 0, len(body))
	for _, line := range body {
		var row ledger.RawRow
		if hasHeader {
			row = assignByColumns(line, columns)
		} else {
			row = assignByOrder(line)
		}
		if len(row.Cells) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// groupLines clusters tokens into visual rows: a token joins the current row
// when its vertical center falls inside the row's vertical span.
func groupLines(tokens []ocr.Token) [][]ocr.Token {
	var lines [][]ocr.Token
	var top, bottom int
	for _, tok := range tokens {
		b := tok.Box.Bounds()
		cy := (b.Min.Y + b.Max.Y) / 2
		if len(lines) == 0 || cy < top || cy >= bottom {
			lines = append(lines, []ocr.Token{tok})
			top, bottom = b.Min.Y, b.Max.Y
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], tok)
		if b.Min.Y < top {
			top = b.Min.Y
		}
		if b.Max.Y > bottom {
			bottom = b.Max.Y
		}
	}
	for _, line := range lines {
		sort.Slice(line, func(i, j int) bool {
			return line[i].Box.Bounds().Min.X < line[j].Box.Bounds().Min.X
		})
	}
	return lines
}

// headerColumns tries to interpret a line as the ledger's header row. At
// least two cells must fuzzy-match known labels for the line to count.
func headerColumns(line []ocr.Token) ([]column, bool) {
	var cols []column
	for _, tok := range line {
		cell := strings.ToUpper(strings.TrimSpace(tok.Text))
		for label, field := range headerLabels {
			if levenshtein.ComputeDistance(cell, label) > maxHeaderDistance {
				continue
			}
			b := tok.Box.Bounds()
			col := column{field: field, centerX: float64(b.Min.X+b.Max.X) / 2}
			switch label {
			case "CREDIT":
				col.kind = ledger.Credit
			case "DEBIT":
				col.kind = ledger.Debit
			}
			cols = append(cols, col)
			break
		}
	}
	if len(cols) < 2 {
		return nil, false
	}
	return cols, true
}

// assignByColumns places each token in the nearest header column.
func assignByColumns(line []ocr.Token, columns []column) ledger.RawRow {
	row := ledger.RawRow{Cells: make(map[ledger.Field]ocr.Token), Kind: ledger.Credit}
	for _, tok := range line {
		b := tok.Box.Bounds()
		cx := float64(b.Min.X+b.Max.X) / 2
		best := 0
		for i := 1; i < len(columns); i++ {
			if dist(cx, columns[i].centerX) < dist(cx, columns[best].centerX) {
				best = i
			}
		}
		col := columns[best]
		row.Cells[col.field] = mergeCell(row.Cells[col.field], tok)
		if col.field == ledger.FieldAmount && col.kind != "" {
			row.Kind = col.kind
		}
	}
	return row
}

// assignByOrder falls back to positional mapping: date, amount, then
// everything else joined as the description.
func assignByOrder(line []ocr.Token) ledger.RawRow {
	row := ledger.RawRow{Cells: make(map[ledger.Field]ocr.Token), Kind: ledger.Credit}
	for i, tok := range line {
		switch i {
		case 0:
			row.Cells[ledger.FieldDate] = tok
		case 1:
			row.Cells[ledger.FieldAmount] = tok
		default:
			row.Cells[ledger.FieldDescription] = mergeCell(row.Cells[ledger.FieldDescription], tok)
		}
	}
	return row
}

// mergeCell concatenates tokens that landed in the same column, keeping the
// lower confidence of the two.
func mergeCell(existing, tok ocr.Token) ocr.Token {
	if existing.Text == "" {
		return tok
	}
	merged := ocr.Token{
		Text:       existing.Text + " " + tok.Text,
		Confidence: existing.Confidence,
		Box:        existing.Box,
	}
	if tok.Confidence < merged.Confidence {
		merged.Confidence = tok.Confidence
	}
	return merged
}

func dist(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
