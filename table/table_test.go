package table

import (
	"image"
	"testing"

	"github.com/wudi/ledgerkit/ledger"
	"github.com/wudi/ledgerkit/ocr"
)

func token(text string, x0, y0, x1, y1 int) ocr.Token {
	return ocr.Token{
		Text:       text,
		Confidence: 0.9,
		Box:        ocr.QuadFromRect(image.Rect(x0, y0, x1, y1)),
	}
}

func TestReconstructWithHeader(t *testing.T) {
	tokens := []ocr.Token{
		token("DATE", 5, 2, 45, 12),
		token("DESCRIPTION", 60, 2, 120, 12),
		token("CREDIT", 140, 2, 170, 12),
		token("DEBIT", 180, 2, 210, 12),

		token("05/03/2024", 5, 20, 45, 30),
		token("CAFE SALES", 60, 20, 120, 30),
		token("100.00", 140, 20, 170, 30),

		token("06/03/2024", 5, 35, 45, 45),
		token("SUPPLIES", 60, 35, 120, 45),
		token("40.00", 180, 35, 210, 45),
	}
	rows := Reconstruct(tokens)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	first := rows[0]
	if got := first.Cells[ledger.FieldDate].Text; got != "05/03/2024" {
		t.Fatalf("date cell = %q", got)
	}
	if got := first.Cells[ledger.FieldAmount].Text; got != "100.00" {
		t.Fatalf("amount cell = %q", got)
	}
	if first.Kind != ledger.Credit {
		t.Fatalf("kind = %v, want CREDIT", first.Kind)
	}

	second := rows[1]
	if got := second.Cells[ledger.FieldAmount].Text; got != "40.00" {
		t.Fatalf("amount cell = %q", got)
	}
	if second.Kind != ledger.Debit {
		t.Fatalf("kind = %v, want DEBIT", second.Kind)
	}
}

func TestReconstructFuzzyHeader(t *testing.T) {
	// OCR misreads in the header still resolve: "DAT3" and "AM0UNT" are
	// within the edit-distance allowance.
	tokens := []ocr.Token{
		token("DAT3", 5, 2, 45, 12),
		token("AM0UNT", 60, 2, 100, 12),
		token("DESCR1PTION", 120, 2, 190, 12),

		token("05/03/2024", 5, 20, 45, 30),
		token("450,000", 60, 20, 100, 30),
		token("RENT", 120, 20, 190, 30),
	}
	rows := Reconstruct(tokens)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Cells[ledger.FieldDate].Text != "05/03/2024" ||
		row.Cells[ledger.FieldAmount].Text != "450,000" ||
		row.Cells[ledger.FieldDescription].Text != "RENT" {
		t.Fatalf("unexpected cells: %+v", row.Cells)
	}
}

func TestReconstructNoHeaderFallsBackToOrder(t *testing.T) {
	tokens := []ocr.Token{
		token("05/03/2024", 5, 5, 45, 15),
		token("120.00", 60, 5, 100, 15),
		token("MARKET", 120, 5, 160, 15),
		token("PURCHASE", 170, 5, 220, 15),
	}
	rows := Reconstruct(tokens)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Cells[ledger.FieldDate].Text != "05/03/2024" {
		t.Fatalf("date cell = %q", row.Cells[ledger.FieldDate].Text)
	}
	if row.Cells[ledger.FieldAmount].Text != "120.00" {
		t.Fatalf("amount cell = %q", row.Cells[ledger.FieldAmount].Text)
	}
	if got := row.Cells[ledger.FieldDescription].Text; got != "MARKET PURCHASE" {
		t.Fatalf("description cell = %q, want joined tokens", got)
	}
	if row.Kind != ledger.Credit {
		t.Fatalf("kind = %v, want default CREDIT", row.Kind)
	}
}

func TestReconstructEmpty(t *testing.T) {
	if rows := Reconstruct(nil); rows != nil {
		t.Fatalf("Reconstruct(nil) = %v, want nil", rows)
	}
}

func TestGroupLinesByVerticalOverlap(t *testing.T) {
	tokens := []ocr.Token{
		token("a", 0, 0, 10, 10),
		token("b", 20, 2, 30, 12), // center y 7, inside first line's span
		token("c", 0, 20, 10, 30), // new line
	}
	lines := groupLines(tokens)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if len(lines[0]) != 2 || len(lines[1]) != 1 {
		t.Fatalf("line sizes = %d, %d; want 2, 1", len(lines[0]), len(lines[1]))
	}
}
