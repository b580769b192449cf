package termtable

import (
	"reflect"
	"testing"
)

func TestCapWidths_NoConstraint(t *testing.T) {
	widths := []int{5, 20, 10}
	headers := []string{"COL1", "COL2", "COL3"}
	// Total: 5+20+10 + 2*2 = 39; fits in an 80-col terminal.
	got := capWidths(widths, headers, 80)
	if !reflect.DeepEqual(got, widths) {
		t.Errorf("expected no change: got %v, want %v", got, widths)
	}
}

func TestCapWidths_ReducesWidest(t *testing.T) {
	// 5 + 60 + 10 + 2*2 = 79 -> just over 78.
	widths := []int{5, 60, 10}
	headers := []string{"INDEX", "BOARD", "STATE"}
	got := capWidths(widths, headers, 78)

	total := 0
	for _, w := range got {
		total += w
	}
	total += 2 * (len(got) - 1)
	if total > 78 {
		t.Errorf("total %d still exceeds 78; widths=%v", total, got)
	}
	if got[0] != widths[0] {
		t.Errorf("column 0 should be unchanged: got %d, want %d", got[0], widths[0])
	}
	if got[2] != widths[2] {
		t.Errorf("column 2 should be unchanged: got %d, want %d", got[2], widths[2])
	}
}

func TestCapWidths_RespectsHeaderMinimum(t *testing.T) {
	widths := []int{4, 60}
	headers := []string{"NUM", "A-VERY-LONG-HEADER-NAME"}
	got := capWidths(widths, headers, 30)
	if got[1] < utf8RuneCount("A-VERY-LONG-HEADER-NAME") {
		t.Errorf("column 1 reduced below header minimum: got %d", got[1])
	}
}

func TestCapWidths_CannotReduceFurther(t *testing.T) {
	widths := []int{3, 8}
	headers := []string{"NUM", "BOARD"}
	got := capWidths(widths, headers, 5)
	if got[0] < utf8RuneCount("NUM") {
		t.Errorf("column 0 below header minimum: %d", got[0])
	}
	if got[1] < utf8RuneCount("BOARD") {
		t.Errorf("column 1 below header minimum: %d", got[1])
	}
}

func TestTruncate_FitsUnchanged(t *testing.T) {
	if got := truncate("local", 10); got != "local" {
		t.Errorf("got %q, want %q", got, "local")
	}
}

func TestTruncate_ExactFit(t *testing.T) {
	if got := truncate("local", 5); got != "local" {
		t.Errorf("got %q, want %q", got, "local")
	}
}

func TestTruncate_Overflow(t *testing.T) {
	if got := truncate("undecipherable", 6); got != "undec…" {
		t.Errorf("got %q, want %q", got, "undec…")
	}
}

func TestTruncate_WidthOne(t *testing.T) {
	if got := truncate("abc", 1); got != "…" {
		t.Errorf("got %q, want an ellipsis", got)
	}
}

func TestTruncate_Empty(t *testing.T) {
	if got := truncate("", 10); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestFlush_EmptyTableProducesNoRows(t *testing.T) {
	tb := NewTable("INDEX", "SIDE", "X", "Y")
	if len(tb.rows) != 0 {
		t.Fatalf("expected no rows before any Row call")
	}
	tb.Flush() // must not panic and must not print anything observable here
}

func TestRow_ShorterThanHeaderCountStoredAsGiven(t *testing.T) {
	tb := NewTable("INDEX", "SIDE", "X", "Y")
	tb.Row("0", "local")
	if len(tb.rows[0]) != 2 {
		t.Fatalf("Row should store exactly the values it was given: got %v", tb.rows[0])
	}
}

func utf8RuneCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
