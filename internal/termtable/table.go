// Package termtable renders the small, fixed-column tables this CLI
// prints: the --list ASIC inventory and the post-run coordinate summary.
// Grounded on the teacher's generic terminal table renderer, trimmed to
// the shape both call sites need — cells here are always short (an
// index, a side name, a coordinate, a bitmask), so an overflowing column
// is truncated with an ellipsis rather than word-wrapped across extra
// output lines.
package termtable

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// terminalWidth returns the terminal column count for stdout. COLUMNS
// overrides detection; 0 means no width constraint applies (stdout is
// not a terminal and COLUMNS is unset).
func terminalWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return n
		}
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return w
}

// Table accumulates rows under fixed headers and renders them
// column-aligned on Flush. Headers and the dash divider are written
// lazily, so a table with no rows produces no output.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// Row appends a row. Extra values past len(headers) are ignored; a row
// shorter than the header count renders its missing cells blank.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush writes the rendered table to stdout. No-op if no rows were added.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, v := range row {
			if i < len(widths) {
				if n := utf8.RuneCountInString(v); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}
	if tw := terminalWidth(); tw > 0 {
		widths = capWidths(widths, t.headers, tw)
	}

	t.printRow(t.headers, widths)

	dividers := make([]string, len(t.headers))
	for i := range t.headers {
		dividers[i] = strings.Repeat("-", widths[i])
	}
	t.printRow(dividers, widths)

	for _, row := range t.rows {
		t.printRow(row, widths)
	}
}

// capWidths shrinks the widest columns, never below their header width,
// until the rendered line (plus the 2-space gap between columns) fits
// termWidth.
func capWidths(widths []int, headers []string, termWidth int) []int {
	result := make([]int, len(widths))
	copy(result, widths)

	minWidths := make([]int, len(headers))
	for i, h := range headers {
		minWidths[i] = utf8.RuneCountInString(h)
	}

	const colGap = 2
	for {
		line := 0
		for _, w := range result {
			line += w
		}
		if len(result) > 1 {
			line += colGap * (len(result) - 1)
		}
		if line <= termWidth {
			break
		}

		maxW, maxI := -1, -1
		for i, w := range result {
			if w > minWidths[i] && w > maxW {
				maxW = w
				maxI = i
			}
		}
		if maxI < 0 {
			break // every column is at its header-width floor
		}

		excess := line - termWidth
		available := result[maxI] - minWidths[maxI]
		if excess > available {
			excess = available
		}
		result[maxI] -= excess
	}
	return result
}

// truncate shortens s to at most width visual runes, replacing the last
// rune with an ellipsis when it doesn't fit.
func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}

func (t *Table) printRow(row []string, widths []int) {
	parts := make([]string, len(widths))
	for i := range widths {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		val = truncate(val, widths[i])
		pad := widths[i] - utf8.RuneCountInString(val)
		if pad < 0 {
			pad = 0
		}
		parts[i] = val + strings.Repeat(" ", pad)
	}
	fmt.Fprintln(os.Stdout, strings.TrimRight(strings.Join(parts, "  "), " "))
}
