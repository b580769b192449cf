// Package render draws the assigned coordinate map as a deterministic
// ASCII grid. original_source/tt_topology/backend.py's
// graph_visualization renders a matplotlib PNG; no plotting library
// appears anywhere in this module's dependency set, so this package is
// a text stand-in written to the --plot_filename path exactly as given
// (text content, whatever the extension) instead of a fabricated
// graphics dependency.
package render

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/tenstorrent/tt-topology-go/internal/assigner"
)

// Grid renders the given coordinate map as a fixed-width text grid, one
// cell per occupied (x,y), origin at bottom-left.
func Grid(cm assigner.CoordMap) string {
	if len(cm) == 0 {
		return ""
	}

	maxX, maxY := 0, 0
	for _, c := range cm {
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}

	byCoord := make(map[assigner.Coord]int, len(cm))
	for idx, c := range cm {
		byCoord[c] = idx
	}

	var buf bytes.Buffer
	for y := maxY; y >= 0; y-- {
		for x := 0; x <= maxX; x++ {
			if idx, ok := byCoord[assigner.Coord{X: x, Y: y}]; ok {
				fmt.Fprintf(&buf, "[%2d]", idx)
			} else {
				buf.WriteString(" .. ")
			}
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// List renders the coordinate map as one line per node, sorted by
// index, for logs and terminals too narrow for the grid.
func List(cm assigner.CoordMap) string {
	indices := make([]int, 0, len(cm))
	for idx := range cm {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var buf bytes.Buffer
	for _, idx := range indices {
		c := cm[idx]
		fmt.Fprintf(&buf, "asic %d -> (%d, %d)\n", idx, c.X, c.Y)
	}
	return buf.String()
}

// WriteFile renders the grid and writes it to path, used for
// --plot_filename.
func WriteFile(path string, cm assigner.CoordMap) error {
	return os.WriteFile(path, []byte(Grid(cm)), 0o644)
}
