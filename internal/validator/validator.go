// Package validator checks the discovered connection graph's edge count
// against the expected count for a regular 2×(n/2) chain of dual-ASIC
// boards, grounded on original_source/tt_topology/backend.py's implicit
// structural checks around generate_connection_map.
package validator

import (
	"github.com/tenstorrent/tt-topology-go/internal/discovery"
	"github.com/tenstorrent/tt-topology-go/internal/xerrors"
)

// Result carries the validator's finding for one graph.
type Result struct {
	Expected int
	Actual   int
	Missing  int
	Extra    int
}

// Fatal reports whether this result should abort the run, which is only
// the case in mesh/mesh_v2 layouts when edges are missing.
func (r Result) Fatal(layout string) bool {
	meshLike := layout == "mesh" || layout == "mesh_v2"
	return meshLike && r.Missing > 0
}

// Warning renders a human-readable finding, or "" if the graph matched
// the expected count exactly.
func (r Result) Warning() string {
	if r.Missing == 0 && r.Extra == 0 {
		return ""
	}
	w := &xerrors.StructuralWarning{Expected: r.Expected, Actual: r.Actual}
	return w.Error()
}

// Check counts the graph's undirected edges and compares them to the
// expected count for a 2×(n/2) dual-ASIC chain, (3n-4)/2. Layouts besides
// mesh/mesh_v2 treat a deficit as a warning only; mesh/mesh_v2 treat it
// as fatal via Result.Fatal.
func Check(g *discovery.Graph, layout string) Result {
	n := len(g.Nodes)
	expected := expectedEdges(n)
	actual := g.EdgeCount()

	missing := 0
	if expected > actual {
		missing = expected - actual
	}
	extra := 0
	if actual > expected {
		extra = actual - expected
	}

	return Result{Expected: expected, Actual: actual, Missing: missing, Extra: extra}
}

// expectedEdges implements (3n-4)/2 for n >= 2; smaller graphs have no
// well-defined chain topology and are treated as needing zero edges.
func expectedEdges(n int) int {
	if n < 2 {
		return 0
	}
	return (3*n - 4) / 2
}
