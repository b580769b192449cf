package validator

import (
	"testing"

	"github.com/tenstorrent/tt-topology-go/internal/discovery"
)

func graphWithEdges(n, edges int) *discovery.Graph {
	g := &discovery.Graph{}
	for i := 0; i < n; i++ {
		g.Nodes = append(g.Nodes, &discovery.Node{Index: i})
	}
	added := 0
	for i := 0; i < n && added < edges; i++ {
		for j := i + 1; j < n && added < edges; j++ {
			g.Nodes[i].Edges = append(g.Nodes[i].Edges, discovery.Edge{PeerIndex: j, Kind: discovery.EdgeX})
			g.Nodes[j].Edges = append(g.Nodes[j].Edges, discovery.Edge{PeerIndex: i, Kind: discovery.EdgeX})
			added++
		}
	}
	return g
}

func TestCheckExactMatch(t *testing.T) {
	// n=8 dual-ASIC chain: expected = (3*8-4)/2 = 10
	g := graphWithEdges(8, 10)
	r := Check(g, "linear")
	if r.Missing != 0 || r.Extra != 0 {
		t.Errorf("Check() = %+v, want exact match", r)
	}
	if r.Warning() != "" {
		t.Errorf("Warning() = %q, want empty", r.Warning())
	}
}

func TestCheckMissingIsWarningForLinear(t *testing.T) {
	g := graphWithEdges(8, 8)
	r := Check(g, "linear")
	if r.Missing != 2 {
		t.Fatalf("Missing = %d, want 2", r.Missing)
	}
	if r.Fatal("linear") {
		t.Error("linear layout should not be fatal on missing edges")
	}
	if r.Warning() == "" {
		t.Error("expected a non-empty warning")
	}
}

func TestCheckMissingIsFatalForMesh(t *testing.T) {
	g := graphWithEdges(8, 8)
	r := Check(g, "mesh")
	if !r.Fatal("mesh") {
		t.Error("mesh layout should be fatal on missing edges")
	}
}

func TestCheckExtraIsAlwaysWarning(t *testing.T) {
	g := graphWithEdges(8, 12)
	r := Check(g, "mesh")
	if r.Extra != 2 {
		t.Fatalf("Extra = %d, want 2", r.Extra)
	}
	if r.Fatal("mesh") {
		t.Error("extra edges alone should never be fatal")
	}
}
