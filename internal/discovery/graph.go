// Package discovery reads each ASIC's ethernet identity and port
// registers and reconstructs the undirected connection graph between
// boards, grounded on original_source/tt_topology/backend.py's
// generate_connection_map and get_eth_config_state.
package discovery

import (
	"github.com/tenstorrent/tt-topology-go/internal/boardcatalog"
	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
)

// EdgeKind distinguishes a cable link from an on-board tray-fly link.
type EdgeKind string

const (
	EdgeX EdgeKind = "X"
	EdgeT EdgeKind = "T"
)

// Edge is one endpoint's view of a connection to a peer node.
type Edge struct {
	PeerIndex int
	Port      int
	Kind      EdgeKind
}

// Node is one ASIC's record in the connection graph.
type Node struct {
	Index    int
	Identity uint64
	Family   boardcatalog.Family
	Side     devicefacade.Side
	Chip     devicefacade.Chip

	// Partner is the index of this node's local/remote counterpart on
	// the same physical board, or -1 if this ASIC has none (single-ASIC
	// boards, or its partner is unreachable on this host).
	Partner int

	Edges []Edge
}

// Graph is the full set of discovered nodes, indexed the same way the
// driver enumerated them.
type Graph struct {
	Nodes []*Node
}

// ByIdentity returns the node with the given ethernet identity, or nil.
func (g *Graph) ByIdentity(identity uint64) *Node {
	for _, n := range g.Nodes {
		if n.Identity == identity {
			return n
		}
	}
	return nil
}

// LocalCount returns the number of nodes reached directly (Side ==
// SideLocal).
func (g *Graph) LocalCount() int {
	count := 0
	for _, n := range g.Nodes {
		if n.Side == devicefacade.SideLocal {
			count++
		}
	}
	return count
}

// EdgeCount returns the number of distinct undirected edges in the
// graph (each recorded on both endpoints, counted once).
func (g *Graph) EdgeCount() int {
	seen := make(map[[2]int]bool)
	count := 0
	for _, n := range g.Nodes {
		for _, e := range n.Edges {
			a, b := n.Index, e.PeerIndex
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if !seen[key] {
				seen[key] = true
				count++
			}
		}
	}
	return count
}

// addEdge records an edge from n to peer at the given port/kind,
// skipping it if an edge to that peer already exists.
func (n *Node) addEdge(peerIndex, port int, kind EdgeKind) {
	for _, e := range n.Edges {
		if e.PeerIndex == peerIndex {
			return
		}
	}
	n.Edges = append(n.Edges, Edge{PeerIndex: peerIndex, Port: port, Kind: kind})
}
