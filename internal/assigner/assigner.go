// Package assigner computes a coordinate map from a connection graph
// using one of four algorithms selected by layout, grounded on
// original_source/tt_topology/backend.py's generate_coordinates_mesh and
// generate_coordinates_torus_or_linear. The algorithms share no state
// and are each expressed as a plain function over *discovery.Graph,
// matching the "given a graph, produce coord map or error" shape.
package assigner

import (
	"fmt"

	"github.com/tenstorrent/tt-topology-go/internal/discovery"
	"github.com/tenstorrent/tt-topology-go/internal/xerrors"
)

// Coord is a non-negative integer grid position.
type Coord struct {
	X, Y int
}

// CoordMap maps a graph node index to its assigned coordinate.
type CoordMap map[int]Coord

// Assign dispatches to the algorithm matching layout: cycle-based for
// linear/torus, predicate BFS for mesh, the static table for mesh_v2.
// The directional-BFS variant is available as AssignDirectionalMesh but
// is not reachable through this dispatcher, mirroring the "mesh uses
// predicate BFS in the current design" note this module's algorithms
// were ported from.
func Assign(g *discovery.Graph, layout string) (CoordMap, error) {
	var cm CoordMap
	var err error

	switch layout {
	case "linear", "torus":
		cm, err = AssignCycle(g)
	case "mesh":
		cm, err = AssignPredicateMesh(g)
	case "mesh_v2":
		cm, err = AssignMeshV2(g)
	default:
		return nil, fmt.Errorf("assigner: unsupported layout %q", layout)
	}
	if err != nil {
		return nil, &xerrors.AssignmentError{Layout: layout, Err: err}
	}
	return cm, nil
}

// adjacency builds an undirected adjacency list from the graph's edge
// records, ignoring edge kind.
func adjacency(g *discovery.Graph) map[int][]int {
	adj := make(map[int][]int, len(g.Nodes))
	for _, n := range g.Nodes {
		for _, e := range n.Edges {
			adj[n.Index] = append(adj[n.Index], e.PeerIndex)
		}
	}
	return adj
}

// AssignCycle finds a Hamiltonian cycle if one exists, else the longest
// simple path, and lays the sequence out along the y-axis at x=0 — the
// shape linear and torus layouts both want.
func AssignCycle(g *discovery.Graph) (CoordMap, error) {
	n := len(g.Nodes)
	adj := adjacency(g)

	seq := findCycle(adj, n)
	if seq == nil {
		seq = longestPath(adj, n)
	}
	if len(seq) == 0 {
		return nil, xerrors.ErrNoViableChain
	}

	cm := make(CoordMap, len(seq))
	for i, idx := range seq {
		cm[idx] = Coord{X: 0, Y: i}
	}
	return cm, nil
}

// findCycle searches, from every starting node, for a simple path that
// visits all n nodes and can close back to its start. Returns nil if
// none exists.
func findCycle(adj map[int][]int, n int) []int {
	for start := 0; start < n; start++ {
		visited := make([]bool, n)
		visited[start] = true
		path := []int{start}
		if dfsCycle(adj, start, visited, &path, n) {
			return append([]int(nil), path...)
		}
	}
	return nil
}

func dfsCycle(adj map[int][]int, start int, visited []bool, path *[]int, n int) bool {
	cur := (*path)[len(*path)-1]
	if len(*path) == n {
		for _, p := range adj[cur] {
			if p == start {
				return true
			}
		}
		return false
	}
	for _, next := range adj[cur] {
		if visited[next] {
			continue
		}
		visited[next] = true
		*path = append(*path, next)
		if dfsCycle(adj, start, visited, path, n) {
			return true
		}
		*path = (*path)[:len(*path)-1]
		visited[next] = false
	}
	return false
}

// longestPath returns the longest simple path found over every starting
// node, keeping the first-discovered path on ties.
func longestPath(adj map[int][]int, n int) []int {
	best := []int{}
	for start := 0; start < n; start++ {
		visited := make([]bool, n)
		visited[start] = true
		path := []int{start}
		dfsLongest(adj, &path, visited, &best)
	}
	return best
}

func dfsLongest(adj map[int][]int, path *[]int, visited []bool, best *[]int) {
	if len(*path) > len(*best) {
		*best = append([]int(nil), (*path)...)
	}
	cur := (*path)[len(*path)-1]
	for _, next := range adj[cur] {
		if visited[next] {
			continue
		}
		visited[next] = true
		*path = append(*path, next)
		dfsLongest(adj, path, visited, best)
		*path = (*path)[:len(*path)-1]
		visited[next] = false
	}
}

// AssignDirectionalMesh lays out a mesh using side/link-type hints
// instead of the predicate BFS's trial-and-error placement: tray-fly
// edges always advance +y, a Local/Remote pair always advances +x, and
// any other edge takes whichever axis the parent has not yet used.
func AssignDirectionalMesh(g *discovery.Graph) (CoordMap, error) {
	start, err := findTwoEdgeNode(g)
	if err != nil {
		return nil, err
	}

	usage := make(map[int]*axisUsage)
	coords := CoordMap{start: {0, 0}}
	visited := map[int]bool{start: true}
	queue := []int{start}

	byIndex := make(map[int]*discovery.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byIndex[n.Index] = n
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		parentCoord := coords[cur]

		for _, e := range byIndex[cur].Edges {
			if visited[e.PeerIndex] {
				continue
			}

			var child Coord
			switch {
			case e.Kind == discovery.EdgeT:
				child = Coord{X: parentCoord.X, Y: parentCoord.Y + 1}
				markAxis(usage, cur, false, true)
			case byIndex[cur].Side != byIndex[e.PeerIndex].Side:
				child = Coord{X: parentCoord.X + 1, Y: parentCoord.Y}
				markAxis(usage, cur, true, false)
			default:
				u := usage[cur]
				if u == nil {
					u = &axisUsage{}
					usage[cur] = u
				}
				switch {
				case !u.x:
					child = Coord{X: parentCoord.X + 1, Y: parentCoord.Y}
					u.x = true
				case !u.y:
					child = Coord{X: parentCoord.X, Y: parentCoord.Y + 1}
					u.y = true
				default:
					return nil, xerrors.ErrNoAxisAvailable
				}
			}

			coords[e.PeerIndex] = child
			visited[e.PeerIndex] = true
			queue = append(queue, e.PeerIndex)
		}
	}

	return coords, nil
}

// axisUsage tracks which outbound grid axes a node has already assigned
// to a child, so a directional-BFS node never routes two children along
// the same free axis.
type axisUsage struct{ x, y bool }

func markAxis(usage map[int]*axisUsage, node int, x, y bool) {
	u := usage[node]
	if u == nil {
		u = &axisUsage{}
		usage[node] = u
	}
	if x {
		u.x = true
	}
	if y {
		u.y = true
	}
}

// AssignPredicateMesh places nodes on an integer grid using only
// adjacency, trying candidate offsets in a fixed order and accepting
// the first that keeps every already-placed neighbour at Manhattan
// distance 1 along a single axis.
func AssignPredicateMesh(g *discovery.Graph) (CoordMap, error) {
	start, err := findTwoEdgeNode(g)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[int]*discovery.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byIndex[n.Index] = n
	}

	coords := CoordMap{start: {0, 0}}
	occupied := map[Coord]bool{{0, 0}: true}
	visited := map[int]bool{start: true}
	queue := []int{start}

	offsets := []Coord{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		parentCoord := coords[cur]

		for _, e := range byIndex[cur].Edges {
			if visited[e.PeerIndex] {
				continue
			}

			placed := false
			for _, off := range offsets {
				cand := Coord{X: parentCoord.X + off.X, Y: parentCoord.Y + off.Y}
				if cand.X < 0 || cand.Y < 0 || occupied[cand] {
					continue
				}
				if !consistentWithPlacedNeighbours(byIndex[e.PeerIndex], cand, coords) {
					continue
				}
				coords[e.PeerIndex] = cand
				occupied[cand] = true
				visited[e.PeerIndex] = true
				queue = append(queue, e.PeerIndex)
				placed = true
				break
			}
			if !placed {
				return nil, xerrors.ErrNonPlanarMesh
			}
		}
	}

	if len(coords) != len(g.Nodes) {
		return nil, xerrors.ErrNonPlanarMesh
	}
	return coords, nil
}

func consistentWithPlacedNeighbours(n *discovery.Node, cand Coord, coords CoordMap) bool {
	for _, e := range n.Edges {
		placed, ok := coords[e.PeerIndex]
		if !ok {
			continue
		}
		dx := abs(placed.X - cand.X)
		dy := abs(placed.Y - cand.Y)
		if dx+dy != 1 {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func findTwoEdgeNode(g *discovery.Graph) (int, error) {
	for _, n := range g.Nodes {
		if len(n.Edges) == 2 {
			return n.Index, nil
		}
	}
	return 0, xerrors.ErrNonPlanarMesh
}

// meshV2Table is the fixed index→coordinate mapping for the known
// 8-ASIC, 4-board multi-host mesh configuration.
var meshV2Table = map[int]Coord{
	0: {1, 1}, 4: {0, 1},
	1: {1, 0}, 5: {0, 0},
	2: {2, 1}, 6: {3, 1},
	3: {2, 0}, 7: {3, 0},
}

// AssignMeshV2 applies the static table; it only accepts exactly 8
// nodes, matching the one multi-host configuration it is defined for.
func AssignMeshV2(g *discovery.Graph) (CoordMap, error) {
	if len(g.Nodes) != 8 {
		return nil, fmt.Errorf("mesh_v2 requires exactly 8 ASICs, found %d", len(g.Nodes))
	}
	cm := make(CoordMap, 8)
	for idx, c := range meshV2Table {
		cm[idx] = c
	}
	return cm, nil
}
