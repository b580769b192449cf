package discovery

import (
	"context"
	"fmt"

	"github.com/tenstorrent/tt-topology-go/internal/boardcatalog"
	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/regs"
	"github.com/tenstorrent/tt-topology-go/internal/xerrors"
)

const portCount = 16

// Build reads every chip's ethernet identity and port registers and
// returns the connection graph. warn, if non-nil, is called once per
// port whose peer belongs to a chip on another host; Build never prints
// directly.
func Build(ctx context.Context, chips []devicefacade.Chip, warn func(string)) (*Graph, error) {
	if warn == nil {
		warn = func(string) {}
	}

	g := &Graph{}
	identityOf := make(map[int]uint64, len(chips))

	for _, c := range chips {
		identity, err := readIdentity(ctx, c)
		if err != nil {
			return nil, &xerrors.DiscoveryError{Index: c.Index(), Err: err}
		}
		family, _ := boardcatalog.Extract(identity)
		n := &Node{
			Index:    c.Index(),
			Identity: identity,
			Family:   family,
			Side:     c.Side(),
			Chip:     c,
			Partner:  -1,
		}
		g.Nodes = append(g.Nodes, n)
		identityOf[c.Index()] = identity
	}

	resolvePartners(g)

	for _, n := range g.Nodes {
		for port := 0; port < portCount; port++ {
			x, y := regs.PortXY(port)
			rawType, err := n.Chip.ReadNoC(ctx, 0, x, y, regs.TestResultRemoteType)
			if err != nil {
				return nil, &xerrors.DiscoveryError{Index: n.Index, Err: err}
			}
			rawID, err := n.Chip.ReadNoC(ctx, 0, x, y, regs.TestResultRemoteID)
			if err != nil {
				return nil, &xerrors.DiscoveryError{Index: n.Index, Err: err}
			}
			peerType := le32(rawType)
			peerID := le32(rawID)
			if peerType == 0 && peerID == 0 {
				continue // port unconnected
			}
			peerIdentity := (uint64(peerType) << 32) | uint64(peerID)

			peer := g.ByIdentity(peerIdentity)
			if peer == nil {
				warn(fmt.Sprintf("asic %d port %d: peer %016x not on this host, skipping", n.Index, port, peerIdentity))
				continue
			}

			kind := EdgeX
			if regs.TrayFlyPort(port, n.Side == devicefacade.SideRemote) {
				kind = EdgeT
			}
			n.addEdge(peer.Index, port, kind)
		}
	}

	return g, nil
}

// readIdentity probes ports 0..15 for the first non-zero local board
// type/id pair, which is firmware-version-agnostic since it does not
// depend on a dedicated identity register surviving across firmware
// revisions.
func readIdentity(ctx context.Context, c devicefacade.Chip) (uint64, error) {
	for port := 0; port < portCount; port++ {
		x, y := regs.PortXY(port)
		rawType, err := c.ReadNoC(ctx, 0, x, y, regs.L1ParamBoardType)
		if err != nil {
			return 0, err
		}
		boardType := le32(rawType)
		if boardType == 0 {
			continue
		}
		rawID, err := c.ReadNoC(ctx, 0, x, y, regs.L1ParamBoardID)
		if err != nil {
			return 0, err
		}
		boardID := le32(rawID)
		return (uint64(boardType) << 32) | uint64(boardID), nil
	}
	return 0, xerrors.ErrIdentityUnreadable
}

// resolvePartners links each remote node to the local node sharing the
// low 32 bits of its ethernet identity (the board-id component, shared
// by both ASICs of one physical board).
func resolvePartners(g *Graph) {
	byBoardID := make(map[uint32][]*Node)
	for _, n := range g.Nodes {
		key := uint32(n.Identity & 0xFFFFFFFF)
		byBoardID[key] = append(byBoardID[key], n)
	}
	for _, group := range byBoardID {
		if len(group) != 2 {
			continue
		}
		a, b := group[0], group[1]
		if a.Side == b.Side {
			continue
		}
		a.Partner = b.Index
		b.Partner = a.Index
	}
}

func le32(b [4]byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
