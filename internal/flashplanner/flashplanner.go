// Package flashplanner computes per-ASIC coordinate and port-disable
// register values and issues the SPI writes (plus the left-to-right
// mirror copy) that apply them, grounded on
// original_source/tt_topology/backend.py's flash_to_default_state and
// flash_to_specified_state.
package flashplanner

import (
	"context"
	"fmt"

	"github.com/tenstorrent/tt-topology-go/internal/assigner"
	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/discovery"
	"github.com/tenstorrent/tt-topology-go/internal/regs"
	"github.com/tenstorrent/tt-topology-go/internal/xerrors"
)

// copySPIToR is the ARC message ID for the firmware's left-to-right SPI
// mirror-copy routine.
const copySPIToR = 0x05

// frameAddr returns the SPI address of a register for the given side:
// the remote frame lives at base+0x100 within the local partner's SPI.
func frameAddr(base uint32, side devicefacade.Side) uint32 {
	if side == devicefacade.SideRemote {
		return base + regs.EthParamRightOffset
	}
	return base
}

// writeTarget resolves the chip that should receive SPI writes on
// behalf of a node: local and single-ASIC nodes write to themselves;
// remote nodes write through their local partner at the +0x100 frame.
func writeTarget(g *discovery.Graph, n *discovery.Node) (devicefacade.Chip, devicefacade.Side, error) {
	if n.Side == devicefacade.SideLocal {
		return n.Chip, devicefacade.SideLocal, nil
	}
	if n.Partner < 0 {
		return nil, 0, fmt.Errorf("node %d has no local partner to write through", n.Index)
	}
	partner := g.Nodes[n.Partner]
	return partner.Chip, devicefacade.SideRemote, nil
}

func le16(mask uint16) [4]byte {
	return [4]byte{byte(mask), byte(mask >> 8), 0, 0}
}

func coordBytes(x, y int) [4]byte {
	return [4]byte{byte(x), byte(y), 0, 0}
}

// FlashDefaults writes the power-on-equivalent state used before
// discovery: left coord (0,0), right coord (1,0) for dual-ASIC boards,
// port-disable either 0 or the isolated pattern, rack/shelf 0, followed
// by the L→R copy for every dual-ASIC local node.
func FlashDefaults(ctx context.Context, g *discovery.Graph, isolated bool) error {
	for _, n := range g.Nodes {
		if n.Side != devicefacade.SideLocal {
			continue
		}

		localDisable := regs.IsolatedPortDisableLocal
		remoteDisable := regs.IsolatedPortDisableRemote
		if !isolated {
			localDisable = [4]byte{}
			remoteDisable = [4]byte{}
		}

		if err := writeCoordAndMask(ctx, n.Chip, frameAddr(regs.EthParamChipCoord, devicefacade.SideLocal), coordBytes(0, 0), frameAddr(regs.EthParamPortDisable, devicefacade.SideLocal), localDisable); err != nil {
			return &xerrors.TransportError{Index: n.Index, Operation: "flash defaults (local)", Err: err}
		}
		if err := writeRackShelf(ctx, n.Chip, devicefacade.SideLocal, 0, 0); err != nil {
			return &xerrors.TransportError{Index: n.Index, Operation: "flash defaults rack/shelf (local)", Err: err}
		}

		if n.Partner >= 0 {
			if err := writeCoordAndMask(ctx, n.Chip, frameAddr(regs.EthParamChipCoord, devicefacade.SideRemote), coordBytes(1, 0), frameAddr(regs.EthParamPortDisable, devicefacade.SideRemote), remoteDisable); err != nil {
				return &xerrors.TransportError{Index: n.Index, Operation: "flash defaults (remote)", Err: err}
			}
			if err := writeRackShelf(ctx, n.Chip, devicefacade.SideRemote, 0, 0); err != nil {
				return &xerrors.TransportError{Index: n.Index, Operation: "flash defaults rack/shelf (remote)", Err: err}
			}
			if err := copyLeftToRight(ctx, n.Chip); err != nil {
				return &xerrors.TransportError{Index: n.Index, Operation: "L->R copy", Err: err}
			}
		}
	}
	return nil
}

// FlashSpecified writes the assigned coordinate and the layout-specific
// port-disable mask for every node, followed by the L→R copy for every
// dual-ASIC local node.
func FlashSpecified(ctx context.Context, g *discovery.Graph, cm assigner.CoordMap, layout string) error {
	byIndex := make(map[int]*discovery.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byIndex[n.Index] = n
	}

	for _, n := range g.Nodes {
		coord, ok := cm[n.Index]
		if !ok {
			return fmt.Errorf("node %d has no assigned coordinate", n.Index)
		}
		mask := PortDisableMask(g, byIndex, n, cm, layout)

		chip, side, err := writeTarget(g, n)
		if err != nil {
			return &xerrors.TransportError{Index: n.Index, Operation: "resolve write target", Err: err}
		}

		if err := writeCoordAndMask(ctx, chip, frameAddr(regs.EthParamChipCoord, side), coordBytes(coord.X, coord.Y), frameAddr(regs.EthParamPortDisable, side), le16(mask)); err != nil {
			return &xerrors.TransportError{Index: n.Index, Operation: "flash specified state", Err: err}
		}
	}

	for _, n := range g.Nodes {
		if n.Side == devicefacade.SideLocal && n.Partner >= 0 {
			if err := copyLeftToRight(ctx, n.Chip); err != nil {
				return &xerrors.TransportError{Index: n.Index, Operation: "L->R copy", Err: err}
			}
		}
	}
	return nil
}

// PortDisableMask computes the port-disable bitmask for one node:
// always 0 for mesh/mesh_v2, and for linear/torus, 0xFFFF with bit
// `port` cleared for every port whose peer is the node's predecessor or
// successor in the assigned coordinate sequence.
func PortDisableMask(g *discovery.Graph, byIndex map[int]*discovery.Node, n *discovery.Node, cm assigner.CoordMap, layout string) uint16 {
	if layout == "mesh" || layout == "mesh_v2" {
		return 0
	}

	coord := cm[n.Index]
	mask := uint16(0xFFFF)
	for _, e := range n.Edges {
		peerCoord, ok := cm[e.PeerIndex]
		if !ok {
			continue
		}
		if peerCoord.Y == coord.Y+1 || peerCoord.Y == coord.Y-1 {
			mask &^= 1 << uint(e.Port)
			continue
		}
		// torus wrap: endpoints of the cycle are adjacent too.
		if layout == "torus" {
			last := len(g.Nodes) - 1
			if (coord.Y == 0 && peerCoord.Y == last) || (coord.Y == last && peerCoord.Y == 0) {
				mask &^= 1 << uint(e.Port)
			}
		}
	}
	return mask
}

func writeCoordAndMask(ctx context.Context, chip devicefacade.Chip, coordAddr uint32, coord [4]byte, maskAddr uint32, mask [4]byte) error {
	if err := chip.WriteSPI(ctx, coordAddr, coord); err != nil {
		return err
	}
	if got, err := chip.ReadSPI(ctx, coordAddr); err != nil || got != coord {
		if err != nil {
			return err
		}
		return fmt.Errorf("coord readback mismatch: wrote %v, read %v", coord, got)
	}
	if err := chip.WriteSPI(ctx, maskAddr, mask); err != nil {
		return err
	}
	if got, err := chip.ReadSPI(ctx, maskAddr); err != nil || got != mask {
		if err != nil {
			return err
		}
		return fmt.Errorf("port-disable readback mismatch: wrote %v, read %v", mask, got)
	}
	return nil
}

func writeRackShelf(ctx context.Context, chip devicefacade.Chip, side devicefacade.Side, shelf, rack byte) error {
	return chip.WriteSPI(ctx, frameAddr(regs.EthParamRackShelf, side), [4]byte{shelf, rack, 0, 0})
}

func copyLeftToRight(ctx context.Context, chip devicefacade.Chip) error {
	_, err := chip.SendARCMessage(ctx, copySPIToR, 0, 0)
	return err
}

// meshPatchLeftA/B list which node coordinates receive the left-A
// routing-disable pattern vs the left-B pattern in the multi-host mesh
// patch for the mesh layout.
var (
	meshPatchLeftA = []assigner.Coord{{1, 0}, {2, 0}}
	meshPatchLeftB = []assigner.Coord{{1, 1}, {2, 1}}
)

// meshV2PatchLeftA/B key the same patch by PCI-slot index instead of
// coordinate, for the static mesh_v2 table.
var (
	meshV2PatchLeftA = map[int]bool{0: true, 2: true}
	meshV2PatchLeftB = map[int]bool{1: true, 3: true}
)

// ApplyMultiHostMeshPatch overwrites the coord-check-disable and
// routing-disable slots on the selected boards of an 8-ASIC dual-ASIC
// mesh, then issues the L→R copy. It is a no-op unless the graph is
// exactly 8 dual-ASIC nodes and the layout is mesh or mesh_v2.
//
// Board selection is keyed on the local ASIC's assigned coordinate
// (mesh) or PCI-slot index (mesh_v2). A selected board gets both
// halves of the patch: the left routing-disable value (0xC002 or
// 0x0302) in its own frame, and the fixed right value (0x02) in its
// partner's +0x100 frame — spec.md §4.5 names both slots explicitly,
// since only patching the local frame leaves the remote ASIC routing
// unconstrained.
func ApplyMultiHostMeshPatch(ctx context.Context, g *discovery.Graph, cm assigner.CoordMap, layout string) error {
	if len(g.Nodes) != 8 {
		return nil
	}
	if layout != "mesh" && layout != "mesh_v2" {
		return nil
	}

	for _, n := range g.Nodes {
		if n.Side != devicefacade.SideLocal || n.Partner < 0 {
			continue
		}

		var leftA, leftB bool
		if layout == "mesh_v2" {
			leftA = meshV2PatchLeftA[n.Index]
			leftB = meshV2PatchLeftB[n.Index]
		} else {
			leftA = containsCoord(meshPatchLeftA, cm[n.Index])
			leftB = containsCoord(meshPatchLeftB, cm[n.Index])
		}
		if !leftA && !leftB {
			continue
		}
		var routingLeft uint32
		if leftA {
			routingLeft = regs.RoutingDisableLeftA
		} else {
			routingLeft = regs.RoutingDisableLeftB
		}

		if err := n.Chip.WriteSPI(ctx, frameAddr(regs.EthParamCoordCheckDisable, devicefacade.SideLocal), [4]byte{0, 0, 0, 0}); err != nil {
			return &xerrors.TransportError{Index: n.Index, Operation: "mesh patch coord-check-disable (local)", Err: err}
		}
		if err := n.Chip.WriteSPI(ctx, frameAddr(regs.EthParamRoutingDisable, devicefacade.SideLocal), le32Bytes(routingLeft)); err != nil {
			return &xerrors.TransportError{Index: n.Index, Operation: "mesh patch routing-disable (local)", Err: err}
		}

		if err := n.Chip.WriteSPI(ctx, frameAddr(regs.EthParamCoordCheckDisable, devicefacade.SideRemote), [4]byte{0, 0, 0, 0}); err != nil {
			return &xerrors.TransportError{Index: n.Index, Operation: "mesh patch coord-check-disable (remote)", Err: err}
		}
		if err := n.Chip.WriteSPI(ctx, frameAddr(regs.EthParamRoutingDisable, devicefacade.SideRemote), le32Bytes(regs.RoutingDisableRight)); err != nil {
			return &xerrors.TransportError{Index: n.Index, Operation: "mesh patch routing-disable (remote)", Err: err}
		}
	}

	for _, n := range g.Nodes {
		if n.Side == devicefacade.SideLocal && n.Partner >= 0 {
			if err := copyLeftToRight(ctx, n.Chip); err != nil {
				return &xerrors.TransportError{Index: n.Index, Operation: "mesh patch L->R copy", Err: err}
			}
		}
	}
	return nil
}

func containsCoord(set []assigner.Coord, c assigner.Coord) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

func le32Bytes(v uint32) [4]byte {
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
