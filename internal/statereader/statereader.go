// Package statereader snapshots each ASIC's SPI parameter state before
// and after a flash phase, grounded on
// original_source/tt_topology/backend.py's get_eth_config_state, which
// reads firmware version, chip-coord, port-disable and rack/shelf per
// ASIC and asserts all firmware versions agree.
package statereader

import (
	"context"
	"fmt"

	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/discovery"
	"github.com/tenstorrent/tt-topology-go/internal/regs"
	"github.com/tenstorrent/tt-topology-go/internal/xerrors"
)

// Snapshot is one ASIC's SPI parameter state at a point in time. Dual-
// ASIC boards carry both LocalCoord/RemoteCoord etc., since the remote
// triple lives in the local partner's SPI at +0x100.
type Snapshot struct {
	Index           int
	FirmwareVersion uint32

	LocalCoord       [2]byte
	LocalPortDisable uint16
	LocalRackShelf   [2]byte

	HasRemote         bool
	RemoteCoord       [2]byte
	RemotePortDisable uint16
	RemoteRackShelf   [2]byte
}

// Read takes a snapshot of every node reached directly (Side ==
// SideLocal); remote nodes are captured as part of their partner's
// snapshot. It fails if any two ASICs report different firmware
// versions.
func Read(ctx context.Context, g *discovery.Graph) ([]Snapshot, error) {
	var snaps []Snapshot
	var firstVersion uint32
	haveFirst := false

	for _, n := range g.Nodes {
		if n.Side != devicefacade.SideLocal {
			continue
		}

		fw, err := readLE32(ctx, n.Chip, regs.EthFWVersionAddr)
		if err != nil {
			return nil, &xerrors.TransportError{Index: n.Index, Operation: "read firmware version", Err: err}
		}
		if !haveFirst {
			firstVersion = fw
			haveFirst = true
		} else if fw != firstVersion {
			return nil, &xerrors.DiscoveryError{Index: n.Index, Err: xerrors.ErrFirmwareMismatch}
		}

		s := Snapshot{Index: n.Index, FirmwareVersion: fw}

		coord, err := n.Chip.ReadSPI(ctx, regs.EthParamChipCoord)
		if err != nil {
			return nil, &xerrors.TransportError{Index: n.Index, Operation: "read local coord", Err: err}
		}
		s.LocalCoord = [2]byte{coord[0], coord[1]}

		disable, err := n.Chip.ReadSPI(ctx, regs.EthParamPortDisable)
		if err != nil {
			return nil, &xerrors.TransportError{Index: n.Index, Operation: "read local port-disable", Err: err}
		}
		s.LocalPortDisable = uint16(disable[0]) | uint16(disable[1])<<8

		rackShelf, err := n.Chip.ReadSPI(ctx, regs.EthParamRackShelf)
		if err != nil {
			return nil, &xerrors.TransportError{Index: n.Index, Operation: "read local rack/shelf", Err: err}
		}
		s.LocalRackShelf = [2]byte{rackShelf[0], rackShelf[1]}

		if n.Partner >= 0 {
			s.HasRemote = true

			rcoord, err := n.Chip.ReadSPI(ctx, regs.EthParamChipCoord+regs.EthParamRightOffset)
			if err != nil {
				return nil, &xerrors.TransportError{Index: n.Index, Operation: "read remote coord", Err: err}
			}
			s.RemoteCoord = [2]byte{rcoord[0], rcoord[1]}

			rdisable, err := n.Chip.ReadSPI(ctx, regs.EthParamPortDisable+regs.EthParamRightOffset)
			if err != nil {
				return nil, &xerrors.TransportError{Index: n.Index, Operation: "read remote port-disable", Err: err}
			}
			s.RemotePortDisable = uint16(rdisable[0]) | uint16(rdisable[1])<<8

			rrackShelf, err := n.Chip.ReadSPI(ctx, regs.EthParamRackShelf+regs.EthParamRightOffset)
			if err != nil {
				return nil, &xerrors.TransportError{Index: n.Index, Operation: "read remote rack/shelf", Err: err}
			}
			s.RemoteRackShelf = [2]byte{rrackShelf[0], rrackShelf[1]}
		}

		snaps = append(snaps, s)
	}

	return snaps, nil
}

func readLE32(ctx context.Context, chip devicefacade.Chip, addr uint32) (uint32, error) {
	b, err := chip.ReadSPI(ctx, addr)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// String renders a snapshot line suitable for --list output.
func (s Snapshot) String() string {
	if s.HasRemote {
		return fmt.Sprintf("asic %d: local=(%d,%d) mask=%#04x remote=(%d,%d) mask=%#04x",
			s.Index, s.LocalCoord[0], s.LocalCoord[1], s.LocalPortDisable,
			s.RemoteCoord[0], s.RemoteCoord[1], s.RemotePortDisable)
	}
	return fmt.Sprintf("asic %d: local=(%d,%d) mask=%#04x", s.Index, s.LocalCoord[0], s.LocalCoord[1], s.LocalPortDisable)
}
