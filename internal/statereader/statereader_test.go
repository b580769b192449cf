package statereader

import (
	"context"
	"testing"

	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/devicefake"
	"github.com/tenstorrent/tt-topology-go/internal/discovery"
	"github.com/tenstorrent/tt-topology-go/internal/regs"
)

func le32(v uint32) [4]byte {
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func TestReadAgreeingFirmware(t *testing.T) {
	local := devicefake.NewChip(0, devicefacade.SideLocal)
	local.SetSPI(regs.EthFWVersionAddr, le32(0x010203))
	local.SetSPI(regs.EthParamChipCoord, [4]byte{3, 4, 0, 0})
	local.SetSPI(regs.EthParamPortDisable, [4]byte{0xFF, 0x00, 0, 0})

	g := &discovery.Graph{Nodes: []*discovery.Node{
		{Index: 0, Side: devicefacade.SideLocal, Chip: local, Partner: -1},
	}}

	snaps, err := Read(context.Background(), g)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
	if snaps[0].LocalCoord != ([2]byte{3, 4}) {
		t.Errorf("LocalCoord = %v, want (3,4)", snaps[0].LocalCoord)
	}
	if snaps[0].LocalPortDisable != 0x00FF {
		t.Errorf("LocalPortDisable = %#04x, want 0x00ff", snaps[0].LocalPortDisable)
	}
	if snaps[0].HasRemote {
		t.Error("single-ASIC node should not report HasRemote")
	}
}

func TestReadFirmwareMismatchFails(t *testing.T) {
	a := devicefake.NewChip(0, devicefacade.SideLocal)
	a.SetSPI(regs.EthFWVersionAddr, le32(1))
	b := devicefake.NewChip(1, devicefacade.SideLocal)
	b.SetSPI(regs.EthFWVersionAddr, le32(2))

	g := &discovery.Graph{Nodes: []*discovery.Node{
		{Index: 0, Side: devicefacade.SideLocal, Chip: a, Partner: -1},
		{Index: 1, Side: devicefacade.SideLocal, Chip: b, Partner: -1},
	}}

	if _, err := Read(context.Background(), g); err == nil {
		t.Error("expected firmware mismatch error")
	}
}

func TestReadDualASICIncludesRemote(t *testing.T) {
	local := devicefake.NewChip(0, devicefacade.SideLocal)
	local.SetSPI(regs.EthParamChipCoord+regs.EthParamRightOffset, [4]byte{1, 0, 0, 0})

	g := &discovery.Graph{Nodes: []*discovery.Node{
		{Index: 0, Side: devicefacade.SideLocal, Chip: local, Partner: 1},
		{Index: 1, Side: devicefacade.SideRemote, Chip: devicefake.NewChip(1, devicefacade.SideRemote), Partner: 0},
	}}

	snaps, err := Read(context.Background(), g)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !snaps[0].HasRemote {
		t.Fatal("expected HasRemote true for dual-ASIC node")
	}
	if snaps[0].RemoteCoord != ([2]byte{1, 0}) {
		t.Errorf("RemoteCoord = %v, want (1,0)", snaps[0].RemoteCoord)
	}
}
