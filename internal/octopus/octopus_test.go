package octopus

import (
	"context"
	"testing"

	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/devicefake"
	"github.com/tenstorrent/tt-topology-go/internal/regs"
)

func TestEnableMoboLinks(t *testing.T) {
	c := devicefake.NewChip(0, devicefacade.SideLocal)
	chips := []devicefacade.Chip{c}
	if err := EnableMoboLinks(context.Background(), chips); err != nil {
		t.Fatalf("EnableMoboLinks: %v", err)
	}
	got, _ := c.ReadSPI(context.Background(), regs.EthParamMoboEthEnable)
	if got[0] != regs.MoboEthEnableValue {
		t.Errorf("mobo-eth-enable = %v, want first byte %#x", got, regs.MoboEthEnableValue)
	}
}

func TestSetInitialCoords(t *testing.T) {
	c := devicefake.NewChip(0, devicefacade.SideLocal)
	chips := []devicefacade.Chip{c}
	if err := SetInitialCoords(context.Background(), chips); err != nil {
		t.Fatalf("SetInitialCoords: %v", err)
	}
	coord, _ := c.ReadSPI(context.Background(), regs.EthParamChipCoord)
	if coord != ([4]byte{}) {
		t.Errorf("coord = %v, want zero", coord)
	}
}

func TestAssignFromRemoteShelfMappingAndOrder(t *testing.T) {
	c0 := devicefake.NewChip(0, devicefacade.SideLocal)
	c1 := devicefake.NewChip(1, devicefacade.SideLocal)
	chips := []devicefacade.Chip{c0, c1}

	neighbours := []*RemoteNeighbour{
		{Shelf: 1, X: 5, Y: 0},
		{Shelf: 1, X: 2, Y: 0},
	}

	if err := AssignFromRemote(context.Background(), chips, neighbours); err != nil {
		t.Fatalf("AssignFromRemote: %v", err)
	}

	// c1 has the smaller remote X, so it should be numbered 0; c0 numbered 1.
	coord0, _ := c0.ReadSPI(context.Background(), regs.EthParamChipCoord)
	coord1, _ := c1.ReadSPI(context.Background(), regs.EthParamChipCoord)
	if coord1[0] != 0 || coord0[0] != 1 {
		t.Errorf("coord0=%v coord1=%v, want coord1 numbered before coord0", coord0, coord1)
	}

	shelf0, _ := c0.ReadSPI(context.Background(), regs.EthParamRackShelf)
	if shelf0[0] != 0 {
		t.Errorf("local shelf = %d, want 0 for remote shelf 1", shelf0[0])
	}
}

func TestAssignFromRemoteSkipsNilNeighbour(t *testing.T) {
	c0 := devicefake.NewChip(0, devicefacade.SideLocal)
	chips := []devicefacade.Chip{c0}
	if err := AssignFromRemote(context.Background(), chips, []*RemoteNeighbour{nil}); err != nil {
		t.Fatalf("AssignFromRemote: %v", err)
	}
}
