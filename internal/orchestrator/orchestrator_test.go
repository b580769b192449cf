package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/devicefake"
	"github.com/tenstorrent/tt-topology-go/internal/regs"
)

func le32Bytes(v uint32) [4]byte {
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func setIdentity(c *devicefake.Chip, port int, boardType, boardID uint32) {
	x, y := regs.PortXY(port)
	c.SetNoC(0, x, y, regs.L1ParamBoardType, le32Bytes(boardType))
	c.SetNoC(0, x, y, regs.L1ParamBoardID, le32Bytes(boardID))
}

func linkPort(a *devicefake.Chip, port int, peerType, peerID uint32) {
	x, y := regs.PortXY(port)
	a.SetNoC(0, x, y, regs.TestResultRemoteType, le32Bytes(peerType))
	a.SetNoC(0, x, y, regs.TestResultRemoteID, le32Bytes(peerID))
}

func noopDeps(driver devicefacade.Driver) Deps {
	return Deps{
		Driver: driver,
		Reset:  func(context.Context) error { return nil },
		Sleep:  func(time.Duration) {},
	}
}

func TestRunNoDevicesFails(t *testing.T) {
	driver := devicefake.NewDriver()
	_, err := Run(context.Background(), noopDeps(driver), Options{Layout: "isolated"})
	if err == nil {
		t.Fatal("expected error for empty device set")
	}
}

func TestRunIsolatedStopsEarly(t *testing.T) {
	local := devicefake.NewChip(0, devicefacade.SideLocal)
	remote := devicefake.NewChip(1, devicefacade.SideRemote)
	setIdentity(local, 0, 0x43, 0x1)
	setIdentity(remote, 0, 0x44, 0x1)
	linkPort(local, 14, 0x44, 0x1)
	linkPort(remote, 6, 0x43, 0x1)

	driver := devicefake.NewDriver(local, remote)
	rec, err := Run(context.Background(), noopDeps(driver), Options{Layout: "isolated"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rec.Success {
		t.Error("expected Success true for isolated run")
	}
	if len(rec.Connections) != 0 {
		t.Error("isolated run should not populate connections")
	}
}

func TestRunLinearFullSequence(t *testing.T) {
	// Two dual-ASIC boards wired as a 4-node chain:
	// local0 --(T)-- remote1 --(T, cross-board)-- local2 --(T)-- remote3
	// (remote port 7 and local port 15 are both tray-fly ports)
	l0 := devicefake.NewChip(0, devicefacade.SideLocal)
	r1 := devicefake.NewChip(1, devicefacade.SideRemote)
	l2 := devicefake.NewChip(2, devicefacade.SideLocal)
	r3 := devicefake.NewChip(3, devicefacade.SideRemote)

	// Board 0 (l0/r1) shares board-id 0x1, board 1 (l2/r3) shares 0x2;
	// local vs remote is distinguished by board type (0x43 vs 0x44).
	setIdentity(l0, 0, 0x43, 0x1)
	setIdentity(r1, 0, 0x44, 0x1)
	setIdentity(l2, 0, 0x43, 0x2)
	setIdentity(r3, 0, 0x44, 0x2)

	linkPort(l0, 14, 0x44, 0x1)
	linkPort(r1, 6, 0x43, 0x1)

	linkPort(r1, 7, 0x43, 0x2)
	linkPort(l2, 15, 0x44, 0x1)

	linkPort(l2, 14, 0x44, 0x2)
	linkPort(r3, 6, 0x43, 0x2)

	driver := devicefake.NewDriver(l0, r1, l2, r3)
	rec, err := Run(context.Background(), noopDeps(driver), Options{Layout: "linear"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rec.Success {
		t.Errorf("expected success, got error %q", rec.Error)
	}
	if len(rec.Coordinates) != 4 {
		t.Errorf("Coordinates has %d entries, want 4", len(rec.Coordinates))
	}
	if len(rec.FinalState) == 0 {
		t.Error("expected non-empty final state snapshot")
	}
}
