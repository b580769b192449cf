package devicefake

import (
	"context"
	"errors"
	"testing"

	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
)

func TestChipSPIRoundTrip(t *testing.T) {
	c := NewChip(0, devicefacade.SideLocal)
	ctx := context.Background()

	if err := c.WriteSPI(ctx, 0x21100, [4]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteSPI: %v", err)
	}
	got, err := c.ReadSPI(ctx, 0x21100)
	if err != nil {
		t.Fatalf("ReadSPI: %v", err)
	}
	if got != [4]byte{1, 2, 3, 4} {
		t.Errorf("ReadSPI = %v, want {1,2,3,4}", got)
	}
}

func TestChipSPIWriteFailure(t *testing.T) {
	c := NewChip(0, devicefacade.SideLocal)
	c.FailSPIWrite = errors.New("transport down")

	if err := c.WriteSPI(context.Background(), 0x0, [4]byte{}); err == nil {
		t.Error("expected WriteSPI to fail")
	}
}

func TestChipNoCPreload(t *testing.T) {
	c := NewChip(1, devicefacade.SideRemote)
	c.SetNoC(0, 9, 0, 0x1EC0+72*4, [4]byte{0xAA, 0, 0, 0})

	got, err := c.ReadNoC(context.Background(), 0, 9, 0, 0x1EC0+72*4)
	if err != nil {
		t.Fatalf("ReadNoC: %v", err)
	}
	if got[0] != 0xAA {
		t.Errorf("ReadNoC = %v, want first byte 0xAA", got)
	}
}

func TestChipARCMessageRecording(t *testing.T) {
	c := NewChip(0, devicefacade.SideLocal)
	if _, err := c.SendARCMessage(context.Background(), 0x5A, 1, 2); err != nil {
		t.Fatalf("SendARCMessage: %v", err)
	}
	if len(c.ARCMessages) != 1 || c.ARCMessages[0].MsgID != 0x5A {
		t.Errorf("ARCMessages = %+v, want one call with MsgID 0x5A", c.ARCMessages)
	}
}

func TestDriverChips(t *testing.T) {
	d := NewDriver(NewChip(0, devicefacade.SideLocal), NewChip(1, devicefacade.SideRemote))
	chips, err := d.Chips(context.Background())
	if err != nil {
		t.Fatalf("Chips: %v", err)
	}
	if len(chips) != 2 {
		t.Fatalf("Chips returned %d, want 2", len(chips))
	}
	if chips[0].Side() != devicefacade.SideLocal || chips[1].Side() != devicefacade.SideRemote {
		t.Error("Chips did not preserve side assignment")
	}
}

func TestDriverLocalDeviceCount(t *testing.T) {
	d := NewDriver(NewChip(0, devicefacade.SideLocal), NewChip(1, devicefacade.SideRemote), NewChip(2, devicefacade.SideLocal))
	got, err := d.LocalDeviceCount(context.Background())
	if err != nil {
		t.Fatalf("LocalDeviceCount: %v", err)
	}
	if got != 2 {
		t.Errorf("LocalDeviceCount() = %d, want 2", got)
	}

	d.WithLocalCount(5)
	got, _ = d.LocalDeviceCount(context.Background())
	if got != 5 {
		t.Errorf("after WithLocalCount(5), LocalDeviceCount() = %d, want 5", got)
	}
}
