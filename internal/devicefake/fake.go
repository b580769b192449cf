// Package devicefake implements internal/devicefacade.Driver and Chip as
// in-memory doubles, grounded on the teacher's pkg/newtron/device test
// fakes (a map-backed stand-in for the Redis-backed device client) and
// used by this module's internal/discovery, internal/flashplanner,
// internal/statereader, internal/octopus and internal/orchestrator
// tests in place of real silicon.
package devicefake

import (
	"context"
	"fmt"
	"sync"

	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
)

// nocKey addresses a fake chip's NoC register space.
type nocKey struct {
	ring, x, y int
	addr       uint32
}

// Chip is an in-memory devicefacade.Chip. SPI is modeled as a flat
// address space; NoC is modeled as a keyed map so tests can wire one
// chip's "remote read" to reflect another chip's identity, simulating a
// live ethernet link.
type Chip struct {
	mu   sync.Mutex
	idx  int
	side devicefacade.Side

	spi map[uint32][4]byte
	noc map[nocKey][4]byte

	// ARCMessages records every message sent to this chip, in order,
	// for test assertions.
	ARCMessages []ARCCall

	// FailSPIWrite, when set, makes every WriteSPI call return this
	// error instead of succeeding, modeling a transport fault.
	FailSPIWrite error
}

// ARCCall records one SendARCMessage invocation.
type ARCCall struct {
	MsgID uint8
	Args  []uint16
}

// NewChip returns an empty fake chip at the given index and side.
func NewChip(idx int, side devicefacade.Side) *Chip {
	return &Chip{
		idx:  idx,
		side: side,
		spi:  make(map[uint32][4]byte),
		noc:  make(map[nocKey][4]byte),
	}
}

func (c *Chip) Index() int               { return c.idx }
func (c *Chip) Side() devicefacade.Side  { return c.side }

// SetSPI preloads a SPI word, used by tests to seed identity/coordinate
// state before exercising discovery or the flash planner.
func (c *Chip) SetSPI(addr uint32, value [4]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spi[addr] = value
}

// SetNoC preloads a NoC word, used by tests to model what a neighboring
// chip reports over an ethernet port.
func (c *Chip) SetNoC(ring, x, y int, addr uint32, value [4]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noc[nocKey{ring, x, y, addr}] = value
}

func (c *Chip) ReadSPI(_ context.Context, addr uint32) ([4]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spi[addr], nil
}

func (c *Chip) WriteSPI(_ context.Context, addr uint32, value [4]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailSPIWrite != nil {
		return c.FailSPIWrite
	}
	c.spi[addr] = value
	return nil
}

func (c *Chip) ReadNoC(_ context.Context, ring, x, y int, addr uint32) ([4]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noc[nocKey{ring, x, y, addr}], nil
}

func (c *Chip) SendARCMessage(_ context.Context, msgID uint8, args ...uint16) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ARCMessages = append(c.ARCMessages, ARCCall{MsgID: msgID, Args: append([]uint16(nil), args...)})
	return 0, nil
}

// Driver is an in-memory devicefacade.Driver over a fixed chip set.
type Driver struct {
	chips      []devicefacade.Chip
	localCount int
}

// NewDriver returns a Driver serving the given chips in order. The
// local-device count defaults to the number of SideLocal chips; use
// WithLocalCount to override it for post-reset-gating tests.
func NewDriver(chips ...*Chip) *Driver {
	d := &Driver{}
	for _, c := range chips {
		d.chips = append(d.chips, c)
		if c.Side() == devicefacade.SideLocal {
			d.localCount++
		}
	}
	return d
}

// WithLocalCount overrides the reported local-device count.
func (d *Driver) WithLocalCount(n int) *Driver {
	d.localCount = n
	return d
}

func (d *Driver) Chips(_ context.Context) ([]devicefacade.Chip, error) {
	return d.chips, nil
}

func (d *Driver) LocalDeviceCount(_ context.Context) (int, error) {
	return d.localCount, nil
}

func (d *Driver) Close() error { return nil }

// String renders the driver's chip identities, useful in test failure
// messages.
func (d *Driver) String() string {
	return fmt.Sprintf("devicefake.Driver{%d chips}", len(d.chips))
}
