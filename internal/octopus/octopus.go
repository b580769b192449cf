// Package octopus implements the rack-scale (multi-shelf galaxy)
// topology path selected by --octopus, grounded on
// original_source/tt_topology/backend.py's TopoBackend_Octopus: enable
// the rack-scale ethernet link on every local n150, zero the initial
// chip coordinates, then derive each local ASIC's final coordinate from
// its remote neighbour's rack-scale address. The actual rack reset is
// an external collaborator (GalaxyClient here) per spec.md's scope.
package octopus

import (
	"context"
	"sort"

	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/regs"
)

// GalaxyClient is the rack-scale control-plane collaborator (an HTTP
// client against the galaxy's reset server in production); this module
// only depends on the narrow operations its orchestration needs.
type GalaxyClient interface {
	// SetRackShelf assigns a shelf number to a mobo identifier via the
	// rack control plane.
	SetRackShelf(ctx context.Context, mobo string, rack, shelf int) error

	// WarmReset resets every mobo in the given list and blocks until the
	// reset completes.
	WarmReset(ctx context.Context, mobos []string) error
}

// RemoteNeighbour is what a local ASIC observes about the rack-scale
// peer it is cabled to, read through the device facade's rack-scale
// address fields.
type RemoteNeighbour struct {
	Shelf int
	X, Y  int
}

// EnableMoboLinks sets eth-mobo-enable on every local ASIC, turning on
// the rack-scale ethernet path.
func EnableMoboLinks(ctx context.Context, chips []devicefacade.Chip) error {
	for _, c := range chips {
		if err := c.WriteSPI(ctx, regs.EthParamMoboEthEnable, [4]byte{regs.MoboEthEnableValue, 0, 0, 0}); err != nil {
			return err
		}
	}
	return nil
}

// SetInitialCoords zeroes chip-coord and rack/shelf on every local
// ASIC, the rack-scale equivalent of FlashDefaults.
func SetInitialCoords(ctx context.Context, chips []devicefacade.Chip) error {
	for _, c := range chips {
		if err := c.WriteSPI(ctx, regs.EthParamChipCoord, [4]byte{0, 0, 0, 0}); err != nil {
			return err
		}
		if err := c.WriteSPI(ctx, regs.EthParamRackShelf, [4]byte{0, 0, 0, 0}); err != nil {
			return err
		}
	}
	return nil
}

// AssignFromRemote derives each local ASIC's final (shelf, x, y) from
// its remote neighbour's reported rack-scale address: shelf 1 on the
// far side maps to local shelf 0, shelf 2 maps to local shelf 3; within
// a shelf, ASICs are ordered by their remote (x, y) and numbered 0..n-1.
// neighbours[i] is nil for an ASIC with no rack-scale neighbour found,
// mirroring the original's "no neighbours found" skip.
func AssignFromRemote(ctx context.Context, chips []devicefacade.Chip, neighbours []*RemoteNeighbour) error {
	byShelf := make(map[int][]int)
	for i, n := range neighbours {
		if n == nil {
			continue
		}
		byShelf[n.Shelf] = append(byShelf[n.Shelf], i)
	}

	for shelf, indices := range byShelf {
		var localShelf int
		switch shelf {
		case 1:
			localShelf = 0
		case 2:
			localShelf = 3
		default:
			continue
		}

		sort.Slice(indices, func(a, b int) bool {
			na, nb := neighbours[indices[a]], neighbours[indices[b]]
			if na.X != nb.X {
				return na.X < nb.X
			}
			return na.Y < nb.Y
		})

		for pos, idx := range indices {
			chip := chips[idx]
			if err := chip.WriteSPI(ctx, regs.EthParamChipCoord, [4]byte{byte(pos), 0, 0, 0}); err != nil {
				return err
			}
			if err := chip.WriteSPI(ctx, regs.EthParamRackShelf, [4]byte{byte(localShelf), 0, 0, 0}); err != nil {
				return err
			}
		}
	}
	return nil
}
