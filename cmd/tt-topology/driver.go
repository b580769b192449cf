package main

import (
	"context"

	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/xerrors"
)

// newDriver constructs the production devicefacade.Driver. Real ASIC
// access goes through a PCI/pyluwen-equivalent transport that this
// retrieval-scoped module does not vendor; until that transport is
// wired in, every invocation surfaces the documented "no driver"
// environment error (spec.md §7) rather than silently substituting
// internal/devicefake, which is a test double only.
func newDriver(ctx context.Context) (devicefacade.Driver, error) {
	return nil, xerrors.ErrNoDriver
}

// galaxyClientStub is the rack-scale control-plane collaborator that
// --octopus depends on. It is an external system (out of core scope
// per spec.md §6); this stub makes that boundary explicit instead of
// guessing at a protocol.
type galaxyClientStub struct{}

func (galaxyClientStub) SetRackShelf(ctx context.Context, mobo string, rack, shelf int) error {
	return xerrors.ErrNoDriver
}

func (galaxyClientStub) WarmReset(ctx context.Context, mobos []string) error {
	return xerrors.ErrNoDriver
}
