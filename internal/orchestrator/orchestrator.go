// Package orchestrator sequences one full run: snapshot, default flash,
// reset, discover, assign, flash, reset, optional multi-host patch and
// reset, final snapshot, render. Grounded on
// original_source/tt_topology/tt_topology.py's run_and_flash, with board
// reset itself left to the Reset collaborator per spec.md's scope.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/tenstorrent/tt-topology-go/internal/assigner"
	"github.com/tenstorrent/tt-topology-go/internal/clr"
	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/discovery"
	"github.com/tenstorrent/tt-topology-go/internal/flashplanner"
	"github.com/tenstorrent/tt-topology-go/internal/render"
	"github.com/tenstorrent/tt-topology-go/internal/runlog"
	"github.com/tenstorrent/tt-topology-go/internal/statereader"
	"github.com/tenstorrent/tt-topology-go/internal/tlog"
	"github.com/tenstorrent/tt-topology-go/internal/validator"
	"github.com/tenstorrent/tt-topology-go/internal/xerrors"
)

const (
	postDefaultSettle = 15 * time.Second
	postPatchSettle   = 5 * time.Second
)

// ResetFunc performs a board-level reset of all local PCI interfaces
// and blocks until the devices are ready to be re-enumerated. It is an
// external collaborator; this module only sequences calls to it.
type ResetFunc func(ctx context.Context) error

// Options configures one orchestrator run.
type Options struct {
	Layout       string // linear, torus, mesh, mesh_v2, isolated
	PlotFilename string
}

// Deps supplies the collaborators the orchestrator does not implement
// itself.
type Deps struct {
	Driver  devicefacade.Driver
	Reset   ResetFunc
	Sleep   func(d time.Duration)
	Printer *clr.Printer
}

func (d *Deps) sleep(dur time.Duration) {
	if d.Sleep != nil {
		d.Sleep(dur)
		return
	}
	time.Sleep(dur)
}

func (d *Deps) printer() *clr.Printer {
	if d.Printer != nil {
		return d.Printer
	}
	return clr.NopPrinter()
}

// Run executes one full orchestration sequence and returns the run-log
// record (populated even on failure, so callers can still persist it).
func Run(ctx context.Context, deps Deps, opts Options) (*runlog.Record, error) {
	rec := runlog.New(opts.Layout)
	rec.PlotFilename = opts.PlotFilename
	p := deps.printer()

	chips, err := deps.Driver.Chips(ctx)
	if err != nil {
		return rec, fmt.Errorf("%w: %v", xerrors.ErrNoDriver, err)
	}
	if len(chips) == 0 {
		return rec, xerrors.ErrNoDevices
	}

	p.Banner("discovering starting state")
	startGraph, err := discovery.Build(ctx, chips, func(msg string) { p.Warn("%s", msg); tlog.Warn(msg) })
	if err != nil {
		return rec.WithError(err), err
	}
	startSnaps, err := statereader.Read(ctx, startGraph)
	if err != nil {
		return rec.WithError(err), err
	}
	rec.StartingState = toSnapshotRecords(startSnaps)

	isolated := opts.Layout == "isolated"

	p.Step("flashing default state")
	if err := flashplanner.FlashDefaults(ctx, startGraph, isolated); err != nil {
		return rec.WithError(err), err
	}
	postDefaultSnaps, err := statereader.Read(ctx, startGraph)
	if err != nil {
		return rec.WithError(err), err
	}
	rec.PostDefaultState = toSnapshotRecords(postDefaultSnaps)

	p.Step("resetting devices")
	deps.sleep(postDefaultSettle)
	if err := deps.Reset(ctx); err != nil {
		return rec.WithError(err), err
	}

	chips, err = deps.Driver.Chips(ctx)
	if err != nil {
		return rec.WithError(err), err
	}
	localCount, err := deps.Driver.LocalDeviceCount(ctx)
	if err != nil {
		return rec.WithError(err), err
	}
	if len(chips) < 2*localCount {
		err := fmt.Errorf("%w: found %d, want at least %d", xerrors.ErrEnumerationShortfall, len(chips), 2*localCount)
		return rec.WithError(err), err
	}

	if isolated {
		p.Done("isolated layout applied, stopping before discovery")
		rec.FinalState = rec.PostDefaultState
		return rec.WithSuccess(), nil
	}

	p.Banner("building connection graph")
	graph, err := discovery.Build(ctx, chips, func(msg string) { p.Warn("%s", msg); tlog.Warn(msg) })
	if err != nil {
		return rec.WithError(err), err
	}
	rec.Connections = toEdgeRecords(graph)

	result := validator.Check(graph, opts.Layout)
	if w := result.Warning(); w != "" {
		p.Warn("%s", w)
		tlog.Warn(w)
		if result.Fatal(opts.Layout) {
			err := fmt.Errorf("%w: %s", xerrors.ErrStructuralDeficit, w)
			return rec.WithError(err), err
		}
	}

	p.Step("assigning coordinates")
	cm, err := assigner.Assign(graph, opts.Layout)
	if err != nil {
		return rec.WithError(err), err
	}
	rec.Coordinates = toCoordRecords(cm)

	p.Step("flashing specified state")
	if err := flashplanner.FlashSpecified(ctx, graph, cm, opts.Layout); err != nil {
		return rec.WithError(err), err
	}

	p.Step("resetting devices")
	deps.sleep(postDefaultSettle)
	if err := deps.Reset(ctx); err != nil {
		return rec.WithError(err), err
	}
	chips, err = deps.Driver.Chips(ctx)
	if err != nil {
		return rec.WithError(err), err
	}

	graph, err = discovery.Build(ctx, chips, func(msg string) { p.Warn("%s", msg); tlog.Warn(msg) })
	if err != nil {
		return rec.WithError(err), err
	}

	if len(graph.Nodes) == 8 && (opts.Layout == "mesh" || opts.Layout == "mesh_v2") {
		p.Step("applying multi-host mesh patch")
		if err := flashplanner.ApplyMultiHostMeshPatch(ctx, graph, cm, opts.Layout); err != nil {
			return rec.WithError(err), err
		}
		deps.sleep(postPatchSettle)
		if err := deps.Reset(ctx); err != nil {
			return rec.WithError(err), err
		}
	}

	finalSnaps, err := statereader.Read(ctx, graph)
	if err != nil {
		return rec.WithError(err), err
	}
	rec.FinalState = toSnapshotRecords(finalSnaps)

	if opts.PlotFilename != "" {
		if err := render.WriteFile(opts.PlotFilename, cm); err != nil {
			p.Warn("could not write layout render: %v", err)
		}
	}

	p.Done("run complete")
	return rec.WithSuccess(), nil
}

func toSnapshotRecords(snaps []statereader.Snapshot) []runlog.ChipSnapshot {
	out := make([]runlog.ChipSnapshot, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, runlog.ChipSnapshot{
			Index:       s.Index,
			Coord:       [2]int{int(s.LocalCoord[0]), int(s.LocalCoord[1])},
			PortDisable: s.LocalPortDisable,
			RackShelf:   [2]int{int(s.LocalRackShelf[0]), int(s.LocalRackShelf[1])},
		})
	}
	return out
}

func toEdgeRecords(g *discovery.Graph) []runlog.Edge {
	var out []runlog.Edge
	seen := make(map[[2]int]bool)
	for _, n := range g.Nodes {
		for _, e := range n.Edges {
			a, b := n.Index, e.PeerIndex
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, runlog.Edge{
				FromIndex: n.Index,
				FromPort:  e.Port,
				ToIndex:   e.PeerIndex,
				Kind:      string(e.Kind),
			})
		}
	}
	return out
}

func toCoordRecords(cm assigner.CoordMap) map[string][2]int {
	out := make(map[string][2]int, len(cm))
	for idx, c := range cm {
		out[fmt.Sprintf("%d", idx)] = [2]int{c.X, c.Y}
	}
	return out
}
