package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tenstorrent/tt-topology-go/internal/clr"
	"github.com/tenstorrent/tt-topology-go/internal/devicefacade"
	"github.com/tenstorrent/tt-topology-go/internal/discovery"
	"github.com/tenstorrent/tt-topology-go/internal/octopus"
	"github.com/tenstorrent/tt-topology-go/internal/orchestrator"
	"github.com/tenstorrent/tt-topology-go/internal/resetcfg"
	"github.com/tenstorrent/tt-topology-go/internal/runlog"
	"github.com/tenstorrent/tt-topology-go/internal/statereader"
	"github.com/tenstorrent/tt-topology-go/internal/termtable"
	"github.com/tenstorrent/tt-topology-go/internal/tlog"
	"github.com/tenstorrent/tt-topology-go/internal/xerrors"
)

// runOrchestrate performs one full orchestration run for the configured
// layout and writes the run log whether the run succeeds or fails,
// except on an environment error (no driver, no devices).
func runOrchestrate(ctx context.Context) error {
	driver, err := newDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	reset, err := buildResetFunc()
	if err != nil {
		return err
	}

	printer := clr.NewPrinter()
	deps := orchestrator.Deps{Driver: driver, Reset: reset, Printer: printer}
	rec, runErr := orchestrator.Run(ctx, deps, orchestrator.Options{
		Layout:       a.layout,
		PlotFilename: a.plotFilename,
	})
	if !errors.Is(runErr, xerrors.ErrNoDriver) && !errors.Is(runErr, xerrors.ErrNoDevices) {
		writeRunLog(rec)
	}
	if runErr != nil {
		return runErr
	}
	printSummary(rec)
	printer.Done("run complete: %d asic(s) assigned coordinates", len(rec.Coordinates))
	return nil
}

// printSummary renders the post-run per-ASIC coordinate + port-disable
// mask table from the final state snapshot recorded in rec.
func printSummary(rec *runlog.Record) {
	table := termtable.NewTable("INDEX", "X", "Y", "PORT-DISABLE")
	for _, s := range rec.FinalState {
		table.Row(
			fmt.Sprintf("%d", s.Index),
			fmt.Sprintf("%d", s.Coord[0]),
			fmt.Sprintf("%d", s.Coord[1]),
			fmt.Sprintf("0x%04x", s.PortDisable),
		)
	}
	table.Flush()
}

// buildResetFunc loads the reset configuration (from --reset, or a
// default sample) and returns a ResetFunc that honors its configured
// settle timeout. The board-level reset mechanism itself is an external
// collaborator per spec.md §6; this is the seam production code plugs
// a real reset implementation into.
func buildResetFunc() (orchestrator.ResetFunc, error) {
	cfg := resetcfg.Sample()
	if a.resetJSON != "" {
		parsed, err := resetcfg.Parse(a.resetJSON)
		if err != nil {
			return nil, fmt.Errorf("reading reset config %s: %w", a.resetJSON, err)
		}
		cfg = parsed
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return func(ctx context.Context) error {
		tlog.WithField("timeout", timeout).Debug("waiting for reset collaborator settle window")
		time.Sleep(timeout)
		return nil
	}, nil
}

// runList implements --list: discover the current connection graph and
// state, then classify each ASIC's apparent configuration per spec.md
// §6's heuristic.
func runList(ctx context.Context) error {
	driver, err := newDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	chips, err := driver.Chips(ctx)
	if err != nil {
		return err
	}

	graph, err := discovery.Build(ctx, chips, func(msg string) { tlog.Warn(msg) })
	if err != nil {
		return err
	}
	snaps, err := statereader.Read(ctx, graph)
	if err != nil {
		return err
	}

	coords := make([][2]int, 0, len(snaps)*2)
	table := termtable.NewTable("INDEX", "SIDE", "X", "Y")
	for _, s := range snaps {
		x, y := int(s.LocalCoord[0]), int(s.LocalCoord[1])
		coords = append(coords, [2]int{x, y})
		table.Row(fmt.Sprintf("%d", s.Index), "local", fmt.Sprintf("%d", x), fmt.Sprintf("%d", y))
		if s.HasRemote {
			rx, ry := int(s.RemoteCoord[0]), int(s.RemoteCoord[1])
			coords = append(coords, [2]int{rx, ry})
			table.Row(fmt.Sprintf("%d", s.Index), "remote", fmt.Sprintf("%d", rx), fmt.Sprintf("%d", ry))
		}
	}
	table.Flush()
	fmt.Println(clr.Dim("state: " + classifyState(coords)))
	return nil
}

// classifyState applies spec.md §6's heuristic classification to a set
// of observed (x,y) coordinates.
func classifyState(coords [][2]int) string {
	if len(coords) == 0 {
		return "unconfigured"
	}

	allDefault := true
	for _, c := range coords {
		if !((c[0] == 0 && c[1] == 0) || (c[0] == 1 && c[1] == 0)) {
			allDefault = false
			break
		}
	}
	if allDefault {
		return "unconfigured"
	}

	n := len(coords)
	xAllZero := true
	yPresent := make(map[int]bool, n)
	for _, c := range coords {
		if c[0] != 0 {
			xAllZero = false
		}
		yPresent[c[1]] = true
	}
	if xAllZero {
		coversAll := true
		for y := 0; y < n; y++ {
			if !yPresent[y] {
				coversAll = false
				break
			}
		}
		if coversAll {
			return "linear/torus"
		}
	}

	meshShaped := true
	for _, c := range coords {
		if c[0] < 0 || c[0] >= n/2 || (c[1] != 0 && c[1] != 1) {
			meshShaped = false
			break
		}
	}
	if meshShaped {
		return "mesh"
	}

	return "undecipherable"
}

// runOctopus implements --octopus: enable the rack-scale ethernet link
// on every local ASIC, zero their initial coordinates, then hand off to
// the rack control plane for the warm reset that makes the rack-scale
// neighbour addresses readable. Deriving final coordinates
// (octopus.AssignFromRemote) requires reading those addresses back
// through the rack control plane, which is the external collaborator
// named in spec.md §6 and not vendored here.
func runOctopus(ctx context.Context) error {
	driver, err := newDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	chips, err := driver.Chips(ctx)
	if err != nil {
		return err
	}

	var local []devicefacade.Chip
	var mobos []string
	for _, c := range chips {
		if c.Side() == devicefacade.SideLocal {
			local = append(local, c)
			mobos = append(mobos, fmt.Sprintf("asic-%d", c.Index()))
		}
	}

	if err := octopus.EnableMoboLinks(ctx, local); err != nil {
		return err
	}
	if err := octopus.SetInitialCoords(ctx, local); err != nil {
		return err
	}

	client := galaxyClientStub{}
	if err := client.WarmReset(ctx, mobos); err != nil {
		return fmt.Errorf("rack control plane warm reset: %w", err)
	}
	return nil
}
