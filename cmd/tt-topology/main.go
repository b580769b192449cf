// tt-topology configures the ethernet-layer grid coordinates of a
// cluster of Tenstorrent ASICs.
//
// Usage:
//
//	tt-topology --layout {linear,torus,mesh,mesh_v2,isolated}
//	tt-topology --list
//	tt-topology --octopus
//	tt-topology --generate_reset_json
//	tt-topology --version
//
// A run flashes every reachable ASIC's default state, resets and
// re-enumerates, discovers the ethernet connection graph, assigns
// coordinates for the requested layout, flashes the specified state,
// resets once more, and (for an 8-node mesh/mesh_v2 cluster) applies the
// multi-host routing patch. Every run that gets past the environment
// checks (driver present, devices found) is written as a single JSON
// document under the run-log directory, whether it succeeds or fails.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tenstorrent/tt-topology-go/internal/clr"
	"github.com/tenstorrent/tt-topology-go/internal/resetcfg"
	"github.com/tenstorrent/tt-topology-go/internal/runconfig"
	"github.com/tenstorrent/tt-topology-go/internal/runlog"
	"github.com/tenstorrent/tt-topology-go/internal/tlog"
	"github.com/tenstorrent/tt-topology-go/internal/version"
)

// app holds the flag values for the single top-level invocation.
type app struct {
	layout            string
	list              bool
	octopus           bool
	resetJSON         string
	generateResetJSON bool
	logPath           string
	plotFilename      string
	verbose           bool
}

var a = &app{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, clr.Red(err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "tt-topology",
	Short:         "Configure ethernet-layer grid coordinates for a Tenstorrent ASIC cluster",
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if a.verbose {
			_ = tlog.SetLevel("debug")
		}
		return runRoot(cmd.Context())
	},
}

func init() {
	cobra.OnInitialize(func() {
		settings, err := runconfig.Load()
		if err != nil {
			tlog.Warnf("could not load settings: %v", err)
			return
		}
		if a.layout == "" {
			a.layout = settings.GetLayout()
		}
		if a.plotFilename == "" {
			a.plotFilename = settings.GetPlotFilename()
		}
		if a.logPath == "" {
			a.logPath = settings.GetLogDir()
		}
	})

	flags := rootCmd.Flags()
	flags.StringVar(&a.layout, "layout", "", "Target layout: linear, torus, mesh, mesh_v2, isolated (default linear)")
	flags.BoolVar(&a.list, "list", false, "List detected ASICs and their current coordinates, then exit")
	flags.BoolVar(&a.octopus, "octopus", false, "Select the rack-scale (galaxy) topology path")
	flags.StringVar(&a.resetJSON, "reset", "", "Path to a reset-configuration JSON consumed by the reset collaborator")
	flags.BoolVar(&a.generateResetJSON, "generate_reset_json", false, "Write a sample reset-configuration JSON and exit")
	flags.StringVar(&a.logPath, "log", "", "Override the JSON run-log directory (default ~/tt_topology_logs)")
	flags.StringVar(&a.plotFilename, "plot_filename", "", "Override the rendered layout path (default chip_layout.png)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose diagnostic logging")

	rootCmd.SetVersionTemplate(version.Info() + "\n")
}

func runRoot(ctx context.Context) error {
	if a.generateResetJSON {
		const path = "reset_config.json"
		if err := resetcfg.WriteSample(path); err != nil {
			return fmt.Errorf("writing sample reset config: %w", err)
		}
		fmt.Println(clr.Green("wrote sample reset configuration to " + path))
		return nil
	}

	if a.layout == "" {
		a.layout = runconfig.DefaultLayout
	}

	if a.list {
		return runList(ctx)
	}

	if a.octopus {
		return runOctopus(ctx)
	}

	return runOrchestrate(ctx)
}

// writeRunLog persists rec under the configured log directory and
// reports the path, swallowing (but warning about) write failures so a
// logging problem never masks the run's real outcome.
func writeRunLog(rec *runlog.Record) {
	w, err := runlog.NewWriter(a.logPath)
	if err != nil {
		tlog.Warnf("could not open run-log directory %s: %v", a.logPath, err)
		return
	}
	path, err := w.Write(rec)
	if err != nil {
		tlog.Warnf("could not write run log: %v", err)
		return
	}
	tlog.Infof("run log written to %s", path)
}
