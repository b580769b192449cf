// Package version carries build-time identification for the tt-topology
// CLI, grounded on the teacher's pkg/version package (ldflags-injected
// Version/GitCommit, an Info() summary string).
package version

import "fmt"

// Version, GitCommit and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/tenstorrent/tt-topology-go/internal/version.Version=v1.2.0 \
//	  -X github.com/tenstorrent/tt-topology-go/internal/version.GitCommit=abc1234 \
//	  -X github.com/tenstorrent/tt-topology-go/internal/version.BuildDate=2026-07-30"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a one-line human-readable build summary for --version.
func Info() string {
	return fmt.Sprintf("tt-topology %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
