// Package runlog writes the single-document JSON record produced at the
// end of a tt-topology run, grounded on the teacher's pkg/audit package
// (JSON-encoded event with a File-backed writer) and on the field shape of
// original_source/tt_topology/log.py's TTToplogyLog/ChipConfig/
// ConnectionMap/CoordinateMap models. Unlike the teacher's audit trail,
// each run gets its own timestamped file rather than an appended line.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// HostInfo identifies the machine a run executed on.
type HostInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
}

// ChipSnapshot captures one ASIC's SPI parameter state at a point in the
// run (starting, post-default-flash, or final), mirroring ChipConfig in
// log.py.
type ChipSnapshot struct {
	Index       int    `json:"index"`
	BoardID     string `json:"board_id"`
	Coord       [2]int `json:"coord"`
	PortDisable uint16 `json:"port_disable"`
	RackShelf   [2]int `json:"rack_shelf,omitempty"`
}

// Edge records one classified connection in the discovered graph,
// mirroring ConnectionMap in log.py.
type Edge struct {
	FromIndex int    `json:"from_index"`
	FromPort  int    `json:"from_port"`
	ToIndex   int    `json:"to_index"`
	ToPort    int    `json:"to_port"`
	Kind      string `json:"kind"` // "X" or "T"
}

// Record is the full JSON document written at the end of a run.
type Record struct {
	Timestamp        time.Time         `json:"timestamp"`
	Host             HostInfo          `json:"host"`
	Layout           string            `json:"layout"`
	PlotFilename     string            `json:"plot_filename,omitempty"`
	StartingState    []ChipSnapshot    `json:"starting_state,omitempty"`
	PostDefaultState []ChipSnapshot    `json:"post_default_state,omitempty"`
	Connections      []Edge            `json:"connections,omitempty"`
	Coordinates      map[string][2]int `json:"coordinates,omitempty"`
	FinalState       []ChipSnapshot    `json:"final_state,omitempty"`
	Error            string            `json:"error,omitempty"`
	Success          bool              `json:"success"`
}

// New starts a record for the current host and layout.
func New(layout string) *Record {
	host, _ := os.Hostname()
	return &Record{
		Timestamp: time.Now(),
		Host: HostInfo{
			Hostname: host,
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
		},
		Layout: layout,
	}
}

// WithError marks the record as failed, recording the error string.
func (r *Record) WithError(err error) *Record {
	r.Success = false
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// WithSuccess marks the record as completed without error.
func (r *Record) WithSuccess() *Record {
	r.Success = true
	r.Error = ""
	return r
}

// Writer persists records to timestamped files under a directory, in the
// spirit of the teacher's FileLogger but one document per run instead of
// an appended JSON-lines stream.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir, creating it if necessary.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run-log directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Write serializes the record to a new file named by its timestamp and
// returns the path written.
func (w *Writer) Write(r *Record) (string, error) {
	name := r.Timestamp.Format("20060102-150405") + ".json"
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding run log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run log %s: %w", path, err)
	}
	return path, nil
}

// Load reads a previously written record back from disk.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := &Record{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing run log %s: %w", path, err)
	}
	return r, nil
}

// ListDir returns the run-log files in dir, most recent first.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
