// Package resetcfg defines the reset-configuration JSON shape consumed
// by the board-reset collaborator (out of core scope per spec) and
// implements --generate_reset_json's sample-file output, grounded on
// original_source/tt_topology/tt_topology.py's
// --generate_reset_json flag and its call into generate_reset_logs.
package resetcfg

import (
	"encoding/json"
	"os"
)

// DeviceEntry identifies one PCI device the reset collaborator should
// act on.
type DeviceEntry struct {
	PCIIndex int    `json:"pci_index"`
	BoardID  string `json:"board_id"`
}

// Config is the reset-configuration document passed via --reset.
type Config struct {
	Devices        []DeviceEntry `json:"devices"`
	TimeoutSeconds int           `json:"timeout_seconds"`
}

// DefaultTimeoutSeconds matches the settle time this module waits after
// issuing a reset before re-enumerating.
const DefaultTimeoutSeconds = 15

// Sample returns a placeholder config with one device entry, suitable
// as a starting point for hand-editing.
func Sample() Config {
	return Config{
		Devices: []DeviceEntry{
			{PCIIndex: 0, BoardID: "0000000000000000"},
		},
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// WriteSample writes Sample() to path as indented JSON, implementing
// --generate_reset_json.
func WriteSample(path string) error {
	data, err := json.MarshalIndent(Sample(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Parse reads a reset-configuration JSON file from path.
func Parse(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
