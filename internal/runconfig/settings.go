// Package runconfig manages the persistent default settings for the
// tt-topology CLI, grounded on the teacher's pkg/settings package
// (JSON-backed file under the user's home directory, Load/Save with
// zero-value defaults when the file is absent).
package runconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds the fallbacks the CLI uses when a flag is not given
// explicitly. Every individual run is still fully controlled by flags
// per spec.md §6; this only supplies defaults.
type Settings struct {
	// DefaultLayout is used when --layout is not given.
	DefaultLayout string `json:"default_layout,omitempty"`

	// LogDir overrides the default run-log directory
	// (spec.md default: ~/tt_topology_logs/).
	LogDir string `json:"log_dir,omitempty"`

	// PlotFilename overrides the default rendered-layout path.
	PlotFilename string `json:"plot_filename,omitempty"`
}

// DefaultLayout is the built-in fallback when neither a flag nor a
// settings file specifies one, matching spec.md §6.
const DefaultLayout = "linear"

// DefaultPlotFilename is the built-in fallback plot path.
const DefaultPlotFilename = "chip_layout.png"

// DefaultSettingsPath returns the default location of the settings file.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tt_topology_settings.json")
	}
	return filepath.Join(home, ".tt_topology", "settings.json")
}

// Load reads settings from the default location.
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields
// zero-value settings, not an error.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes settings to the default location.
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path, creating parent directories.
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetLayout returns the configured layout, falling back to DefaultLayout.
func (s *Settings) GetLayout() string {
	if s.DefaultLayout != "" {
		return s.DefaultLayout
	}
	return DefaultLayout
}

// GetLogDir returns the configured log directory, falling back to the
// spec.md default (~/tt_topology_logs).
func (s *Settings) GetLogDir() string {
	if s.LogDir != "" {
		return s.LogDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tt_topology_logs")
	}
	return filepath.Join(home, "tt_topology_logs")
}

// GetPlotFilename returns the configured plot path, falling back to the
// spec.md default.
func (s *Settings) GetPlotFilename() string {
	if s.PlotFilename != "" {
		return s.PlotFilename
	}
	return DefaultPlotFilename
}
