// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/archive-harvest/pkg/types"
)

// manifestName is reserved in every run directory.
const manifestName = "manifest.yaml"

// writeManifest records the run as YAML in the run directory. It is
// rewritten on every run that found links.
func (h *Harvester) writeManifest(s types.Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := h.fs.MkdirAll(s.DestDir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: s.DestDir, Err: err}
	}
	path := filepath.Join(s.DestDir, manifestName)
	if err := afero.WriteFile(h.fs, path, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ReadManifest loads the manifest from a run directory.
func ReadManifest(fs afero.Fs, dir string) (*types.Summary, error) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, manifestName))
	if err != nil {
		return nil, err
	}
	var s types.Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &s, nil
}
