// Package metadata writes and reads a run's metadata.json. This file
// format is load-bearing for external administrative tooling, so its
// shape is a direct JSON encoding of the documented keys rather than
// anything engine-internal.
package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Metadata is the mandatory per-run manifest: required on the cluster
// backend, never optional.
type Metadata struct {
	Name     string `json:"name"`
	Datetime int64  `json:"datetime"`
	Args     []string `json:"args"`
	Pipeline string   `json:"pipeline"`
	Version  string   `json:"version"`
}

// Write encodes m as metadata.json inside dir.
func Write(dir string, m Metadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0o644)
}

// Read loads metadata.json from dir, for the administrative tool.
func Read(dir string) (Metadata, error) {
	var m Metadata
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}
