// Package manifest builds and persists per-run manifest records.
//
// A manifest is written exactly once at run completion and maps logical
// artifact names to their storage locations, so a run's outputs can be found
// from its run_id alone.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/copytrader-io/copybot/cloud"
)

// SchemaVersion is the current manifest schema version.
const SchemaVersion = 1

// Filename is the manifest's artifact filename within a run's key space.
const Filename = "manifest.json"

// RunManifest is the per-run summary record.
// Timestamps are unix seconds (JSON numbers).
type RunManifest struct {
	SchemaVersion int     `json:"schema_version"`
	Service       string  `json:"service"`
	RunID         string  `json:"run_id"`
	StartedAt     float64 `json:"started_at"`
	EndedAt       float64 `json:"ended_at"`
	DurationS     float64 `json:"duration_s"`
	GitSHA        string  `json:"git_sha"`

	// Config is a non-sensitive configuration snapshot.
	Config map[string]any `json:"config"`

	// Artifacts maps logical artifact names to storage locations.
	Artifacts map[string]string `json:"artifacts"`
}

// CanonicalArtifactKey produces the logical key for a run artifact:
// <service>/<run_id>/<filename>. The object store's configured prefix
// supplies the deployment namespace above it.
func CanonicalArtifactKey(service, runID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", service, runID, filename)
}

// Key returns the manifest's own canonical key.
func (m *RunManifest) Key() string {
	return CanonicalArtifactKey(m.Service, m.RunID, Filename)
}

// MarshalIndent renders the manifest as indented JSON with a trailing
// newline.
func (m *RunManifest) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// durationTolerance bounds the accepted drift between duration_s and
// ended_at - started_at in stored manifests.
const durationTolerance = 0.05

// Validate checks the manifest against the documented contract: schema
// version 1, identity fields present, consistent duration, and at least one
// artifact entry.
func (m *RunManifest) Validate() error {
	if m.SchemaVersion != SchemaVersion {
		return fmt.Errorf("manifest schema_version = %d, want %d", m.SchemaVersion, SchemaVersion)
	}
	if m.Service == "" {
		return fmt.Errorf("manifest is missing service")
	}
	if m.RunID == "" {
		return fmt.Errorf("manifest is missing run_id")
	}
	if m.EndedAt < m.StartedAt {
		return fmt.Errorf("manifest ended_at %.3f precedes started_at %.3f", m.EndedAt, m.StartedAt)
	}
	if math.Abs(m.DurationS-(m.EndedAt-m.StartedAt)) > durationTolerance {
		return fmt.Errorf("manifest duration_s %.3f inconsistent with timestamps (%.3f)",
			m.DurationS, m.EndedAt-m.StartedAt)
	}
	if len(m.Artifacts) == 0 {
		return fmt.Errorf("manifest has no artifacts")
	}
	return nil
}

// Parse decodes and validates a stored manifest.
func Parse(data []byte) (*RunManifest, error) {
	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Write persists the manifest at its canonical key through the object store.
func Write(ctx context.Context, store cloud.ObjectStore, m *RunManifest) (cloud.WriteResult, error) {
	data, err := m.MarshalIndent()
	if err != nil {
		return cloud.WriteResult{}, err
	}
	return store.Put(ctx, m.Key(), data, "application/json")
}

// GitSHA returns the current git commit, or "unknown" when git is
// unavailable.
func GitSHA() string {
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	sha := strings.TrimSpace(string(out))
	if sha == "" {
		return "unknown"
	}
	return sha
}
