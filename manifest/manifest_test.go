package manifest_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/manifest"
)

func validManifest() *manifest.RunManifest {
	return &manifest.RunManifest{
		SchemaVersion: manifest.SchemaVersion,
		Service:       "recorder",
		RunID:         "recorder-1700000000",
		StartedAt:     1700000000.0,
		EndedAt:       1700000010.5,
		DurationS:     10.5,
		GitSHA:        "abc1234",
		Config:        map[string]any{"max_events": 25},
		Artifacts:     map[string]string{"events": "s3://bkt/recorder/recorder-1700000000/events.jsonl"},
	}
}

func TestCanonicalArtifactKey(t *testing.T) {
	got := manifest.CanonicalArtifactKey("recorder", "recorder-1700000000", "events.jsonl")
	want := "recorder/recorder-1700000000/events.jsonl"
	if got != want {
		t.Errorf("CanonicalArtifactKey = %q, want %q", got, want)
	}
}

func TestRunManifest_Key(t *testing.T) {
	m := validManifest()
	want := "recorder/recorder-1700000000/manifest.json"
	if got := m.Key(); got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
}

func TestRunManifest_MarshalIndent(t *testing.T) {
	data, err := validManifest().MarshalIndent()
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("output should end with a newline")
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["schema_version"] != float64(1) {
		t.Errorf("schema_version = %v", decoded["schema_version"])
	}
	if decoded["run_id"] != "recorder-1700000000" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
}

func TestRunManifest_Validate(t *testing.T) {
	if err := validManifest().Validate(); err != nil {
		t.Errorf("valid manifest rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*manifest.RunManifest)
	}{
		{"wrong schema version", func(m *manifest.RunManifest) { m.SchemaVersion = 2 }},
		{"missing service", func(m *manifest.RunManifest) { m.Service = "" }},
		{"missing run_id", func(m *manifest.RunManifest) { m.RunID = "" }},
		{"ended before started", func(m *manifest.RunManifest) { m.EndedAt = m.StartedAt - 1; m.DurationS = -1 }},
		{"inconsistent duration", func(m *manifest.RunManifest) { m.DurationS = 99 }},
		{"no artifacts", func(m *manifest.RunManifest) { m.Artifacts = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)
			if err := m.Validate(); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}

func TestRunManifest_ValidateToleratesSmallDrift(t *testing.T) {
	m := validManifest()
	m.DurationS = m.EndedAt - m.StartedAt + 0.03
	if err := m.Validate(); err != nil {
		t.Errorf("drift within tolerance should pass: %v", err)
	}
}

func TestParse(t *testing.T) {
	data, err := validManifest().MarshalIndent()
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	m, err := manifest.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.RunID != "recorder-1700000000" {
		t.Errorf("RunID = %q", m.RunID)
	}
	if m.Artifacts["events"] == "" {
		t.Error("artifacts should survive the round trip")
	}

	if _, err := manifest.Parse([]byte("not json")); err == nil {
		t.Error("invalid JSON should fail")
	}
	if _, err := manifest.Parse([]byte(`{"schema_version": 99}`)); err == nil {
		t.Error("invalid manifest should fail validation")
	}
}

func TestWrite_StoresAtCanonicalKey(t *testing.T) {
	store := cloud.NewMemObjectStore()
	m := validManifest()

	result, err := manifest.Write(t.Context(), store, m)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if result.ContentType != "application/json" {
		t.Errorf("content type = %q", result.ContentType)
	}

	stored, err := store.Get(t.Context(), "recorder/recorder-1700000000/manifest.json")
	if err != nil {
		t.Fatalf("manifest not at canonical key: %v", err)
	}
	parsed, err := manifest.Parse(stored)
	if err != nil {
		t.Fatalf("stored manifest invalid: %v", err)
	}
	if parsed.GitSHA != "abc1234" {
		t.Errorf("GitSHA = %q", parsed.GitSHA)
	}
}

func TestGitSHA_NeverEmpty(t *testing.T) {
	if sha := manifest.GitSHA(); sha == "" {
		t.Error("GitSHA should fall back to 'unknown', never be empty")
	}
}
