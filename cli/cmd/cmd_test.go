package cmd

import (
	"flag"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/manifest"
)

// testContext builds a cli.Context with the given string flag values.
func testContext(t *testing.T, values map[string]string) *cli.Context {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	for name, value := range values {
		fs.String(name, "", "")
		if err := fs.Set(name, value); err != nil {
			t.Fatalf("set flag %s: %v", name, err)
		}
	}
	return cli.NewContext(cli.NewApp(), fs, nil)
}

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	hasTUI := false
	for _, f := range ReadOnlyFlags() {
		if f.Names()[0] == "tui" {
			hasTUI = true
			break
		}
	}
	if !hasTUI {
		t.Error("ReadOnlyFlags should include --tui for explicit error handling")
	}
}

func TestReplaySource_RequiresExactlyOne(t *testing.T) {
	if _, _, err := replaySource(testContext(t, nil)); err == nil {
		t.Error("no source flags should fail")
	}

	_, _, err := replaySource(testContext(t, map[string]string{
		"from-run": "recorder-1700000000",
		"from-key": "a/b",
	}))
	if err == nil {
		t.Error("two source flags should fail")
	}
}

func TestReplaySource_FromRunResolvesCanonicalKey(t *testing.T) {
	key, file, err := replaySource(testContext(t, map[string]string{"from-run": "recorder-1700000000"}))
	if err != nil {
		t.Fatalf("replaySource failed: %v", err)
	}
	if file != "" {
		t.Errorf("file should be empty, got %q", file)
	}
	want := "recorder/recorder-1700000000/events.jsonl"
	if key != want {
		t.Errorf("key = %q, want %q", key, want)
	}
}

func TestReplaySource_RejectsInvalidFromRun(t *testing.T) {
	_, _, err := replaySource(testContext(t, map[string]string{"from-run": "not a run id"}))
	if err == nil || !strings.Contains(err.Error(), "from-run") {
		t.Errorf("expected from-run validation error, got %v", err)
	}
}

func TestReplaySource_FromKeyAndFile(t *testing.T) {
	key, file, err := replaySource(testContext(t, map[string]string{"from-key": "x/y.jsonl"}))
	if err != nil || key != "x/y.jsonl" || file != "" {
		t.Errorf("from-key: got %q/%q/%v", key, file, err)
	}

	key, file, err = replaySource(testContext(t, map[string]string{"from-file": "/tmp/events.jsonl"}))
	if err != nil || key != "" || file != "/tmp/events.jsonl" {
		t.Errorf("from-file: got %q/%q/%v", key, file, err)
	}
}

func TestCollectRuns(t *testing.T) {
	store := cloud.NewMemObjectStore()
	ctx := testContext(t, nil)

	m := &manifest.RunManifest{
		SchemaVersion: manifest.SchemaVersion,
		Service:       "recorder",
		RunID:         "recorder-1700000000",
		StartedAt:     1700000000,
		EndedAt:       1700000005,
		DurationS:     5,
		GitSHA:        "abc",
		Config:        map[string]any{},
		Artifacts:     map[string]string{"events": "mem://x"},
	}
	if _, err := manifest.Write(ctx.Context, store, m); err != nil {
		t.Fatalf("seed manifest: %v", err)
	}
	// A run with an unreadable manifest still appears
	if _, err := store.Put(ctx.Context, "simulation/replay-1700000001/manifest.json", []byte("broken"), ""); err != nil {
		t.Fatalf("seed broken manifest: %v", err)
	}
	// Non-manifest keys are ignored
	if _, err := store.Put(ctx.Context, "recorder/recorder-1700000000/events.jsonl", []byte("{}"), ""); err != nil {
		t.Fatalf("seed stream: %v", err)
	}

	keys, err := store.List(ctx.Context, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	entries := collectRuns(ctx, store, keys)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d (%v)", len(entries), entries)
	}

	if entries[0].Service != "recorder" || entries[0].RunID != "recorder-1700000000" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[0].Manifest == nil || entries[0].Manifest.GitSHA != "abc" {
		t.Errorf("entry 0 manifest should be parsed: %+v", entries[0].Manifest)
	}
	if entries[1].Service != "simulation" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
	if entries[1].Manifest != nil {
		t.Error("broken manifest should yield nil Manifest")
	}
}

func TestVersionCommand_NoBackendAccess(t *testing.T) {
	cmd := VersionCommand("deadbeef")
	if cmd.Name != "version" {
		t.Errorf("name = %q", cmd.Name)
	}
	if cmd.Action == nil {
		t.Error("version command needs an action")
	}
}

func TestNewApp_RegistersCommands(t *testing.T) {
	app := NewApp("deadbeef")

	want := []string{"record", "replay", "inspect", "runs", "version"}
	for _, name := range want {
		if app.Command(name) == nil {
			t.Errorf("command %q not registered", name)
		}
	}
	if app.ExitErrHandler == nil {
		t.Error("app should install the exit error handler")
	}
}
