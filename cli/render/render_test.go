package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/copytrader-io/copybot/cli/render"
)

type row struct {
	RunID     string  `json:"run_id"`
	Service   string  `json:"service"`
	DurationS float64 `json:"duration_s"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    render.Format
		wantErr bool
	}{
		{"json", render.FormatJSON, false},
		{"JSON", render.FormatJSON, false},
		{"table", render.FormatTable, false},
		{"yaml", render.FormatYAML, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := render.ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q/%v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := render.NewRendererWithWriter(render.FormatJSON, &buf)

	if err := r.Render(row{RunID: "replay-1", Service: "simulation", DurationS: 1.5}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if decoded["run_id"] != "replay-1" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	r := render.NewRendererWithWriter(render.FormatYAML, &buf)

	if err := r.Render(map[string]string{"run_id": "replay-1"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "run_id: replay-1") {
		t.Errorf("yaml output = %q", buf.String())
	}
}

func TestRender_TableStruct(t *testing.T) {
	var buf bytes.Buffer
	r := render.NewRendererWithWriter(render.FormatTable, &buf)

	if err := r.Render(row{RunID: "replay-1", Service: "simulation"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "run_id:") || !strings.Contains(out, "replay-1") {
		t.Errorf("table output = %q", out)
	}
}

func TestRender_TableSliceUsesJSONTagHeaders(t *testing.T) {
	var buf bytes.Buffer
	r := render.NewRendererWithWriter(render.FormatTable, &buf)

	rows := []row{
		{RunID: "recorder-1", Service: "recorder", DurationS: 2},
		{RunID: "replay-2", Service: "simulation", DurationS: 3},
	}
	if err := r.Render(rows); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "run_id") || !strings.Contains(out, "duration_s") {
		t.Errorf("header should use json tags, got %q", out)
	}
	if !strings.Contains(out, "recorder-1") || !strings.Contains(out, "replay-2") {
		t.Errorf("rows missing, got %q", out)
	}
}

func TestRender_TableEmptySlice(t *testing.T) {
	var buf bytes.Buffer
	r := render.NewRendererWithWriter(render.FormatTable, &buf)

	if err := r.Render([]row{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "no results") {
		t.Errorf("empty slice output = %q", buf.String())
	}
}

func TestRender_TableMapSortedKeys(t *testing.T) {
	var buf bytes.Buffer
	r := render.NewRendererWithWriter(render.FormatTable, &buf)

	if err := r.Render(map[string]string{"b": "2", "a": "1"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "a:") > strings.Index(out, "b:") {
		t.Errorf("map keys should be sorted, got %q", out)
	}
}
