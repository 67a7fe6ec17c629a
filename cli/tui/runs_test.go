package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/copytrader-io/copybot/manifest"
)

func testEntries() []RunEntry {
	return []RunEntry{
		{
			Service: "recorder",
			RunID:   "recorder-1700000000",
			Manifest: &manifest.RunManifest{
				SchemaVersion: manifest.SchemaVersion,
				Service:       "recorder",
				RunID:         "recorder-1700000000",
				StartedAt:     1700000000,
				EndedAt:       1700000010,
				DurationS:     10,
				GitSHA:        "abc1234",
				Artifacts:     map[string]string{"events": "mem://events"},
			},
		},
		{Service: "simulation", RunID: "replay-1700000100"},
	}
}

func TestRunEntry_ListItem(t *testing.T) {
	entries := testEntries()

	if got := entries[0].Title(); got != "recorder-1700000000" {
		t.Errorf("Title = %q", got)
	}
	if got := entries[0].FilterValue(); got != "recorder-1700000000" {
		t.Errorf("FilterValue = %q", got)
	}

	desc := entries[0].Description()
	if !strings.Contains(desc, "recorder") || !strings.Contains(desc, "10.0s") {
		t.Errorf("Description = %q", desc)
	}

	if got := entries[1].Description(); !strings.Contains(got, "no manifest") {
		t.Errorf("manifest-less entry description = %q", got)
	}
}

func TestRunsModel_ListView(t *testing.T) {
	m := NewRunsModel(testEntries())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(RunsModel)

	view := m.View()
	if !strings.Contains(view, "recorder-1700000000") {
		t.Errorf("list view should show run IDs, got %q", view)
	}
}

func TestRunsModel_SelectShowsDetail(t *testing.T) {
	m := NewRunsModel(testEntries())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(RunsModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(RunsModel)

	view := m.View()
	if !strings.Contains(view, "abc1234") {
		t.Errorf("detail view should show manifest fields, got %q", view)
	}
	if !strings.Contains(view, "events") {
		t.Errorf("detail view should list artifacts, got %q", view)
	}

	// Esc returns to the list
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(RunsModel)
	if m.selected != nil {
		t.Error("esc should clear the selection")
	}
}

func TestRunsModel_QuitKeys(t *testing.T) {
	m := NewRunsModel(testEntries())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = updated.(RunsModel)

	if !m.quitting {
		t.Error("q should set quitting")
	}
	if cmd == nil {
		t.Error("q should return tea.Quit")
	}
	if m.View() != "" {
		t.Error("quitting view should be empty")
	}
}
