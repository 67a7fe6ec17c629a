package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/copytrader-io/copybot/manifest"
)

// RunEntry is one browsable run.
type RunEntry struct {
	Service string
	RunID   string
	// Manifest may be nil when the run has no readable manifest.
	Manifest *manifest.RunManifest
}

// Title implements list.DefaultItem.
func (e RunEntry) Title() string { return e.RunID }

// Description implements list.DefaultItem.
func (e RunEntry) Description() string {
	if e.Manifest == nil {
		return e.Service + " (no manifest)"
	}
	started := time.Unix(int64(e.Manifest.StartedAt), 0).UTC().Format("2006-01-02 15:04:05")
	return fmt.Sprintf("%s  %s  %.1fs", e.Service, started, e.Manifest.DurationS)
}

// FilterValue implements list.Item.
func (e RunEntry) FilterValue() string { return e.RunID }

type keyMap struct {
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// RunsModel is a Bubble Tea model for browsing runs and their manifests.
type RunsModel struct {
	list     list.Model
	selected *RunEntry
	width    int
	height   int
	quitting bool
}

// NewRunsModel creates a runs browser over the given entries.
func NewRunsModel(entries []RunEntry) RunsModel {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = e
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Runs"
	l.SetShowStatusBar(false)

	return RunsModel{list: l}
}

// Init implements tea.Model.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Select):
			if m.selected == nil {
				if entry, ok := m.list.SelectedItem().(RunEntry); ok {
					m.selected = &entry
				}
				return m, nil
			}
		case key.Matches(msg, keys.Back):
			m.selected = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m RunsModel) View() string {
	if m.quitting {
		return ""
	}
	if m.selected != nil {
		return m.renderDetail()
	}
	help := HelpStyle.Render("enter: details  q: quit")
	return m.list.View() + "\n" + help
}

func (m RunsModel) renderDetail() string {
	e := m.selected

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run " + e.RunID))
	b.WriteString("\n\n")

	if e.Manifest == nil {
		b.WriteString(ErrorStyle.Render("no manifest stored for this run"))
	} else {
		mf := e.Manifest
		rows := [][]string{
			{"Service", mf.Service},
			{"Run ID", mf.RunID},
			{"Started At", time.Unix(int64(mf.StartedAt), 0).UTC().Format(time.RFC3339)},
			{"Ended At", time.Unix(int64(mf.EndedAt), 0).UTC().Format(time.RFC3339)},
			{"Duration", fmt.Sprintf("%.2fs", mf.DurationS)},
			{"Git SHA", mf.GitSHA},
		}
		for _, row := range rows {
			b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(row[0]+":"), ValueStyle.Render(row[1])))
		}

		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Artifacts"))
		b.WriteString("\n")
		names := make([]string, 0, len(mf.Artifacts))
		for name := range mf.Artifacts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(name+":"), ValueStyle.Render(mf.Artifacts[name])))
		}
	}

	help := HelpStyle.Render("esc: back  q: quit")
	return BoxStyle.Render(b.String()) + "\n" + help
}

// RunBrowser starts the interactive runs browser.
func RunBrowser(entries []RunEntry) error {
	_, err := tea.NewProgram(NewRunsModel(entries), tea.WithAltScreen()).Run()
	return err
}
