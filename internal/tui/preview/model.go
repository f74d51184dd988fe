// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     preview
// Description: Bubbletea viewer for a source file and its compiled program
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package preview

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/rungc/internal/tui"
)

// View selects the pane shown in the viewport
type View int

const (
	ViewSource View = iota
	ViewOutput
)

// String returns the tab label
func (v View) String() string {
	if v == ViewOutput {
		return "Output"
	}
	return "Source"
}

// LoadFunc reads the source at path and compiles it. source is returned
// even when compilation fails.
type LoadFunc func(path string) (source, program string, err error)

// loadedMsg carries the result of a LoadFunc call
type loadedMsg struct {
	source  string
	program string
	err     error
}

// Model is the preview Bubbletea model
type Model struct {
	// State
	width  int
	height int
	ready  bool
	view   View

	// Components
	viewport viewport.Model

	// Content
	path    string
	source  string
	program string
	err     error
	loads   int

	load LoadFunc
}

// New creates a preview model for path
func New(path string, load LoadFunc) Model {
	return Model{
		path: path,
		load: load,
	}
}

// Init loads and compiles the source
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.reload)
}

func (m Model) reload() tea.Msg {
	source, program, err := m.load(m.path)
	return loadedMsg{source: source, program: program, err: err}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if m.view == ViewSource {
				m.view = ViewOutput
			} else {
				m.view = ViewSource
			}
			m.refresh()
			m.viewport.GotoTop()
			return m, nil
		case "r":
			return m, m.reload
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2 // Title + tabs
		footerHeight := 2 // Status bar + help
		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.refresh()

	case loadedMsg:
		m.source = msg.source
		m.program = msg.program
		m.err = msg.err
		m.loads++
		m.refresh()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// Content returns the text of the active pane
func (m Model) Content() string {
	if m.view == ViewSource {
		return numbered(m.source)
	}
	if m.err != nil {
		return tui.RenderDiagnostic(m.err, true)
	}
	return m.program
}

// refresh copies the active pane into the viewport
func (m *Model) refresh() {
	if m.ready {
		m.viewport.SetContent(m.Content())
	}
}

// View renders the model
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(tui.RenderTitle("rungc preview") + "  " + tui.SubtitleStyle.Render(filepath.Base(m.path)))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(tui.RenderHelp("tab: switch pane  r: recompile  q: quit"))
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, 2)
	for _, v := range []View{ViewSource, ViewOutput} {
		if v == m.view {
			tabs = append(tabs, tui.ActiveTabStyle.Render(v.String()))
		} else {
			tabs = append(tabs, tui.TabStyle.Render(v.String()))
		}
	}
	return strings.Join(tabs, "")
}

func (m Model) renderStatus() string {
	status := tui.StatusOKStyle.Render("compiled")
	if m.err != nil {
		status = tui.StatusErrorStyle.Render("failed")
	}
	lines := strings.Count(m.program, "\n")
	return tui.StatusBarStyle.Render(fmt.Sprintf("%s  %d output lines  %3.f%%", status, lines, m.viewport.ScrollPercent()*100))
}

// numbered prefixes every source line with its line number
func numbered(source string) string {
	if source == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(source, "\n"), "\n")
	width := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		lines[i] = tui.LocationStyle.Render(fmt.Sprintf("%*d ", width, i+1)) + line
	}
	return strings.Join(lines, "\n")
}
