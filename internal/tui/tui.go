// Package tui provides a Bubble Tea pager for the terminal output log.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-runewidth"

	"github.com/fakeyudi/asklog/internal/logfile"
)

// MaxLines caps how much of the log the pager loads.
const MaxLines = 50_000

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	followOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// ── Messages ──────────

// linesMsg carries a fresh read of the log.
type linesMsg struct{ lines []string }

// changedMsg reports that the log was written, rotated or trimmed.
type changedMsg struct{}

type errMsg struct{ err error }

// watchErrMsg is a non-fatal watcher error; watching continues.
type watchErrMsg struct{ err error }

// ── Model ────────────────────

// Model is the root Bubble Tea model for the log pager.
type Model struct {
	path     string
	lines    []string
	viewport viewport.Model
	watcher  *fsnotify.Watcher
	width    int
	height   int
	ready    bool
	follow   bool
	wrap     bool
	err      error
}

// New creates a pager for the log at path. It starts at the bottom with
// follow on. watcher may be nil, in which case the pager never reloads.
func New(path string, watcher *fsnotify.Watcher) Model {
	return Model{path: path, watcher: watcher, follow: true}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(loadLines(m.path), waitForChange(m.watcher, m.path))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "f":
			m.follow = !m.follow
			if m.follow && m.ready {
				m.viewport.GotoBottom()
			}
			return m, nil
		case "w":
			m.wrap = !m.wrap
			m.refresh()
			return m, nil
		case "g", "home":
			m.follow = false
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		// Scrolling away from the bottom pauses follow.
		if !m.viewport.AtBottom() {
			m.follow = false
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// title(1) + statusBar(1) = 2 fixed rows
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refresh()
		return m, nil

	case linesMsg:
		m.lines = msg.lines
		m.err = nil
		m.refresh()
		return m, nil

	case changedMsg:
		return m, tea.Batch(loadLines(m.path), waitForChange(m.watcher, m.path))

	case errMsg:
		m.err = msg.err
		return m, nil

	case watchErrMsg:
		m.err = msg.err
		return m, waitForChange(m.watcher, m.path)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  asklog  " + filepath.Base(m.path))

	hint := "  ↑/↓ scroll  g/G top/bottom  f follow  w wrap  q quit"
	state := dimStyle.Render("paused")
	if m.follow {
		state = followOnStyle.Render("following")
	}
	right := fmt.Sprintf("%s  %d lines  %3.0f%%", state, len(m.lines), m.viewport.ScrollPercent()*100)
	if m.err != nil {
		right = errorStyle.Render(m.err.Error())
	}
	if lipgloss.Width(hint)+lipgloss.Width(right)+3 > m.width {
		hint = ""
	}
	pad := m.width - lipgloss.Width(hint) - lipgloss.Width(right) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + right)

	return lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), statusBar)
}

// refresh re-renders the loaded lines into the viewport.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	if len(m.lines) == 0 {
		m.viewport.SetContent(dimStyle.Render("  (log is empty)"))
		return
	}
	m.viewport.SetContent(render(m.lines, m.width, m.wrap))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// render lays out lines for a viewport width columns wide. Without wrap each
// line is cut to the width, measured in terminal cells.
func render(lines []string, width int, wrap bool) string {
	if width <= 0 {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		l = strings.ReplaceAll(l, "\t", "    ")
		if wrap {
			out[i] = runewidth.Wrap(l, width)
		} else {
			out[i] = runewidth.Truncate(l, width, "…")
		}
	}
	return strings.Join(out, "\n")
}

// ── Commands ──────────

func loadLines(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logfile.Tail(path, MaxLines)
		if err != nil {
			return errMsg{err}
		}
		return linesMsg{lines}
	}
}

// waitForChange blocks until the watcher reports an event for path.
func waitForChange(w *fsnotify.Watcher, path string) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) == filepath.Clean(path) {
					return changedMsg{}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err}
			}
		}
	}
}

// Run starts the pager for the log at path.
func Run(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// Watch the directory so rotation, which replaces the file, keeps firing.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	p := tea.NewProgram(New(path, watcher), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
