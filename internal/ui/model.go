// Package ui provides the Bubbletea progress view for render mode.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"visual-artifacts/internal/pipeline"
)

// Model tracks one render job.
type Model struct {
	Source      string
	TotalFrames int
	Stats       pipeline.Stats
	OutputPath  string
	Err         error
	Done        bool
	Cancelled   bool
	Width       int

	cancel func()
}

// NewModel builds the view for a job. cancel is called when the user quits
// early and may be nil.
func NewModel(source string, totalFrames int, cancel func()) Model {
	return Model{Source: source, TotalFrames: totalFrames, cancel: cancel}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.Done && m.cancel != nil {
				m.cancel()
			}
			m.Cancelled = !m.Done
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case ProgressMsg:
		m.Stats = msg.Stats

	case DoneMsg:
		m.Stats = msg.Stats
		m.OutputPath = msg.OutputPath
		m.Err = msg.Error
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	if m.Done {
		return renderSummary(m)
	}
	return renderProgress(m)
}

// Progress is the completed fraction, 0 when the total is unknown.
func (m Model) Progress() float64 {
	if m.TotalFrames <= 0 {
		return 0
	}
	p := float64(m.Stats.Frames) / float64(m.TotalFrames)
	if p > 1 {
		return 1
	}
	return p
}
