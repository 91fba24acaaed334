// Package tui holds the single interactive surface of the tool: the
// pause between provider sections.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B")).Italic(true)

// pauseModel waits for exactly one keypress.
type pauseModel struct {
	aborted bool
}

func (m pauseModel) Init() tea.Cmd { return nil }

func (m pauseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m pauseModel) View() string {
	return promptStyle.Render("-- press any key for next provider, q to quit --")
}

// WaitForKey blocks until the user presses a key. It returns false when
// the user asked to stop showing further providers.
func WaitForKey() (bool, error) {
	p := tea.NewProgram(pauseModel{})
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(pauseModel)
	if !ok {
		return true, nil
	}
	return !m.aborted, nil
}
