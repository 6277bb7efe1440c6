package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ssh-manager/pkg/profile"
)

var (
	// ErrNoProfiles is returned by Pick when there is nothing to choose from.
	ErrNoProfiles = errors.New("no profiles saved")
	// ErrCancelled is returned by Pick when the user leaves without choosing.
	ErrCancelled = errors.New("cancelled")
)

const defaultPickerRows = 15

type pickerModel struct {
	input      textinput.Model
	candidates []candidate
	filtered   []candidate
	selected   int
	scroll     int
	height     int
	theme      Theme

	chosen    string
	cancelled bool
}

func newPicker(ps profile.Profiles, th Theme) pickerModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search..."
	ti.CharLimit = 256
	ti.PromptStyle = ti.PromptStyle.Bold(true)
	ti.Focus()

	m := pickerModel{
		input:      ti,
		candidates: buildCandidates(ps),
		theme:      th,
	}
	m.recomputeFilter()
	return m
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.clampScroll()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if cur := m.current(); cur != nil {
				m.chosen = cur.Alias
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyUp, tea.KeyCtrlP, tea.KeyCtrlK:
			m.move(-1)
			return m, nil
		case tea.KeyDown, tea.KeyCtrlN, tea.KeyCtrlJ:
			m.move(1)
			return m, nil
		case tea.KeyPgUp:
			m.move(-m.rows())
			return m, nil
		case tea.KeyPgDown:
			m.move(m.rows())
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.recomputeFilter()
	}
	return m, cmd
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("Select a connection"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(m.theme.Dim.Render("  no matches"))
		b.WriteString("\n")
	}
	end := m.scroll + m.rows()
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	for i := m.scroll; i < end; i++ {
		line := m.filtered[i].Display
		if i == m.selected {
			b.WriteString(m.theme.Selected.Render(" > " + line))
		} else {
			b.WriteString("   " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(fmt.Sprintf("%d/%d  enter: connect  ↑/↓: move  esc: cancel", len(m.filtered), len(m.candidates))))
	return b.String()
}

func (m *pickerModel) recomputeFilter() {
	m.filtered = rankMatches(m.candidates, m.input.Value())
	if m.selected >= len(m.filtered) {
		m.selected = len(m.filtered) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.scroll = 0
	m.clampScroll()
}

func (m *pickerModel) current() *candidate {
	if len(m.filtered) == 0 || m.selected < 0 || m.selected >= len(m.filtered) {
		return nil
	}
	return &m.filtered[m.selected]
}

func (m *pickerModel) move(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(m.filtered) {
		m.selected = len(m.filtered) - 1
	}
	m.clampScroll()
}

// rows is how many candidates fit under the header, input and help lines.
func (m *pickerModel) rows() int {
	if m.height <= 0 {
		return defaultPickerRows
	}
	if n := m.height - 6; n > 0 {
		return n
	}
	return 1
}

func (m *pickerModel) clampScroll() {
	rows := m.rows()
	if m.selected < m.scroll {
		m.scroll = m.selected
	}
	if m.selected >= m.scroll+rows {
		m.scroll = m.selected - rows + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// Pick runs the interactive alias picker on the console's streams and
// returns the chosen alias.
func (c *Console) Pick(ps profile.Profiles) (string, error) {
	if len(ps) == 0 {
		return "", ErrNoProfiles
	}
	p := tea.NewProgram(newPicker(ps, c.Theme), tea.WithInput(c.In), tea.WithOutput(c.Out), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || m.cancelled || m.chosen == "" {
		return "", ErrCancelled
	}
	return m.chosen, nil
}
