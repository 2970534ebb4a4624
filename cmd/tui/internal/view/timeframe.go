package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PeriodSelectedMsg is emitted once a period is chosen. Nil fields mean unfiltered.
type PeriodSelectedMsg struct {
	Month *int
	Year  *int
	Label string
}

type periodState int

const (
	periodStateSelect periodState = iota
	periodStateCustom
)

// PeriodPicker is a reusable component for choosing a month/year window.
type PeriodPicker struct {
	state    periodState
	selected Period

	monthInput textinput.Model
	yearInput  textinput.Model
	focusIndex int

	err error
}

func NewPeriodPicker(initial Period) PeriodPicker {
	mi := textinput.New()
	mi.Placeholder = "MM (opcional)"
	mi.CharLimit = 2
	mi.Width = 14
	mi.Prompt = "Mês: "

	yi := textinput.New()
	yi.Placeholder = "AAAA"
	yi.CharLimit = 4
	yi.Width = 6
	yi.Prompt = "Ano: "

	return PeriodPicker{
		state:      periodStateSelect,
		selected:   initial,
		monthInput: mi,
		yearInput:  yi,
	}
}

func (m PeriodPicker) Init() tea.Cmd {
	return nil
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case periodStateSelect:
			return m.updateSelect(keyMsg)
		case periodStateCustom:
			if next, cmd, handled := m.updateCustom(keyMsg); handled {
				return next, cmd
			}
		}
	}

	if m.state == periodStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m PeriodPicker) updateSelect(msg tea.KeyMsg) (PeriodPicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > PeriodThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < PeriodCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == PeriodCustom {
			m.state = periodStateCustom
			m.focusIndex = 0
			m.monthInput.Focus()

			return m, textinput.Blink
		}

		month, year := PeriodToFilter(m.selected, time.Now())
		label := m.selected.String()

		return m, func() tea.Msg {
			return PeriodSelectedMsg{Month: month, Year: year, Label: label}
		}
	}

	return m, nil
}

func (m PeriodPicker) updateCustom(msg tea.KeyMsg) (PeriodPicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.monthInput.Blur()
		m.yearInput.Blur()

		if m.focusIndex == 0 {
			m.monthInput.Focus()
		} else {
			m.yearInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		month, year, err := ParseCustomPeriod(m.monthInput.Value(), m.yearInput.Value())
		if err != nil {
			m.err = err
			return m, nil, true
		}

		m.err = nil
		label := fmt.Sprintf("%04d", *year)
		if month != nil {
			label = FormatPeriod(*month, *year)
		}

		return m, func() tea.Msg {
			return PeriodSelectedMsg{Month: month, Year: year, Label: label}
		}, true

	case "esc":
		m.state = periodStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m PeriodPicker) updateInputs(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.monthInput, c = m.monthInput.Update(msg)
	cmds = append(cmds, c)
	m.yearInput, c = m.yearInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m PeriodPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("\n\nErro: %v", m.err))
	}

	if m.state == periodStateCustom {
		return fmt.Sprintf(
			"Período personalizado:\n\n%s\n%s\n\n(Enter confirma, Tab alterna, Esc volta)%s",
			m.monthInput.View(),
			m.yearInput.View(),
			errStr,
		)
	}

	s := "Selecione o período:\n\n"
	for p := PeriodThisMonth; p <= PeriodCustom; p++ {
		cursor := " "
		if m.selected == p {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, p.String())
	}
	s += "\n(Enter seleciona, Esc volta)"

	return s + errStr
}

// IsSelecting reports whether the picker is showing the predefined list.
func (m PeriodPicker) IsSelecting() bool {
	return m.state == periodStateSelect
}

func (m *PeriodPicker) Reset() {
	m.state = periodStateSelect
	m.err = nil
	m.monthInput.SetValue("")
	m.yearInput.SetValue("")
}
