package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/matching"
)

type reviewState int

const (
	reviewStatePeriod reviewState = iota
	reviewStateReviewing
)

// ReviewModel walks the user's pending entries one by one, offering a learned
// description for each and settling it as confirmed or canceled.
type ReviewModel struct {
	CommonModel
	entryService    *entry.Service
	matchingService *matching.Service
	session         Session

	state        reviewState
	periodPicker PeriodPicker

	queue   []*entry.Entry
	current *entry.Entry
	descIn  textinput.Model

	status     string
	loading    bool
	totalCount int
}

func NewReviewModel(entrySvc *entry.Service, matchSvc *matching.Service, session Session) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Descrição"
	ti.Width = 50

	return ReviewModel{
		entryService:    entrySvc,
		matchingService: matchSvc,
		session:         session,
		periodPicker:    NewPeriodPicker(PeriodThisMonth),
		descIn:          ti,
	}
}

func (m ReviewModel) Title() string { return "Revisar pendentes" }
func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateReviewing {
		return "Enter: efetivar | Ctrl+X: cancelar lançamento | Ctrl+S: pular | Esc: voltar"
	}
	return "Esc: voltar | Enter: selecionar"
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		m.state = reviewStateReviewing
		m.loading = true
		return m, m.loadPendingCmd(msg)

	case loadPendingMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Erro ao carregar: " + ErrorText(msg.err)
			return m, nil
		}

		m.queue = msg.entries
		m.totalCount = len(m.queue)
		if len(m.queue) == 0 {
			m.status = "Nenhum lançamento pendente no período."
			return m, nil
		}

		cmd := m.nextCmd()
		return m, cmd

	case suggestionMsg:
		m.descIn.SetValue(msg.description)
		m.descIn.CursorEnd()
		m.descIn.Focus()
		return m, textinput.Blink

	case reviewSaveMsg:
		if msg.err != nil {
			m.status = "Erro ao salvar: " + ErrorText(msg.err)
			return m, nil
		}

		cmd := m.nextCmd()
		return m, cmd

	case tea.KeyMsg:
		if m.state == reviewStatePeriod {
			if msg.Type == tea.KeyEsc && m.periodPicker.IsSelecting() {
				return m, Back
			}

			var cmd tea.Cmd
			m.periodPicker, cmd = m.periodPicker.Update(msg)
			return m, cmd
		}

		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "enter":
			if m.current != nil {
				return m, m.settleCmd(entry.StatusConfirmed, m.descIn.Value())
			}
			return m, nil
		case "ctrl+x":
			if m.current != nil {
				return m, m.settleCmd(entry.StatusCanceled, m.current.Description)
			}
			return m, nil
		case "ctrl+s":
			cmd := m.nextCmd()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.state == reviewStatePeriod {
		m.periodPicker, cmd = m.periodPicker.Update(msg)
		return m, cmd
	}

	m.descIn, cmd = m.descIn.Update(msg)
	return m, cmd
}

// nextCmd pops the next pending entry and asks the matcher for a suggestion.
func (m *ReviewModel) nextCmd() tea.Cmd {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = "Tudo revisado!"
		m.descIn.Blur()
		m.descIn.SetValue("")

		return nil
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Revisando %d/%d", m.totalCount-len(m.queue), m.totalCount)

	raw := m.current.Description
	userID := m.session.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		suggestion, err := m.matchingService.Suggest(ctx, userID, raw)
		if err != nil || suggestion == "" {
			return suggestionMsg{description: raw}
		}

		return suggestionMsg{description: suggestion}
	}
}

func (m ReviewModel) View() string {
	if m.state == reviewStatePeriod {
		return lipgloss.NewStyle().Padding(2).Render(m.periodPicker.View())
	}

	var content string

	switch {
	case m.loading:
		content = "Carregando pendentes..."
	case m.current != nil:
		info := fmt.Sprintf(
			"#%d  %s  %s  %s\nOriginal: %s\n",
			m.current.ID,
			FormatPeriod(m.current.Month, m.current.Year),
			m.current.Type,
			FormatValue(m.current.Value),
			m.current.Description,
		)
		content = fmt.Sprintf("%s\n\n%s\nDescrição:\n%s", m.status, info, m.descIn.View())
	default:
		content = m.status + "\n\n(Esc para voltar)"
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

type loadPendingMsg struct {
	entries []*entry.Entry
	err     error
}

type suggestionMsg struct {
	description string
}

type reviewSaveMsg struct {
	err error
}

func (m ReviewModel) loadPendingCmd(period PeriodSelectedMsg) tea.Cmd {
	filter := entry.Filter{
		UserID: &m.session.UserID,
		Status: new(entry.StatusPending),
		Month:  period.Month,
		Year:   period.Year,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.entryService.Search(ctx, filter)
		return loadPendingMsg{entries: entries, err: err}
	}
}

func (m ReviewModel) settleCmd(status entry.Status, description string) tea.Cmd {
	e := *m.current
	raw := e.Description
	description = strings.TrimSpace(description)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if description != "" && description != raw {
			if _, err := m.matchingService.Learn(ctx, e.UserID, raw, description); err != nil {
				return reviewSaveMsg{err: err}
			}

			e.Description = description
		}

		e.Status = status
		_, err := m.entryService.Update(ctx, &e)

		return reviewSaveMsg{err: err}
	}
}
