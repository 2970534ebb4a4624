package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateForm
)

var (
	statusFilters = []*entry.Status{nil, new(entry.StatusPending), new(entry.StatusConfirmed), new(entry.StatusCanceled)}
	periodFilters = []Period{PeriodAll, PeriodThisMonth, PeriodLastMonth, PeriodThisYear}
)

type ListModel struct {
	CommonModel
	entryService *entry.Service
	session      Session

	state   listState
	table   table.Model
	entries []*entry.Entry
	balance decimal.Decimal
	form    *huh.Form
	editing *entry.Entry

	statusFilterIdx int
	periodFilterIdx int

	filter  entry.Filter
	loading bool
	err     error
	status  string

	// Form bindings
	formDesc  string
	formValue string
	formMonth string
	formYear  string
	formType  string
}

func NewListModel(entrySvc *entry.Service, session Session) ListModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Período", Width: 9},
		{Title: "Tipo", Width: 8},
		{Title: "Status", Width: 10},
		{Title: "Valor", Width: 12},
		{Title: "Descrição", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		entryService: entrySvc,
		session:      session,
		table:        t,
		filter:       entry.Filter{UserID: &session.UserID},
		loading:      true,
	}
}

func (m ListModel) Title() string { return "Lançamentos" }
func (m ListModel) ShortHelp() string {
	if m.state == listStateForm {
		return "Navegue pelo formulário | Esc: cancelar"
	}
	return "Esc: voltar | n: novo | e: editar | c: efetivar | x: cancelar | p: pendente | d: excluir | s: status | t: período | r: atualizar"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.entries = msg.entries
		m.balance = msg.balance
		m.refreshTable()
		return m, nil

	case listSaveMsg:
		m.status = msg.done
		if msg.err != nil {
			m.status = "Erro: " + ErrorText(msg.err)
		}
		m.state = listStateBrowse
		m.form = nil
		m.editing = nil
		m.table.Focus()
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.enterForm(nil)
		case "e":
			if e := m.selected(); e != nil {
				return m.enterForm(e)
			}
			return m, nil
		case "c":
			return m, m.statusCmd(entry.StatusConfirmed)
		case "x":
			return m, m.statusCmd(entry.StatusCanceled)
		case "p":
			return m, m.statusCmd(entry.StatusPending)
		case "d":
			return m, m.deleteCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.applyFilter()
			return m, m.loadCmd()
		case "t":
			m.periodFilterIdx = (m.periodFilterIdx + 1) % len(periodFilters)
			m.applyFilter()
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ListModel) selected() *entry.Entry {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return nil
	}

	return m.entries[idx]
}

func (m ListModel) enterForm(e *entry.Entry) (tea.Model, tea.Cmd) {
	now := time.Now()

	m.editing = e
	m.formDesc = ""
	m.formValue = ""
	m.formMonth = strconv.Itoa(int(now.Month()))
	m.formYear = strconv.Itoa(now.Year())
	m.formType = string(entry.TypeExpense)

	if e != nil {
		m.formDesc = e.Description
		m.formValue = FormatValue(e.Value)
		m.formMonth = strconv.Itoa(e.Month)
		m.formYear = strconv.Itoa(e.Year)
		m.formType = string(e.Type)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("descricao").
				Title("Descrição").
				Value(&m.formDesc),

			huh.NewInput().
				Key("valor").
				Title("Valor").
				Placeholder("0,00").
				Value(&m.formValue).
				Validate(func(s string) error {
					if _, err := parseValue(s); err != nil {
						return fmt.Errorf("valor inválido")
					}
					return nil
				}),

			huh.NewInput().
				Key("mes").
				Title("Mês").
				Value(&m.formMonth),

			huh.NewInput().
				Key("ano").
				Title("Ano").
				Value(&m.formYear),

			huh.NewSelect[string]().
				Key("tipo").
				Title("Tipo").
				Options(
					huh.NewOption("Despesa", string(entry.TypeExpense)),
					huh.NewOption("Receita", string(entry.TypeIncome)),
				).
				Value(&m.formType),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateForm
	m.table.Blur()
	return m, m.form.Init()
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.editing = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando lançamentos...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Erro: %s", ErrorText(m.err)))
	}

	statusLabel := "Todos"
	if s := statusFilters[m.statusFilterIdx]; s != nil {
		statusLabel = string(*s)
	}

	header := fmt.Sprintf(
		"%s | Saldo: %s\nFiltro: [s] Status: %s | [t] Período: %s",
		m.session.Name,
		balanceStyle(m.balance),
		activeStyle(statusLabel),
		activeStyle(periodFilters[m.periodFilterIdx].String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateForm && m.form != nil {
		title := "Novo lançamento"
		if m.editing != nil {
			title = fmt.Sprintf("Editar lançamento #%d [%s]", m.editing.ID, m.editing.Status)
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("%s\n\n%s", title, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func balanceStyle(v decimal.Decimal) string {
	color := lipgloss.Color("46")
	if v.IsNegative() {
		color = lipgloss.Color("196")
	}

	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(FormatValue(v))
}

func (m *ListModel) applyFilter() {
	m.filter.Status = statusFilters[m.statusFilterIdx]
	m.filter.Month, m.filter.Year = PeriodToFilter(periodFilters[m.periodFilterIdx], time.Now())
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			FormatPeriod(e.Month, e.Year),
			string(e.Type),
			string(e.Status),
			FormatValue(e.Value),
			e.Description,
		})
	}
	m.table.SetRows(rows)
}

func parseValue(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	return decimal.NewFromString(s)
}

// Messages

type loadListMsg struct {
	entries []*entry.Entry
	balance decimal.Decimal
	err     error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter
	userID := m.session.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.entryService.Search(ctx, filter)
		if err != nil {
			return loadListMsg{err: err}
		}

		balance, err := m.entryService.Balance(ctx, userID)
		return loadListMsg{entries: entries, balance: balance, err: err}
	}
}

type listSaveMsg struct {
	done string
	err  error
}

func (m ListModel) saveCmd() tea.Cmd {
	var e entry.Entry
	if m.editing != nil {
		e = *m.editing
	}

	e.UserID = m.session.UserID
	e.Description = strings.TrimSpace(m.form.GetString("descricao"))
	e.Value, _ = parseValue(m.form.GetString("valor"))
	e.Month, _ = strconv.Atoi(strings.TrimSpace(m.form.GetString("mes")))
	e.Year, _ = strconv.Atoi(strings.TrimSpace(m.form.GetString("ano")))
	e.Type = entry.Type(m.form.GetString("tipo"))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if e.ID == 0 {
			created, err := m.entryService.Create(ctx, &e)
			if err != nil {
				return listSaveMsg{err: err}
			}
			return listSaveMsg{done: fmt.Sprintf("Lançamento #%d criado.", created.ID)}
		}

		if _, err := m.entryService.Update(ctx, &e); err != nil {
			return listSaveMsg{err: err}
		}
		return listSaveMsg{done: fmt.Sprintf("Lançamento #%d atualizado.", e.ID)}
	}
}

func (m ListModel) statusCmd(status entry.Status) tea.Cmd {
	selected := m.selected()
	if selected == nil {
		return nil
	}

	e := *selected

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.entryService.UpdateStatus(ctx, &e, status); err != nil {
			return listSaveMsg{err: err}
		}
		return listSaveMsg{done: fmt.Sprintf("Lançamento #%d agora está %s.", e.ID, status)}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	selected := m.selected()
	if selected == nil {
		return nil
	}

	e := *selected

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.entryService.Delete(ctx, &e); err != nil {
			return listSaveMsg{err: err}
		}
		return listSaveMsg{done: fmt.Sprintf("Lançamento #%d excluído.", e.ID)}
	}
}
