package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/export"
)

const exportTimeout = 2 * time.Minute

// exportChoice is shared by every copy of ExportModel so the form bindings
// survive bubbletea's value-receiver updates.
type exportChoice struct {
	period Period
	month  string
	year   string
	status string
	dir    string
}

// filter turns the choice into search criteria for userID.
func (c *exportChoice) filter(userID int64, now time.Time) (entry.Filter, error) {
	f := entry.Filter{UserID: &userID}

	if c.period == PeriodCustom {
		month, year, err := ParseCustomPeriod(c.month, c.year)
		if err != nil {
			return f, err
		}

		f.Month, f.Year = month, year
	} else {
		f.Month, f.Year = PeriodToFilter(c.period, now)
	}

	if c.status != "" {
		st, err := entry.ParseStatus(c.status)
		if err != nil {
			return f, err
		}

		f.Status = &st
	}

	return f, nil
}

type ExportModel struct {
	CommonModel
	exportService *export.Service
	session       Session

	choice  *exportChoice
	form    *huh.Form
	spinner spinner.Model
	running bool
	done    bool

	written int
	path    string
	err     error
}

func NewExportModel(svc *export.Service, session Session) ExportModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ExportModel{
		exportService: svc,
		session:       session,
		choice:        &exportChoice{period: PeriodThisMonth, dir: "./exports"},
		spinner:       sp,
	}
	m.form = m.choiceForm()

	return m
}

func (m ExportModel) choiceForm() *huh.Form {
	c := m.choice

	periods := make([]huh.Option[Period], 0, 5)
	for _, p := range []Period{PeriodThisMonth, PeriodLastMonth, PeriodThisYear, PeriodAll, PeriodCustom} {
		periods = append(periods, huh.NewOption(p.String(), p))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Period]().
				Title("Período").
				Options(periods...).
				Value(&c.period),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Mês (opcional)").
				Placeholder("1-12").
				Value(&c.month),
			huh.NewInput().
				Title("Ano").
				Placeholder("AAAA").
				Value(&c.year).
				Validate(func(string) error {
					_, _, err := ParseCustomPeriod(c.month, c.year)
					return err
				}),
		).WithHideFunc(func() bool { return c.period != PeriodCustom }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Status").
				Options(
					huh.NewOption("Todos", ""),
					huh.NewOption("Pendentes", string(entry.StatusPending)),
					huh.NewOption("Efetivados", string(entry.StatusConfirmed)),
					huh.NewOption("Cancelados", string(entry.StatusCanceled)),
				).
				Value(&c.status),
			huh.NewInput().
				Title("Diretório de saída").
				Description("Será criado se não existir").
				Value(&c.dir),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) Title() string { return "Exportar CSV" }

func (m ExportModel) ShortHelp() string {
	if m.done {
		return "Esc: voltar ao menu | n: nova exportação"
	}

	return "Esc: voltar | Enter: confirmar"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exportedMsg:
		m.running = false
		m.done = true
		m.written, m.path, m.err = msg.count, msg.path, msg.err

		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && !m.running {
			return m, Back
		}

		if m.done {
			if msg.String() == "n" {
				m.done, m.err = false, nil
				m.form = m.choiceForm()

				return m, m.form.Init()
			}

			return m, nil
		}
	}

	if m.running || m.done {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.running = true

	return m, tea.Batch(m.spinner.Tick, m.exportCmd(*m.choice))
}

func (m ExportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch {
	case m.running:
		return pad.Render(fmt.Sprintf("%s Exportando lançamentos...", m.spinner.View()))
	case m.done && m.err != nil:
		return pad.Render(errorStyle.Render("Erro: " + ErrorText(m.err)))
	case m.done:
		return pad.Render(lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render("Exportação concluída!"),
			"",
			fmt.Sprintf("%d lançamentos gravados em %s", m.written, m.path),
		))
	}

	return pad.Render(m.form.View())
}

type exportedMsg struct {
	count int
	path  string
	err   error
}

func (m ExportModel) exportCmd(choice exportChoice) tea.Cmd {
	userID := m.session.UserID

	return func() tea.Msg {
		filter, err := choice.filter(userID, time.Now())
		if err != nil {
			return exportedMsg{err: err}
		}

		if err := os.MkdirAll(choice.dir, 0o755); err != nil {
			return exportedMsg{err: fmt.Errorf("creating %s: %w", choice.dir, err)}
		}

		var year, month int
		if filter.Year != nil {
			year = *filter.Year
		}

		if filter.Month != nil {
			month = *filter.Month
		}

		path := filepath.Join(choice.dir, export.Filename(userID, year, month))

		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: fmt.Errorf("creating %s: %w", path, err)}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		count, err := m.exportService.Export(ctx, f, filter)

		return exportedMsg{count: count, path: path, err: err}
	}
}
