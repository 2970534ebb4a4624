package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/importer"
)

const importTimeout = 2 * time.Minute

// Import runs in two steps: the chosen file is parsed and validated into a
// preview, and nothing is stored until the preview is confirmed.
type importStep int

const (
	importStepPick importStep = iota
	importStepParsing
	importStepPreview
	importStepSaving
	importStepDone
)

type ImportModel struct {
	CommonModel
	importService *importer.Service
	session       Session

	step    importStep
	picker  filepicker.Model
	spinner spinner.Model
	preview table.Model

	file    string
	pending []*entry.Entry
	saved   int
	err     error
}

func NewImportModel(impSvc *importer.Service, session Session) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return ImportModel{
		importService: impSvc,
		session:       session,
		picker:        fp,
		spinner:       sp,
	}
}

func (m ImportModel) Title() string { return "Importar CSV" }

func (m ImportModel) ShortHelp() string {
	switch m.step {
	case importStepPreview:
		if m.err != nil {
			return "Esc: escolher outro arquivo"
		}
		return "Enter: gravar | Esc: descartar"
	case importStepDone:
		return "Esc: voltar ao menu"
	}

	return "Esc: voltar | Enter: selecionar"
}

func (m ImportModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewMsg:
		m.step = importStepPreview
		m.err = msg.err
		m.pending = msg.entries
		m.preview = previewTable(msg.entries)

		return m, nil

	case savedMsg:
		m.step = importStepDone
		m.err = msg.err
		m.saved = msg.count

		return m, nil

	case spinner.TickMsg:
		if m.step == importStepParsing || m.step == importStepSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)

			return m, cmd
		}

		return m, nil

	case tea.KeyMsg:
		switch m.step {
		case importStepPreview:
			return m.updatePreview(msg)
		case importStepDone:
			if msg.Type == tea.KeyEsc {
				return m, Back
			}

			return m, nil
		case importStepPick:
			if msg.Type == tea.KeyEsc {
				return m, Back
			}
		}
	}

	if m.step != importStepPick {
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.step = importStepParsing
		m.file = path

		return m, tea.Batch(m.spinner.Tick, m.previewCmd(path))
	}

	return m, cmd
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.step = importStepPick
		m.err = nil
		m.pending = nil

		return m, m.picker.Init()
	case tea.KeyEnter:
		if m.err != nil || len(m.pending) == 0 {
			return m, nil
		}

		m.step = importStepSaving

		return m, tea.Batch(m.spinner.Tick, m.saveCmd(m.pending))
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case importStepPick:
		return pad.Render("Selecione o arquivo CSV a importar:\n\n" + m.picker.View())
	case importStepParsing:
		return pad.Render(fmt.Sprintf("%s Lendo %s...", m.spinner.View(), filepath.Base(m.file)))
	case importStepSaving:
		return pad.Render(fmt.Sprintf("%s Gravando %d lançamentos...", m.spinner.View(), len(m.pending)))
	case importStepPreview:
		return pad.Render(m.viewPreview())
	case importStepDone:
		if m.err != nil {
			return pad.Render(errorStyle.Render("Erro: "+ErrorText(m.err)) + "\n\nNenhum lançamento foi gravado.")
		}

		return pad.Render(successStyle.Render(fmt.Sprintf("%d lançamentos importados como %s.", m.saved, entry.StatusPending)))
	}

	return ""
}

func (m ImportModel) viewPreview() string {
	title := lipgloss.NewStyle().Bold(true).Render("Prévia de " + filepath.Base(m.file))

	if m.err != nil {
		return title + "\n\n" + errorStyle.Render(ErrorText(m.err)) + "\n\nCorrija o arquivo e tente de novo."
	}

	if len(m.pending) == 0 {
		return title + "\n\nNenhum lançamento encontrado no arquivo."
	}

	income, expense := totals(m.pending)

	summary := fmt.Sprintf("%d lançamentos | Receitas: %s | Despesas: %s | Saldo: %s",
		len(m.pending), FormatValue(income), FormatValue(expense), balanceStyle(income.Sub(expense)))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", summary, "", m.preview.View())
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
)

func previewTable(entries []*entry.Entry) table.Model {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			FormatPeriod(e.Month, e.Year),
			string(e.Type),
			FormatValue(e.Value),
			e.Description,
		}
	}

	return table.New(
		table.WithColumns([]table.Column{
			{Title: "Linha", Width: 6},
			{Title: "Período", Width: 9},
			{Title: "Tipo", Width: 8},
			{Title: "Valor", Width: 12},
			{Title: "Descrição", Width: 40},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows), 12)+1),
	)
}

func totals(entries []*entry.Entry) (income, expense decimal.Decimal) {
	for _, e := range entries {
		switch e.Type {
		case entry.TypeIncome:
			income = income.Add(e.Value)
		case entry.TypeExpense:
			expense = expense.Add(e.Value)
		}
	}

	return income, expense
}

// Messages

type previewMsg struct {
	entries []*entry.Entry
	err     error
}

type savedMsg struct {
	count int
	err   error
}

func (m ImportModel) previewCmd(path string) tea.Cmd {
	userID := m.session.UserID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return previewMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		entries, err := m.importService.Preview(ctx, userID, f)

		return previewMsg{entries: entries, err: err}
	}
}

func (m ImportModel) saveCmd(entries []*entry.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		created, err := m.importService.Save(ctx, entries)

		return savedMsg{count: len(created), err: err}
	}
}
