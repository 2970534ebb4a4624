package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/user"
)

// LoggedInMsg carries the session of a successfully authenticated user.
type LoggedInMsg struct {
	Session Session
}

type loginResultMsg struct {
	user *user.User
	err  error
}

type LoginModel struct {
	CommonModel
	userService *user.Service

	form     *huh.Form
	email    string
	password string
	busy     bool
	err      error
}

func NewLoginModel(userSvc *user.Service) LoginModel {
	m := LoginModel{userService: userSvc}
	m.form = m.buildForm()

	return m
}

func (m *LoginModel) buildForm() *huh.Form {
	notBlank := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("informe o %s", field)
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.email).
				Validate(notBlank("email")),

			huh.NewInput().
				Key("senha").
				Title("Senha").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(notBlank("senha")),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Entrar" }
func (m LoginModel) ShortHelp() string { return "Enter: confirmar | Ctrl+C: sair" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		m.busy = false
		if result.err != nil {
			m.err = result.err
			m.email = m.form.GetString("email")
			m.password = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		session := Session{UserID: result.user.ID, Name: result.user.Name}

		return m, func() tea.Msg { return LoggedInMsg{Session: session} }
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true
	m.err = nil

	return m, m.authenticateCmd(m.form.GetString("email"), m.form.GetString("senha"))
}

func (m LoginModel) authenticateCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.userService.Authenticate(ctx, strings.TrimSpace(email), password)
		return loginResultMsg{user: u, err: err}
	}
}

func (m LoginModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Minhas Finanças")

	content := header + "\n\n"
	if m.busy {
		content += "Autenticando..."
	} else {
		content += m.form.View()
	}

	if m.err != nil {
		content += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(ErrorText(m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}
