package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/minhasfinancas/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/auth"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/cache"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/config"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/database"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	entryStore "github.com/MrJamesThe3rd/minhasfinancas/internal/entry/store"
	events "github.com/MrJamesThe3rd/minhasfinancas/internal/events/kafka"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/export"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/importer"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/minhasfinancas/internal/matching/store"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/user"
	userStore "github.com/MrJamesThe3rd/minhasfinancas/internal/user/store"
)

type services struct {
	users    *user.Service
	entries  *entry.Service
	matching *matching.Service
	importer *importer.Service
	export   *export.Service
}

// screen is a full-window view. Every view package model satisfies it.
type screen interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type menuItem struct {
	key   string
	label string
	open  func(svc services, session view.Session) screen
}

var menu = []menuItem{
	{"1", "Lançamentos", func(svc services, s view.Session) screen {
		return view.NewListModel(svc.entries, s)
	}},
	{"2", "Revisar pendentes", func(svc services, s view.Session) screen {
		return view.NewReviewModel(svc.entries, svc.matching, s)
	}},
	{"3", "Importar CSV", func(svc services, s view.Session) screen {
		return view.NewImportModel(svc.importer, s)
	}},
	{"4", "Exportar CSV", func(svc services, s view.Session) screen {
		return view.NewExportModel(svc.export, s)
	}},
}

// model shows the login screen until a session exists, then the menu, or
// the screen opened from it while active is set.
type model struct {
	svc     services
	session *view.Session
	login   screen
	active  screen
}

func buildServices(ctx context.Context, cfg *config.Config) (services, func(), error) {
	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return services{}, nil, fmt.Errorf("connecting to database: %w", err)
	}

	closers := []func() error{db.Close}
	opts := []entry.Option{}

	if rdb := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); rdb != nil {
		closers = append(closers, rdb.Close)
		opts = append(opts, entry.WithCache(cache.NewBalanceCache(rdb, cfg.Redis.BalanceTTL)))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		closers = append(closers, publisher.Close)
		opts = append(opts, entry.WithPublisher(publisher))
	}

	entrySvc := entry.NewService(entryStore.New(db), opts...)
	matchSvc := matching.NewService(matchingStore.New(db))

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	return services{
		users:    user.NewService(userStore.New(db), auth.NewBcryptHasher(cfg.Auth.BcryptCost)),
		entries:  entrySvc,
		matching: matchSvc,
		importer: importer.NewService(entrySvc, matchSvc),
		export:   export.NewService(entrySvc),
	}, cleanup, nil
}

func newModel(svc services) model {
	return model{svc: svc, login: view.NewLoginModel(svc.users)}
}

func (m model) Init() tea.Cmd {
	return m.login.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.session != nil && m.active == nil {
			return m.updateMenu(msg)
		}
	case view.LoggedInMsg:
		m.session = &msg.Session
		m.login = nil
		slog.Info("user logged in", "user_id", msg.Session.UserID)

		return m, nil
	case view.BackMsg:
		m.active = nil
		return m, nil
	}

	var cmd tea.Cmd

	switch {
	case m.session == nil:
		next, c := m.login.Update(msg)
		m.login, cmd = next.(screen), c
	case m.active != nil:
		next, c := m.active.Update(msg)
		m.active, cmd = next.(screen), c
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return m, tea.Quit
	}

	for _, item := range menu {
		if msg.String() == item.key {
			m.active = item.open(m.svc, *m.session)
			return m, m.active.Init()
		}
	}

	return m, nil
}

var helpStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(2)

func (m model) View() string {
	current := m.active
	if m.session == nil {
		current = m.login
	}

	if current != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			current.View(),
			helpStyle.Render(current.Title()+" | "+current.ShortHelp()),
		)
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Minhas Finanças"))
	b.WriteString("\nOlá, " + m.session.Name + "\n\n")

	for _, item := range menu {
		b.WriteString(item.key + ". " + item.label + "\n")
	}

	b.WriteString("\nq. Sair")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the program; logs go to LOG_FILE or nowhere.
	slog.SetDefault(slog.New(slog.DiscardHandler))

	if cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "tui")
		if err == nil {
			defer f.Close()
			slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
		}
	}

	svc, cleanup, err := buildServices(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(newModel(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		cleanup()
		os.Exit(1)
	}
}
