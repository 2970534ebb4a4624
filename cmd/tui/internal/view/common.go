package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

type CommonModel struct {
	Width  int
	Height int
}

// Session identifies the user every view acts on behalf of.
type Session struct {
	UserID int64
	Name   string
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
