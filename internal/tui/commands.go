package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/lifecoach/internal/agenda"
)

// dayLoadedMsg carries a freshly read day.
type dayLoadedMsg struct {
	view *agenda.DayView
}

// createdMsg reports a successful quick add.
type createdMsg struct {
	title  string
	result *agenda.Result
}

// copiedMsg reports that the day text reached the clipboard.
type copiedMsg struct{}

// errMsg is sent when a command fails.
type errMsg struct {
	err error
}

// clearStatusMsg clears the status line.
type clearStatusMsg struct{}

const statusTimeout = 3 * time.Second

func loadDay(svc *agenda.Service, owner string, date time.Time) tea.Cmd {
	return func() tea.Msg {
		view, err := svc.Day(context.Background(), owner, date)
		if err != nil {
			return errMsg{err}
		}
		return dayLoadedMsg{view: view}
	}
}

func createEntry(svc *agenda.Service, owner string, req agenda.CreateRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Create(context.Background(), owner, req)
		if err != nil {
			return errMsg{err}
		}
		return createdMsg{title: req.Title, result: res}
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return errMsg{err}
		}
		return copiedMsg{}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
