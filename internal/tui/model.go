// Package tui provides the terminal day agenda for lifecoach.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/logger"
)

// Model is the day agenda model.
type Model struct {
	svc    *agenda.Service
	owner  string
	styles *Styles
	keys   keyMap
	help   help.Model

	date time.Time
	view *agenda.DayView // nil until the first load

	adding bool
	input  textinput.Model

	status    string
	statusErr bool

	width  int
	height int
}

// New creates a model showing date.
func New(svc *agenda.Service, owner string, date time.Time) Model {
	ti := textinput.New()
	ti.Placeholder = "Lunch 12:00-12:30 meal"
	ti.Prompt = "add › "
	ti.CharLimit = 200

	return Model{
		svc:    svc,
		owner:  owner,
		styles: NewStyles(),
		keys:   defaultKeyMap(),
		help:   help.New(),
		date:   dateutil.Today(date),
		input:  ti,
	}
}

// Run starts the TUI on date and blocks until the user quits.
func Run(svc *agenda.Service, owner string, date time.Time) error {
	p := tea.NewProgram(New(svc, owner, date), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

// Init loads the first day.
func (m Model) Init() tea.Cmd {
	return loadDay(m.svc, m.owner, m.date)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case dayLoadedMsg:
		// Drop stale loads after fast navigation.
		if msg.view.Date.Equal(m.date) {
			m.view = msg.view
		}
		return m, nil

	case createdMsg:
		status := fmt.Sprintf("Added %q", msg.title)
		if n := len(msg.result.Relocations) + len(msg.result.Moves); n > 0 {
			status += fmt.Sprintf(", moved %d", n)
		}
		if n := len(msg.result.Unplaced); n > 0 {
			status += fmt.Sprintf(", %d plan item(s) left in place", n)
		}
		return m.setStatus(status, false, loadDay(m.svc, m.owner, m.date))

	case copiedMsg:
		return m.setStatus("Day copied to clipboard", false)

	case errMsg:
		logger.Debug("tui command failed", "error", msg.err)
		return m.setStatus(describeError(msg.err), true)

	case clearStatusMsg:
		m.status = ""
		m.statusErr = false
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.handleAddKeys(msg)
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prev):
		return m.goTo(m.date.AddDate(0, 0, -1))
	case key.Matches(msg, m.keys.Next):
		return m.goTo(m.date.AddDate(0, 0, 1))
	case key.Matches(msg, m.keys.Today):
		return m.goTo(m.svc.Today())
	case key.Matches(msg, m.keys.Refresh):
		return m, loadDay(m.svc, m.owner, m.date)
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Copy):
		if m.view == nil {
			return m, nil
		}
		return m, copyToClipboard(DayText(m.view))
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		req, err := parseQuickAdd(m.input.Value(), m.date)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		m.adding = false
		m.input.Blur()
		return m, createEntry(m.svc, m.owner, req)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) goTo(date time.Time) (tea.Model, tea.Cmd) {
	m.date = dateutil.Today(date)
	m.view = nil
	return m, loadDay(m.svc, m.owner, m.date)
}

func (m Model) setStatus(status string, isErr bool, cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	m.status = status
	m.statusErr = isErr
	cmds = append(cmds, clearStatusAfter(statusTimeout))
	return m, tea.Batch(cmds...)
}
