package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/lifecoach/internal/calendar"
)

// Catppuccin mocha.
var (
	colorFg      = lipgloss.Color("#cdd6f4")
	colorMuted   = lipgloss.Color("#6c7086")
	colorAccent  = lipgloss.Color("#89b4fa")
	colorFixed   = lipgloss.Color("#f38ba8")
	colorSoft    = lipgloss.Color("#a6e3a1")
	colorMoved   = lipgloss.Color("#f9e2af")
	colorWarning = lipgloss.Color("#fab387")
	colorBorder  = lipgloss.Color("#45475a")
)

// Styles holds every style the day view renders with.
type Styles struct {
	Title    lipgloss.Style
	Today    lipgloss.Style
	Section  lipgloss.Style
	Time     lipgloss.Style
	Fixed    lipgloss.Style
	Soft     lipgloss.Style
	Muted    lipgloss.Style
	Done     lipgloss.Style
	Moved    lipgloss.Style
	Error    lipgloss.Style
	Prompt   lipgloss.Style
	Box      lipgloss.Style
	Category lipgloss.Style
}

// NewStyles builds the default styles.
func NewStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Today:    lipgloss.NewStyle().Bold(true).Foreground(colorSoft),
		Section:  lipgloss.NewStyle().Bold(true).Foreground(colorFg).MarginTop(1),
		Time:     lipgloss.NewStyle().Foreground(colorFg).Width(13),
		Fixed:    lipgloss.NewStyle().Foreground(colorFixed),
		Soft:     lipgloss.NewStyle().Foreground(colorSoft),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Done:     lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true),
		Moved:    lipgloss.NewStyle().Foreground(colorMoved),
		Error:    lipgloss.NewStyle().Foreground(colorWarning),
		Prompt:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1),
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1),
		Category: lipgloss.NewStyle().Foreground(colorMuted).Width(12),
	}
}

// entryStyle colours an entry by whether the scheduler may move it.
func (s *Styles) entryStyle(e *calendar.Entry) lipgloss.Style {
	if e.Category.Fixed() || !e.Flexible {
		return s.Fixed
	}
	return s.Soft
}
