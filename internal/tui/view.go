package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/plan"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

const (
	headerDateLayout = "Monday, January 2, 2006"
	minTitleWidth    = 12
	defaultWidth     = 80
)

// View renders the day.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{m.renderHeader()}
	if m.view == nil {
		sections = append(sections, m.styles.Muted.Render("Loading..."))
	} else {
		sections = append(sections,
			m.renderEntries(width),
			m.renderPlan(),
			m.renderFree(),
		)
	}
	if m.adding {
		sections = append(sections, m.styles.Prompt.Render(m.input.View()))
	}
	if m.status != "" {
		style := m.styles.Moved
		if m.statusErr {
			style = m.styles.Error
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render(m.date.Format(headerDateLayout))
	if m.date.Equal(m.svc.Today()) {
		title += " " + m.styles.Today.Render("(today)")
	}
	return title
}

func (m Model) renderEntries(width int) string {
	s := m.styles
	lines := []string{s.Section.Render("Calendar")}
	if len(m.view.Entries) == 0 {
		lines = append(lines, s.Muted.Render("  No entries"))
		return strings.Join(lines, "\n")
	}

	// time + category + marker + padding
	titleWidth := max(width-13-12-8-4, minTitleWidth)
	for _, e := range m.view.Entries {
		title := ansi.Truncate(e.Title, titleWidth, "…")
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			"  ",
			s.Time.Render(entryTime(e)),
			s.entryStyle(e).Width(titleWidth+1).Render(title),
			s.Category.Render(string(e.Category)),
			s.Muted.Render(entryMarker(e)),
		)
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPlan() string {
	s := m.styles
	lines := []string{s.Section.Render("Plan")}
	if m.view.Plan == nil {
		lines = append(lines, s.Muted.Render("  No plan for this day"))
		return strings.Join(lines, "\n")
	}
	items := m.view.Plan.Items()
	if len(items) == 0 {
		lines = append(lines, s.Muted.Render("  Empty plan"))
	}
	for _, it := range items {
		style := s.Soft
		if it.Done {
			style = s.Done
		}
		lines = append(lines, "  "+s.Time.Render(it.Window().String())+style.Render(planLabel(it)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFree() string {
	s := m.styles
	lines := []string{s.Section.Render("Free")}
	if len(m.view.Free) == 0 {
		lines = append(lines, s.Muted.Render("  No free time"))
		return strings.Join(lines, "\n")
	}
	parts := make([]string, len(m.view.Free))
	for i, w := range m.view.Free {
		parts[i] = w.String()
	}
	lines = append(lines, "  "+s.Muted.Render(strings.Join(parts, "  ")))
	return strings.Join(lines, "\n")
}

func entryTime(e *calendar.Entry) string {
	if !e.Timed() {
		return "all day"
	}
	return e.Window().String()
}

func entryMarker(e *calendar.Entry) string {
	var parts []string
	if e.Kind == calendar.KindRecurring {
		parts = append(parts, "↻")
	}
	if e.Flexible && !e.Category.Fixed() {
		parts = append(parts, "~")
	}
	return strings.Join(parts, " ")
}

func planLabel(it *plan.Item) string {
	label := fmt.Sprintf("%s %s", it.Kind, it.Title)
	if it.Done {
		label += " ✓"
	}
	return label
}

// DayText renders a day as plain text for sharing.
func DayText(v *agenda.DayView) string {
	var b strings.Builder
	fmt.Fprintln(&b, v.Date.Format(headerDateLayout))
	fmt.Fprintln(&b)
	if len(v.Entries) == 0 {
		fmt.Fprintln(&b, "No calendar entries.")
	}
	for _, e := range v.Entries {
		fmt.Fprintf(&b, "%s  %s (%s)\n", entryTime(e), e.Title, e.Category)
	}
	if v.Plan != nil {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Plan:")
		for _, it := range v.Plan.Items() {
			fmt.Fprintf(&b, "%s  %s\n", it.Window(), planLabel(it))
		}
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Free: %s\n", joinWindows(v.Free))
	return b.String()
}

func joinWindows(ws []timeofday.Window) string {
	if len(ws) == 0 {
		return "none"
	}
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.String()
	}
	return strings.Join(parts, ", ")
}

func describeError(err error) string {
	var (
		cerr *calendar.ConflictError
		uerr *calendar.UnplaceableError
		verr *calendar.ValidationError
	)
	switch {
	case errors.As(err, &cerr):
		titles := make([]string, len(cerr.Blocking))
		for i, b := range cerr.Blocking {
			titles[i] = fmt.Sprintf("%q", b.Title)
		}
		return fmt.Sprintf("%s overlaps %s", cerr.Candidate, strings.Join(titles, ", "))
	case errors.As(err, &uerr):
		return fmt.Sprintf("no free slot left to move %q", uerr.Entry.Title)
	case errors.As(err, &verr):
		return fmt.Sprintf("invalid %s: %v", verr.Field, verr.Err)
	default:
		return err.Error()
	}
}
