package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/plan"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// rowOverhead is the width of everything on an entry row but the title, ID included.
const rowOverhead = 66

// titleWidth returns how much of a row a title may use.
func titleWidth() int {
	if w := termWidth() - rowOverhead; w > 20 {
		return w
	}
	return 20
}

func kindSymbol(e *calendar.Entry) string {
	switch {
	case !e.IsOneOff():
		return "↻"
	case !e.Flexible:
		return "■"
	default:
		return "○"
	}
}

// PrintEntryRow prints one calendar entry.
func PrintEntryRow(w io.Writer, e *calendar.Entry, maxTitle int) {
	fmt.Fprintf(w, "  %s %s  %-13s %s  %s\n",
		kindSymbol(e),
		e.Window(),
		formatEntry(e, "["+string(e.Category)+"]"),
		ansi.Truncate(e.Title, maxTitle, "…"),
		formatMuted(e.ID),
	)
}

// PrintOccurrences prints occurrences grouped by date.
func PrintOccurrences(w io.Writer, occ []calendar.Occurrence) {
	if len(occ) == 0 {
		fmt.Fprintln(w, "No entries found in the specified date range.")
		return
	}
	maxTitle := titleWidth()
	var currentDate string
	for _, o := range occ {
		date := dateutil.Format(o.Date)
		if date != currentDate {
			if currentDate != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "=== %s ===\n", formatHeader(o.Date.Format("Monday, January 2, 2006")))
			currentDate = date
		}
		PrintEntryRow(w, o.Entry, maxTitle)
	}
}

// PrintResult prints what a create or update changed.
func PrintResult(w io.Writer, verb string, r *agenda.Result) {
	fmt.Fprintf(w, "%s entry %s", verb, r.EntryID)
	if !r.Date.IsZero() {
		fmt.Fprintf(w, " on %s", dateutil.Format(r.Date))
	}
	fmt.Fprintln(w)

	for _, rel := range r.Relocations {
		fmt.Fprintf(w, "  %s %q %s → %s\n", formatMoved("moved"), rel.Entry.Title, rel.From, rel.To)
	}
	PrintMoves(w, r.Moves, r.Unplaced)
}

// PrintMoves prints plan items moved by reconciliation and the ones left in place.
func PrintMoves(w io.Writer, moves []plan.Move, unplaced []*plan.Item) {
	for _, m := range moves {
		fmt.Fprintf(w, "  %s %s %q %s → %s\n", formatMoved("plan"), m.Kind, m.Title,
			timeofday.Format(m.From), timeofday.Format(m.To))
	}
	for _, it := range unplaced {
		fmt.Fprintf(w, "  %s %s %q stays at %s, no free slot\n", formatError("plan"), it.Kind, it.Title, it.Window())
	}
}

// PrintPlan prints a daily plan.
func PrintPlan(w io.Writer, p *plan.DailyPlan) {
	fmt.Fprintf(w, "=== Plan for %s ===\n", formatHeader(p.Date.Format("Monday, January 2, 2006")))
	items := p.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, it := range items {
		done := "○"
		if it.Done {
			done = "✓"
		}
		fmt.Fprintf(w, "  %s %s  %-9s %s  %s\n", done, it.Window(), "["+string(it.Kind)+"]", it.Title, formatMuted(it.ID))
	}
}

// PrintWindows prints free windows with their length.
func PrintWindows(w io.Writer, windows []timeofday.Window) {
	if len(windows) == 0 {
		fmt.Fprintln(w, "  No free time.")
		return
	}
	total := 0
	for _, win := range windows {
		fmt.Fprintf(w, "  %s  %s\n", win, formatMuted(formatDuration(win.Duration())))
		total += win.Duration()
	}
	fmt.Fprintf(w, "  Total: %s\n", formatDuration(total))
}

// formatDuration renders minutes as "1h30m", "45m" or "2h".
func formatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, m)
	}
}

// describeError turns agenda failures into a one-line explanation.
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
			titles[i] = fmt.Sprintf("%q (%s)", b.Title, b.Window())
		}
		return fmt.Sprintf("%s overlaps %s", cerr.Candidate, strings.Join(titles, ", "))
	case errors.As(err, &uerr):
		return fmt.Sprintf("no free %s slot left to move %q", formatDuration(uerr.Duration), uerr.Entry.Title)
	case errors.As(err, &verr):
		return fmt.Sprintf("invalid %s: %v", verr.Field, verr.Err)
	default:
		return err.Error()
	}
}
